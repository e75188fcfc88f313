package menu

import "github.com/marcus/menuboard/internal/models"

// Reconcile rebuilds the selection for catalog. Each group present in the
// catalog gets exactly one row, ascending. A group keeps its previous index
// clamped to the group's length; new groups start at 0; rows for groups
// that disappeared are dropped.
func Reconcile(prev models.Selection, catalog models.Catalog) models.Selection {
	previous := make(map[models.Group]int, len(prev))
	for _, r := range prev {
		previous[r.Group] = r.Index
	}

	groups := GroupsOf(catalog)
	out := make(models.Selection, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.Row{Group: g, Index: clampIndex(previous[g], len(ByGroup(catalog, g)))})
	}
	return out
}

// clampIndex keeps index inside [0, length-1], or 0 for an empty group.
func clampIndex(index, length int) int {
	if length <= 0 || index < 0 {
		return 0
	}
	if index > length-1 {
		return length - 1
	}
	return index
}

// ClearSelection sets every row back to the first item of its group.
// Catalog and group membership are untouched.
func ClearSelection(sel models.Selection) models.Selection {
	out := sel.Clone()
	for i := range out {
		out[i].Index = 0
	}
	return out
}

// Select points group g at index, clamped to the group's length. A group
// without a row is left alone.
func Select(sel models.Selection, catalog models.Catalog, g models.Group, index int) models.Selection {
	out := sel.Clone()
	n := len(ByGroup(catalog, g))
	for i := range out {
		if out[i].Group == g {
			out[i].Index = clampIndex(index, n)
		}
	}
	return out
}

// Step moves the selection of group g by delta items, stopping at either end.
func Step(sel models.Selection, catalog models.Catalog, g models.Group, delta int) models.Selection {
	cur, ok := sel.IndexOf(g)
	if !ok {
		return sel.Clone()
	}
	return Select(sel, catalog, g, cur+delta)
}

// RemapRows renames row groups through mapping. Rows whose group has no
// entry in mapping are dropped. Used after a group removal renumbers the
// catalog so selections follow their items.
func RemapRows(sel models.Selection, mapping map[models.Group]models.Group) models.Selection {
	out := make(models.Selection, 0, len(sel))
	for _, r := range sel {
		if to, ok := mapping[r.Group]; ok {
			out = append(out, models.Row{Group: to, Index: r.Index})
		}
	}
	return out
}
