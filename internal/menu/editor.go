package menu

import "github.com/marcus/menuboard/internal/models"

// Patch carries the fields of an item to change. Nil fields are kept.
type Patch struct {
	Label *string
	Value *float64
}

// AddRow appends a blank item to group g. Groups outside the valid range
// are rejected.
func AddRow(catalog models.Catalog, g models.Group) (models.Catalog, bool) {
	if !g.Valid() {
		return catalog.Clone(), false
	}
	out := append(catalog.Clone(), models.MenuItem{Group: g})
	return out, true
}

// RemoveRow deletes the item at index within group g.
func RemoveRow(catalog models.Catalog, g models.Group, index int) (models.Catalog, bool) {
	pos := positionOf(catalog, g, index)
	if pos < 0 {
		return catalog.Clone(), false
	}
	out := make(models.Catalog, 0, len(catalog)-1)
	out = append(out, catalog[:pos]...)
	out = append(out, catalog[pos+1:]...)
	return out, true
}

// UpdateRow applies p to the item at index within group g.
func UpdateRow(catalog models.Catalog, g models.Group, index int, p Patch) (models.Catalog, bool) {
	out := catalog.Clone()
	pos := positionOf(out, g, index)
	if pos < 0 {
		return out, false
	}
	if p.Label != nil {
		out[pos].Label = *p.Label
	}
	if p.Value != nil {
		out[pos].Value = *p.Value
	}
	return out, true
}

// NextFreeGroup returns the lowest group in range not used by catalog.
func NextFreeGroup(catalog models.Catalog) (models.Group, bool) {
	used := make(map[models.Group]bool)
	for _, g := range GroupsOf(catalog) {
		used[g] = true
	}
	for g := models.MinGroup; g <= models.MaxGroup; g++ {
		if !used[g] {
			return g, true
		}
	}
	return 0, false
}

// AddGroup opens the lowest free group with one blank item. When all groups
// are taken the catalog is returned unchanged and ok is false.
func AddGroup(catalog models.Catalog) (out models.Catalog, g models.Group, ok bool) {
	g, ok = NextFreeGroup(catalog)
	if !ok {
		return catalog.Clone(), 0, false
	}
	out = append(catalog.Clone(), models.MenuItem{Group: g})
	return out, g, true
}

// GroupRemoval is the outcome of RemoveGroup.
type GroupRemoval struct {
	Catalog models.Catalog
	// Mapping takes every surviving old group to its new number.
	Mapping map[models.Group]models.Group
	// Active is the group to show next: the renumbered group that followed
	// the removed one, or the first group.
	Active models.Group
}

// RemoveGroup deletes all items of g and renumbers the remaining groups to
// 1..n keeping their order. Removing an absent group or the last remaining
// group is refused.
func RemoveGroup(catalog models.Catalog, g models.Group) (GroupRemoval, bool) {
	groups := GroupsOf(catalog)
	present := false
	for _, x := range groups {
		if x == g {
			present = true
		}
	}
	if !present || len(groups) <= 1 {
		return GroupRemoval{Catalog: catalog.Clone()}, false
	}

	mapping := make(map[models.Group]models.Group, len(groups)-1)
	next := models.Group(0)
	n := models.MinGroup
	for _, x := range groups {
		if x == g {
			continue
		}
		to := n
		// Unreachable while AddGroup enforces the cap.
		if to > models.MaxGroup {
			to = models.MaxGroup
		}
		mapping[x] = to
		if next == 0 && x > g {
			next = to
		}
		n++
	}

	out := make(models.Catalog, 0, len(catalog))
	for _, it := range catalog {
		if it.Group == g {
			continue
		}
		it.Group = mapping[it.Group]
		out = append(out, it)
	}

	active := next
	if active == 0 {
		active = models.MinGroup
	}
	return GroupRemoval{Catalog: out, Mapping: mapping, Active: active}, true
}
