// Package menu holds the menu state model: catalog helpers, the built-in
// default catalog, selection reconciliation, totals and catalog edits.
//
// Every function here is pure. Inputs are never modified; edits return a new
// catalog and callers are expected to reconcile the selection afterwards.
package menu

import (
	"sort"

	"github.com/marcus/menuboard/internal/models"
)

// defaultItems is the built-in catalog: a time/price ladder in group 1, a
// binary option in group 2 and a tiered option in group 3.
var defaultItems = models.Catalog{
	{Group: 1, Label: "Tea / meal 1h (1.5)", Value: 1.5},
	{Group: 1, Label: "Tea / meal 2h (3)", Value: 3},
	{Group: 1, Label: "Extension +1h (5)", Value: 5},
	{Group: 1, Label: "Extension +2h (7)", Value: 7},
	{Group: 1, Label: "Extension +3h (9)", Value: 9},
	{Group: 1, Label: "Extension +4h (11)", Value: 11},
	{Group: 1, Label: "Extension +5h (13)", Value: 13},
	{Group: 1, Label: "Extension +6h (15)", Value: 15},
	{Group: 1, Label: "Overnight (30)", Value: 30},
	{Group: 2, Label: "Costume photo: none (0)", Value: 0},
	{Group: 2, Label: "Costume photo: yes (5)", Value: 5},
	{Group: 3, Label: "Option: none (0)", Value: 0},
	{Group: 3, Label: "Option A x1 (5)", Value: 5},
	{Group: 3, Label: "Option B x1 (10)", Value: 10},
	{Group: 3, Label: "Option A open (8)", Value: 8},
	{Group: 3, Label: "Option B open (15)", Value: 15},
}

// Default returns a fresh copy of the built-in catalog.
func Default() models.Catalog {
	return defaultItems.Clone()
}

// ByGroup returns the items of group g in catalog order.
func ByGroup(catalog models.Catalog, g models.Group) []models.MenuItem {
	var out []models.MenuItem
	for _, it := range catalog {
		if it.Group == g {
			out = append(out, it)
		}
	}
	return out
}

// GroupsOf returns the distinct groups present in catalog, ascending.
func GroupsOf(catalog models.Catalog) []models.Group {
	seen := make(map[models.Group]bool)
	var groups []models.Group
	for _, it := range catalog {
		if !seen[it.Group] {
			seen[it.Group] = true
			groups = append(groups, it.Group)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i] < groups[j] })
	return groups
}

// positionOf maps (group, index within group) to the index in catalog.
// Returns -1 when the address is out of range.
func positionOf(catalog models.Catalog, g models.Group, index int) int {
	if index < 0 {
		return -1
	}
	n := 0
	for i, it := range catalog {
		if it.Group != g {
			continue
		}
		if n == index {
			return i
		}
		n++
	}
	return -1
}
