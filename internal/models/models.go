// Package models defines the menu data shared by every layer: priced items
// tagged with a group, and the per-group selection rows.
package models

// Group is a category identifier partitioning menu items.
type Group int

// Valid group range. A catalog never uses more than MaxGroup groups.
const (
	MinGroup Group = 1
	MaxGroup Group = 6
)

// Valid reports whether g is inside the fixed group range.
func (g Group) Valid() bool {
	return g >= MinGroup && g <= MaxGroup
}

// MenuItem is one priced line of the menu
type MenuItem struct {
	Group Group   `json:"group" yaml:"group"`
	Label string  `json:"label" yaml:"label"`
	Value float64 `json:"value" yaml:"value"`
}

// Row is the current selection for one group. Index addresses the ordered
// subsequence of items belonging to Group.
type Row struct {
	Group Group `json:"group"`
	Index int   `json:"index"`
}

// Catalog is the ordered collection of menu items across all groups.
type Catalog []MenuItem

// Clone returns a copy that shares no backing array with c.
func (c Catalog) Clone() Catalog {
	if c == nil {
		return nil
	}
	out := make(Catalog, len(c))
	copy(out, c)
	return out
}

// Selection holds one Row per group, ascending by group.
type Selection []Row

// Clone returns a copy that shares no backing array with s.
func (s Selection) Clone() Selection {
	if s == nil {
		return nil
	}
	out := make(Selection, len(s))
	copy(out, s)
	return out
}

// IndexOf returns the selected index for g and whether a row exists.
func (s Selection) IndexOf(g Group) (int, bool) {
	for _, r := range s {
		if r.Group == g {
			return r.Index, true
		}
	}
	return 0, false
}
