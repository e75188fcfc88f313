package menu

import "github.com/marcus/menuboard/internal/models"

// Total sums the values of the selected items. A row that points at a
// missing group or an out-of-range index contributes 0.
func Total(catalog models.Catalog, sel models.Selection) float64 {
	var sum float64
	for _, r := range sel {
		if it, ok := Selected(catalog, r); ok {
			sum += it.Value
		}
	}
	return sum
}

// Selected returns the item a row points at.
func Selected(catalog models.Catalog, r models.Row) (models.MenuItem, bool) {
	items := ByGroup(catalog, r.Group)
	if r.Index < 0 || r.Index >= len(items) {
		return models.MenuItem{}, false
	}
	return items[r.Index], true
}
