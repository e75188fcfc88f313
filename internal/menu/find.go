package menu

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/marcus/menuboard/internal/models"
	"github.com/sahilm/fuzzy"
)

// ErrNoMatch is returned when a row reference matches nothing in the group.
var ErrNoMatch = errors.New("no matching item")

// labelSource adapts a group's items for the fuzzy library.
type labelSource []models.MenuItem

func (s labelSource) String(i int) string {
	return s[i].Label
}

func (s labelSource) Len() int {
	return len(s)
}

// ResolveRow turns a user reference into an index within group g. A plain
// number is a 1-based row; anything else is fuzzy-matched against labels and
// the best match wins.
func ResolveRow(catalog models.Catalog, g models.Group, ref string) (int, error) {
	items := ByGroup(catalog, g)
	if len(items) == 0 {
		return 0, fmt.Errorf("group %d: %w", g, ErrNoMatch)
	}

	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(items) {
			return 0, fmt.Errorf("group %d has %d rows, got %d: %w", g, len(items), n, ErrNoMatch)
		}
		return n - 1, nil
	}

	matches := fuzzy.FindFrom(ref, labelSource(items))
	if len(matches) == 0 {
		return 0, fmt.Errorf("group %d, %q: %w", g, ref, ErrNoMatch)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches[0].Index, nil
}
