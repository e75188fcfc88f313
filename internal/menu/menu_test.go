package menu

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/marcus/menuboard/internal/models"
)

func TestGroupsOf(t *testing.T) {
	tests := []struct {
		name    string
		catalog models.Catalog
		want    []models.Group
	}{
		{"empty", nil, nil},
		{"default", Default(), []models.Group{1, 2, 3}},
		{"unordered", models.Catalog{{Group: 5}, {Group: 2}, {Group: 5}, {Group: 1}}, []models.Group{1, 2, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, GroupsOf(tt.catalog)); diff != "" {
				t.Errorf("GroupsOf mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestByGroupKeepsOrder(t *testing.T) {
	catalog := models.Catalog{
		{Group: 1, Label: "a"},
		{Group: 2, Label: "x"},
		{Group: 1, Label: "b"},
		{Group: 1, Label: "c"},
	}
	got := ByGroup(catalog, 1)
	var labels []string
	for _, it := range got {
		labels = append(labels, it.Label)
	}
	if strings.Join(labels, ",") != "a,b,c" {
		t.Errorf("ByGroup order = %v, want a,b,c", labels)
	}
	if len(ByGroup(catalog, 4)) != 0 {
		t.Error("ByGroup of absent group should be empty")
	}
}

func TestDefaultIsACopy(t *testing.T) {
	a := Default()
	a[0].Value = 999
	if Default()[0].Value == 999 {
		t.Fatal("Default must return an independent copy")
	}
}

func TestReconcileClamps(t *testing.T) {
	catalog := models.Catalog{
		{Group: 1, Value: 1}, {Group: 1, Value: 2},
		{Group: 3, Value: 3},
		{Group: 4, Value: 4}, {Group: 4, Value: 5}, {Group: 4, Value: 6},
	}
	prev := models.Selection{
		{Group: 1, Index: 7},  // too far, clamp to 1
		{Group: 2, Index: 1},  // group gone
		{Group: 3, Index: -2}, // negative, clamp to 0
		{Group: 4, Index: 1},  // kept
	}
	want := models.Selection{
		{Group: 1, Index: 1},
		{Group: 3, Index: 0},
		{Group: 4, Index: 1},
	}
	if diff := cmp.Diff(want, Reconcile(prev, catalog)); diff != "" {
		t.Errorf("Reconcile mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcileIndicesAlwaysValid(t *testing.T) {
	catalog := Default()
	prev := models.Selection{{Group: 1, Index: 100}, {Group: 2, Index: 100}, {Group: 3, Index: 100}}
	for step := 0; step < 20; step++ {
		sel := Reconcile(prev, catalog)
		for _, r := range sel {
			n := len(ByGroup(catalog, r.Group))
			if n == 0 && r.Index != 0 {
				t.Fatalf("step %d: empty group %d has index %d", step, r.Group, r.Index)
			}
			if n > 0 && (r.Index < 0 || r.Index > n-1) {
				t.Fatalf("step %d: group %d index %d outside [0,%d]", step, r.Group, r.Index, n-1)
			}
		}
		// Shrink the catalog by dropping the last item of the largest group.
		if len(catalog) > 1 {
			catalog = catalog[:len(catalog)-1]
		}
		prev = sel
	}
}

func TestReconcileNewGroupStartsAtZero(t *testing.T) {
	catalog, g, ok := AddGroup(Default())
	if !ok || g != 4 {
		t.Fatalf("AddGroup = %d, %v; want 4, true", g, ok)
	}
	sel := Reconcile(models.Selection{{Group: 1, Index: 2}}, catalog)
	idx, found := sel.IndexOf(4)
	if !found || idx != 0 {
		t.Errorf("new group index = %d (found %v), want 0", idx, found)
	}
	if idx, _ := sel.IndexOf(1); idx != 2 {
		t.Errorf("group 1 index = %d, want 2", idx)
	}
}

func TestClearSelection(t *testing.T) {
	sel := models.Selection{{Group: 1, Index: 3}, {Group: 2, Index: 1}}
	got := ClearSelection(sel)
	want := models.Selection{{Group: 1, Index: 0}, {Group: 2, Index: 0}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ClearSelection mismatch (-want +got):\n%s", diff)
	}
	if sel[0].Index != 3 {
		t.Error("ClearSelection must not modify its input")
	}
}

func TestStepStopsAtEnds(t *testing.T) {
	catalog := Default()
	sel := Reconcile(nil, catalog)
	sel = Step(sel, catalog, 2, -1)
	if idx, _ := sel.IndexOf(2); idx != 0 {
		t.Errorf("step below zero gave %d", idx)
	}
	sel = Step(sel, catalog, 2, 5)
	if idx, _ := sel.IndexOf(2); idx != 1 {
		t.Errorf("step past end gave %d, want 1", idx)
	}
}

func TestTotal(t *testing.T) {
	catalog := Default()
	sel := models.Selection{{Group: 1, Index: 1}, {Group: 2, Index: 0}, {Group: 3, Index: 2}}
	if got := Total(catalog, sel); got != 13 {
		t.Errorf("Total = %v, want 13", got)
	}
	if Total(catalog, sel) != Total(catalog, sel) {
		t.Error("Total must be deterministic")
	}

	broken := models.Selection{{Group: 1, Index: 99}, {Group: 6, Index: 0}, {Group: 3, Index: -1}}
	if got := Total(catalog, broken); got != 0 {
		t.Errorf("out-of-range rows contributed %v, want 0", got)
	}
}

func TestAddRow(t *testing.T) {
	catalog, ok := AddRow(Default(), 2)
	if !ok {
		t.Fatal("AddRow refused a valid group")
	}
	items := ByGroup(catalog, 2)
	last := items[len(items)-1]
	if last.Label != "" || last.Value != 0 {
		t.Errorf("new row = %+v, want blank", last)
	}
	if _, ok := AddRow(Default(), 7); ok {
		t.Error("AddRow accepted group 7")
	}
}

func TestRemoveRow(t *testing.T) {
	catalog, ok := RemoveRow(Default(), 3, 1)
	if !ok {
		t.Fatal("RemoveRow failed")
	}
	items := ByGroup(catalog, 3)
	if len(items) != 4 || items[1].Value != 10 {
		t.Errorf("group 3 after removal = %+v", items)
	}
	if _, ok := RemoveRow(Default(), 2, 5); ok {
		t.Error("RemoveRow accepted out-of-range index")
	}
}

func TestUpdateRow(t *testing.T) {
	label := "Premium"
	value := 12.5
	catalog, ok := UpdateRow(Default(), 2, 1, Patch{Label: &label, Value: &value})
	if !ok {
		t.Fatal("UpdateRow failed")
	}
	it := ByGroup(catalog, 2)[1]
	if it.Label != label || it.Value != value {
		t.Errorf("updated item = %+v", it)
	}

	onlyValue := 4.0
	catalog, _ = UpdateRow(catalog, 2, 1, Patch{Value: &onlyValue})
	if it := ByGroup(catalog, 2)[1]; it.Label != label || it.Value != 4 {
		t.Errorf("partial patch = %+v", it)
	}
}

func TestAddGroupFull(t *testing.T) {
	var catalog models.Catalog
	for g := models.MinGroup; g <= models.MaxGroup; g++ {
		catalog = append(catalog, models.MenuItem{Group: g})
	}
	out, _, ok := AddGroup(catalog)
	if ok {
		t.Fatal("AddGroup succeeded with all groups used")
	}
	if diff := cmp.Diff(catalog, out); diff != "" {
		t.Errorf("full catalog changed (-want +got):\n%s", diff)
	}
}

func TestAddGroupFillsGap(t *testing.T) {
	catalog := models.Catalog{{Group: 1}, {Group: 3}}
	out, g, ok := AddGroup(catalog)
	if !ok || g != 2 {
		t.Fatalf("AddGroup = %d, %v; want 2, true", g, ok)
	}
	if n := len(ByGroup(out, 2)); n != 1 {
		t.Errorf("new group has %d items, want 1", n)
	}
}

func TestRemoveGroupRenumbers(t *testing.T) {
	catalog := models.Catalog{
		{Group: 1, Label: "a1"},
		{Group: 2, Label: "b1"},
		{Group: 3, Label: "c1"},
		{Group: 1, Label: "a2"},
		{Group: 3, Label: "c2"},
	}
	res, ok := RemoveGroup(catalog, 2)
	if !ok {
		t.Fatal("RemoveGroup failed")
	}
	want := models.Catalog{
		{Group: 1, Label: "a1"},
		{Group: 2, Label: "c1"},
		{Group: 1, Label: "a2"},
		{Group: 2, Label: "c2"},
	}
	if diff := cmp.Diff(want, res.Catalog); diff != "" {
		t.Errorf("catalog mismatch (-want +got):\n%s", diff)
	}
	if res.Active != 2 {
		t.Errorf("Active = %d, want 2", res.Active)
	}
}

func TestRemoveGroupSparse(t *testing.T) {
	catalog := models.Catalog{{Group: 1}, {Group: 3}, {Group: 5}}
	res, ok := RemoveGroup(catalog, 5)
	if !ok {
		t.Fatal("RemoveGroup failed")
	}
	if diff := cmp.Diff([]models.Group{1, 2}, GroupsOf(res.Catalog)); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
	// Nothing followed group 5, so the first group becomes active.
	if res.Active != 1 {
		t.Errorf("Active = %d, want 1", res.Active)
	}
	wantMap := map[models.Group]models.Group{1: 1, 3: 2}
	if diff := cmp.Diff(wantMap, res.Mapping); diff != "" {
		t.Errorf("mapping mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveGroupRefusesLast(t *testing.T) {
	catalog := models.Catalog{{Group: 2, Label: "only"}}
	if _, ok := RemoveGroup(catalog, 2); ok {
		t.Error("removed the last group")
	}
	if _, ok := RemoveGroup(Default(), 5); ok {
		t.Error("removed an absent group")
	}
}

func TestRemoveGroupScenario(t *testing.T) {
	catalog := Default()
	sel := Reconcile(nil, catalog)
	sel = Select(sel, catalog, 1, 1)
	sel = Select(sel, catalog, 2, 0)
	sel = Select(sel, catalog, 3, 2)
	if got := Total(catalog, sel); got != 13 {
		t.Fatalf("initial total = %v, want 13", got)
	}

	res, ok := RemoveGroup(catalog, 2)
	if !ok {
		t.Fatal("RemoveGroup failed")
	}
	sel = Reconcile(RemapRows(sel, res.Mapping), res.Catalog)

	if diff := cmp.Diff([]models.Group{1, 2}, GroupsOf(res.Catalog)); diff != "" {
		t.Fatalf("groups mismatch (-want +got):\n%s", diff)
	}
	it, ok := Selected(res.Catalog, models.Row{Group: 2, Index: mustIndex(t, sel, 2)})
	if !ok || it.Value != 10 {
		t.Errorf("group 2 selection = %+v, want value 10", it)
	}
	if got := Total(res.Catalog, sel); got != 13 {
		t.Errorf("total after removal = %v, want 13", got)
	}
}

func mustIndex(t *testing.T, sel models.Selection, g models.Group) int {
	t.Helper()
	idx, ok := sel.IndexOf(g)
	if !ok {
		t.Fatalf("no row for group %d", g)
	}
	return idx
}

func TestResolveRow(t *testing.T) {
	catalog := Default()
	tests := []struct {
		ref     string
		group   models.Group
		want    int
		wantErr bool
	}{
		{"2", 1, 1, false},
		{"9", 1, 8, false},
		{"10", 1, 0, true},
		{"0", 1, 0, true},
		{"Overnight", 1, 8, false},
		{"Extension +2h", 1, 3, false},
		{"zzzz", 3, 0, true},
		{"1", 5, 0, true},
	}
	for _, tt := range tests {
		got, err := ResolveRow(catalog, tt.group, tt.ref)
		if tt.wantErr {
			if !errors.Is(err, ErrNoMatch) {
				t.Errorf("ResolveRow(%d, %q) err = %v, want ErrNoMatch", tt.group, tt.ref, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ResolveRow(%d, %q) unexpected error: %v", tt.group, tt.ref, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveRow(%d, %q) = %d, want %d", tt.group, tt.ref, got, tt.want)
		}
	}
}

func TestCatalogFiles(t *testing.T) {
	for _, format := range []string{FormatYAML, FormatJSON} {
		data, err := EncodeCatalog(Default(), format)
		if err != nil {
			t.Fatalf("EncodeCatalog(%s): %v", format, err)
		}
		got, err := DecodeCatalog(data)
		if err != nil {
			t.Fatalf("DecodeCatalog(%s): %v", format, err)
		}
		if diff := cmp.Diff(Default(), got); diff != "" {
			t.Errorf("%s round trip mismatch (-want +got):\n%s", format, diff)
		}
	}
}

func TestDecodeCatalogRejects(t *testing.T) {
	bad := []string{
		"[]",
		`[{"group": 9, "label": "x", "value": 1}]`,
		"items: []",
		"items: [",
	}
	for _, src := range bad {
		if _, err := DecodeCatalog([]byte(src)); err == nil {
			t.Errorf("DecodeCatalog(%q) accepted invalid input", src)
		}
	}
}
