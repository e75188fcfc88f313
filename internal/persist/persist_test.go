package persist

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/marcus/menuboard/internal/cloud"
	"github.com/marcus/menuboard/internal/crypto"
	"github.com/marcus/menuboard/internal/menu"
	"github.com/marcus/menuboard/internal/models"
	"github.com/marcus/menuboard/internal/store"
)

type mapKV struct {
	data    map[string]string
	failSet error
}

func newMapKV() *mapKV { return &mapKV{data: map[string]string{}} }

func (m *mapKV) Get(key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapKV) Set(key, value string) error {
	if m.failSet != nil {
		return m.failSet
	}
	m.data[key] = value
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := crypto.KeyFromSecret("shared deployment secret")
	if err != nil {
		t.Fatalf("KeyFromSecret: %v", err)
	}
	return key
}

func TestLoadDefaultFallback(t *testing.T) {
	tests := []struct {
		name  string
		items *string
	}{
		{"absent", nil},
		{"not json", ptr("{oops")},
		{"empty array", ptr("[]")},
		{"object", ptr(`{"group":1}`)},
		{"bad group", ptr(`[{"group":9,"label":"x","value":1}]`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := newMapKV()
			if tt.items != nil {
				kv.data[KeyItems] = *tt.items
			}
			g := New(kv, Options{Logger: quietLogger()})
			catalog, sel := g.Load()
			if diff := cmp.Diff(menu.Default(), catalog); diff != "" {
				t.Errorf("catalog mismatch (-want +got):\n%s", diff)
			}
			if len(sel) != 3 {
				t.Errorf("selection rows = %d, want 3", len(sel))
			}
		})
	}
}

func ptr(s string) *string { return &s }

func TestSaveLoadRoundTrip(t *testing.T) {
	kv := newMapKV()
	g := New(kv, Options{Logger: quietLogger()})

	catalog := models.Catalog{
		{Group: 1, Label: "a", Value: 1.5},
		{Group: 1, Label: "b", Value: 2},
		{Group: 4, Label: "", Value: 0},
	}
	sel := models.Selection{{Group: 1, Index: 1}, {Group: 4, Index: 0}}
	if err := g.SaveLocal(catalog, sel); err != nil {
		t.Fatalf("SaveLocal: %v", err)
	}

	gotCatalog, gotSel := New(kv, Options{Logger: quietLogger()}).Load()
	if diff := cmp.Diff(catalog, gotCatalog); diff != "" {
		t.Errorf("catalog mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(sel, gotSel); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRowsReconciles(t *testing.T) {
	kv := newMapKV()
	kv.data[KeyItems] = `[{"group":1,"label":"a","value":1},{"group":2,"label":"b","value":2}]`
	kv.data[KeyRows] = `[{"group":1,"index":7},{"group":5,"index":0}]`

	_, sel := New(kv, Options{Logger: quietLogger()}).Load()
	want := models.Selection{{Group: 1, Index: 0}, {Group: 2, Index: 0}}
	if diff := cmp.Diff(want, sel); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestVersionPatchCountsDistinctCatalogs(t *testing.T) {
	kv := newMapKV()
	g := New(kv, Options{Logger: quietLogger()})
	catalog, sel := g.Load()
	if g.Patch() != 0 {
		t.Fatalf("Patch after load = %d, want 0", g.Patch())
	}

	// Same catalog, different selection: no bump.
	g.SaveAuto(catalog, menu.Select(sel, catalog, 1, 3))
	if g.Patch() != 0 {
		t.Errorf("Patch after selection-only save = %d, want 0", g.Patch())
	}

	changed, _ := menu.AddRow(catalog, 1)
	g.SaveAuto(changed, sel)
	g.SaveAuto(changed, sel)
	if g.Patch() != 1 {
		t.Errorf("Patch after one change saved twice = %d, want 1", g.Patch())
	}

	g.SaveAuto(catalog, sel)
	if g.Patch() != 2 {
		t.Errorf("Patch after revert = %d, want 2", g.Patch())
	}
	if kv.data[KeyVersionPatch] != "2" {
		t.Errorf("stored patch = %q, want 2", kv.data[KeyVersionPatch])
	}

	reloaded := New(kv, Options{Logger: quietLogger()})
	reloaded.Load()
	if reloaded.Patch() != 2 {
		t.Errorf("Patch after reload = %d, want 2", reloaded.Patch())
	}
}

func TestSaveAutoSwallowsFailure(t *testing.T) {
	kv := newMapKV()
	kv.failSet = errors.New("quota exceeded")
	g := New(kv, Options{Logger: quietLogger()})

	g.SaveAuto(menu.Default(), nil)
	if err := g.SaveLocal(menu.Default(), nil); err == nil {
		t.Error("SaveLocal: expected error from failing store")
	}
}

func TestSQLiteStoreAsKV(t *testing.T) {
	s, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer s.Close()

	g := New(s, Options{Logger: quietLogger()})
	catalog, sel := g.Load()
	sel = menu.Select(sel, catalog, 1, 2)
	if err := g.SaveLocal(catalog, sel); err != nil {
		t.Fatalf("SaveLocal: %v", err)
	}

	_, got := New(s, Options{Logger: quietLogger()}).Load()
	if idx, _ := got.IndexOf(1); idx != 2 {
		t.Errorf("group 1 index = %d, want 2", idx)
	}
}

func TestRemoteRoundTripEncrypted(t *testing.T) {
	remote := cloud.NewMemoryStore()
	g := New(newMapKV(), Options{Remote: remote, Key: testKey(t), Logger: quietLogger()})

	catalog := menu.Default()
	if err := g.Push(context.Background(), catalog); err != nil {
		t.Fatalf("Push: %v", err)
	}

	blob, err := remote.Download(context.Background(), DefaultObjectKey)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if !crypto.HasMagic(crypto.BlobMagic, blob) {
		t.Error("uploaded blob lacks header")
	}

	got, err := g.Pull(context.Background())
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if diff := cmp.Diff(catalog, got); diff != "" {
		t.Errorf("catalog mismatch (-want +got):\n%s", diff)
	}
}

func TestRemotePlaintext(t *testing.T) {
	remote := cloud.NewMemoryStore()
	g := New(newMapKV(), Options{Remote: remote, ObjectKey: "shop.json", Logger: quietLogger()})

	if err := g.Push(context.Background(), menu.Default()); err != nil {
		t.Fatalf("Push: %v", err)
	}
	blob, _ := remote.Download(context.Background(), "shop.json")
	if blob[0] != '[' {
		t.Errorf("plaintext payload starts with %q, want '['", blob[0])
	}
}

func TestPullRejectsForeignBlob(t *testing.T) {
	remote := cloud.NewMemoryStore()
	foreign := append([]byte("XXXX"), make([]byte, 40)...)
	if err := remote.Upload(context.Background(), DefaultObjectKey, foreign, true); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	g := New(newMapKV(), Options{Remote: remote, Key: testKey(t), Logger: quietLogger()})
	if _, err := g.Pull(context.Background()); !errors.Is(err, crypto.ErrInvalidHeader) {
		t.Errorf("Pull: got %v, want ErrInvalidHeader", err)
	}
}

func TestPullRejectsEmptyCatalog(t *testing.T) {
	remote := cloud.NewMemoryStore()
	remote.Upload(context.Background(), DefaultObjectKey, []byte("[]"), true)

	g := New(newMapKV(), Options{Remote: remote, Logger: quietLogger()})
	if _, err := g.Pull(context.Background()); err == nil {
		t.Error("Pull: expected error for empty catalog")
	}
}

func TestRemoteErrorsWrapped(t *testing.T) {
	remote := cloud.NewMemoryStore()
	g := New(newMapKV(), Options{Remote: remote, Logger: quietLogger()})
	if _, err := g.Pull(context.Background()); !errors.Is(err, cloud.ErrNotFound) {
		t.Errorf("Pull: got %v, want ErrNotFound", err)
	}
}

func TestNoRemote(t *testing.T) {
	g := New(newMapKV(), Options{Logger: quietLogger()})
	if g.HasRemote() {
		t.Error("HasRemote = true")
	}
	if err := g.Push(context.Background(), menu.Default()); !errors.Is(err, ErrNoRemote) {
		t.Errorf("Push: got %v", err)
	}
	if _, err := g.Pull(context.Background()); !errors.Is(err, ErrNoRemote) {
		t.Errorf("Pull: got %v", err)
	}
}
