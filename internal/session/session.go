// Package session owns the live menu state: the catalog, the per-group
// selection and the active editor group. Every catalog mutation is followed
// by selection reconciliation and a background save.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/marcus/menuboard/internal/menu"
	"github.com/marcus/menuboard/internal/models"
	"github.com/marcus/menuboard/internal/persist"
	"github.com/marcus/menuboard/internal/version"
)

// Errors returned by session operations.
var (
	ErrBusy       = errors.New("a cloud operation is already in progress")
	ErrLastGroup  = errors.New("cannot remove the last group")
	ErrGroupsFull = errors.New("all groups are in use")
	ErrNoGroup    = errors.New("no such group")
	ErrNoRow      = errors.New("no such row")
	ErrNoRemote   = persist.ErrNoRemote
)

// Session is the top-level application state. It is not safe for
// concurrent mutation; remote work started with StartCloudSave or
// StartCloudLoad may run on another goroutine.
type Session struct {
	gw     *persist.Gateway
	logger *slog.Logger
	build  string

	catalog models.Catalog
	sel     models.Selection
	active  models.Group

	busy atomic.Bool
}

// New loads state through gw. build is the binary version used for the
// displayed menu version.
func New(gw *persist.Gateway, build string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{gw: gw, logger: logger, build: build}
	s.catalog, s.sel = gw.Load()
	s.active = s.firstGroup()
	return s
}

func (s *Session) firstGroup() models.Group {
	if groups := menu.GroupsOf(s.catalog); len(groups) > 0 {
		return groups[0]
	}
	return models.MinGroup
}

func (s *Session) hasGroup(g models.Group) bool {
	for _, x := range menu.GroupsOf(s.catalog) {
		if x == g {
			return true
		}
	}
	return false
}

// Catalog returns a copy of the catalog.
func (s *Session) Catalog() models.Catalog { return s.catalog.Clone() }

// Selection returns a copy of the selection.
func (s *Session) Selection() models.Selection { return s.sel.Clone() }

// Groups returns the groups present, ascending.
func (s *Session) Groups() []models.Group { return menu.GroupsOf(s.catalog) }

// Items returns the items of group g in order.
func (s *Session) Items(g models.Group) []models.MenuItem { return menu.ByGroup(s.catalog, g) }

// SelectedIndex returns the selected index for g.
func (s *Session) SelectedIndex(g models.Group) int {
	idx, _ := s.sel.IndexOf(g)
	return idx
}

// Total returns the sum of the selected values.
func (s *Session) Total() float64 { return menu.Total(s.catalog, s.sel) }

// ActiveGroup returns the group shown in the editor.
func (s *Session) ActiveGroup() models.Group { return s.active }

// SetActiveGroup switches the editor to g if it exists.
func (s *Session) SetActiveGroup(g models.Group) bool {
	if !s.hasGroup(g) {
		return false
	}
	s.active = g
	return true
}

// CycleGroup moves the active group by delta, wrapping around.
func (s *Session) CycleGroup(delta int) models.Group {
	groups := s.Groups()
	if len(groups) == 0 {
		return s.active
	}
	cur := 0
	for i, g := range groups {
		if g == s.active {
			cur = i
		}
	}
	n := len(groups)
	s.active = groups[((cur+delta)%n+n)%n]
	return s.active
}

// Patch returns the catalog change counter.
func (s *Session) Patch() int { return s.gw.Patch() }

// DisplayVersion returns the version shown with the menu.
func (s *Session) DisplayVersion() string {
	return version.Display(s.build, s.gw.Patch())
}

// Busy reports whether a cloud operation is in flight.
func (s *Session) Busy() bool { return s.busy.Load() }

// HasRemote reports whether cloud backup is configured.
func (s *Session) HasRemote() bool { return s.gw.HasRemote() }

// setCatalog installs catalog, reconciles the selection and keeps the
// active group valid.
func (s *Session) setCatalog(catalog models.Catalog, prev models.Selection) {
	s.catalog = catalog
	s.sel = menu.Reconcile(prev, catalog)
	if !s.hasGroup(s.active) {
		s.active = s.firstGroup()
	}
}

func (s *Session) autosave() {
	s.gw.SaveAuto(s.catalog.Clone(), s.sel.Clone())
}

// Select points group g at index, clamped.
func (s *Session) Select(g models.Group, index int) error {
	if !s.hasGroup(g) {
		return fmt.Errorf("%w: %d", ErrNoGroup, g)
	}
	s.sel = menu.Select(s.sel, s.catalog, g, index)
	s.autosave()
	return nil
}

// Step moves the selection of g by delta items.
func (s *Session) Step(g models.Group, delta int) {
	s.sel = menu.Step(s.sel, s.catalog, g, delta)
	s.autosave()
}

// ClearSelection resets every row to the first item of its group.
func (s *Session) ClearSelection() {
	s.sel = menu.ClearSelection(s.sel)
	s.autosave()
}

// AddRow appends a blank item to group g. The group must already exist;
// new groups are opened with AddGroup.
func (s *Session) AddRow(g models.Group) error {
	if !s.hasGroup(g) {
		return fmt.Errorf("%w: %d", ErrNoGroup, g)
	}
	out, ok := menu.AddRow(s.catalog, g)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoGroup, g)
	}
	s.setCatalog(out, s.sel)
	s.autosave()
	return nil
}

// RemoveRow deletes the item at index of group g. Removing the only item
// of the only group is refused.
func (s *Session) RemoveRow(g models.Group, index int) error {
	if len(s.catalog) == 1 && index == 0 && s.hasGroup(g) {
		return ErrLastGroup
	}
	out, ok := menu.RemoveRow(s.catalog, g, index)
	if !ok {
		return fmt.Errorf("%w: group %d row %d", ErrNoRow, g, index+1)
	}
	s.setCatalog(out, s.sel)
	s.autosave()
	return nil
}

// UpdateRow patches the item at index of group g.
func (s *Session) UpdateRow(g models.Group, index int, p menu.Patch) error {
	out, ok := menu.UpdateRow(s.catalog, g, index, p)
	if !ok {
		return fmt.Errorf("%w: group %d row %d", ErrNoRow, g, index+1)
	}
	s.setCatalog(out, s.sel)
	s.autosave()
	return nil
}

// AddGroup opens the lowest free group and makes it active.
func (s *Session) AddGroup() (models.Group, error) {
	out, g, ok := menu.AddGroup(s.catalog)
	if !ok {
		return 0, ErrGroupsFull
	}
	s.setCatalog(out, s.sel)
	s.active = g
	s.autosave()
	return g, nil
}

// CanAddGroup reports whether a free group remains.
func (s *Session) CanAddGroup() bool {
	_, ok := menu.NextFreeGroup(s.catalog)
	return ok
}

// RemoveGroup deletes group g and renumbers the rest. Selections follow
// their items to the new group numbers.
func (s *Session) RemoveGroup(g models.Group) error {
	if !s.hasGroup(g) {
		return fmt.Errorf("%w: %d", ErrNoGroup, g)
	}
	if len(s.Groups()) <= 1 {
		return ErrLastGroup
	}
	res, ok := menu.RemoveGroup(s.catalog, g)
	if !ok {
		return ErrLastGroup
	}
	s.setCatalog(res.Catalog, menu.RemapRows(s.sel, res.Mapping))
	s.active = res.Active
	s.autosave()
	return nil
}

// ResetCatalog replaces the catalog with the built-in defaults.
func (s *Session) ResetCatalog() {
	s.setCatalog(menu.Default(), s.sel)
	s.active = s.firstGroup()
	s.autosave()
	s.logger.Info("catalog reset to defaults")
}

// Import saves a validated catalog and then installs it. On a failed save
// the session keeps its previous state.
func (s *Session) Import(catalog models.Catalog) error {
	if err := menu.Validate(catalog); err != nil {
		return err
	}
	next := catalog.Clone()
	if err := s.gw.SaveLocal(next.Clone(), menu.Reconcile(s.sel, next)); err != nil {
		return err
	}
	s.setCatalog(next, s.sel)
	return nil
}

// SaveLocal writes the current state and reports failure.
func (s *Session) SaveLocal() error {
	return s.gw.SaveLocal(s.catalog.Clone(), s.sel.Clone())
}

func (s *Session) acquire() error {
	if !s.gw.HasRemote() {
		return ErrNoRemote
	}
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	return nil
}

// StartCloudSave saves locally, takes the busy flag and returns the upload
// to run. The upload works on a snapshot and releases the flag when done.
func (s *Session) StartCloudSave() (func(context.Context) error, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	if err := s.SaveLocal(); err != nil {
		s.busy.Store(false)
		return nil, err
	}
	snapshot := s.catalog.Clone()
	return func(ctx context.Context) error {
		defer s.busy.Store(false)
		err := s.gw.Push(ctx, snapshot)
		if err != nil {
			s.logger.Error("cloud save failed", "err", err)
		}
		return err
	}, nil
}

// StartCloudLoad takes the busy flag and returns the download to run. The
// download does not touch session state; pass its result to ApplyRemote.
func (s *Session) StartCloudLoad() (func(context.Context) (models.Catalog, error), error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	return func(ctx context.Context) (models.Catalog, error) {
		defer s.busy.Store(false)
		catalog, err := s.gw.Pull(ctx)
		if err != nil {
			s.logger.Error("cloud load failed", "err", err)
		}
		return catalog, err
	}, nil
}

// ApplyRemote saves a downloaded catalog locally and installs it. If the
// catalog is invalid or the save fails, state is unchanged.
func (s *Session) ApplyRemote(catalog models.Catalog) error {
	return s.Import(catalog)
}

// CloudSave runs a cloud save to completion.
func (s *Session) CloudSave(ctx context.Context) error {
	run, err := s.StartCloudSave()
	if err != nil {
		return err
	}
	return run(ctx)
}

// CloudLoad runs a cloud load to completion. On failure state is unchanged.
func (s *Session) CloudLoad(ctx context.Context) error {
	run, err := s.StartCloudLoad()
	if err != nil {
		return err
	}
	catalog, err := run(ctx)
	if err != nil {
		return err
	}
	return s.ApplyRemote(catalog)
}
