// Package persist moves menu snapshots between the session and storage.
// The local channel is a synchronous key-value store; the optional remote
// channel is an opaque blob store, sealed with a pre-shared key when one is
// configured. The gateway only ever sees copies of session state.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/marcus/menuboard/internal/cloud"
	"github.com/marcus/menuboard/internal/crypto"
	"github.com/marcus/menuboard/internal/menu"
	"github.com/marcus/menuboard/internal/models"
)

// Local storage keys.
const (
	KeyItems        = "menuItems"
	KeyRows         = "rows"
	KeyVersionPatch = "versionPatch"
)

// DefaultObjectKey is the remote object name used when none is configured.
const DefaultObjectKey = "menu.enc"

// DefaultTimeout bounds a single remote call.
const DefaultTimeout = 30 * time.Second

// ErrNoRemote is returned by remote operations when no blob store is set.
var ErrNoRemote = errors.New("cloud backup is not configured")

// KV is the local key-value channel. *store.Store satisfies it.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Options configures the remote channel. A nil Remote disables it; a nil
// Key uploads plaintext JSON.
type Options struct {
	Remote    cloud.BlobStore
	ObjectKey string
	Key       []byte
	Timeout   time.Duration
	Logger    *slog.Logger
}

// Gateway reads and writes menu snapshots.
type Gateway struct {
	kv        KV
	remote    cloud.BlobStore
	objectKey string
	key       []byte
	timeout   time.Duration
	logger    *slog.Logger

	lastCatalog string
	patch       int
}

// New returns a gateway over kv.
func New(kv KV, opts Options) *Gateway {
	g := &Gateway{
		kv:        kv,
		remote:    opts.Remote,
		objectKey: opts.ObjectKey,
		key:       opts.Key,
		timeout:   opts.Timeout,
		logger:    opts.Logger,
	}
	if g.objectKey == "" {
		g.objectKey = DefaultObjectKey
	}
	if g.timeout <= 0 {
		g.timeout = DefaultTimeout
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Load reads the catalog and selection, falling back to the default
// catalog when nothing usable is stored. It also seeds the version counter
// so that the loaded catalog does not count as a change.
func (g *Gateway) Load() (models.Catalog, models.Selection) {
	catalog := g.LoadItems()
	sel := g.LoadRows(catalog)

	g.patch = g.loadPatch()
	if data, err := json.Marshal(catalog); err == nil {
		g.lastCatalog = string(data)
	}
	return catalog, sel
}

// LoadItems returns the stored catalog, or the default catalog when the
// value is absent, unreadable, not a non-empty array or fails validation.
func (g *Gateway) LoadItems() models.Catalog {
	raw, ok, err := g.kv.Get(KeyItems)
	if err != nil {
		g.logger.Warn("read stored items", "err", err)
		return menu.Default()
	}
	if !ok {
		return menu.Default()
	}
	var catalog models.Catalog
	if err := json.Unmarshal([]byte(raw), &catalog); err != nil {
		g.logger.Warn("stored items unparsable, using defaults", "err", err)
		return menu.Default()
	}
	if err := menu.Validate(catalog); err != nil {
		g.logger.Warn("stored items invalid, using defaults", "err", err)
		return menu.Default()
	}
	return catalog
}

// LoadRows returns the stored selection reconciled against catalog.
// Missing or unparsable rows reconcile from an empty selection.
func (g *Gateway) LoadRows(catalog models.Catalog) models.Selection {
	var prev models.Selection
	raw, ok, err := g.kv.Get(KeyRows)
	switch {
	case err != nil:
		g.logger.Warn("read stored rows", "err", err)
	case ok:
		if err := json.Unmarshal([]byte(raw), &prev); err != nil {
			g.logger.Warn("stored rows unparsable", "err", err)
			prev = nil
		}
	}
	return menu.Reconcile(prev, catalog)
}

func (g *Gateway) loadPatch() int {
	raw, ok, err := g.kv.Get(KeyVersionPatch)
	if err != nil || !ok {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Patch returns the version counter.
func (g *Gateway) Patch() int {
	return g.patch
}

// SaveLocal writes catalog and selection and reports the first failure.
func (g *Gateway) SaveLocal(catalog models.Catalog, sel models.Selection) error {
	items, err := json.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	rows, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}

	if err := g.kv.Set(KeyItems, string(items)); err != nil {
		return fmt.Errorf("save items: %w", err)
	}
	if err := g.kv.Set(KeyRows, string(rows)); err != nil {
		return fmt.Errorf("save rows: %w", err)
	}
	return g.observe(string(items))
}

// SaveAuto is SaveLocal for background saves: failures are logged and
// otherwise ignored.
func (g *Gateway) SaveAuto(catalog models.Catalog, sel models.Selection) {
	if err := g.SaveLocal(catalog, sel); err != nil {
		g.logger.Warn("auto save failed", "err", err)
	}
}

// observe bumps the version counter when the serialized catalog differs
// from the last one seen.
func (g *Gateway) observe(serialized string) error {
	if serialized == g.lastCatalog {
		return nil
	}
	g.lastCatalog = serialized
	g.patch++
	if err := g.kv.Set(KeyVersionPatch, strconv.Itoa(g.patch)); err != nil {
		return fmt.Errorf("save version: %w", err)
	}
	return nil
}

// HasRemote reports whether a blob store is configured.
func (g *Gateway) HasRemote() bool {
	return g.remote != nil
}

// Encrypted reports whether remote payloads are sealed.
func (g *Gateway) Encrypted() bool {
	return len(g.key) > 0
}

// ObjectKey returns the remote object name.
func (g *Gateway) ObjectKey() string {
	return g.objectKey
}

// EncodeRemote produces the remote payload for catalog.
func (g *Gateway) EncodeRemote(catalog models.Catalog) ([]byte, error) {
	data, err := json.Marshal(catalog)
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}
	if !g.Encrypted() {
		return data, nil
	}
	return crypto.Seal(g.key, data)
}

// DecodeRemote reverses EncodeRemote and validates the result. With a key
// configured the payload must carry the blob header.
func (g *Gateway) DecodeRemote(payload []byte) (models.Catalog, error) {
	data := payload
	if g.Encrypted() {
		var err error
		if data, err = crypto.Open(g.key, payload); err != nil {
			return nil, err
		}
	}
	var catalog models.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if err := menu.Validate(catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}

// Push uploads catalog, replacing the remote object.
func (g *Gateway) Push(ctx context.Context, catalog models.Catalog) error {
	if g.remote == nil {
		return ErrNoRemote
	}
	payload, err := g.EncodeRemote(catalog)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	if err := g.remote.Upload(ctx, g.objectKey, payload, true); err != nil {
		return fmt.Errorf("upload %s: %w", g.objectKey, err)
	}
	g.logger.Info("cloud push", "key", g.objectKey, "bytes", len(payload), "took", time.Since(start))
	return nil
}

// Pull downloads and decodes the remote catalog. Nothing local changes.
func (g *Gateway) Pull(ctx context.Context) (models.Catalog, error) {
	if g.remote == nil {
		return nil, ErrNoRemote
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	payload, err := g.remote.Download(ctx, g.objectKey)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", g.objectKey, err)
	}
	catalog, err := g.DecodeRemote(payload)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", g.objectKey, err)
	}
	g.logger.Info("cloud pull", "key", g.objectKey, "items", len(catalog))
	return catalog, nil
}
