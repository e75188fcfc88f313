// Package export produces password-protected receipts of the current menu
// view. A receipt is a JSON document sealed with a key stretched from the
// password; its permissions allow viewing only.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/marcus/menuboard/internal/crypto"
	"github.com/marcus/menuboard/internal/input"
	"github.com/marcus/menuboard/internal/menu"
	"github.com/marcus/menuboard/internal/models"
)

const (
	// ReceiptMagic tags version 1 of the receipt format.
	ReceiptMagic = "MBR1"
	// MinPasswordLen is the shortest accepted password, in characters.
	MinPasswordLen = 4
	// FileExt is the receipt file extension.
	FileExt = ".mbr"
)

var (
	// ErrPasswordTooShort is returned by Seal and Write for passwords
	// shorter than MinPasswordLen.
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLen)
	// ErrWrongPassword is returned by Open when the receipt does not
	// decrypt. A wrong password and a tampered body look the same.
	ErrWrongPassword = errors.New("wrong password or damaged receipt")
)

// Permissions records what a viewer may do with the document.
type Permissions struct {
	Print     bool `json:"print"`
	Modify    bool `json:"modify"`
	Copy      bool `json:"copy"`
	FillForms bool `json:"fill_forms"`
}

// ViewOnly forbids everything but viewing.
var ViewOnly = Permissions{}

// Line is one selected row as shown on screen.
type Line struct {
	Group models.Group `json:"group"`
	Label string       `json:"label"`
	Value float64      `json:"value"`
}

// Document is the exported view.
type Document struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Version     string      `json:"version"`
	CreatedAt   time.Time   `json:"created_at"`
	Lines       []Line      `json:"lines"`
	Total       float64     `json:"total"`
	Permissions Permissions `json:"permissions"`
}

// ValidatePassword checks the minimum length.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	return nil
}

// Build captures the selected rows of catalog as a view-only document.
func Build(title, version string, catalog models.Catalog, sel models.Selection, now time.Time) Document {
	if title == "" {
		title = "Menu"
	}
	doc := Document{
		ID:          uuid.NewString(),
		Title:       title,
		Version:     version,
		CreatedAt:   now.UTC(),
		Lines:       make([]Line, 0, len(sel)),
		Total:       menu.Total(catalog, sel),
		Permissions: ViewOnly,
	}
	for _, r := range sel {
		item, ok := menu.Selected(catalog, r)
		if !ok {
			continue
		}
		doc.Lines = append(doc.Lines, Line{Group: r.Group, Label: item.Label, Value: item.Value})
	}
	return doc
}

// Markdown renders the document body.
func (d Document) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", d.Title)
	sb.WriteString("| Group | Item | Value |\n|---:|---|---:|\n")
	for _, l := range d.Lines {
		label := l.Label
		if label == "" {
			label = "(blank)"
		}
		fmt.Fprintf(&sb, "| %d | %s | %s |\n", l.Group, strings.ReplaceAll(label, "|", `\|`), input.FormatValue(l.Value))
	}
	fmt.Fprintf(&sb, "\n**Total: %s**\n\n", input.FormatValue(d.Total))
	fmt.Fprintf(&sb, "_%s · %s · view only_\n", d.Version, d.CreatedAt.Format("2006-01-02 15:04"))
	return sb.String()
}

// FileName is the receipt file name for d.
func (d Document) FileName() string {
	return "menu-" + d.ID + FileExt
}

// Seal encrypts the document: magic || salt || nonce || ciphertext.
func Seal(doc Document, password string) ([]byte, error) {
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	key, salt, err := crypto.DeriveKeyFromPassphrase(password)
	if err != nil {
		return nil, err
	}
	body, err := crypto.Encrypt(key, data)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(ReceiptMagic)+len(salt)+len(body))
	out = append(out, ReceiptMagic...)
	out = append(out, salt...)
	return append(out, body...), nil
}

// Open decrypts a sealed receipt.
func Open(blob []byte, password string) (*Document, error) {
	if !crypto.HasMagic(ReceiptMagic, blob) {
		return nil, crypto.ErrInvalidHeader
	}
	rest := blob[len(ReceiptMagic):]
	if len(rest) < crypto.SaltLen {
		return nil, crypto.ErrShortBlob
	}
	key, err := crypto.DeriveKeyFromPassphraseWithSalt(password, rest[:crypto.SaltLen])
	if err != nil {
		return nil, err
	}
	data, err := crypto.Decrypt(key, rest[crypto.SaltLen:])
	if errors.Is(err, crypto.ErrShortBlob) {
		return nil, err
	}
	if err != nil {
		return nil, ErrWrongPassword
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

// Write seals doc into dir and returns the file path. A failed write
// leaves no file behind.
func Write(dir string, doc Document, password string) (string, error) {
	blob, err := Seal(doc, password)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, doc.FileName())
	tmp, err := os.CreateTemp(dir, ".receipt-*")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", err
	}
	return path, nil
}

// ReadFile opens the receipt at path.
func ReadFile(path, password string) (*Document, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Open(blob, password)
}
