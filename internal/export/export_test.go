package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/marcus/menuboard/internal/crypto"
	"github.com/marcus/menuboard/internal/menu"
	"github.com/marcus/menuboard/internal/models"
)

func sampleDoc() Document {
	catalog := menu.Default()
	sel := models.Selection{{Group: 1, Index: 1}, {Group: 2, Index: 0}, {Group: 3, Index: 2}}
	return Build("", "v2.1.004", catalog, sel, time.Date(2026, 3, 1, 18, 30, 0, 0, time.UTC))
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		pw   string
		want error
	}{
		{"", ErrPasswordTooShort},
		{"abc", ErrPasswordTooShort},
		{"abcd", nil},
		{"日本語字", nil},
	}
	for _, tt := range tests {
		if got := ValidatePassword(tt.pw); !errors.Is(got, tt.want) {
			t.Errorf("ValidatePassword(%q) = %v, want %v", tt.pw, got, tt.want)
		}
	}
}

func TestSentinelErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrPasswordTooShort, "password must be at least 4 characters"},
		{ErrWrongPassword, "wrong password or damaged receipt"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("message = %q, want %q", got, tt.want)
		}
	}
}

func TestBuild(t *testing.T) {
	doc := sampleDoc()
	if doc.Title != "Menu" {
		t.Errorf("Title = %q", doc.Title)
	}
	if doc.Total != 13 {
		t.Errorf("Total = %v, want 13", doc.Total)
	}
	if len(doc.Lines) != 3 || doc.Lines[2].Value != 10 {
		t.Errorf("Lines = %+v", doc.Lines)
	}
	if doc.Permissions != ViewOnly {
		t.Errorf("Permissions = %+v, want view only", doc.Permissions)
	}
	if !strings.HasPrefix(doc.FileName(), "menu-") || !strings.HasSuffix(doc.FileName(), FileExt) {
		t.Errorf("FileName = %q", doc.FileName())
	}
}

func TestMarkdown(t *testing.T) {
	md := sampleDoc().Markdown()
	for _, want := range []string{"# Menu", "**Total: 13**", "v2.1.004", "view only"} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown missing %q:\n%s", want, md)
		}
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	doc := sampleDoc()
	blob, err := Seal(doc, "hunter2")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if !crypto.HasMagic(ReceiptMagic, blob) {
		t.Fatal("receipt lacks magic")
	}

	got, err := Open(blob, "hunter2")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if diff := cmp.Diff(doc, *got); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestSealUsesFreshSalt(t *testing.T) {
	a, err := Seal(sampleDoc(), "hunter2")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	b, err := Seal(sampleDoc(), "hunter2")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	saltA := a[len(ReceiptMagic) : len(ReceiptMagic)+crypto.SaltLen]
	saltB := b[len(ReceiptMagic) : len(ReceiptMagic)+crypto.SaltLen]
	if bytes.Equal(saltA, saltB) {
		t.Error("two receipts share a salt")
	}
	for _, blob := range [][]byte{a, b} {
		if _, err := Open(blob, "hunter2"); err != nil {
			t.Errorf("Open: %v", err)
		}
	}
}

func TestOpenFailures(t *testing.T) {
	blob, err := Seal(sampleDoc(), "hunter2")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	if _, err := Open(blob, "wrong-pass"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("wrong password: got %v", err)
	}
	if _, err := Open(append([]byte("MNB1"), blob[4:]...), "hunter2"); !errors.Is(err, crypto.ErrInvalidHeader) {
		t.Errorf("foreign magic: got %v", err)
	}
	if _, err := Open(blob[:10], "hunter2"); !errors.Is(err, crypto.ErrShortBlob) {
		t.Errorf("truncated: got %v", err)
	}
}

func TestSealRejectsShortPassword(t *testing.T) {
	if _, err := Seal(sampleDoc(), "abc"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("Seal: got %v", err)
	}
}

func TestWriteReadFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "receipts")
	doc := sampleDoc()

	path, err := Write(dir, doc, "s3cret")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(path) != doc.FileName() {
		t.Errorf("path = %q", path)
	}

	got, err := ReadFile(path, "s3cret")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.ID != doc.ID || got.Total != doc.Total {
		t.Errorf("ReadFile = %+v", got)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want only the receipt", len(entries))
	}
}

func TestWriteShortPasswordLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	if _, err := Write(dir, sampleDoc(), "no"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("Write: got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("dir has %d entries after failed export", len(entries))
	}
}
