package input

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		text   string
		want   float64
		wantOK bool
	}{
		{"", 0, false},
		{"-", 0, false},
		{".", 0, false},
		{"-.", 0, false},
		{"12.", 0, false},
		{"12", 12, true},
		{"-3.5", -3.5, true},
		{" 7 ", 7, true},
		{".5", 0.5, true},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseValue(tt.text)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseValue(%q) = %v, %v; want %v, %v", tt.text, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestIsPending(t *testing.T) {
	pending := []string{"", "-", ".", "-.", "4.", "-4."}
	for _, s := range pending {
		if !IsPending(s) {
			t.Errorf("IsPending(%q) = false, want true", s)
		}
	}
	settled := []string{"4", "4.2", "x.", "abc"}
	for _, s := range settled {
		if IsPending(s) {
			t.Errorf("IsPending(%q) = true, want false", s)
		}
	}
}

func TestCommitValue(t *testing.T) {
	tests := map[string]float64{
		"":      0,
		"-":     0,
		"8.":    8,
		"2.25":  2.25,
		"junk":  0,
		"1e400": 0,
	}
	for text, want := range tests {
		if got := CommitValue(text); got != want {
			t.Errorf("CommitValue(%q) = %v, want %v", text, got, want)
		}
	}
}

func TestFormatValue(t *testing.T) {
	if got := FormatValue(1.5); got != "1.5" {
		t.Errorf("FormatValue(1.5) = %q", got)
	}
	if got := FormatValue(30); got != "30" {
		t.Errorf("FormatValue(30) = %q", got)
	}
}

func TestReadSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "menu.yaml")
	if err := os.WriteFile(path, []byte("items: []"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, ref := range []string{path, "@" + path} {
		data, err := ReadSource(ref, nil)
		if err != nil {
			t.Fatalf("ReadSource(%q): %v", ref, err)
		}
		if string(data) != "items: []" {
			t.Errorf("ReadSource(%q) = %q", ref, data)
		}
	}

	data, err := ReadSource("-", strings.NewReader("from stdin"))
	if err != nil || string(data) != "from stdin" {
		t.Errorf("ReadSource(-) = %q, %v", data, err)
	}

	if _, err := ReadSource(filepath.Join(dir, "missing"), nil); err == nil {
		t.Error("expected error for missing file")
	}
}
