package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/marcus/menuboard/internal/menu"
	"github.com/marcus/menuboard/internal/models"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Stdout
	Stdout = &buf
	t.Cleanup(func() { Stdout = prev })
	return &buf
}

func TestMessages(t *testing.T) {
	buf := capture(t)
	Success("saved %d items", 3)
	Error("boom")
	Warning("careful")
	Info("plain %s", "text")

	out := buf.String()
	for _, want := range []string{"saved 3 items", "ERROR: boom", "Warning: careful", "plain text"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestJSON(t *testing.T) {
	buf := capture(t)
	if err := JSON(models.Row{Group: 2, Index: 1}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"group": 2`) {
		t.Errorf("JSON output = %s", buf.String())
	}
}

func TestMenuTable(t *testing.T) {
	catalog := menu.Default()
	sel := models.Selection{{Group: 1, Index: 1}, {Group: 2, Index: 0}, {Group: 3, Index: 2}}
	out := MenuTable(catalog, sel)

	for _, want := range []string{"Group 1", "Group 3", "Total: 13", "● "} {
		if !strings.Contains(out, want) {
			t.Errorf("MenuTable missing %q", want)
		}
	}
	if n := strings.Count(out, "● "); n != 3 {
		t.Errorf("selected markers = %d, want 3", n)
	}
}

func TestItemLineBlankLabel(t *testing.T) {
	line := ItemLine(0, models.MenuItem{Group: 1}, false)
	if !strings.Contains(line, "(blank)") || !strings.Contains(line, "  1.") {
		t.Errorf("ItemLine = %q", line)
	}
}

func TestFormatTimeAgo(t *testing.T) {
	now := time.Now()
	tests := []struct {
		at   time.Time
		want string
	}{
		{now, "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-50 * time.Hour), "2d ago"},
	}
	for _, tt := range tests {
		if got := FormatTimeAgo(tt.at); got != tt.want {
			t.Errorf("FormatTimeAgo(%v) = %q, want %q", tt.at, got, tt.want)
		}
	}
}

func TestRenderMarkdownEmpty(t *testing.T) {
	out, err := RenderMarkdownWithWidth("   ", 80)
	if err != nil || out != "" {
		t.Errorf("RenderMarkdownWithWidth(blank) = %q, %v", out, err)
	}
}

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdownWithWidth("# Menu\n\n**Total: 13**\n", 10)
	if err != nil {
		t.Fatalf("RenderMarkdownWithWidth: %v", err)
	}
	if !strings.Contains(out, "Total: 13") {
		t.Errorf("rendered = %q", out)
	}
}
