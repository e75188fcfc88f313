// Package input provides helpers for user-entered values: tolerant parsing
// of numbers typed one keystroke at a time, and reading file arguments from
// disk or stdin (- and @file syntax).
package input

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// IsPending reports whether text is a half-typed number that should be held
// as raw text rather than coerced: empty, a lone sign, a lone decimal point,
// or a number with a trailing decimal point.
func IsPending(text string) bool {
	s := strings.TrimSpace(text)
	switch s {
	case "", "-", "+", ".", "-.", "+.":
		return true
	}
	if strings.HasSuffix(s, ".") {
		_, ok := parseFinite(strings.TrimSuffix(s, "."))
		return ok
	}
	return false
}

// ParseValue returns the number text resolves to. ok is false while text is
// pending or invalid, in which case the caller keeps the previous value.
func ParseValue(text string) (v float64, ok bool) {
	if IsPending(text) {
		return 0, false
	}
	return parseFinite(strings.TrimSpace(text))
}

// CommitValue is used when editing ends: the parsed number, or 0 when the
// final text is not a finite number.
func CommitValue(text string) float64 {
	s := strings.TrimSpace(text)
	s = strings.TrimSuffix(s, ".")
	if v, ok := parseFinite(s); ok {
		return v
	}
	return 0
}

// FormatValue renders v without trailing zeros ("1.5", "3").
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ReadSource reads the content named by ref: "-" reads stdin, "@path" and
// plain paths read the file.
func ReadSource(ref string, stdin io.Reader) ([]byte, error) {
	if ref == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	path := strings.TrimPrefix(ref, "@")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
