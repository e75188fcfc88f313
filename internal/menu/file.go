package menu

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/marcus/menuboard/internal/models"
	"gopkg.in/yaml.v3"
)

// Catalog file formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// catalogFile is the YAML document layout.
type catalogFile struct {
	Items []models.MenuItem `yaml:"items"`
}

// Validate checks a catalog loaded from outside the application.
func Validate(catalog models.Catalog) error {
	if len(catalog) == 0 {
		return errors.New("catalog is empty")
	}
	for i, it := range catalog {
		if !it.Group.Valid() {
			return fmt.Errorf("item %d: group %d outside %d..%d", i+1, it.Group, models.MinGroup, models.MaxGroup)
		}
		if math.IsNaN(it.Value) || math.IsInf(it.Value, 0) {
			return fmt.Errorf("item %d: value is not a finite number", i+1)
		}
	}
	return nil
}

// EncodeCatalog renders catalog in the given format.
func EncodeCatalog(catalog models.Catalog, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(catalog, "", "  ")
	case FormatYAML, "":
		return yaml.Marshal(catalogFile{Items: catalog})
	default:
		return nil, fmt.Errorf("unknown catalog format %q", format)
	}
}

// DecodeCatalog parses a catalog file. JSON is detected by a leading '['
// (the local record shape); everything else is read as YAML.
func DecodeCatalog(data []byte) (models.Catalog, error) {
	trimmed := bytes.TrimSpace(data)
	var catalog models.Catalog
	if bytes.HasPrefix(trimmed, []byte("[")) {
		if err := json.Unmarshal(trimmed, &catalog); err != nil {
			return nil, fmt.Errorf("parse json catalog: %w", err)
		}
	} else {
		var f catalogFile
		if err := yaml.Unmarshal(trimmed, &f); err != nil {
			return nil, fmt.Errorf("parse yaml catalog: %w", err)
		}
		catalog = f.Items
	}
	if err := Validate(catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}
