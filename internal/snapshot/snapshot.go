package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"ims/internal/models"
)

// ErrInvalidSnapshot is returned when a snapshot file fails schema
// validation and cannot be trusted as session state.
var ErrInvalidSnapshot = errors.New("snapshot does not match the expected structure")

const schemaText = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["name", "categories"],
    "properties": {
      "name": {"type": "string", "minLength": 1},
      "categories": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["name", "tasks"],
          "properties": {
            "name": {"type": "string"},
            "tasks": {
              "type": "array",
              "items": {
                "type": "object",
                "required": ["name", "inputs"],
                "properties": {
                  "name": {"type": "string"},
                  "description": {"type": "string"},
                  "inputs": {
                    "type": "object",
                    "additionalProperties": {"type": "string"}
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

var schema = jsonschema.MustCompileString("snapshot.schema.json", schemaText)

// Path derives the snapshot filename for a workbook: same directory, same
// stem, ".json" extension.
func Path(workbookPath string) string {
	stem := strings.TrimSuffix(workbookPath, filepath.Ext(workbookPath))
	return stem + ".json"
}

// Save writes the sheet tree as indented JSON.
func Save(path string, sheets []models.Sheet) error {
	data, err := json.MarshalIndent(sheets, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot file, validates it against the embedded schema and
// decodes the sheet tree. A file that fails validation is rejected whole.
func Load(path string) ([]models.Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	var sheets []models.Sheet
	if err := json.Unmarshal(data, &sheets); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return sheets, nil
}

// Remove deletes a snapshot file. A snapshot that is already gone is not
// an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove snapshot: %w", err)
	}
	return nil
}
