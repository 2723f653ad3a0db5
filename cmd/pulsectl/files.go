package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// readDocument decodes a JSON or YAML file into v, picking the codec by
// extension. JSON numbers are kept as json.Number.
func readDocument(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, v); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	case ".json", "":
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.UseNumber()
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported file type %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
	return nil
}
