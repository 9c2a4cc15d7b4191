package history

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/schemaplan/schemaplan/schema"
)

// ModelFormat selects the serialization of model files.
type ModelFormat string

const (
	FormatJSON ModelFormat = "json"
	FormatYAML ModelFormat = "yaml"
)

// ParseModelFormat resolves a format name.
func ParseModelFormat(name string) (ModelFormat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported model format: %s", name)
	}
}

// LoadModels reads every model file from the models directory, one table
// per file, sorted by file name for a stable declaration order.
func (s *Store) LoadModels() ([]schema.Table, error) {
	entries, err := afero.ReadDir(s.fs, s.modelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read models directory %s: %w", s.modelsDir, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".json", ".yaml", ".yml":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	tables := make([]schema.Table, 0, len(names))
	for _, name := range names {
		data, err := afero.ReadFile(s.fs, filepath.Join(s.modelsDir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read model %s: %w", name, err)
		}
		table, err := decodeModel(name, data)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, nil
}

// SaveModel writes a table definition as a model file named after the
// table.
func (s *Store) SaveModel(table schema.Table, format ModelFormat) (string, error) {
	if err := s.EnsureLayout(); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s.%s", table.Name, format)
	data, err := encodeModel(table, format)
	if err != nil {
		return "", fmt.Errorf("failed to encode model %s: %w", table.Name, err)
	}
	path := filepath.Join(s.modelsDir, name)
	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write model %s: %w", name, err)
	}
	return name, nil
}

// decodeModel parses one model file into a table. YAML documents are
// bridged through JSON so both formats share the same field handling.
func decodeModel(name string, data []byte) (schema.Table, error) {
	var table schema.Table
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		var doc interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return table, fmt.Errorf("failed to parse model %s: %w", name, err)
		}
		jsonData, err := json.Marshal(normalizeYAML(doc))
		if err != nil {
			return table, fmt.Errorf("failed to convert model %s: %w", name, err)
		}
		data = jsonData
	}
	if err := json.Unmarshal(data, &table); err != nil {
		return table, fmt.Errorf("failed to parse model %s: %w", name, err)
	}
	return table, nil
}

// encodeModel renders one table in the requested format.
func encodeModel(table schema.Table, format ModelFormat) ([]byte, error) {
	jsonData, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return nil, err
	}
	if format == FormatJSON {
		return append(jsonData, '\n'), nil
	}
	var doc interface{}
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

// normalizeYAML converts YAML decoding artifacts into JSON-compatible
// values. yaml.v3 already keys maps by string; nested slices still need
// the recursive walk.
func normalizeYAML(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = normalizeYAML(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalizeYAML(item)
		}
		return out
	default:
		return v
	}
}
