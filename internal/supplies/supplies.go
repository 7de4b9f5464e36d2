// Package supplies loads the hand-maintained lookup tables that steer
// generation. Tables are JSON or YAML objects; each load writes the file
// back sorted by key so diffs stay reviewable.
package supplies

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// ShortNames maps undotted type names to canonical identifiers.
type ShortNames map[string]string

// Arity maps generic type names to their type parameter count.
type Arity map[string]int

type codec struct {
	unmarshal func([]byte, any) error
	marshal   func(any) ([]byte, error)
}

var jsonCodec = codec{
	unmarshal: json.Unmarshal,
	marshal: func(v any) ([]byte, error) {
		// encoding/json sorts map keys.
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	},
}

var yamlCodec = codec{
	unmarshal: yaml.Unmarshal,
	marshal: func(v any) ([]byte, error) {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	},
}

func codecFor(path string) (codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return jsonCodec, nil
	case ".yaml", ".yml":
		return yamlCodec, nil
	default:
		return codec{}, errors.Errorf("supply table %s: unsupported format", path)
	}
}

// Load reads the table at path and rewrites it sorted by key when its
// bytes differ from the canonical encoding.
func Load[V any](path string) (map[string]V, error) {
	c, err := codecFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("read supply table: %w", err)
	}

	table := map[string]V{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := c.unmarshal(data, &table); err != nil {
			return nil, errors.Errorf("decode supply table %s: %w", path, err)
		}
	}

	sorted, err := c.marshal(table)
	if err != nil {
		return nil, errors.Errorf("encode supply table %s: %w", path, err)
	}
	if !bytes.Equal(sorted, data) {
		if err := os.WriteFile(path, sorted, 0o644); err != nil {
			return nil, errors.Errorf("rewrite supply table: %w", err)
		}
	}
	return table, nil
}

// LoadShortNames reads a short name override table.
func LoadShortNames(path string) (ShortNames, error) {
	return Load[string](path)
}

// LoadArity reads a generic arity table. Counts must be positive.
func LoadArity(path string) (Arity, error) {
	table, err := Load[int](path)
	if err != nil {
		return nil, err
	}
	for name, n := range table {
		if n <= 0 {
			return nil, errors.Errorf("supply table %s: %s has arity %d", path, name, n)
		}
	}
	return table, nil
}
