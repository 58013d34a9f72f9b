package schemafile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// LoadParams reads a request params document (JSON or YAML by extension)
// into the mapping shape validation expects.
func LoadParams(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read params: %w", err)
	}
	format := YAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = JSON
	}
	return ParseParams(data, format)
}

// ParseParams decodes a params document. The top level must be a mapping.
func ParseParams(data []byte, format Format) (map[string]any, error) {
	params := map[string]any{}
	switch format {
	case JSON:
		key, dup, err := DuplicateKey(data)
		if err != nil {
			return nil, fmt.Errorf("parse params: %w", err)
		}
		if dup {
			return nil, fmt.Errorf("parse params: duplicate key %q", key)
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&params); err != nil {
			return nil, fmt.Errorf("parse params: %w", err)
		}
		Normalize(params)
	default:
		if err := yaml.Unmarshal(data, &params); err != nil {
			return nil, fmt.Errorf("parse params: %w", err)
		}
	}
	return params, nil
}
