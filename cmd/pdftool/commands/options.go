package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go-pdftools/internal/processor"

	"gopkg.in/yaml.v3"
)

// loadOptions reads the YAML options file, if any, and applies key=value
// overrides on top. Override values are parsed as JSON when they can be,
// so "angle=90" gives a number and "pages=[1,3]" a list.
func loadOptions(path string, sets []string) (processor.Options, error) {
	opts := processor.Options{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read options: %w", err)
		}
		if err := yaml.Unmarshal(data, &opts); err != nil {
			return nil, fmt.Errorf("parse options %s: %w", path, err)
		}
		if opts == nil {
			opts = processor.Options{}
		}
	}
	for _, s := range sets {
		key, value, ok := strings.Cut(s, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("option %q: expected key=value", s)
		}
		opts[key] = parseValue(value)
	}
	return opts, nil
}

func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}
