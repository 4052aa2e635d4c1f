package settings

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the on-disk encoding of the settings record.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the encoding from a file name. Anything that is not
// .yaml/.yml is JSON, matching the plugin's data.json.
func FormatFor(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Decode parses data on top of the defaults, so missing fields keep their
// default values. Empty input yields the defaults.
func Decode(data []byte, f Format) (Settings, error) {
	s := Default()
	if len(strings.TrimSpace(string(data))) == 0 {
		return s, nil
	}
	var err error
	switch f {
	case FormatYAML:
		err = yaml.Unmarshal(data, &s)
	default:
		err = json.Unmarshal(data, &s)
	}
	if err != nil {
		return Settings{}, fmt.Errorf("settings: decode %s: %w", f, err)
	}
	return s, nil
}

// Encode serializes s in the given format.
func Encode(s Settings, f Format) ([]byte, error) {
	if f == FormatYAML {
		out, err := yaml.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("settings: encode yaml: %w", err)
		}
		return out, nil
	}
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("settings: encode json: %w", err)
	}
	return append(out, '\n'), nil
}
