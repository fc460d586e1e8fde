// Package store persists composite definitions. A ResourceManager loads and
// saves one definition per composite id; FileStore keeps them as JSON or YAML
// files in a directory, SQLiteStore keeps them as JSON documents in a
// database. Both satisfy engine.Persister.
//
// Stores only decode and encode. Definitions are validated when they are
// opened by the engine.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"pin-mapper/internal/pin"
)

var (
	ErrNotFound      = errors.New("composite not found")
	ErrInvalidID     = errors.New("invalid composite id")
	ErrUnknownFormat = errors.New("unknown format")
)

// ResourceManager is the persistence collaborator of the engine.
type ResourceManager interface {
	Load(compositeID string) (pin.CompositeDefinition, error)
	Save(def pin.CompositeDefinition) error
	List() ([]string, error)
	Delete(compositeID string) error
}

// Format is the encoding of a definition file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// IsValid returns true if the format is a recognized value.
func (f Format) IsValid() bool {
	return f == FormatJSON || f == FormatYAML
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	if f == FormatYAML {
		return ".yaml"
	}

	return ".json"
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Decode parses a definition in the given format.
func Decode(data []byte, format Format) (pin.CompositeDefinition, error) {
	var def pin.CompositeDefinition

	var err error

	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &def)
	case FormatYAML:
		err = yaml.Unmarshal(data, &def)
	default:
		return def, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if err != nil {
		return pin.CompositeDefinition{}, fmt.Errorf("failed to parse composite %s: %w", format, err)
	}

	return def, nil
}

// Encode serializes a definition in the given format.
func Encode(def pin.CompositeDefinition, format Format) ([]byte, error) {
	if def.VirtualPins == nil {
		def.VirtualPins = []pin.VirtualPinConfig{}
	}

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(def, "", "  ")
		if err != nil {
			return nil, err
		}

		return append(data, '\n'), nil
	case FormatYAML:
		return yaml.Marshal(def)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// checkID rejects ids that cannot name a file inside the store directory.
func checkID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	return nil
}
