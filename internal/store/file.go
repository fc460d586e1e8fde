package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"pin-mapper/internal/pin"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// FileStore keeps one definition file per composite in a directory. The file
// name is the composite id plus the extension of the format.
type FileStore struct {
	dir    string
	format Format
	logger *zap.Logger
}

// NewFileStore returns a store rooted at dir. The directory is created on
// the first Save.
func NewFileStore(dir string, format Format, logger *zap.Logger) (*FileStore, error) {
	if !format.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &FileStore{
		dir:    dir,
		format: format,
		logger: logger.Named("store").With(zap.String("dir", dir)),
	}, nil
}

// Path returns the file that holds the composite.
func (s *FileStore) Path(compositeID string) string {
	return filepath.Join(s.dir, compositeID+s.format.Ext())
}

// Load reads the definition of a composite.
func (s *FileStore) Load(compositeID string) (pin.CompositeDefinition, error) {
	if err := checkID(compositeID); err != nil {
		return pin.CompositeDefinition{}, err
	}

	def, err := LoadFile(s.Path(compositeID))
	if errors.Is(err, fs.ErrNotExist) {
		return pin.CompositeDefinition{}, fmt.Errorf("%w: %s", ErrNotFound, compositeID)
	}

	return def, err
}

// Save writes the definition, replacing any previous file.
func (s *FileStore) Save(def pin.CompositeDefinition) error {
	if err := checkID(def.CompositeID); err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	path := s.Path(def.CompositeID)
	if err := WriteFile(def, path); err != nil {
		return err
	}

	s.logger.Debug("composite saved", zap.String("composite", def.CompositeID), zap.Int("pins", len(def.VirtualPins)))

	return nil
}

// List returns the ids of all stored composites, sorted.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading store directory: %w", err)
	}

	var ids []string

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		if id, ok := strings.CutSuffix(e.Name(), s.format.Ext()); ok && id != "" {
			ids = append(ids, id)
		}
	}

	slices.Sort(ids)

	return ids, nil
}

// Delete removes the file of a composite.
func (s *FileStore) Delete(compositeID string) error {
	if err := checkID(compositeID); err != nil {
		return err
	}

	err := os.Remove(s.Path(compositeID))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, compositeID)
	}

	if err != nil {
		return fmt.Errorf("failed to delete composite %s: %w", compositeID, err)
	}

	s.logger.Debug("composite deleted", zap.String("composite", compositeID))

	return nil
}

// LoadFile reads a definition file. The format follows the extension.
func LoadFile(path string) (pin.CompositeDefinition, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return pin.CompositeDefinition{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return pin.CompositeDefinition{}, fmt.Errorf("failed to read composite file %s: %w", path, err)
	}

	return Decode(data, format)
}

// WriteFile writes a definition file. The format follows the extension.
func WriteFile(def pin.CompositeDefinition, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	data, err := Encode(def, format)
	if err != nil {
		return fmt.Errorf("failed to marshal composite: %w", err)
	}

	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("failed to write composite file %s: %w", path, err)
	}

	return nil
}
