package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var errInvalidID = errors.New("invalid record id")

// collection stores one JSON file per record under dir.
type collection[T any] struct {
	dir string
}

func newCollection[T any](root, name string) collection[T] {
	return collection[T]{dir: filepath.Join(root, name)}
}

func (c collection[T]) path(id string) (string, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return "", errInvalidID
	}

	return filepath.Join(c.dir, id+".json"), nil
}

// load returns fs.ErrNotExist for missing records.
func (c collection[T]) load(id string) (*T, error) {
	filePath, err := c.path(id)
	if err != nil {
		return nil, fs.ErrNotExist
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var record T
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", filePath, err)
	}

	return &record, nil
}

// save writes to a temporary file first so readers never observe a partial record.
func (c collection[T]) save(id string, record *T) error {
	filePath, err := c.path(id)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(c.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", c.dir, err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", id, err)
	}

	tmp, err := os.CreateTemp(c.dir, "."+id+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", id, err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to write record %s: %w", id, err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to write record %s: %w", id, err)
	}

	return os.Rename(tmp.Name(), filePath)
}

// remove returns fs.ErrNotExist for missing records.
func (c collection[T]) remove(id string) error {
	filePath, err := c.path(id)
	if err != nil {
		return fs.ErrNotExist
	}

	return os.Remove(filePath)
}

func (c collection[T]) all() ([]*T, error) {
	files, err := fs.Glob(os.DirFS(c.dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", c.dir, err)
	}

	records := make([]*T, 0, len(files))

	for _, name := range files {
		record, err := c.load(strings.TrimSuffix(name, ".json"))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}

		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, nil
}
