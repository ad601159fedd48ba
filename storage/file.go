// storage/file.go

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"account-ledger/model"
)

// FileStore implements the Store interface over a single JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore backed by the file at path. The file need not exist yet.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the location of the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the ledger from disk. A missing file is an empty ledger;
// anything that does not decode into the record schema is ErrStorageCorrupt.
func (s *FileStore) Load(ctx context.Context) (model.Ledger, error) {
	if err := ctx.Err(); err != nil {
		return model.Ledger{}, unavailable("load", err)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.Ledger{}, nil
		}
		return model.Ledger{}, unavailable("read "+s.path, err)
	}

	var records []accountRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return model.Ledger{}, corrupt("decode %s: %v", s.path, err)
	}
	return fromRecords(records)
}

// Save writes the whole ledger to a temporary file in the same directory and
// renames it over the target, so readers only ever see a complete ledger.
func (s *FileStore) Save(ctx context.Context, l model.Ledger) error {
	if err := ctx.Err(); err != nil {
		return unavailable("save", err)
	}

	data, err := json.MarshalIndent(toRecords(l), "", "    ")
	if err != nil {
		return unavailable("encode ledger", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return unavailable("create temp file", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return unavailable("write "+tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return unavailable("sync "+tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return unavailable("close "+tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return unavailable("rename "+tmpName, err)
	}
	committed = true
	return nil
}
