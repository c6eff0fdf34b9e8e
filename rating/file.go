package rating

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileBackend keeps every record in one YAML file, a mapping from player id
// to record. Each save rewrites the whole file.
type FileBackend struct {
	path string

	mu      sync.Mutex
	records map[string]Record
	// unwritable is set when an unreadable file could not be moved aside;
	// saving would overwrite it.
	unwritable error
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path, records: map[string]Record{}}
}

func (b *FileBackend) Name() string { return "yaml" }

// BackupPath is where an unreadable ratings file is moved before a fresh
// one is written.
func (b *FileBackend) BackupPath() string {
	return b.path + ".bak"
}

// Load reads the file. A missing file is created empty. A file that does
// not parse is moved to BackupPath and an error is returned; later saves
// start a new file.
func (b *FileBackend) Load(ctx context.Context) (map[string]Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		b.records = map[string]Record{}
		return map[string]Record{}, b.writeLocked()
	}
	if err != nil {
		return nil, err
	}
	recs := map[string]Record{}
	if err := yaml.Unmarshal(data, &recs); err != nil {
		b.records = map[string]Record{}
		if rerr := os.Rename(b.path, b.BackupPath()); rerr != nil {
			b.unwritable = fmt.Errorf("%s is unreadable and could not be moved aside: %w", b.path, rerr)
			return nil, errors.Join(fmt.Errorf("parsing %s: %w", b.path, err), rerr)
		}
		return nil, fmt.Errorf("parsing %s (moved to %s): %w", b.path, b.BackupPath(), err)
	}
	b.unwritable = nil
	b.records = recs
	return maps.Clone(recs), nil
}

func (b *FileBackend) Save(ctx context.Context, playerID string, rec Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.unwritable != nil {
		return b.unwritable
	}
	b.records[playerID] = rec
	return b.writeLocked()
}

// writeLocked replaces the file through a temp file in the same directory.
func (b *FileBackend) writeLocked() error {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(b.records)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".ratings-*.yaml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), b.path)
}

func (b *FileBackend) Close() error { return nil }
