package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// errCorruptFile marks a store file that exists but is not a JSON object.
var errCorruptFile = errors.New("store file is not a JSON object")

// FileKV keeps all keys in one JSON object file. Writes go to a temp file in
// the same directory which is then renamed over the original.
type FileKV struct {
	path string
	mu   sync.Mutex
}

// NewFileKV returns a store backed by the JSON file at path. The file is
// created on the first Set.
func NewFileKV(path string) *FileKV {
	return &FileKV{path: path}
}

// Path returns the backing file location.
func (f *FileKV) Path() string { return f.path }

// BackupPath is where Set moves a store file it cannot parse.
func (f *FileKV) BackupPath() string { return f.path + ".bak" }

func (f *FileKV) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.readAll()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

func (f *FileKV) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.readAll()
	if errors.Is(err, errCorruptFile) {
		// Keep the unparseable file next to the new one instead of losing it.
		if err := os.Rename(f.path, f.BackupPath()); err != nil {
			return fmt.Errorf("moving aside corrupt store file: %w", err)
		}
		data = make(map[string]string)
	} else if err != nil {
		return err
	}
	data[key] = value

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling store: %w", err)
	}
	return writeFileAtomic(f.path, raw)
}

func (f *FileKV) Close() error { return nil }

func (f *FileKV) readAll() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading store file: %w", err)
	}
	data := make(map[string]string)
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w: %v", f.path, errCorruptFile, err)
	}
	return data, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing store file: %w", err)
	}
	return nil
}
