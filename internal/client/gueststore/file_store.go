package gueststore

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"kinderstep-backend/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/goccy/go-json"
)

// FileStore persists every key in one JSON document. Writes go to a temp file
// that is renamed over the original, so readers never see a torn file.
type FileStore struct {
	path string

	mu      sync.RWMutex
	data    map[string]string
	written []byte // last content this process wrote
}

// OpenFileStore loads path. A missing or corrupt file yields an empty store.
func OpenFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	fs := &FileStore{path: path, data: make(map[string]string)}
	fs.reload(true)
	return fs, nil
}

func (f *FileStore) Path() string { return f.path }

// reload replaces the in-memory copy with the file contents and reports
// whether they differ from what this process last wrote.
func (f *FileStore) reload(force bool) bool {
	raw, err := os.ReadFile(f.path)
	if err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Str("path", f.path).Msg("Guest state unreadable, starting empty")
	}

	data := make(map[string]string)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			logger.Warn().Err(err).Str("path", f.path).Msg("Guest state corrupt, starting empty")
			data = make(map[string]string)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !force && bytes.Equal(raw, f.written) {
		return false
	}
	f.data = data
	f.written = raw
	return true
}

func (f *FileStore) Get(key string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.data[key]
	return v, ok
}

func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.data[key]
	f.data[key] = value
	if err := f.flushLocked(); err != nil {
		if had {
			f.data[key] = prev
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

func (f *FileStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.data[key]
	if !had {
		return nil
	}
	delete(f.data, key)
	if err := f.flushLocked(); err != nil {
		f.data[key] = prev
		return err
	}
	return nil
}

func (f *FileStore) flushLocked() error {
	raw, err := json.Marshal(f.data)
	if err != nil {
		return fmt.Errorf("encode guest state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("write guest state: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write guest state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write guest state: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace guest state: %w", err)
	}
	f.written = raw
	return nil
}

// Watch calls onChange after another process rewrote the state file. The
// directory is watched because atomic renames replace the file's inode.
func (f *FileStore) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(f.path), err)
	}

	target := filepath.Clean(f.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			if f.reload(false) {
				logger.Debug().Str("path", f.path).Str("op", event.Op.String()).Msg("Guest state changed on disk")
				onChange()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("Guest state watcher error")
		}
	}
}
