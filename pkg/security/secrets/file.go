package secrets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// FileProvider reads secrets from files in a directory, one file per
// secret. Files must be regular files with mode 0600 or 0400.
type FileProvider struct {
	dir     string
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	done    chan struct{}
}

// NewFileProvider creates a provider over dir. With watch set, onChange is
// called after any file in dir is written, created, removed or renamed.
func NewFileProvider(dir string, watch bool, onChange func()) (*FileProvider, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat secrets dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("secrets dir is not a directory: %s", dir)
	}

	p := &FileProvider{dir: dir}
	if !watch {
		return p, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch secrets dir: %w", err)
	}

	p.watcher = watcher
	p.stopCh = make(chan struct{})
	p.done = make(chan struct{})
	go p.watchLoop(onChange)

	slog.Info("watching secrets directory", "path", dir)
	return p, nil
}

// GetSecret implements Provider.
func (p *FileProvider) GetSecret(ctx context.Context, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid secret name %q", name)
	}
	path := filepath.Join(p.dir, name)

	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w in %s", ErrNotFound, p.dir)
		}
		return "", fmt.Errorf("failed to stat secret file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("secret %q is not a regular file", name)
	}
	if mode := info.Mode().Perm(); mode != 0o600 && mode != 0o400 {
		return "", fmt.Errorf("insecure permissions on %s: %o (expected 0600 or 0400)", path, mode)
	}

	// #nosec G304 - name is a single path element inside dir
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Name implements Provider.
func (p *FileProvider) Name() string {
	return "file"
}

// Close stops the directory watcher.
func (p *FileProvider) Close() error {
	if p.watcher == nil {
		return nil
	}
	close(p.stopCh)
	err := p.watcher.Close()
	<-p.done
	return err
}

func (p *FileProvider) watchLoop(onChange func()) {
	defer close(p.done)

	const changed = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename
	for {
		select {
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if event.Op&changed == 0 {
				continue
			}
			slog.Debug("secrets directory changed",
				"file", filepath.Base(event.Name),
				"op", event.Op.String(),
			)
			if onChange != nil {
				onChange()
			}

		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("secrets watcher error", "error", err)

		case <-p.stopCh:
			return
		}
	}
}
