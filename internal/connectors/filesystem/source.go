// Package filesystem reads knowledge source files from a local directory tree.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
	"github.com/wevysya/voiceos/internal/logger"
)

// DefaultMaxFileSize skips files larger than this many bytes.
const DefaultMaxFileSize = 1 << 20

// Ensure Source implements the interface.
var _ driven.FileSource = (*Source)(nil)

// Source walks a directory for files accepted by a filter.
type Source struct {
	root        string
	accept      func(path string) bool
	maxFileSize int64
}

// New creates a source rooted at root. accept selects files by path; a nil
// accept takes every regular file.
func New(root string, accept func(path string) bool) *Source {
	if accept == nil {
		accept = func(string) bool { return true }
	}
	return &Source{root: root, accept: accept, maxFileSize: DefaultMaxFileSize}
}

// Root returns the directory being read.
func (s *Source) Root() string {
	return s.root
}

// Validate checks the root exists and is a directory.
func (s *Source) Validate() error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, s.root)
	}
	return nil
}

// Files returns every accepted file under the root, ordered by RelPath.
// Hidden files and directories are skipped, as are files over the size limit.
func (s *Source) Files(ctx context.Context) ([]domain.SourceFile, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var files []domain.SourceFile
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if path != s.root && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		f, ok, err := s.read(path)
		if err != nil {
			return err
		}
		if ok {
			files = append(files, f)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", s.root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// read loads path if it is accepted and within the size limit.
func (s *Source) read(path string) (domain.SourceFile, bool, error) {
	if !s.accept(path) {
		return domain.SourceFile{}, false, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return domain.SourceFile{}, false, err
	}
	if info.Size() > s.maxFileSize {
		logger.Warn("Skipping %s: %d bytes exceeds limit", path, info.Size())
		return domain.SourceFile{}, false, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.SourceFile{}, false, err
	}
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return domain.SourceFile{}, false, err
	}
	return domain.SourceFile{
		Path:    path,
		RelPath: filepath.ToSlash(rel),
		Content: content,
		ModTime: info.ModTime(),
	}, true, nil
}

// Watch calls onChange for each accepted file created or written under the
// root until ctx is done. Directories created after Watch starts are watched too.
func (s *Source) Watch(ctx context.Context, onChange func(domain.SourceFile)) error {
	if err := s.Validate(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := s.addDirs(watcher, s.root); err != nil {
		return err
	}
	logger.Debug("Watching %s for knowledge changes", s.root)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			s.handleEvent(watcher, event, onChange)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Knowledge watcher: %v", err)
		}
	}
}

func (s *Source) handleEvent(watcher *fsnotify.Watcher, event fsnotify.Event, onChange func(domain.SourceFile)) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if isHidden(filepath.Base(event.Name)) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if err := s.addDirs(watcher, event.Name); err != nil {
			logger.Warn("Knowledge watcher: %v", err)
		}
		return
	}

	f, ok, err := s.read(event.Name)
	if err != nil {
		logger.Warn("Reading %s: %v", event.Name, err)
		return
	}
	if ok {
		onChange(f)
	}
}

// addDirs watches dir and every non-hidden directory beneath it.
func (s *Source) addDirs(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != s.root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
