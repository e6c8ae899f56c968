// Package fs is the real-filesystem side of ingestion.
package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"mediavault/internal/catalog"
)

// OSFilesystemManager implements catalog.FilesystemManager on the os package.
type OSFilesystemManager struct {
	ignore []string

	mu       sync.Mutex
	matchers map[string]*IgnoreMatcher // keyed by tree root
}

// NewOSFilesystemManager creates a manager that skips entries matching the
// given patterns in addition to each tree's .mvignore.
func NewOSFilesystemManager(ignore []string) *OSFilesystemManager {
	return &OSFilesystemManager{
		ignore:   ignore,
		matchers: make(map[string]*IgnoreMatcher),
	}
}

// Resolve makes rawPath absolute and checks that it is a regular file or directory.
func (m *OSFilesystemManager) Resolve(rawPath string) (*catalog.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Lstat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}

	mode := info.Mode()
	switch {
	case mode&os.ModeSymlink != 0:
		return nil, fmt.Errorf("symlinks not supported: %s", absPath)
	case mode&os.ModeDevice != 0:
		return nil, fmt.Errorf("device files not supported: %s", absPath)
	case mode&os.ModeNamedPipe != 0:
		return nil, fmt.Errorf("named pipes not supported: %s", absPath)
	case mode&os.ModeSocket != 0:
		return nil, fmt.Errorf("sockets not supported: %s", absPath)
	}

	return catalog.NewPath(absPath, info.IsDir(), info), nil
}

// IsDirectory reports whether path is a directory. A symlink to a directory
// is not one, so ingestion never follows links out of the tree.
func (m *OSFilesystemManager) IsDirectory(path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.IsDir(), nil
}

// ListDirectory returns the names of the directories and regular files in
// path, in lexical order. Symlinks, pipes, sockets and devices are left out
// so ingestion never opens them.
func (m *OSFilesystemManager) ListDirectory(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && !entry.Type().IsRegular() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (m *OSFilesystemManager) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// IsIgnored reports whether path, found while ingesting root, should be skipped.
func (m *OSFilesystemManager) IsIgnored(path, root string) (bool, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false, fmt.Errorf("relativizing %s: %w", path, err)
	}

	matcher, err := m.matcherFor(root)
	if err != nil {
		return false, err
	}

	isDir, err := m.IsDirectory(path)
	if err != nil {
		return false, err
	}
	return matcher.Match(rel, isDir), nil
}

// matcherFor builds and caches the rules for a tree root.
func (m *OSFilesystemManager) matcherFor(root string) (*IgnoreMatcher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if matcher, ok := m.matchers[root]; ok {
		return matcher, nil
	}

	fromFile, err := ParseIgnoreFile(filepath.Join(root, IgnoreFileName))
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(defaultIgnorePatterns)+len(m.ignore)+len(fromFile))
	lines = append(lines, defaultIgnorePatterns...)
	lines = append(lines, m.ignore...)
	lines = append(lines, fromFile...)

	matcher := NewIgnoreMatcher(lines)
	m.matchers[root] = matcher
	return matcher, nil
}

var _ catalog.FilesystemManager = (*OSFilesystemManager)(nil)
