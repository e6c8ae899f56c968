package testutil

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"mediavault/internal/catalog"
	"mediavault/internal/mime"
)

// MockFile is an entry in the mock filesystem.
type MockFile struct {
	IsDirectory bool
	ModTime     time.Time
	Size        int64
}

// MockFilesystemManager is an in-memory directory tree. Adding an entry
// creates its missing parent directories.
type MockFilesystemManager struct {
	mu      sync.Mutex
	files   map[string]*MockFile
	ignore  []string
	listErr map[string]error
}

func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files:   make(map[string]*MockFile),
		listErr: make(map[string]error),
	}
}

// AddFile adds a regular file.
func (m *MockFilesystemManager) AddFile(p string, size int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addParents(p)
	m.files[path.Clean(p)] = &MockFile{ModTime: FixedClock().Now(), Size: size}
}

// AddDirectory adds a directory.
func (m *MockFilesystemManager) AddDirectory(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addParents(p)
	m.files[path.Clean(p)] = &MockFile{IsDirectory: true, ModTime: FixedClock().Now()}
}

// Remove deletes an entry and everything below it.
func (m *MockFilesystemManager) Remove(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = path.Clean(p)
	for name := range m.files {
		if name == p || strings.HasPrefix(name, p+"/") {
			delete(m.files, name)
		}
	}
}

// SetIgnore sets basename glob patterns reported by IsIgnored.
func (m *MockFilesystemManager) SetIgnore(patterns ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ignore = patterns
}

// FailListing makes ListDirectory(p) return err.
func (m *MockFilesystemManager) FailListing(p string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr[path.Clean(p)] = err
}

func (m *MockFilesystemManager) addParents(p string) {
	for dir := path.Dir(path.Clean(p)); dir != "/" && dir != "."; dir = path.Dir(dir) {
		if _, ok := m.files[dir]; !ok {
			m.files[dir] = &MockFile{IsDirectory: true}
		}
	}
}

func (m *MockFilesystemManager) lookup(p string) (*MockFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	file, ok := m.files[path.Clean(p)]
	if !ok {
		return nil, fmt.Errorf("stat %s: %w", p, fs.ErrNotExist)
	}
	return file, nil
}

func (m *MockFilesystemManager) Resolve(rawPath string) (*catalog.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, err
	}
	file, err := m.lookup(absPath)
	if err != nil {
		return nil, err
	}
	return catalog.NewPath(absPath, file.IsDirectory, &mockFileInfo{name: path.Base(absPath), file: file}), nil
}

func (m *MockFilesystemManager) IsDirectory(p string) (bool, error) {
	file, err := m.lookup(p)
	if err != nil {
		return false, err
	}
	return file.IsDirectory, nil
}

func (m *MockFilesystemManager) ListDirectory(p string) ([]string, error) {
	dir := path.Clean(p)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.listErr[dir]; ok {
		return nil, err
	}
	file, ok := m.files[dir]
	if !ok {
		return nil, fmt.Errorf("reading directory %s: %w", p, fs.ErrNotExist)
	}
	if !file.IsDirectory {
		return nil, fmt.Errorf("reading directory %s: not a directory", p)
	}

	var names []string
	for name := range m.files {
		if path.Dir(name) == dir && name != dir {
			names = append(names, path.Base(name))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *MockFilesystemManager) Exists(p string) bool {
	_, err := m.lookup(p)
	return err == nil
}

func (m *MockFilesystemManager) IsIgnored(p, root string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	base := path.Base(p)
	for _, pattern := range m.ignore {
		if ok, _ := path.Match(pattern, base); ok {
			return true, nil
		}
	}
	return false, nil
}

type mockFileInfo struct {
	name string
	file *MockFile
}

func (i *mockFileInfo) Name() string       { return i.name }
func (i *mockFileInfo) Size() int64        { return i.file.Size }
func (i *mockFileInfo) ModTime() time.Time { return i.file.ModTime }
func (i *mockFileInfo) IsDir() bool        { return i.file.IsDirectory }
func (i *mockFileInfo) Sys() any           { return i.file }
func (i *mockFileInfo) Mode() fs.FileMode {
	if i.file.IsDirectory {
		return fs.ModeDir | 0o755
	}
	return 0o644
}

var _ catalog.FilesystemManager = (*MockFilesystemManager)(nil)

// extensionTypes maps file extensions onto the MIME type StubClassifier reports.
var extensionTypes = map[string]string{
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".mp3":  "audio/mpeg",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
}

// StubClassifier decides MIME types by file extension instead of reading the
// file. Unknown extensions are reported as text/plain. The media table is the
// real one.
type StubClassifier struct {
	*mime.Classifier
}

func NewStubClassifier() *StubClassifier {
	return &StubClassifier{Classifier: mime.NewClassifier()}
}

func (c *StubClassifier) Classify(p string) (string, error) {
	if t, ok := extensionTypes[strings.ToLower(path.Ext(p))]; ok {
		return t, nil
	}
	return "text/plain", nil
}

var _ catalog.MimeClassifier = (*StubClassifier)(nil)
