package catalog

import "io/fs"

// Path is a filesystem location that has been resolved to an absolute path
// and stat'ed. Paths are created by FilesystemManager.Resolve.
type Path struct {
	absPath string
	isDir   bool
	info    fs.FileInfo
}

// NewPath creates a Path from its components.
// This is primarily for use by FilesystemManager implementations.
func NewPath(absPath string, isDir bool, info fs.FileInfo) *Path {
	return &Path{
		absPath: absPath,
		isDir:   isDir,
		info:    info,
	}
}

func (p *Path) String() string {
	return p.absPath
}

func (p *Path) IsDir() bool {
	return p.isDir
}

// Info returns the file info captured at resolution time.
func (p *Path) Info() fs.FileInfo {
	return p.info
}
