package fs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFileName is read from the root of every ingested tree.
const IgnoreFileName = ".mvignore"

// defaultIgnorePatterns apply to every ingestion regardless of config.
var defaultIgnorePatterns = []string{IgnoreFileName}

// rule is one parsed ignore line.
type rule struct {
	glob     string
	anchored bool // contains '/': match the relative path instead of the basename
	dirOnly  bool // trailing '/': match directories only
	negate   bool // leading '!': re-include what earlier rules excluded
}

// IgnoreMatcher decides which entries of a tree are skipped during ingestion.
//
// Rules follow a small subset of gitignore: globs without '/' match the
// basename at any depth, globs with '/' match the path relative to the root,
// a trailing '/' restricts a rule to directories and a leading '!' negates
// it. The last matching rule wins.
type IgnoreMatcher struct {
	rules []rule
}

// NewIgnoreMatcher parses raw pattern lines. Blank lines and '#' comments are skipped.
func NewIgnoreMatcher(lines []string) *IgnoreMatcher {
	m := &IgnoreMatcher{}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var r rule
		if strings.HasPrefix(line, "!") {
			r.negate = true
			line = line[1:]
		}
		if strings.HasSuffix(line, "/") {
			r.dirOnly = true
			line = strings.TrimRight(line, "/")
		}
		line = strings.TrimPrefix(line, "/")
		if line == "" {
			continue
		}
		r.glob = line
		r.anchored = strings.Contains(line, "/")
		m.rules = append(m.rules, r)
	}
	return m
}

// Match reports whether relativePath, an entry below the root, is ignored.
func (m *IgnoreMatcher) Match(relativePath string, isDir bool) bool {
	if relativePath == "" || relativePath == "." {
		return false
	}

	rel := filepath.ToSlash(relativePath)
	base := filepath.Base(relativePath)

	ignored := false
	for _, r := range m.rules {
		if r.dirOnly && !isDir {
			continue
		}
		subject := base
		if r.anchored {
			subject = rel
		}
		matched, err := filepath.Match(r.glob, subject)
		if err != nil || !matched {
			continue
		}
		ignored = !r.negate
	}
	return ignored
}

// ParseIgnoreFile returns the raw lines of an ignore file, or nil if it does
// not exist.
func ParseIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return lines, nil
}
