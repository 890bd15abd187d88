package utils

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// FileProcessor walks source trees with pluggable filters
type FileProcessor struct{}

func NewFileProcessor() *FileProcessor {
	return &FileProcessor{}
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info fs.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be descended into
type DirectoryFilter func(path string, info fs.DirEntry) bool

// FileWalkOptions configures file walking behavior
type FileWalkOptions struct {
	FileFilter      FileFilter
	DirectoryFilter DirectoryFilter
}

// PHPFileFilter accepts regular files with a .php extension
func PHPFileFilter() FileFilter {
	return func(path string, info fs.DirEntry) bool {
		return info.Type().IsRegular() && strings.HasSuffix(info.Name(), ".php")
	}
}

// vcsDirs are version control metadata directories, never source.
var vcsDirs = map[string]bool{
	".git": true,
	".svn": true,
	".hg":  true,
	".bzr": true,
	"CVS":  true,
}

// VCSDirectoryFilter skips version control metadata directories
func VCSDirectoryFilter() DirectoryFilter {
	return func(path string, info fs.DirEntry) bool {
		return !vcsDirs[info.Name()]
	}
}

// AllFiles combines file filters; a file must pass every one
func AllFiles(filters ...FileFilter) FileFilter {
	return func(path string, info fs.DirEntry) bool {
		for _, f := range filters {
			if f != nil && !f(path, info) {
				return false
			}
		}
		return true
	}
}

// AllDirectories combines directory filters; a directory must pass every one
func AllDirectories(filters ...DirectoryFilter) DirectoryFilter {
	return func(path string, info fs.DirEntry) bool {
		for _, f := range filters {
			if f != nil && !f(path, info) {
				return false
			}
		}
		return true
	}
}

// WalkFiles walks through files in a directory tree with filtering. The root
// itself is never filtered out. Matches come back sorted.
func (fp *FileProcessor) WalkFiles(rootDir string, options FileWalkOptions) ([]string, error) {
	var matchedFiles []string

	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != rootDir && options.DirectoryFilter != nil && !options.DirectoryFilter(path, d) {
				return filepath.SkipDir
			}
			return nil
		}

		if options.FileFilter == nil || options.FileFilter(path, d) {
			matchedFiles = append(matchedFiles, path)
		}
		return nil
	})

	sort.Strings(matchedFiles)
	return matchedFiles, err
}
