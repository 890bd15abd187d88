package cli

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/maliboot/colaup/internal/utils"
	"github.com/maliboot/colaup/internal/utils/fileops"
)

// DirectoryScanner finds the PHP files a run migrates
type DirectoryScanner struct {
	fileProcessor    *utils.FileProcessor
	errorWrapper     *fileops.ErrorWrapper
	paths            []string
	respectGitignore bool
}

// NewDirectoryScanner creates a scanner accepting files whose path relative to
// the scanned root contains one of paths.
func NewDirectoryScanner(paths []string, respectGitignore bool) *DirectoryScanner {
	return &DirectoryScanner{
		fileProcessor:    utils.NewFileProcessor(),
		errorWrapper:     fileops.NewErrorWrapper(),
		paths:            paths,
		respectGitignore: respectGitignore,
	}
}

// Scan returns the matching files under root in lexical order.
func (s *DirectoryScanner) Scan(root string) ([]string, error) {
	var gitignore *ignore.GitIgnore
	if s.respectGitignore {
		var err error
		if gitignore, err = loadGitignore(root); err != nil {
			return nil, s.errorWrapper.WrapFileReadError(filepath.Join(root, ".gitignore"), err)
		}
	}

	rel := func(path string) string {
		r, err := filepath.Rel(root, path)
		if err != nil {
			return filepath.ToSlash(path)
		}
		return filepath.ToSlash(r)
	}

	files, err := s.fileProcessor.WalkFiles(root, utils.FileWalkOptions{
		FileFilter: utils.AllFiles(
			utils.PHPFileFilter(),
			func(path string, _ fs.DirEntry) bool {
				return s.inRolePath(rel(path))
			},
			ignoredBy(gitignore, rel),
		),
		DirectoryFilter: utils.AllDirectories(
			utils.VCSDirectoryFilter(),
			utils.DirectoryFilter(ignoredBy(gitignore, rel)),
		),
	})
	if err != nil {
		return nil, s.errorWrapper.WrapDirectoryWalkError(root, err)
	}
	return files, nil
}

func (s *DirectoryScanner) inRolePath(rel string) bool {
	for _, p := range s.paths {
		if strings.Contains(rel, strings.Trim(filepath.ToSlash(p), "/")) {
			return true
		}
	}
	return false
}

// ignoredBy rejects paths matched by gitignore. A nil gitignore accepts everything.
func ignoredBy(gitignore *ignore.GitIgnore, rel func(string) string) utils.FileFilter {
	return func(path string, _ fs.DirEntry) bool {
		return gitignore == nil || !gitignore.MatchesPath(rel(path))
	}
}

func loadGitignore(root string) (*ignore.GitIgnore, error) {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return ignore.CompileIgnoreFile(path)
}
