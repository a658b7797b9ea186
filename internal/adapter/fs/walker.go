package fs

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"ragqa/internal/port"
)

// Walker lists files under a root that match include patterns and no
// exclude pattern. Patterns use doublestar syntax on slash-separated
// paths relative to the root.
type Walker struct {
	includes []string
	excludes []string
}

func NewWalker(includes, excludes []string) *Walker {
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}
	return &Walker{
		includes: includes,
		excludes: excludes,
	}
}

func (w *Walker) Walk(root string) ([]port.FileInfo, error) {
	var files []port.FileInfo

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if relPath != "." && w.shouldExclude(relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !w.shouldInclude(relPath) || w.shouldExclude(relPath) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, port.FileInfo{
			Path:    path,
			ModTime: info.ModTime().Unix(),
			Size:    info.Size(),
		})
		return nil
	})

	return files, err
}

func (w *Walker) shouldInclude(path string) bool {
	return matchAny(w.includes, path)
}

func (w *Walker) shouldExclude(path string) bool {
	return matchAny(w.excludes, path)
}

func matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func statFile(path string) (port.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return port.FileInfo{}, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return port.FileInfo{}, err
	}
	return port.FileInfo{Path: abs, ModTime: info.ModTime().Unix(), Size: info.Size()}, nil
}
