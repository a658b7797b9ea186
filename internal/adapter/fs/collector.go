package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"ragqa/internal/domain"
	"ragqa/internal/port"
)

// Rejection is a file left out of a batch and why.
type Rejection struct {
	Path string
	Err  error
}

// Batch is the outcome of collecting upload arguments.
type Batch struct {
	Accepted []domain.Document
	Rejected []Rejection
}

// Collector turns command-line arguments (files, directories, glob
// patterns) into an upload batch. Files over the size limit are dropped
// first, then later files whose name repeats an earlier one.
type Collector struct {
	walker   port.FileWalker
	maxBytes int64
	supports func(path string) bool
}

func NewCollector(walker port.FileWalker, maxBytes int64) *Collector {
	return &Collector{walker: walker, maxBytes: maxBytes}
}

// WithFormats rejects files for which supports returns false before any
// other check.
func (c *Collector) WithFormats(supports func(path string) bool) *Collector {
	c.supports = supports
	return c
}

func (c *Collector) Collect(args []string) Batch {
	var (
		batch Batch
		files []port.FileInfo
	)

	for _, arg := range args {
		found, err := c.expand(arg)
		if err != nil {
			batch.Rejected = append(batch.Rejected, Rejection{Path: arg, Err: err})
			continue
		}
		for _, f := range found {
			if c.supports != nil && !c.supports(f.Path) {
				batch.Rejected = append(batch.Rejected, Rejection{
					Path: f.Path,
					Err:  fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filepath.Base(f.Path)),
				})
				continue
			}
			files = append(files, f)
		}
	}

	var sized []port.FileInfo
	for _, f := range files {
		if c.maxBytes > 0 && f.Size > c.maxBytes {
			batch.Rejected = append(batch.Rejected, Rejection{
				Path: f.Path,
				Err:  fmt.Errorf("%w: %s exceeds %dMB size limit", domain.ErrFileTooLarge, filepath.Base(f.Path), c.maxBytes/(1024*1024)),
			})
			continue
		}
		sized = append(sized, f)
	}

	seen := make(map[string]struct{}, len(sized))
	for _, f := range sized {
		name := filepath.Base(f.Path)
		if _, dup := seen[name]; dup {
			batch.Rejected = append(batch.Rejected, Rejection{
				Path: f.Path,
				Err:  fmt.Errorf("%w: %s", domain.ErrDuplicateFilename, name),
			})
			continue
		}
		seen[name] = struct{}{}
		batch.Accepted = append(batch.Accepted, domain.Document{Path: f.Path, Size: f.Size})
	}

	return batch
}

func (c *Collector) expand(arg string) ([]port.FileInfo, error) {
	info, err := os.Stat(arg)
	switch {
	case err == nil && info.IsDir():
		return c.walker.Walk(arg)
	case err == nil:
		f, err := statFile(arg)
		if err != nil {
			return nil, err
		}
		return []port.FileInfo{f}, nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	if !doublestar.ValidatePattern(filepath.ToSlash(arg)) {
		return nil, fmt.Errorf("invalid pattern: %s", arg)
	}
	matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no such file or matching pattern: %s", arg)
	}

	files := make([]port.FileInfo, 0, len(matches))
	for _, m := range matches {
		f, err := statFile(m)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}
