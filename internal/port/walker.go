package port

type FileWalker interface {
	Walk(root string) ([]FileInfo, error)
}

type FileInfo struct {
	Path    string
	ModTime int64
	Size    int64
}

// TextExtractor returns the raw text of a file.
type TextExtractor interface {
	Extract(path string) (string, error)
}
