package extract

import (
	"os"
	"strings"
)

// Text reads plain text files. Invalid UTF-8 is replaced, not rejected.
type Text struct{}

func (Text) Extract(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := strings.ToValidUTF8(string(data), "\uFFFD")
	return strings.TrimPrefix(text, "\uFEFF"), nil
}
