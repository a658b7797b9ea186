package extract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDF extracts the plain text layer of a PDF. Scanned pages without a
// text layer come back empty.
type PDF struct{}

func (PDF) Extract(path string) (text string, err error) {
	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}
