package extract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBody = "word/document.xml"

// DOCX extracts paragraph text from word/document.xml, one line per
// paragraph, tables included.
type DOCX struct{}

func (DOCX) Extract(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("not a docx archive: %w", err)
	}
	defer zr.Close()

	for _, file := range zr.File {
		if file.Name != docxBody {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return parseDocumentXML(rc)
	}
	return "", fmt.Errorf("%s not found", docxBody)
}

// parseDocumentXML walks the WordprocessingML token stream. Text lives in
// w:t, w:tab and w:br become whitespace, and w:p ends a line. Paragraph
// properties are skipped since their tab stops are also named w:tab.
func parseDocumentXML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		out     strings.Builder
		line    strings.Builder
		inText  bool
		inProps int
	)

	flush := func() {
		if out.Len() > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(line.String())
		line.Reset()
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("invalid document xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if inProps > 0 {
				if t.Name.Local == "pPr" {
					inProps++
				}
				continue
			}
			switch t.Name.Local {
			case "pPr":
				inProps++
			case "t":
				inText = true
			case "tab":
				line.WriteByte('\t')
			case "br", "cr":
				line.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "pPr":
				inProps--
			case "t":
				inText = false
			case "p":
				flush()
			}
		case xml.CharData:
			if inText {
				line.Write(t)
			}
		}
	}
	if line.Len() > 0 {
		flush()
	}

	return strings.TrimSpace(out.String()), nil
}
