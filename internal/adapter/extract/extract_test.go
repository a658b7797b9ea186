package extract

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragqa/internal/domain"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Quarterly</w:t></w:r><w:r><w:t xml:space="preserve"> report</w:t></w:r></w:p>
    <w:p><w:r><w:t>Revenue</w:t><w:tab/><w:t>grew</w:t></w:r></w:p>
    <w:tbl><w:tr><w:tc><w:p><w:r><w:t>Cell text</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
  </w:body>
</w:document>`

func writeDocx(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	w.Write([]byte(`<Types/>`))
	if body != "" {
		w, err = zw.Create(docxBody)
		require.NoError(t, err)
		w.Write([]byte(body))
	}
	require.NoError(t, zw.Close())
	return path
}

func TestDOCX_Extract(t *testing.T) {
	path := writeDocx(t, t.TempDir(), "report.docx", documentXML)

	text, err := DOCX{}.Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "Quarterly report\nRevenue\tgrew\nCell text", text)
}

func TestDOCX_MissingBody(t *testing.T) {
	path := writeDocx(t, t.TempDir(), "empty.docx", "")

	_, err := DOCX{}.Extract(path)
	assert.Error(t, err)
}

func TestDOCX_NotZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.docx")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0644))

	_, err := DOCX{}.Extract(path)
	assert.Error(t, err)
}

func TestText_Extract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("\xef\xbb\xbfhello \xff world"), 0644))

	text, err := Text{}.Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "hello \uFFFD world", text)
}

func TestPDF_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 not really"), 0644))

	_, err := PDF{}.Extract(path)
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	dir := t.TempDir()
	r := NewRegistry()

	assert.Equal(t, []string{".docx", ".pdf", ".txt"}, r.Extensions())
	assert.True(t, r.Supports("A.TXT"))
	assert.False(t, r.Supports("image.png"))

	txt := filepath.Join(dir, "a.TXT")
	require.NoError(t, os.WriteFile(txt, []byte("upper-case extension"), 0644))
	text, err := r.Extract(txt)
	require.NoError(t, err)
	assert.Equal(t, "upper-case extension", text)

	_, err = r.Extract(filepath.Join(dir, "slides.pptx"))
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFormat))

	_, err = r.Extract(filepath.Join(dir, "missing.txt"))
	assert.True(t, errors.Is(err, domain.ErrExtraction))
	assert.True(t, strings.Contains(err.Error(), "missing.txt"))

	docx := writeDocx(t, dir, "r.docx", documentXML)
	text, err = r.Extract(docx)
	require.NoError(t, err)
	assert.Contains(t, text, "Quarterly report")
}
