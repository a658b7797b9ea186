package fs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ragqa/internal/domain"
)

const mb = 1024 * 1024

func makeFile(t *testing.T, path string, size int64) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	// sparse file, no data written
	if err := f.Truncate(size); err != nil {
		t.Fatal(err)
	}
}

func TestCollector_SizeLimit(t *testing.T) {
	dir := t.TempDir()
	big := filepath.Join(dir, "big.pdf")
	small := filepath.Join(dir, "small.pdf")
	makeFile(t, big, 10*mb+mb/2)
	makeFile(t, small, 5*mb)

	c := NewCollector(NewWalker(nil, nil), 10*mb)
	batch := c.Collect([]string{big, small})

	if len(batch.Accepted) != 1 || filepath.Base(batch.Accepted[0].Path) != "small.pdf" {
		t.Fatalf("expected only small.pdf, got %+v", batch.Accepted)
	}
	if len(batch.Rejected) != 1 {
		t.Fatalf("expected one rejection, got %d", len(batch.Rejected))
	}
	rej := batch.Rejected[0]
	if !errors.Is(rej.Err, domain.ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got %v", rej.Err)
	}
	if want := "big.pdf exceeds 10MB size limit"; !strings.Contains(rej.Err.Error(), want) {
		t.Errorf("expected message %q, got %q", want, rej.Err.Error())
	}
}

func TestCollector_DuplicateFilenames(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "one", "notes.txt")
	second := filepath.Join(dir, "two", "notes.txt")
	makeFile(t, first, 10)
	makeFile(t, second, 20)

	c := NewCollector(NewWalker(nil, nil), 10*mb)
	batch := c.Collect([]string{first, second})

	if len(batch.Accepted) != 1 {
		t.Fatalf("expected 1 accepted file, got %d", len(batch.Accepted))
	}
	if batch.Accepted[0].Path != first {
		t.Errorf("expected first occurrence %s, got %s", first, batch.Accepted[0].Path)
	}
	if len(batch.Rejected) != 1 || !errors.Is(batch.Rejected[0].Err, domain.ErrDuplicateFilename) {
		t.Errorf("expected duplicate rejection, got %+v", batch.Rejected)
	}
}

func TestCollector_OversizedDoesNotShadowDuplicate(t *testing.T) {
	dir := t.TempDir()
	big := filepath.Join(dir, "a", "report.txt")
	ok := filepath.Join(dir, "b", "report.txt")
	makeFile(t, big, 11*mb)
	makeFile(t, ok, 100)

	batch := NewCollector(NewWalker(nil, nil), 10*mb).Collect([]string{big, ok})
	if len(batch.Accepted) != 1 || batch.Accepted[0].Path != ok {
		t.Errorf("expected the in-limit copy to be kept, got %+v", batch.Accepted)
	}
}

func TestCollector_DirectoryAndGlob(t *testing.T) {
	dir := t.TempDir()
	makeFile(t, filepath.Join(dir, "docs", "a.txt"), 1)
	makeFile(t, filepath.Join(dir, "docs", "nested", "b.pdf"), 1)
	makeFile(t, filepath.Join(dir, "docs", "skip.png"), 1)
	makeFile(t, filepath.Join(dir, "docs", ".git", "c.txt"), 1)
	makeFile(t, filepath.Join(dir, "extra", "d.docx"), 1)

	walker := NewWalker([]string{"**/*.txt", "**/*.pdf", "**/*.docx"}, []string{"**/.git/**"})
	c := NewCollector(walker, 10*mb)

	batch := c.Collect([]string{
		filepath.Join(dir, "docs"),
		filepath.Join(dir, "extra", "*.docx"),
		filepath.Join(dir, "missing", "*.txt"),
	})

	names := map[string]bool{}
	for _, d := range batch.Accepted {
		names[filepath.Base(d.Path)] = true
	}
	for _, want := range []string{"a.txt", "b.pdf", "d.docx"} {
		if !names[want] {
			t.Errorf("expected %s in batch, got %v", want, names)
		}
	}
	if names["skip.png"] || names["c.txt"] {
		t.Errorf("excluded files collected: %v", names)
	}
	if len(batch.Rejected) != 1 {
		t.Errorf("expected the unmatched glob to be rejected, got %+v", batch.Rejected)
	}
}

func TestWalker_ExcludesDirectories(t *testing.T) {
	dir := t.TempDir()
	makeFile(t, filepath.Join(dir, "keep.txt"), 1)
	makeFile(t, filepath.Join(dir, "node_modules", "x.txt"), 1)

	files, err := NewWalker([]string{"**/*.txt"}, []string{"**/node_modules/**"}).Walk(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || filepath.Base(files[0].Path) != "keep.txt" {
		t.Errorf("expected only keep.txt, got %+v", files)
	}
}

func TestCollector_RejectsUnsupportedFormats(t *testing.T) {
	dir := t.TempDir()
	image := filepath.Join(dir, "a", "notes.png")
	text := filepath.Join(dir, "b", "notes.txt")
	later := filepath.Join(dir, "c", "notes.png.txt")
	makeFile(t, image, 10)
	makeFile(t, text, 10)
	makeFile(t, later, 10)

	supports := func(path string) bool { return filepath.Ext(path) == ".txt" }
	c := NewCollector(NewWalker(nil, nil), 10*mb).WithFormats(supports)
	batch := c.Collect([]string{image, text, later})

	if len(batch.Accepted) != 2 {
		t.Fatalf("expected 2 accepted files, got %+v", batch.Accepted)
	}
	if batch.Accepted[0].Path != text {
		t.Errorf("expected %s accepted, got %s", text, batch.Accepted[0].Path)
	}
	if len(batch.Rejected) != 1 || !errors.Is(batch.Rejected[0].Err, domain.ErrUnsupportedFormat) {
		t.Fatalf("expected one unsupported-format rejection, got %+v", batch.Rejected)
	}
	if !strings.Contains(batch.Rejected[0].Err.Error(), "notes.png") {
		t.Errorf("expected filename in message, got %q", batch.Rejected[0].Err.Error())
	}
}

func TestCollector_UnsupportedDoesNotShadowDuplicate(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a", "data")
	second := filepath.Join(dir, "b", "data")
	makeFile(t, first, 10)
	makeFile(t, second, 10)

	supports := func(path string) bool { return path != first }
	c := NewCollector(NewWalker(nil, nil), 10*mb).WithFormats(supports)
	batch := c.Collect([]string{first, second})

	if len(batch.Accepted) != 1 || batch.Accepted[0].Path != second {
		t.Fatalf("expected %s accepted, got %+v", second, batch.Accepted)
	}
	if len(batch.Rejected) != 1 || !errors.Is(batch.Rejected[0].Err, domain.ErrUnsupportedFormat) {
		t.Errorf("expected only an unsupported-format rejection, got %+v", batch.Rejected)
	}
}
