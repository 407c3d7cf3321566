package loader

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/telder/paperidx/internal/corpus"
)

// PDFLibLoader extracts text with the pure-Go pdf library. This is the fast
// path; scanned or layout-heavy documents are better served by the poppler
// variant.
type PDFLibLoader struct{}

func (l *PDFLibLoader) ID() string { return string(PDFLib) }

func (l *PDFLibLoader) Load(r io.Reader, filename string) (*corpus.Source, error) {
	// The pdf library needs a ReadSeeker plus size, so spool to a temp file.
	path, cleanup, err := spoolTemp(r, "paperidx-pdf-*.pdf")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	src := &corpus.Source{Title: baseTitle(filename)}
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		src.Pages = append(src.Pages, corpus.Page{
			Number:     i,
			Text:       text,
			ImageCount: countPageImages(page),
		})
	}

	return src, nil
}

// countPageImages counts XObject resources on a page, a cheap proxy for
// embedded figures.
func countPageImages(page pdflib.Page) int {
	xobj := page.V.Key("Resources").Key("XObject")
	if xobj.Kind() != pdflib.Dict {
		return 0
	}
	return len(xobj.Keys())
}

// PopplerLoader extracts text via the pdftotext binary with layout
// preservation, which keeps column structure that the native extractor
// scrambles.
type PopplerLoader struct{}

func (l *PopplerLoader) ID() string { return string(PDFPoppler) }

func (l *PopplerLoader) Load(r io.Reader, filename string) (*corpus.Source, error) {
	path, cleanup, err := spoolTemp(r, "paperidx-pdf-*.pdf")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	out, err := exec.Command("pdftotext", "-layout", path, "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}

	src := &corpus.Source{Title: baseTitle(filename)}
	// pdftotext separates pages with form feeds.
	for i, pageText := range strings.Split(string(out), "\f") {
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		src.Pages = append(src.Pages, corpus.Page{Number: i + 1, Text: pageText})
	}

	return src, nil
}

// spoolTemp writes r to a temp file and returns its path with a cleanup func.
func spoolTemp(r io.Reader, pattern string) (string, func(), error) {
	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	cleanup := func() { os.Remove(path) }

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return path, cleanup, nil
}
