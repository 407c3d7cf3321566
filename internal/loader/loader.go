package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/telder/paperidx/internal/corpus"
)

// Loader extracts normalized page text from one document format.
// The ID of the loader that produced a document is recorded on every chunk
// for provenance.
type Loader interface {
	Load(r io.Reader, filename string) (*corpus.Source, error)
	ID() string
}

// PDFKind selects which PDF extraction strategy to use.
type PDFKind string

const (
	// PDFLib is the fast native-library extractor.
	PDFLib PDFKind = "pdflib"
	// PDFPoppler shells out to pdftotext for layout-aware extraction.
	PDFPoppler PDFKind = "poppler"
)

// NewPDFLoader returns the loader implementation for the given kind.
// Selection happens once at startup; callers hold onto the returned value.
func NewPDFLoader(kind PDFKind) (Loader, error) {
	switch kind {
	case PDFLib, "":
		return &PDFLibLoader{}, nil
	case PDFPoppler:
		return &PopplerLoader{}, nil
	default:
		return nil, fmt.Errorf("unsupported pdf loader: %q", kind)
	}
}

// Registry dispatches files to loaders by extension. The PDF slot is
// configurable; the remaining formats have a single implementation each.
type Registry struct {
	pdf Loader
}

func NewRegistry(pdf Loader) *Registry {
	return &Registry{pdf: pdf}
}

// SupportedExtensions lists file extensions this service can ingest.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".docx":     true,
	".md":       true,
	".markdown": true,
	".txt":      true,
	".html":     true,
	".htm":      true,
	".csv":      true,
}

// IsSupported checks whether a filename has an ingestible extension.
func IsSupported(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// ForFile returns the loader responsible for a filename.
func (r *Registry) ForFile(filename string) (Loader, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return r.pdf, nil
	case ".docx":
		return &DOCXLoader{}, nil
	case ".md", ".markdown", ".txt":
		return &TextLoader{}, nil
	case ".html", ".htm":
		return &HTMLLoader{}, nil
	case ".csv":
		return &CSVLoader{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", filepath.Ext(filename))
	}
}

// baseTitle strips the extension from a filename for use as a fallback title.
func baseTitle(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
