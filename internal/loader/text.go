package loader

import (
	"fmt"
	"io"
	"strings"

	"github.com/telder/paperidx/internal/corpus"
)

// TextLoader handles plain text and markdown. Markdown headers pass through
// untouched; the chunker interprets them downstream.
type TextLoader struct{}

func (l *TextLoader) ID() string { return "text" }

func (l *TextLoader) Load(r io.Reader, filename string) (*corpus.Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	src := &corpus.Source{Title: baseTitle(filename)}
	body := strings.TrimRight(string(data), "\n")
	if strings.TrimSpace(body) != "" {
		src.Pages = []corpus.Page{{Number: 1, Text: body}}
	}
	return src, nil
}
