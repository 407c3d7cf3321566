package loader

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/telder/paperidx/internal/corpus"
)

// DOCXLoader extracts paragraph text from .docx files. Word heading styles
// are rewritten as markdown headers so the chunker can recover the section
// structure. A docx has no stable page concept, so everything lands on one
// page.
type DOCXLoader struct{}

func (l *DOCXLoader) ID() string { return "docx" }

func (l *DOCXLoader) Load(r io.Reader, filename string) (*corpus.Source, error) {
	tmp, err := os.CreateTemp("", "paperidx-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var body strings.Builder
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := paragraphText(para)
		if text == "" {
			continue
		}
		if body.Len() > 0 {
			body.WriteString("\n\n")
		}
		if level := headingLevel(para); level > 0 {
			body.WriteString(strings.Repeat("#", level) + " " + text)
		} else {
			body.WriteString(text)
		}
	}

	src := &corpus.Source{Title: baseTitle(filename)}
	if body.Len() > 0 {
		src.Pages = []corpus.Page{{Number: 1, Text: body.String()}}
	}
	return src, nil
}

func headingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	for level := 1; level <= 6; level++ {
		if style == fmt.Sprintf("heading%d", level) {
			return level
		}
	}
	return 0
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
