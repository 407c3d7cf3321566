package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/telder/paperidx/internal/corpus"
)

// CSVLoader renders a CSV file as a captioned pipe table, which the splitter
// then classifies as tabular content. The whole file becomes one table.
type CSVLoader struct{}

func (l *CSVLoader) ID() string { return "csv" }

func (l *CSVLoader) Load(r io.Reader, filename string) (*corpus.Source, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	src := &corpus.Source{Title: baseTitle(filename)}
	if len(records) == 0 {
		return src, nil
	}

	var body strings.Builder
	body.WriteString("Table 1: " + src.Title + "\n")
	for _, record := range records {
		body.WriteString("|" + strings.Join(sanitizeCells(record), "|") + "|\n")
	}

	src.Pages = []corpus.Page{{Number: 1, Text: strings.TrimRight(body.String(), "\n")}}
	return src, nil
}

// sanitizeCells strips pipe characters from cell values so they cannot break
// row boundaries.
func sanitizeCells(record []string) []string {
	out := make([]string, len(record))
	for i, cell := range record {
		out[i] = strings.ReplaceAll(strings.TrimSpace(cell), "|", "/")
	}
	return out
}
