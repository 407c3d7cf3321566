package splitter

import (
	"regexp"
	"strings"

	"github.com/telder/paperidx/internal/corpus"
)

// tableTitleRe matches caption lines like "Table 3: Results" or "Table 12. Ablations".
// Matching a title alone is not enough to classify a table: prose sentences
// frequently start with "Table N" too, so classification also requires the
// next line to be a table row (see Split).
var tableTitleRe = regexp.MustCompile(`^Table\s+\d+[:.]`)

// isTableRow reports whether a line looks like a pipe-delimited table row.
func isTableRow(line string) bool {
	trimmed := strings.TrimRight(line, " \t")
	return len(trimmed) >= 2 && strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|")
}

// Split scans text line by line and groups it into an ordered sequence of
// typed blocks. A candidate table title is only classified as TABLE when the
// immediately following line is a table row; the title line and every
// consecutive row after it then form one TABLE block. A blank line between a
// title and its rows breaks the lookahead on purpose: the title is treated
// as prose and the rows become a title-less table.
//
// Concatenating the returned block texts in order reproduces the input,
// apart from whitespace-only runs at block boundaries. Empty input yields
// an empty sequence.
func Split(text string) []corpus.Block {
	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	var blocks []corpus.Block
	var pending []string

	flush := func() {
		if len(pending) == 0 {
			return
		}
		raw := strings.Join(pending, "\n")
		if strings.TrimSpace(raw) != "" {
			blocks = append(blocks, corpus.Block{Kind: corpus.KindText, Text: raw})
		}
		pending = pending[:0]
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		// Table title with a confirming row on the very next line.
		if tableTitleRe.MatchString(line) && i+1 < len(lines) && isTableRow(lines[i+1]) {
			flush()
			rows := []string{line}
			j := i + 1
			for j < len(lines) && isTableRow(lines[j]) {
				rows = append(rows, lines[j])
				j++
			}
			blocks = append(blocks, corpus.Block{
				Kind:  corpus.KindTable,
				Text:  strings.Join(rows, "\n"),
				Title: strings.TrimSpace(line),
			})
			i = j - 1
			continue
		}

		// Rows without a caption still form a table block.
		if isTableRow(line) {
			flush()
			var rows []string
			j := i
			for j < len(lines) && isTableRow(lines[j]) {
				rows = append(rows, lines[j])
				j++
			}
			blocks = append(blocks, corpus.Block{
				Kind: corpus.KindTable,
				Text: strings.Join(rows, "\n"),
			})
			i = j - 1
			continue
		}

		pending = append(pending, line)
	}
	flush()

	return blocks
}
