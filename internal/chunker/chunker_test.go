package chunker

import (
	"strings"
	"testing"

	"github.com/telder/paperidx/internal/corpus"
)

func textBlock(s string) corpus.Block {
	return corpus.Block{Kind: corpus.KindText, Text: s}
}

func TestChunk_SmallTextIsOneChunk(t *testing.T) {
	blocks := []corpus.Block{textBlock("A single short paragraph.")}

	chunks, excluded := Chunk(blocks, DefaultConfig())
	if excluded != 0 {
		t.Fatalf("unexpected exclusions: %d", excluded)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Kind != corpus.KindText {
		t.Errorf("expected text kind, got %s", chunks[0].Kind)
	}
	if chunks[0].SequenceIndex != 0 {
		t.Errorf("expected sequence index 0, got %d", chunks[0].SequenceIndex)
	}
}

func TestChunk_HeaderPathPropagation(t *testing.T) {
	body := strings.Join([]string{
		"# Results",
		"Top level remarks.",
		"## Accuracy",
		"Accuracy went up.",
		"### Details",
		"Numbers here.",
		"## Latency",
		"Latency went down.",
	}, "\n\n")

	chunks, _ := Chunk([]corpus.Block{textBlock(body)}, DefaultConfig())
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d: %+v", len(chunks), chunks)
	}

	wantPaths := [][]string{
		{"Results"},
		{"Results", "Accuracy"},
		{"Results", "Accuracy", "Details"},
		{"Results", "Latency"},
	}
	for i, want := range wantPaths {
		got := chunks[i].HeaderPath
		if strings.Join(got, "/") != strings.Join(want, "/") {
			t.Errorf("chunk %d: expected header path %v, got %v", i, want, got)
		}
	}

	// A level-2 header supersedes the previous level-3 entry.
	last := chunks[3].HeaderPath
	for _, h := range last {
		if h == "Details" {
			t.Errorf("stale level-3 header survived into %v", last)
		}
	}
}

func TestChunk_ContentBeforeFirstHeaderHasEmptyPath(t *testing.T) {
	body := "Preamble text.\n\n# Intro\n\nIntro body."

	chunks, _ := Chunk([]corpus.Block{textBlock(body)}, DefaultConfig())
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if len(chunks[0].HeaderPath) != 0 {
		t.Errorf("expected empty header path before first header, got %v", chunks[0].HeaderPath)
	}
	if len(chunks[1].HeaderPath) != 1 || chunks[1].HeaderPath[0] != "Intro" {
		t.Errorf("unexpected header path %v", chunks[1].HeaderPath)
	}
}

func TestChunk_OversizeSegmentSplitsWithOverlap(t *testing.T) {
	cfg := Config{MaxChars: 100, OverlapChars: 20, MaxTableChars: 8000}
	long := strings.Repeat("abcdefghij", 35) // 350 runes, no paragraph breaks

	chunks, _ := Chunk([]corpus.Block{textBlock(long)}, cfg)
	if len(chunks) < 3 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := len([]rune(c.TextContent)); n > cfg.MaxChars {
			t.Errorf("chunk %d exceeds max size: %d > %d", i, n, cfg.MaxChars)
		}
	}
	// Consecutive windows share the configured overlap.
	first := []rune(chunks[0].TextContent)
	second := []rune(chunks[1].TextContent)
	tail := string(first[len(first)-cfg.OverlapChars:])
	head := string(second[:cfg.OverlapChars])
	if tail != head {
		t.Errorf("expected %d-rune overlap between windows, got %q vs %q", cfg.OverlapChars, tail, head)
	}
}

func TestChunk_TableIsSingleChunkNeverSplit(t *testing.T) {
	rows := "Table 1: Big\n" + strings.Repeat("|aaaa|bbbb|\n", 50)
	block := corpus.Block{
		Kind:  corpus.KindTable,
		Text:  strings.TrimRight(rows, "\n"),
		Title: "Table 1: Big",
	}
	cfg := Config{MaxChars: 100, OverlapChars: 10, MaxTableChars: 8000}

	chunks, excluded := Chunk([]corpus.Block{block}, cfg)
	if excluded != 0 {
		t.Fatalf("unexpected exclusions: %d", excluded)
	}
	if len(chunks) != 1 {
		t.Fatalf("table must stay one chunk, got %d", len(chunks))
	}
	if chunks[0].Title != "Table 1: Big" {
		t.Errorf("lost table title: %q", chunks[0].Title)
	}
	if len([]rune(chunks[0].TextContent)) <= cfg.MaxChars {
		t.Errorf("test table should exceed MaxChars to prove tables are exempt")
	}
}

func TestChunk_PathologicalTableExcludedNotTruncated(t *testing.T) {
	huge := corpus.Block{
		Kind: corpus.KindTable,
		Text: strings.Repeat("|x|\n", 5000),
	}
	cfg := Config{MaxChars: 2000, OverlapChars: 200, MaxTableChars: 1000}

	chunks, excluded := Chunk([]corpus.Block{huge}, cfg)
	if excluded != 1 {
		t.Errorf("expected 1 excluded table, got %d", excluded)
	}
	if len(chunks) != 0 {
		t.Errorf("excluded table must produce no chunks, got %d", len(chunks))
	}
}

func TestChunk_SequenceInterleavesTablesAndText(t *testing.T) {
	blocks := []corpus.Block{
		textBlock("before the table"),
		{Kind: corpus.KindTable, Text: "|a|b|", Title: ""},
		textBlock("after the table"),
	}

	chunks, _ := Chunk(blocks, DefaultConfig())
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.SequenceIndex != i {
			t.Errorf("chunk %d has sequence index %d", i, c.SequenceIndex)
		}
	}
	if chunks[1].Kind != corpus.KindTable {
		t.Errorf("table lost its position in sequence: %+v", chunks[1])
	}
}

func TestChunk_NoEmptyChunks(t *testing.T) {
	blocks := []corpus.Block{textBlock("   \n\n  \n")}
	chunks, _ := Chunk(blocks, DefaultConfig())
	for _, c := range chunks {
		if strings.TrimSpace(c.TextContent) == "" {
			t.Errorf("emitted empty chunk: %+v", c)
		}
	}
}

func TestChunk_EmptyInput(t *testing.T) {
	chunks, excluded := Chunk(nil, DefaultConfig())
	if len(chunks) != 0 || excluded != 0 {
		t.Errorf("expected nothing from empty input, got %d chunks, %d excluded", len(chunks), excluded)
	}
}

func TestPackParagraphs_GreedyPacking(t *testing.T) {
	cfg := Config{MaxChars: 50, OverlapChars: 5}
	body := "one one one.\n\ntwo two two.\n\nthree three three.\n\nfour four four."

	parts := PackParagraphs(body, cfg)
	if len(parts) < 2 {
		t.Fatalf("expected packing into multiple chunks, got %d", len(parts))
	}
	for i, p := range parts {
		if n := len([]rune(p)); n > cfg.MaxChars {
			t.Errorf("packed chunk %d exceeds limit: %d", i, n)
		}
	}
	joined := strings.Join(parts, "\n\n")
	for _, word := range []string{"one", "two", "three", "four"} {
		if !strings.Contains(joined, word) {
			t.Errorf("paragraph content %q lost during packing", word)
		}
	}
}

func TestPackParagraphs_OversizeParagraphFallsThrough(t *testing.T) {
	cfg := Config{MaxChars: 40, OverlapChars: 8}
	body := strings.Repeat("x", 120)

	parts := PackParagraphs(body, cfg)
	if len(parts) < 3 {
		t.Fatalf("expected overlap split of oversize paragraph, got %d parts", len(parts))
	}
	for _, p := range parts {
		if len([]rune(p)) > cfg.MaxChars {
			t.Errorf("part exceeds limit: %d", len([]rune(p)))
		}
	}
}
