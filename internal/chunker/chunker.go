package chunker

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/telder/paperidx/internal/corpus"
)

// Config controls chunking behavior. Sizes are in runes.
type Config struct {
	MaxChars      int // Maximum prose chunk size.
	OverlapChars  int // Overlap between consecutive oversize sub-chunks.
	MaxTableChars int // Tables larger than this are excluded, never split.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxChars:      2000,
		OverlapChars:  200,
		MaxTableChars: 8000,
	}
}

// Chunk turns an ordered block sequence into the final ordered chunk
// sequence. Table blocks become exactly one chunk each and are never
// subdivided; oversized tables are excluded entirely (the second return
// value counts them) rather than truncated. Text blocks are split at
// markdown headers (levels 1-3) and oversize segments are re-split into
// overlapping windows. Sequence indexes increase monotonically across the
// whole document, tables and prose interleaved in source order.
func Chunk(blocks []corpus.Block, cfg Config) ([]corpus.Chunk, int) {
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = 2000
	}
	if cfg.OverlapChars < 0 || cfg.OverlapChars >= cfg.MaxChars {
		cfg.OverlapChars = cfg.MaxChars / 10
	}
	if cfg.MaxTableChars <= 0 {
		cfg.MaxTableChars = 8000
	}

	var chunks []corpus.Chunk
	excluded := 0
	seq := 0

	for _, block := range blocks {
		switch block.Kind {
		case corpus.KindTable:
			if len([]rune(block.Text)) > cfg.MaxTableChars {
				excluded++
				continue
			}
			chunks = append(chunks, corpus.Chunk{
				Kind:          corpus.KindTable,
				Title:         block.Title,
				TextContent:   block.Text,
				SequenceIndex: seq,
				PageNumber:    block.Page,
			})
			seq++

		default:
			for _, seg := range segmentText(block.Text, cfg) {
				for _, part := range splitWithOverlap(seg.text, cfg.MaxChars, cfg.OverlapChars) {
					if strings.TrimSpace(part) == "" {
						continue
					}
					chunks = append(chunks, corpus.Chunk{
						Kind:          corpus.KindText,
						TextContent:   part,
						HeaderPath:    seg.headers.path(),
						SequenceIndex: seq,
						PageNumber:    block.Page,
					})
					seq++
				}
			}
		}
	}

	return chunks, excluded
}

// segment is a header-delimited run of prose with its heading context.
type segment struct {
	text    string
	headers headerState
}

// headerState tracks the most recent header at levels 1-3. It is threaded
// through the scan as a value: a header supersedes everything at its own
// level and deeper, and applies to all content until the next header at the
// same or a shallower level.
type headerState struct {
	levels [3]string
}

func (h headerState) apply(level int, title string) headerState {
	if level < 1 || level > 3 {
		return h
	}
	h.levels[level-1] = title
	for i := level; i < len(h.levels); i++ {
		h.levels[i] = ""
	}
	return h
}

func (h headerState) path() []string {
	var out []string
	for _, lvl := range h.levels {
		if lvl != "" {
			out = append(out, lvl)
		}
	}
	return out
}

// segmentText splits prose at markdown headers, falling back to plain
// paragraph packing when the markdown pass cannot make sense of the input.
// The fallback keeps malformed content ingestible instead of aborting the
// whole document.
func segmentText(body string, cfg Config) []segment {
	segs, err := splitByHeaders(body)
	if err == nil && len(segs) > 0 {
		return segs
	}
	if strings.TrimSpace(body) == "" {
		return nil
	}
	var out []segment
	for _, part := range PackParagraphs(body, cfg) {
		out = append(out, segment{text: part})
	}
	return out
}

// splitByHeaders parses the body as markdown and cuts a new segment at every
// heading of level 1-3. The heading line itself belongs to the segment it
// opens. Headings deeper than level 3 are kept as ordinary content.
func splitByHeaders(body string) (segs []segment, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("markdown parse: %v", r)
		}
	}()

	src := []byte(body)
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	state := headerState{}
	var current strings.Builder

	flush := func() {
		if strings.TrimSpace(current.String()) != "" {
			segs = append(segs, segment{text: current.String(), headers: state})
		}
		current.Reset()
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level <= 3 {
			flush()
			title := string(h.Text(src))
			state = state.apply(h.Level, title)
			current.WriteString(strings.Repeat("#", h.Level) + " " + title)
			continue
		}
		raw := rawBlockText(n, src)
		if raw == "" {
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(raw)
	}
	flush()

	return segs, nil
}

// rawBlockText reconstructs the source text covered by a block-level node.
func rawBlockText(n ast.Node, src []byte) string {
	var buf strings.Builder
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	if buf.Len() == 0 {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if s := rawBlockText(c, src); s != "" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
				buf.WriteString(s)
			}
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}

// splitWithOverlap cuts text into windows of at most maxChars runes, each
// window starting overlapChars runes before the previous one ended, so local
// context survives the cut. Text at or under the limit passes through
// unchanged.
func splitWithOverlap(body string, maxChars, overlapChars int) []string {
	runes := []rune(body)
	if len(runes) <= maxChars {
		return []string{body}
	}

	step := maxChars - overlapChars
	if step < 1 {
		step = maxChars
	}

	var parts []string
	for start := 0; start < len(runes); start += step {
		end := start + maxChars
		if end >= len(runes) {
			parts = append(parts, string(runes[start:]))
			break
		}
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}

// PackParagraphs is the fallback splitter: it cuts on blank-line paragraph
// boundaries and greedily packs paragraphs into chunks under MaxChars.
// Single paragraphs over the limit are handed to the overlap splitter.
func PackParagraphs(body string, cfg Config) []string {
	paragraphs := strings.Split(body, "\n\n")

	var out []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			out = append(out, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		n := len([]rune(para))

		if n > cfg.MaxChars {
			flush()
			out = append(out, splitWithOverlap(para, cfg.MaxChars, cfg.OverlapChars)...)
			continue
		}
		if currentLen+n+2 > cfg.MaxChars {
			flush()
		}
		if currentLen > 0 {
			current.WriteString("\n\n")
			currentLen += 2
		}
		current.WriteString(para)
		currentLen += n
	}
	flush()

	return out
}
