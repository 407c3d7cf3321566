package loader

import (
	"strings"
	"testing"
)

func TestNewPDFLoader_Selection(t *testing.T) {
	tests := []struct {
		kind   PDFKind
		wantID string
	}{
		{PDFLib, "pdflib"},
		{PDFPoppler, "poppler"},
		{"", "pdflib"}, // default
	}
	for _, tc := range tests {
		l, err := NewPDFLoader(tc.kind)
		if err != nil {
			t.Fatalf("kind %q: unexpected error: %v", tc.kind, err)
		}
		if l.ID() != tc.wantID {
			t.Errorf("kind %q: expected id %s, got %s", tc.kind, tc.wantID, l.ID())
		}
	}

	if _, err := NewPDFLoader("docling"); err == nil {
		t.Error("expected error for unknown pdf loader kind")
	}
}

func TestRegistry_ForFile(t *testing.T) {
	pdf, _ := NewPDFLoader(PDFLib)
	reg := NewRegistry(pdf)

	cases := map[string]string{
		"paper.pdf":  "pdflib",
		"notes.MD":   "text",
		"report.txt": "text",
		"page.html":  "html",
		"deck.docx":  "docx",
		"data.csv":   "csv",
	}
	for filename, wantID := range cases {
		l, err := reg.ForFile(filename)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", filename, err)
		}
		if l.ID() != wantID {
			t.Errorf("%s: expected loader %s, got %s", filename, wantID, l.ID())
		}
	}

	if _, err := reg.ForFile("image.png"); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if IsSupported("image.png") {
		t.Error("png should not be supported")
	}
	if !IsSupported("paper.PDF") {
		t.Error("extension check should be case-insensitive")
	}
}

func TestTextLoader_SinglePage(t *testing.T) {
	l := &TextLoader{}
	src, err := l.Load(strings.NewReader("# Title\n\nBody text.\n"), "notes.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(src.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(src.Pages))
	}
	if src.Pages[0].Number != 1 {
		t.Errorf("expected page number 1, got %d", src.Pages[0].Number)
	}
	if !strings.Contains(src.Pages[0].Text, "# Title") {
		t.Errorf("markdown header should pass through, got %q", src.Pages[0].Text)
	}
	if src.Title != "notes" {
		t.Errorf("expected title from filename, got %q", src.Title)
	}
}

func TestTextLoader_EmptyFile(t *testing.T) {
	l := &TextLoader{}
	src, err := l.Load(strings.NewReader("  \n\n"), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(src.Pages) != 0 {
		t.Errorf("expected no pages for blank file, got %d", len(src.Pages))
	}
}

func TestCSVLoader_RendersPipeTable(t *testing.T) {
	l := &CSVLoader{}
	src, err := l.Load(strings.NewReader("name,score\nalpha,1\nbeta,2\n"), "runs.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(src.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(src.Pages))
	}
	text := src.Pages[0].Text
	if !strings.HasPrefix(text, "Table 1: runs") {
		t.Errorf("expected table caption, got %q", text)
	}
	for _, row := range []string{"|name|score|", "|alpha|1|", "|beta|2|"} {
		if !strings.Contains(text, row) {
			t.Errorf("missing row %q in %q", row, text)
		}
	}
}

func TestCSVLoader_PipesInCellsSanitized(t *testing.T) {
	l := &CSVLoader{}
	src, err := l.Load(strings.NewReader("a,b\n\"x|y\",z\n"), "weird.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(src.Pages[0].Text, "|x|y|") {
		t.Errorf("pipe inside cell must not create a column: %q", src.Pages[0].Text)
	}
}

func TestHTMLLoader_HeadingsAndParagraphs(t *testing.T) {
	page := `<html><head><title>Findings</title></head><body>
<h1>Results</h1>
<p>First paragraph.</p>
<h2>Detail</h2>
<p>Second paragraph.</p>
<script>ignore();</script>
</body></html>`

	l := &HTMLLoader{}
	src, err := l.Load(strings.NewReader(page), "findings.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.Title != "Findings" {
		t.Errorf("expected title from <title>, got %q", src.Title)
	}
	text := src.Pages[0].Text
	if !strings.Contains(text, "# Results") || !strings.Contains(text, "## Detail") {
		t.Errorf("headings not rewritten as markdown: %q", text)
	}
	if strings.Contains(text, "ignore()") {
		t.Errorf("script content leaked into text: %q", text)
	}
}
