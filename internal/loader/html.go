package loader

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/telder/paperidx/internal/corpus"
)

// HTMLLoader flattens an HTML document into markdown-ish text: heading tags
// become markdown headers, content elements become paragraphs, chrome
// (script/style/nav) is dropped.
type HTMLLoader struct{}

func (l *HTMLLoader) ID() string { return "html" }

func (l *HTMLLoader) Load(r io.Reader, filename string) (*corpus.Source, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	src := &corpus.Source{Title: baseTitle(filename)}
	if title := findTitle(doc); title != "" {
		src.Title = title
	}

	var body strings.Builder
	appendBlock := func(s string) {
		if s == "" {
			return
		}
		if body.Len() > 0 {
			body.WriteString("\n\n")
		}
		body.WriteString(s)
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := htmlHeadingLevel(n.Data); level > 0 {
				appendBlock(strings.Repeat("#", level) + " " + textContent(n))
				return
			}
			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "p", "li", "td", "blockquote", "pre":
				appendBlock(textContent(n))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if b := findBody(doc); b != nil {
		walk(b)
	} else {
		walk(doc)
	}

	if body.Len() > 0 {
		src.Pages = []corpus.Page{{Number: 1, Text: body.String()}}
	}
	return src, nil
}

func htmlHeadingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
