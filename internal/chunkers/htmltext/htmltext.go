// Package htmltext renders HTML to readable plain text.
package htmltext

import (
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Elements dropped together with their children.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Head:     true,
	atom.Svg:      true,
	atom.Template: true,
	atom.Iframe:   true,
}

// Elements that start and end on their own line.
var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.Header: true, atom.Footer: true, atom.Aside: true, atom.Nav: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Li: true, atom.Ul: true, atom.Ol: true, atom.Dl: true, atom.Dt: true, atom.Dd: true,
	atom.Table: true, atom.Tr: true, atom.Blockquote: true, atom.Pre: true,
	atom.Hr: true, atom.Form: true, atom.Fieldset: true, atom.Address: true,
	atom.Figure: true, atom.Figcaption: true, atom.Main: true,
}

var multiSpaces = regexp.MustCompile(`[ \t\r\f\v]+`)

// Render parses HTML from r and returns its visible text.
// Block elements produce line breaks, table cells are tab separated,
// and blank lines are removed.
func Render(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}
	return RenderNode(doc), nil
}

// String renders an HTML string. Malformed markup never fails; the parser
// recovers the same way a browser would.
func String(s string) string {
	text, err := Render(strings.NewReader(s))
	if err != nil {
		return ""
	}
	return text
}

// RenderNode renders an already parsed tree.
func RenderNode(n *html.Node) string {
	var b strings.Builder
	walk(&b, n)
	return tidy(b.String())
}

func walk(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		if skipped[n.DataAtom] {
			return
		}
		switch n.DataAtom {
		case atom.Br:
			b.WriteString("\n")
			return
		case atom.Td, atom.Th:
			if n.PrevSibling != nil {
				b.WriteString("\t")
			}
		}
		if blocks[n.DataAtom] {
			b.WriteString("\n")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(b, c)
	}

	if n.Type == html.ElementNode && blocks[n.DataAtom] {
		b.WriteString("\n")
	}
}

func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		cells := strings.Split(line, "\t")
		for i, c := range cells {
			cells[i] = strings.TrimSpace(multiSpaces.ReplaceAllString(c, " "))
		}
		line = strings.TrimSpace(strings.Join(cells, "\t"))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// Title returns the document's <title> text, or "".
func Title(r io.Reader) string {
	doc, err := html.Parse(r)
	if err != nil {
		return ""
	}
	var title string
	var find func(*html.Node)
	find = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Title && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(doc)
	return title
}
