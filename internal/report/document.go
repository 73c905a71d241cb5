// Package report renders study results as console text, Markdown or HTML.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"edustat/internal/config"
	"edustat/internal/errors"
)

// block is one element of a rendered document
type block interface {
	text(w *bytes.Buffer)
	markdown(w *bytes.Buffer)
}

type heading struct {
	level int
	title string
}

type paragraph struct {
	lines []string
}

type table struct {
	headers []string
	rows    [][]string
}

// Document is an ordered list of headings, paragraphs and tables
type Document struct {
	title  string
	blocks []block
}

func newDocument(title string) *Document {
	return &Document{title: title}
}

func (d *Document) section(title string) {
	d.blocks = append(d.blocks, heading{level: 2, title: title})
}

func (d *Document) subsection(title string) {
	d.blocks = append(d.blocks, heading{level: 3, title: title})
}

func (d *Document) para(lines ...string) {
	d.blocks = append(d.blocks, paragraph{lines: lines})
}

func (d *Document) table(headers []string, rows [][]string) {
	d.blocks = append(d.blocks, table{headers: headers, rows: rows})
}

// Text renders the document for a terminal
func (d *Document) Text() []byte {
	var buf bytes.Buffer
	buf.WriteString(d.title + "\n")
	buf.WriteString(strings.Repeat("=", 70) + "\n")
	for _, b := range d.blocks {
		b.text(&buf)
	}
	return buf.Bytes()
}

// Markdown renders the document as GitHub-flavoured Markdown
func (d *Document) Markdown() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n", d.title)
	for _, b := range d.blocks {
		b.markdown(&buf)
	}
	return buf.Bytes()
}

// HTML renders the Markdown form as a complete HTML page
func (d *Document) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse(d.Markdown())

	renderer := html.NewRenderer(html.RendererOptions{
		Title: d.title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.Render(doc, renderer)
}

// Write renders the document in the given format
func (d *Document) Write(w io.Writer, format string) error {
	var out []byte
	switch format {
	case config.FormatText, "":
		out = d.Text()
	case config.FormatMarkdown:
		out = d.Markdown()
	case config.FormatHTML:
		out = d.HTML()
	default:
		return errors.Newf(errors.CodeInvalidInput, "unknown report format %q", format)
	}
	if _, err := w.Write(out); err != nil {
		return errors.Wrap(err, "failed to write report")
	}
	return nil
}

func (h heading) text(w *bytes.Buffer) {
	w.WriteString("\n")
	w.WriteString(strings.ToUpper(h.title) + "\n")
	if h.level == 2 {
		w.WriteString(strings.Repeat("-", 70) + "\n")
	}
}

func (h heading) markdown(w *bytes.Buffer) {
	fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("#", h.level), h.title)
}

func (p paragraph) text(w *bytes.Buffer) {
	for _, l := range p.lines {
		w.WriteString("  " + l + "\n")
	}
}

func (p paragraph) markdown(w *bytes.Buffer) {
	w.WriteString("\n")
	for _, l := range p.lines {
		w.WriteString("- " + l + "\n")
	}
}

func (t table) widths() []int {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	return widths
}

func (t table) text(w *bytes.Buffer) {
	widths := t.widths()
	line := func(cells []string) {
		w.WriteString("  ")
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			fmt.Fprintf(w, "%-*s", widths[i]+2, cell)
		}
		w.Truncate(w.Len() - trailingSpaces(w.Bytes()))
		w.WriteString("\n")
	}

	line(t.headers)
	total := 0
	for _, width := range widths {
		total += width + 2
	}
	w.WriteString("  " + strings.Repeat("-", total-2) + "\n")
	for _, row := range t.rows {
		line(row)
	}
}

func (t table) markdown(w *bytes.Buffer) {
	w.WriteString("\n| " + strings.Join(t.headers, " | ") + " |\n")
	w.WriteString("|" + strings.Repeat(" --- |", len(t.headers)) + "\n")
	for _, row := range t.rows {
		cells := make([]string, len(t.headers))
		copy(cells, row)
		w.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
}

func trailingSpaces(b []byte) int {
	n := 0
	for i := len(b) - 1; i >= 0 && b[i] == ' '; i-- {
		n++
	}
	return n
}
