package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

const (
	bodySize   = 11.0
	codeSize   = 9.5
	lineHeight = 5.6
	listIndent = 6.0
)

var headingSizes = map[int]float64{1: 18, 2: 15, 3: 13}

var markdownParser = goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))

type inlineStyle struct {
	bold   bool
	mono   bool
	muted  bool
	link   bool
	size   float64
	height float64
}

type richWriter struct {
	pdf *fpdf.Fpdf
	src []byte
}

func renderRich(doc notesDoc, out string) error {
	pdf := newDocument(doc.title, doc.created)
	if err := loadFonts(pdf, doc.fonts); err != nil {
		return err
	}
	pdf.AddPage()

	w := &richWriter{pdf: pdf}
	if doc.title != "" {
		pdf.SetFont(fontFamily, "B", 20)
		pdf.MultiCell(0, 9, doc.title, "", "L", false)
		pdf.Ln(4)
	}

	w.src = []byte(ReplaceMath(strings.ReplaceAll(doc.markdown, "\r\n", "\n")))
	root := markdownParser.Parser().Parse(text.NewReader(w.src))
	if err := w.blocks(root, 0); err != nil {
		return err
	}
	return output(pdf, out)
}

func bodyStyle() inlineStyle {
	return inlineStyle{size: bodySize, height: lineHeight}
}

func (w *richWriter) blocks(parent ast.Node, depth int) error {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if err := w.block(n, depth); err != nil {
			return err
		}
		if w.pdf.Err() {
			return w.pdf.Error()
		}
	}
	return nil
}

func (w *richWriter) block(n ast.Node, depth int) error {
	switch node := n.(type) {
	case *ast.Heading:
		size, ok := headingSizes[node.Level]
		if !ok {
			size = 12
		}
		w.pdf.Ln(2)
		w.inlines(node, inlineStyle{bold: true, size: size, height: size * 0.5})
		w.pdf.Ln(size*0.5 + 1.5)
	case *ast.Paragraph:
		w.inlines(node, bodyStyle())
		w.pdf.Ln(lineHeight + 1.5)
	case *ast.TextBlock:
		w.inlines(node, bodyStyle())
		w.pdf.Ln(lineHeight)
	case *ast.List:
		return w.list(node, depth)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		w.code(n)
	case *ast.Blockquote:
		left, _, _, _ := w.pdf.GetMargins()
		w.pdf.SetLeftMargin(left + listIndent)
		w.pdf.SetX(left + listIndent)
		w.pdf.SetTextColor(90, 90, 90)
		err := w.blocks(node, depth)
		w.pdf.SetTextColor(0, 0, 0)
		w.pdf.SetLeftMargin(left)
		w.pdf.SetX(left)
		return err
	case *ast.ThematicBreak:
		left, _, right, _ := w.pdf.GetMargins()
		pageW, _ := w.pdf.GetPageSize()
		y := w.pdf.GetY() + 2
		w.pdf.SetDrawColor(160, 160, 160)
		w.pdf.Line(left, y, pageW-right, y)
		w.pdf.Ln(5)
	case *east.Table:
		w.table(node)
	case *ast.HTMLBlock:
		// raw HTML is dropped
	default:
		if n.HasChildren() {
			return w.blocks(n, depth)
		}
	}
	return nil
}

func (w *richWriter) list(list *ast.List, depth int) error {
	left, _, _, _ := w.pdf.GetMargins()
	number := list.Start
	if number == 0 {
		number = 1
	}
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "•"
		if depth%2 == 1 {
			marker = "◦"
		}
		if list.IsOrdered() {
			marker = strconv.Itoa(number) + "."
			number++
		}
		w.pdf.SetX(left)
		w.pdf.SetFont(fontFamily, "", bodySize)
		w.pdf.CellFormat(listIndent, lineHeight, marker, "", 0, "L", false, 0, "")
		w.pdf.SetLeftMargin(left + listIndent)
		err := w.blocks(item, depth+1)
		w.pdf.SetLeftMargin(left)
		w.pdf.SetX(left)
		if err != nil {
			return err
		}
	}
	if depth == 0 {
		w.pdf.Ln(1.5)
	}
	return nil
}

func (w *richWriter) code(n ast.Node) {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(w.src))
	}
	body := strings.TrimRight(b.String(), "\n")
	w.pdf.SetFont(monoFamily, "", codeSize)
	w.pdf.SetFillColor(242, 242, 242)
	w.pdf.MultiCell(0, lineHeight-0.8, body, "", "L", true)
	w.pdf.Ln(2)
}

func (w *richWriter) table(table *east.Table) {
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		cells := make([]string, 0, row.ChildCount())
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, strings.TrimSpace(w.plainText(cell)))
		}
		style := ""
		if _, header := row.(*east.TableHeader); header {
			style = "B"
		}
		w.pdf.SetFont(fontFamily, style, bodySize)
		w.pdf.MultiCell(0, lineHeight, strings.Join(cells, "  |  "), "B", "L", false)
	}
	w.pdf.Ln(2)
}

// inlines writes the inline children of n as flowing text.
func (w *richWriter) inlines(n ast.Node, style inlineStyle) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		w.inline(c, style)
	}
}

func (w *richWriter) inline(n ast.Node, style inlineStyle) {
	switch node := n.(type) {
	case *ast.Text:
		w.write(string(util.UnescapePunctuations(node.Segment.Value(w.src))), style)
		switch {
		case node.HardLineBreak():
			w.pdf.Ln(style.height)
		case node.SoftLineBreak():
			w.write(" ", style)
		}
	case *ast.String:
		w.write(string(node.Value), style)
	case *ast.CodeSpan:
		mono := style
		mono.mono = true
		w.write(w.rawText(node), mono)
	case *ast.Emphasis:
		next := style
		if node.Level >= 2 {
			next.bold = true
		} else {
			next.muted = true
		}
		w.inlines(node, next)
	case *east.Strikethrough:
		next := style
		next.muted = true
		w.inlines(node, next)
	case *ast.Link:
		next := style
		next.link = true
		w.linkText(node, next, string(node.Destination))
	case *ast.AutoLink:
		next := style
		next.link = true
		url := string(node.URL(w.src))
		w.apply(next)
		w.pdf.WriteLinkString(style.height, url, url)
	case *ast.Image:
		w.write(fmt.Sprintf("[%s]", w.plainText(node)), style)
	case *ast.RawHTML:
		// dropped
	default:
		w.inlines(n, style)
	}
}

func (w *richWriter) linkText(link *ast.Link, style inlineStyle, dest string) {
	label := w.plainText(link)
	if label == "" {
		label = dest
	}
	w.apply(style)
	if dest == "" {
		w.pdf.Write(style.height, label)
		return
	}
	w.pdf.WriteLinkString(style.height, label, dest)
}

func (w *richWriter) write(s string, style inlineStyle) {
	if s == "" {
		return
	}
	w.apply(style)
	w.pdf.Write(style.height, s)
}

func (w *richWriter) apply(style inlineStyle) {
	switch {
	case style.mono:
		w.pdf.SetFont(monoFamily, "", style.size-1)
	case style.bold:
		w.pdf.SetFont(fontFamily, "B", style.size)
	default:
		w.pdf.SetFont(fontFamily, "", style.size)
	}
	switch {
	case style.link:
		w.pdf.SetTextColor(30, 80, 180)
	case style.muted:
		w.pdf.SetTextColor(85, 85, 85)
	default:
		w.pdf.SetTextColor(0, 0, 0)
	}
}

// plainText concatenates the text segments below n.
func (w *richWriter) plainText(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(util.UnescapePunctuations(t.Segment.Value(w.src)))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// rawText concatenates text segments without unescaping, as code spans keep
// backslashes literally.
func (w *richWriter) rawText(n ast.Node) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(w.src))
		}
	}
	return b.String()
}
