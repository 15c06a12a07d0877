package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/docrender/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. The goldmark AST
// is converted node for node into the doctree model: headings, paragraphs,
// lists, emphasis, code spans/blocks, and links all survive with their
// structure intact.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	root := doctree.NewNode(doctree.Root)
	convertChildren(root, doc, src)
	return root, nil
}

func convertChildren(dst *doctree.Node, n ast.Node, src []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if conv := convertNode(c, src); conv != nil {
			dst.Append(conv)
		}
	}
}

// convertNode maps one goldmark AST node to a doctree node, or nil for
// kinds the tree model does not represent (raw HTML, images).
func convertNode(n ast.Node, src []byte) *doctree.Node {
	switch node := n.(type) {
	case *ast.Heading:
		h := &doctree.Node{Tag: doctree.Heading, Level: node.Level}
		convertChildren(h, n, src)
		return h

	case *ast.Paragraph:
		p := doctree.NewNode(doctree.Paragraph)
		convertChildren(p, n, src)
		return p

	case *ast.TextBlock:
		// Paragraph-like block inside tight list items; renders without
		// paragraph markup.
		f := doctree.NewNode(doctree.Fragment)
		convertChildren(f, n, src)
		return f

	case *ast.List:
		l := &doctree.Node{Tag: doctree.List, Ordered: node.IsOrdered()}
		convertChildren(l, n, src)
		return l

	case *ast.ListItem:
		li := doctree.NewNode(doctree.ListItem)
		convertChildren(li, n, src)
		return li

	case *ast.Emphasis:
		tag := doctree.Italic
		if node.Level >= 2 {
			tag = doctree.Bold
		}
		e := doctree.NewNode(tag)
		convertChildren(e, n, src)
		return e

	case *ast.CodeSpan:
		c := doctree.NewNode(doctree.Code)
		convertChildren(c, n, src)
		return c

	case *ast.FencedCodeBlock:
		cb := &doctree.Node{Tag: doctree.CodeBlock, Info: string(node.Language(src))}
		cb.Append(doctree.NewText(blockLines(n, src)))
		return cb

	case *ast.CodeBlock:
		cb := doctree.NewNode(doctree.CodeBlock)
		cb.Append(doctree.NewText(blockLines(n, src)))
		return cb

	case *ast.Link:
		l := &doctree.Node{Tag: doctree.Link, Dest: string(node.Destination)}
		convertChildren(l, n, src)
		return l

	case *ast.AutoLink:
		url := string(node.URL(src))
		l := &doctree.Node{Tag: doctree.Link, Dest: url}
		l.Append(doctree.NewText(url))
		return l

	case *ast.Text:
		value := string(node.Value(src))
		switch {
		case node.HardLineBreak():
			return doctree.NewNode(doctree.Fragment,
				doctree.NewText(value),
				doctree.NewNode(doctree.LineBreak),
			)
		case node.SoftLineBreak():
			return doctree.NewText(value + " ")
		}
		return doctree.NewText(value)

	case *ast.String:
		return doctree.NewText(string(node.Value))

	case *ast.ThematicBreak:
		return doctree.NewNode(doctree.Paragraph, doctree.NewText("---"))

	case *ast.Blockquote:
		f := doctree.NewNode(doctree.Fragment)
		convertChildren(f, n, src)
		return f

	default:
		if n.HasChildren() {
			f := doctree.NewNode(doctree.Fragment)
			convertChildren(f, n, src)
			return f
		}
		return nil
	}
}

// blockLines joins a block node's source line segments. Fenced code block
// lines keep their trailing newlines, so the result is newline-terminated
// whenever the block is non-empty.
func blockLines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(src))
	}
	s := buf.String()
	if s != "" && !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s
}
