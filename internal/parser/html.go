package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dgallion1/docrender/internal/doctree"
	"golang.org/x/net/html"
)

// htmlNoiseSelectors are elements removed before conversion. They carry no
// renderable document content.
var htmlNoiseSelectors = []string{
	"script", "style", "noscript",
	"nav", "footer", "header",
	"img", "picture", "figure", "figcaption",
	"iframe", "video", "audio",
	"svg", "canvas",
	"form", "button", "input", "select", "textarea",
}

// HTMLParser handles HTML files. Noise elements are stripped with goquery,
// then the remaining DOM is converted element for element into the doctree
// model.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	for _, sel := range htmlNoiseSelectors {
		doc.Find(sel).Remove()
	}

	// Prefer the most semantically specific content container.
	var container *goquery.Selection
	for _, tag := range []string{"main", "article", "body"} {
		sel := doc.Find(tag)
		if sel.Length() > 0 {
			container = sel.First()
			break
		}
	}
	if container == nil {
		container = doc.Selection
	}

	root := doctree.NewNode(doctree.Root)
	for _, n := range container.Nodes {
		convertHTMLChildren(root, n)
	}
	return root, nil
}

func convertHTMLChildren(dst *doctree.Node, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		convertHTML(dst, c)
	}
}

func convertHTML(dst *doctree.Node, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return
		}
		dst.Append(doctree.NewText(collapseSpace(n.Data)))

	case html.ElementNode:
		if level := htmlHeadingLevel(n.Data); level > 0 {
			h := &doctree.Node{Tag: doctree.Heading, Level: level}
			dst.Append(h)
			convertHTMLChildren(h, n)
			return
		}

		switch n.Data {
		case "p":
			p := doctree.NewNode(doctree.Paragraph)
			dst.Append(p)
			convertHTMLChildren(p, n)
		case "ul", "ol":
			l := &doctree.Node{Tag: doctree.List, Ordered: n.Data == "ol"}
			dst.Append(l)
			convertHTMLChildren(l, n)
		case "li":
			li := doctree.NewNode(doctree.ListItem)
			dst.Append(li)
			convertHTMLChildren(li, n)
		case "b", "strong":
			b := doctree.NewNode(doctree.Bold)
			dst.Append(b)
			convertHTMLChildren(b, n)
		case "i", "em":
			i := doctree.NewNode(doctree.Italic)
			dst.Append(i)
			convertHTMLChildren(i, n)
		case "code":
			c := doctree.NewNode(doctree.Code)
			dst.Append(c)
			convertHTMLChildren(c, n)
		case "pre":
			dst.Append(convertPre(n))
		case "a":
			l := &doctree.Node{Tag: doctree.Link, Dest: htmlAttr(n, "href")}
			dst.Append(l)
			convertHTMLChildren(l, n)
		case "br":
			dst.Append(doctree.NewNode(doctree.LineBreak))
		default:
			// Transparent: div, span, section, blockquote, tables, etc.
			// flatten into the current container.
			convertHTMLChildren(dst, n)
		}
	}
}

// convertPre builds a CodeBlock from a <pre> element, keeping the raw text
// (whitespace preserved) and picking up a language-* class from an inner
// <code> element if present.
func convertPre(n *html.Node) *doctree.Node {
	cb := doctree.NewNode(doctree.CodeBlock)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "code" {
			for _, class := range strings.Fields(htmlAttr(c, "class")) {
				if lang, ok := strings.CutPrefix(class, "language-"); ok {
					cb.Info = lang
				}
			}
		}
	}
	text := rawText(n)
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	cb.Append(doctree.NewText(text))
	return cb
}

func rawText(n *html.Node) string {
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
	return buf.String()
}

// collapseSpace squeezes runs of whitespace into single spaces while
// keeping a single leading/trailing space, so inline boundaries like
// "hello <b>world</b>" survive.
func collapseSpace(s string) string {
	collapsed := strings.Join(strings.Fields(s), " ")
	if collapsed == "" {
		return collapsed
	}
	if strings.HasPrefix(s, " ") || strings.HasPrefix(s, "\n") || strings.HasPrefix(s, "\t") {
		collapsed = " " + collapsed
	}
	if strings.HasSuffix(s, " ") || strings.HasSuffix(s, "\n") || strings.HasSuffix(s, "\t") {
		collapsed += " "
	}
	return collapsed
}

func htmlHeadingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func htmlAttr(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}
