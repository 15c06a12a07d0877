package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/docrender/internal/doctree"
)

func TestMarkdownParser_BlockStructure(t *testing.T) {
	input := `# Title

Intro text.

## Section A

Section A content.
`
	p := &MarkdownParser{}
	root, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root.Tag != doctree.Root {
		t.Fatalf("expected Root tag, got %s", root.Tag)
	}

	wantTags := []doctree.Tag{doctree.Heading, doctree.Paragraph, doctree.Heading, doctree.Paragraph}
	if len(root.Children) != len(wantTags) {
		t.Fatalf("expected %d top-level children, got %d", len(wantTags), len(root.Children))
	}
	for i, want := range wantTags {
		if root.Children[i].Tag != want {
			t.Errorf("child[%d]: expected %s, got %s", i, want, root.Children[i].Tag)
		}
	}

	h1 := root.Children[0]
	if h1.Level != 1 {
		t.Errorf("expected h1 level 1, got %d", h1.Level)
	}
	if got := flatText(h1); got != "Title" {
		t.Errorf("expected h1 text %q, got %q", "Title", got)
	}

	h2 := root.Children[2]
	if h2.Level != 2 {
		t.Errorf("expected h2 level 2, got %d", h2.Level)
	}
}

func TestMarkdownParser_InlineMarkup(t *testing.T) {
	input := "Some **bold** and _italic_ and `code` and [a link](https://example.com).\n"

	p := &MarkdownParser{}
	root, err := p.Parse(strings.NewReader(input), "inline.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(root.Children) != 1 || root.Children[0].Tag != doctree.Paragraph {
		t.Fatalf("expected a single paragraph, got %+v", root.Children)
	}

	para := root.Children[0]
	var bold, italic, code, link *doctree.Node
	for _, c := range para.Children {
		switch c.Tag {
		case doctree.Bold:
			bold = c
		case doctree.Italic:
			italic = c
		case doctree.Code:
			code = c
		case doctree.Link:
			link = c
		}
	}

	if bold == nil || flatText(bold) != "bold" {
		t.Errorf("expected Bold node with text %q, got %+v", "bold", bold)
	}
	if italic == nil || flatText(italic) != "italic" {
		t.Errorf("expected Italic node with text %q, got %+v", "italic", italic)
	}
	if code == nil || flatText(code) != "code" {
		t.Errorf("expected Code node with text %q, got %+v", "code", code)
	}
	if link == nil {
		t.Fatal("expected a Link node")
	}
	if link.Dest != "https://example.com" {
		t.Errorf("expected link dest %q, got %q", "https://example.com", link.Dest)
	}
	if flatText(link) != "a link" {
		t.Errorf("expected link text %q, got %q", "a link", flatText(link))
	}
}

func TestMarkdownParser_Lists(t *testing.T) {
	input := "- one\n- two\n\n1. first\n2. second\n"

	p := &MarkdownParser{}
	root, err := p.Parse(strings.NewReader(input), "lists.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 lists, got %d children", len(root.Children))
	}

	bullets := root.Children[0]
	if bullets.Tag != doctree.List || bullets.Ordered {
		t.Errorf("expected unordered List, got %s ordered=%v", bullets.Tag, bullets.Ordered)
	}
	if len(bullets.Children) != 2 || bullets.Children[0].Tag != doctree.ListItem {
		t.Fatalf("expected 2 list items, got %+v", bullets.Children)
	}
	if got := flatText(bullets.Children[0]); got != "one" {
		t.Errorf("expected first item %q, got %q", "one", got)
	}

	numbers := root.Children[1]
	if numbers.Tag != doctree.List || !numbers.Ordered {
		t.Errorf("expected ordered List, got %s ordered=%v", numbers.Tag, numbers.Ordered)
	}
}

func TestMarkdownParser_FencedCodeBlock(t *testing.T) {
	input := "```go\nfmt.Println(\"hi\")\n```\n"

	p := &MarkdownParser{}
	root, err := p.Parse(strings.NewReader(input), "code.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(root.Children))
	}

	cb := root.Children[0]
	if cb.Tag != doctree.CodeBlock {
		t.Fatalf("expected CodeBlock, got %s", cb.Tag)
	}
	if cb.Info != "go" {
		t.Errorf("expected info %q, got %q", "go", cb.Info)
	}
	if got := flatText(cb); got != "fmt.Println(\"hi\")\n" {
		t.Errorf("unexpected code text %q", got)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	root, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(root.Children) != 0 {
		t.Errorf("expected 0 children for empty input, got %d", len(root.Children))
	}
}

// flatText concatenates the literal payloads under a node.
func flatText(n *doctree.Node) string {
	if n == nil {
		return ""
	}
	var buf strings.Builder
	var walk func(*doctree.Node)
	walk = func(n *doctree.Node) {
		buf.WriteString(n.Literal)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}
