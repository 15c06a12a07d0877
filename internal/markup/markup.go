// Package markup defines the per-tag emission rules that turn document
// tree nodes into output text. A Renderer maps every doctree tag to an
// enter fragment and an exit fragment for one target format. Two renderers
// are provided: Markdown (lightweight markup, literal payloads emitted
// raw) and HTML (tag-delimited markup, literal payloads escaped).
package markup

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docrender/internal/doctree"
	"golang.org/x/net/html"
)

// Fragment produces the text emitted for one node at one traversal phase.
type Fragment func(n *doctree.Node) string

// Rule holds the enter and exit producers for one tag. A nil producer
// emits nothing for that phase; the phase still occurs during traversal,
// so both formats always agree on event counts per node.
type Rule struct {
	Enter Fragment
	Exit  Fragment
}

// Renderer maps every doctree tag to its emission rule for one format.
type Renderer struct {
	name  string
	rules map[doctree.Tag]Rule
}

// Name identifies the format, e.g. "markdown" or "html".
func (r *Renderer) Name() string { return r.name }

// Enter returns the fragment emitted when entering n. Empty when the tag
// has no enter producer.
func (r *Renderer) Enter(n *doctree.Node) string {
	if rule := r.rules[n.Tag]; rule.Enter != nil {
		return rule.Enter(n)
	}
	return ""
}

// Exit returns the fragment emitted when leaving n. Empty when the tag
// has no exit producer.
func (r *Renderer) Exit(n *doctree.Node) string {
	if rule := r.rules[n.Tag]; rule.Exit != nil {
		return rule.Exit(n)
	}
	return ""
}

// mustRenderer validates that rules cover the full tag set. A missing tag
// is a build bug (a tag was added to doctree without updating every
// renderer), so this fails at package initialization.
func mustRenderer(name string, rules map[doctree.Tag]Rule) *Renderer {
	for _, tag := range doctree.Tags() {
		if _, ok := rules[tag]; !ok {
			panic(fmt.Sprintf("markup: %s renderer has no rule for tag %s", name, tag))
		}
	}
	return &Renderer{name: name, rules: rules}
}

// headingLevel clamps a node's heading level into 1-6, defaulting to 1.
func headingLevel(n *doctree.Node) int {
	if n.Level < 1 {
		return 1
	}
	if n.Level > 6 {
		return 6
	}
	return n.Level
}

func literal(n *doctree.Node) string { return n.Literal }

func text(s string) Fragment {
	return func(*doctree.Node) string { return s }
}

var markdown = mustRenderer("markdown", map[doctree.Tag]Rule{
	doctree.Root:     {},
	doctree.Fragment: {},
	doctree.Heading: {
		Enter: func(n *doctree.Node) string {
			return strings.Repeat("#", headingLevel(n)) + " "
		},
		Exit: text("\n\n"),
	},
	doctree.Paragraph: {Exit: text("\n\n")},
	doctree.List:      {Exit: text("\n")},
	doctree.ListItem: {
		Enter: func(n *doctree.Node) string {
			if n.Parent != nil && n.Parent.Ordered {
				return fmt.Sprintf("%d. ", n.Index()+1)
			}
			return "- "
		},
		Exit: text("\n"),
	},
	doctree.Bold:   {Enter: text("**"), Exit: text("**")},
	doctree.Italic: {Enter: text("_"), Exit: text("_")},
	doctree.Code:   {Enter: text("`"), Exit: text("`")},
	doctree.CodeBlock: {
		Enter: func(n *doctree.Node) string { return "```" + n.Info + "\n" },
		Exit:  text("```\n\n"),
	},
	// The lightweight format renders a link as its literal text only.
	doctree.Link:      {},
	doctree.LineBreak: {Enter: text("\n")},
	doctree.Text:      {Enter: literal},
})

var htmlRenderer = mustRenderer("html", map[doctree.Tag]Rule{
	doctree.Root:     {},
	doctree.Fragment: {},
	doctree.Heading: {
		Enter: func(n *doctree.Node) string {
			return fmt.Sprintf("<h%d>", headingLevel(n))
		},
		Exit: func(n *doctree.Node) string {
			return fmt.Sprintf("</h%d>\n", headingLevel(n))
		},
	},
	doctree.Paragraph: {Enter: text("<p>"), Exit: text("</p>\n")},
	doctree.List: {
		Enter: func(n *doctree.Node) string {
			if n.Ordered {
				return "<ol>\n"
			}
			return "<ul>\n"
		},
		Exit: func(n *doctree.Node) string {
			if n.Ordered {
				return "</ol>\n"
			}
			return "</ul>\n"
		},
	},
	doctree.ListItem: {Enter: text("<li>"), Exit: text("</li>\n")},
	doctree.Bold:     {Enter: text("<strong>"), Exit: text("</strong>")},
	doctree.Italic:   {Enter: text("<em>"), Exit: text("</em>")},
	doctree.Code:     {Enter: text("<code>"), Exit: text("</code>")},
	doctree.CodeBlock: {
		Enter: func(n *doctree.Node) string {
			if n.Info != "" {
				return `<pre><code class="language-` + html.EscapeString(n.Info) + `">`
			}
			return "<pre><code>"
		},
		Exit: text("</code></pre>\n"),
	},
	doctree.Link: {
		Enter: func(n *doctree.Node) string {
			return `<a href="` + html.EscapeString(n.Dest) + `">`
		},
		Exit: text("</a>"),
	},
	doctree.LineBreak: {Enter: text("<br>")},
	doctree.Text: {
		Enter: func(n *doctree.Node) string { return html.EscapeString(n.Literal) },
	},
})

// Markdown returns the lightweight-markup renderer. The returned value is
// shared and stateless.
func Markdown() *Renderer { return markdown }

// HTML returns the rich-markup renderer. Literal payloads and link
// destinations are escaped so embedded markup renders literally.
func HTML() *Renderer { return htmlRenderer }
