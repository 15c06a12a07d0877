// Package doctree defines the format-agnostic document tree that the
// rendering engine consumes. A tree is pure data: typed nodes with ordered
// children and a navigational parent back-reference. Trees are built by the
// parser package (or by hand) and treated as immutable for the duration of
// a render pass.
package doctree

// Tag identifies the kind of a document node.
type Tag int

const (
	Root Tag = iota
	Fragment
	Heading
	Paragraph
	List
	ListItem
	Bold
	Italic
	Code
	CodeBlock
	Link
	LineBreak
	Text
)

var tagNames = [...]string{
	Root:      "Root",
	Fragment:  "Fragment",
	Heading:   "Heading",
	Paragraph: "Paragraph",
	List:      "List",
	ListItem:  "ListItem",
	Bold:      "Bold",
	Italic:    "Italic",
	Code:      "Code",
	CodeBlock: "CodeBlock",
	Link:      "Link",
	LineBreak: "LineBreak",
	Text:      "Text",
}

func (t Tag) String() string {
	if int(t) >= 0 && int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "Unknown"
}

// Tags returns every defined tag. Renderers use this to verify they cover
// the full tag set, so a newly added tag cannot silently render as nothing
// in one format but something in the other.
func Tags() []Tag {
	tags := make([]Tag, len(tagNames))
	for i := range tagNames {
		tags[i] = Tag(i)
	}
	return tags
}

// Atomic reports whether a node of this tag renders as an indivisible span:
// a page cut never falls between its opening and closing markup. Container
// tags like Paragraph and List are not atomic; long content inside them
// may be split across pages at child boundaries.
func (t Tag) Atomic() bool {
	switch t {
	case Heading, Bold, Italic, Code, CodeBlock, Link:
		return true
	}
	return false
}

// Node is one element of a document tree. The parent exclusively owns its
// children; Parent is navigational only, and a node is attached to at most
// one parent at a time.
type Node struct {
	Tag      Tag
	Children []*Node
	Parent   *Node

	// Literal is the payload of a Text leaf. Empty for other tags.
	Literal string

	// Level is the heading level (1-6) for Heading nodes.
	Level int

	// Dest is the destination URL for Link nodes.
	Dest string

	// Info is the info string (typically a language name) for CodeBlock
	// nodes.
	Info string

	// Ordered marks a List as numbered rather than bulleted.
	Ordered bool
}

// NewNode builds a node of the given tag and appends the children.
func NewNode(tag Tag, children ...*Node) *Node {
	n := &Node{Tag: tag}
	n.Append(children...)
	return n
}

// NewText builds a Text leaf carrying the literal payload.
func NewText(literal string) *Node {
	return &Node{Tag: Text, Literal: literal}
}

// Append attaches children to n in order. A child already attached
// elsewhere is detached from its old parent first, preserving the
// single-parent invariant.
func (n *Node) Append(children ...*Node) {
	for _, child := range children {
		if child.Parent != nil {
			child.Parent.remove(child)
		}
		child.Parent = n
		n.Children = append(n.Children, child)
	}
}

func (n *Node) remove(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return
		}
	}
}

// IsLastChild reports whether n is the final child of its parent. Root
// nodes (no parent) report true.
func (n *Node) IsLastChild() bool {
	if n.Parent == nil {
		return true
	}
	children := n.Parent.Children
	return len(children) > 0 && children[len(children)-1] == n
}

// Index returns n's position among its parent's children, or 0 for a
// detached node.
func (n *Node) Index() int {
	if n.Parent == nil {
		return 0
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return 0
}
