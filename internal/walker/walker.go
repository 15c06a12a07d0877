// Package walker implements a restartable, incremental depth-first
// traversal over a document tree. Each call to Increment advances by
// exactly one fringe event (entering or leaving one node), which lets two
// walkers over the same tree, each driven by a different renderer, be
// advanced in strict alternation and checked for lockstep.
package walker

import (
	"errors"

	"github.com/dgallion1/docrender/internal/doctree"
	"github.com/dgallion1/docrender/internal/markup"
)

// Phase distinguishes the two fringe events for a node.
type Phase int

const (
	Enter Phase = iota
	Exit
)

func (p Phase) String() string {
	if p == Enter {
		return "enter"
	}
	return "exit"
}

// Event is one fringe step: the node just processed and its phase.
type Event struct {
	Node  *doctree.Node
	Phase Phase
}

// Sink receives rendered fragments and safe-cut marks from a walk. The
// orchestrator supplies a sink backed by a pager stream; Commit marks that
// a page may be cut immediately after the text appended so far.
type Sink interface {
	Append(text string)
	Commit(n *doctree.Node)
}

// ErrDone is returned by Increment once the root's exit event has already
// been processed. Advancing a finished walker is a caller bug.
var ErrDone = errors.New("walker: increment past end of traversal")

type frame struct {
	node    *doctree.Node
	next    int // index of the next child to descend into
	entered bool
}

// Walker holds the traversal cursor: the path from the root to the
// current node plus per-node phase state. A walker only reads the tree,
// so independent walkers over one tree are safe.
type Walker struct {
	renderer *markup.Renderer
	sink     Sink
	stack    []frame
}

// New builds a walker positioned before the root's enter event.
func New(root *doctree.Node, renderer *markup.Renderer, sink Sink) *Walker {
	return &Walker{
		renderer: renderer,
		sink:     sink,
		stack:    []frame{{node: root}},
	}
}

// Done reports whether the traversal has processed the root's exit event.
func (w *Walker) Done() bool { return len(w.stack) == 0 }

// Increment advances the traversal by one fringe event and returns it.
// Entering a node appends its enter fragment to the sink; a childless node
// additionally commits (its emitted text is complete). Leaving a node
// appends its exit fragment and commits. Returns ErrDone if the traversal
// already finished.
func (w *Walker) Increment() (Event, error) {
	for {
		if len(w.stack) == 0 {
			return Event{}, ErrDone
		}
		top := &w.stack[len(w.stack)-1]

		if !top.entered {
			top.entered = true
			if f := w.renderer.Enter(top.node); f != "" {
				w.sink.Append(f)
			}
			if len(top.node.Children) == 0 {
				w.sink.Commit(top.node)
			}
			return Event{Node: top.node, Phase: Enter}, nil
		}

		if top.next < len(top.node.Children) {
			child := top.node.Children[top.next]
			top.next++
			w.stack = append(w.stack, frame{node: child})
			continue
		}

		if f := w.renderer.Exit(top.node); f != "" {
			w.sink.Append(f)
		}
		w.sink.Commit(top.node)
		node := top.node
		w.stack = w.stack[:len(w.stack)-1]
		return Event{Node: node, Phase: Exit}, nil
	}
}
