// Package render drives the paginated dual-format rendering of a document
// tree. It walks one tree twice in lockstep, once with the Markdown
// renderer and once with the HTML renderer, feeds each walk into its own
// pager stream, and sends a synchronized page in both formats whenever
// either stream fills.
package render

import (
	"context"
	"fmt"

	"github.com/dgallion1/docrender/internal/doctree"
	"github.com/dgallion1/docrender/internal/markup"
	"github.com/dgallion1/docrender/internal/pager"
	"github.com/dgallion1/docrender/internal/walker"
)

// SendFunc delivers one page in both formats and returns an opaque message
// identifier (a Matrix event ID in production). A failure aborts the
// remaining render; retry policy belongs to the caller, not here.
type SendFunc func(ctx context.Context, plain, rich string) (string, error)

// LockstepError reports that the two format walkers diverged: they
// processed different nodes or phases at the same step. This indicates a
// defect in a renderer or the walker, never a data problem, so the render
// fails fast rather than risking mismatched plain/rich pages.
type LockstepError struct {
	Step  int
	Plain walker.Event
	Rich  walker.Event
}

func (e *LockstepError) Error() string {
	return fmt.Sprintf(
		"render: walkers diverged at step %d: markdown at %s, html at %s; this is a bug",
		e.Step, describeEvent(e.Plain), describeEvent(e.Rich),
	)
}

func describeEvent(ev walker.Event) string {
	if ev.Node == nil {
		return "done"
	}
	return fmt.Sprintf("%s(%s)", ev.Node.Tag, ev.Phase)
}

// streamSink feeds walker output into a pager stream. Commits are
// forwarded only when the node sits outside any atomic span, so a page
// cut can never separate e.g. a Bold node's opening and closing markers.
type streamSink struct {
	stream *pager.Stream
}

func (k streamSink) Append(text string) { k.stream.Append(text) }

func (k streamSink) Commit(n *doctree.Node) {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Tag.Atomic() {
			return
		}
	}
	k.stream.Commit(n)
}

// Paged renders root into pages of at most limit bytes per format and
// calls send once per page, in document order. It returns the message
// identifiers collected so far; on error the identifiers of the pages
// already sent are returned alongside it (pages are not rolled back).
//
// Page sizes are driven independently by each format's accumulated output
// (markup overhead differs), but when either stream fills, both are cut at
// the same node boundary so each sent pair covers the same span of the
// document. When the commit that filled a stream overshot the limit, the
// cut falls at the boundary before it, so a page exceeds the limit only
// when a single committed span between two safe boundaries is itself
// oversized. The other format's page in a forced cut can be any size its
// own markup happens to occupy over the same span.
func Paged(ctx context.Context, root *doctree.Node, limit int, send SendFunc) ([]string, error) {
	if root == nil || root.Tag != doctree.Root {
		return nil, fmt.Errorf("render: document root must have tag Root, got %v", tagOf(root))
	}
	if limit <= 0 {
		return nil, fmt.Errorf("render: page size limit must be positive, got %d", limit)
	}

	plainStream := pager.New(limit)
	richStream := pager.New(limit)
	plainWalker := walker.New(root, markup.Markdown(), streamSink{plainStream})
	richWalker := walker.New(root, markup.HTML(), streamSink{richStream})

	var ids []string
	flush := func(early bool) error {
		plain, okPlain := plainStream.ReadPage(early)
		rich, okRich := richStream.ReadPage(early)
		if !okPlain && !okRich {
			return nil
		}
		id, err := send(ctx, plain, rich)
		if err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	}

	for step := 0; ; step++ {
		plainEvent, plainErr := plainWalker.Increment()
		richEvent, richErr := richWalker.Increment()
		if plainErr != nil || richErr != nil {
			// Both walkers cover the same tree, so neither can finish
			// before the other unless something is broken.
			return ids, &LockstepError{Step: step, Plain: plainEvent, Rich: richEvent}
		}
		if plainEvent.Node != richEvent.Node || plainEvent.Phase != richEvent.Phase {
			return ids, &LockstepError{Step: step, Plain: plainEvent, Rich: richEvent}
		}
		if plainWalker.Done() != richWalker.Done() {
			return ids, &LockstepError{Step: step, Plain: plainEvent, Rich: richEvent}
		}

		if plainStream.PeekPage() || richStream.PeekPage() {
			// If the commit that filled a stream overshot the limit, cut
			// both streams at the boundary before it. Commits land at the
			// same node events in both streams, so the early cut keeps the
			// paired pages covering the same span of the document.
			early := plainStream.Overshot() || richStream.Overshot()
			if err := flush(early); err != nil {
				return ids, err
			}
		}

		if plainWalker.Done() {
			break
		}
	}

	plainStream.EnsureNewPage()
	richStream.EnsureNewPage()
	if plainStream.Len() > 0 || richStream.Len() > 0 {
		if err := flush(false); err != nil {
			return ids, err
		}
	}
	return ids, nil
}

func tagOf(n *doctree.Node) any {
	if n == nil {
		return "nil"
	}
	return n.Tag
}
