// Package pager implements the size-bounded output buffer behind
// pagination. A Stream accumulates rendered fragments and tracks the node
// boundaries at which a page may be cut; pages never end inside a node's
// emitted text, and a full page ends at the best boundary at or before
// the size limit.
package pager

import "github.com/dgallion1/docrender/internal/doctree"

// Stream is an append-only text buffer bound to a maximum page size.
// Append adds uncommitted tail text; Commit marks the current end of the
// buffer as a safe cut point. A page is ready once the committed region
// reaches the configured limit; if the commit that crossed the limit
// overshot it, the page is cut at the boundary before that commit so the
// overshooting span starts the next page instead. Sizes are bytes of
// UTF-8 text; cuts only happen at committed boundaries, so a page never
// ends mid-rune.
type Stream struct {
	limit     int
	buf       []byte
	committed int // latest safe cut boundary
	prev      int // boundary left by the commit before the latest one
}

// New builds a stream with the given page size limit. The limit must be
// positive; the orchestrator validates this before constructing streams.
func New(limit int) *Stream {
	return &Stream{limit: limit}
}

// Append adds text to the pending (uncommitted) tail.
func (s *Stream) Append(text string) {
	s.buf = append(s.buf, text...)
}

// Commit marks the current end of the buffer as a safe page-cut boundary.
// The node is the one whose emitted text the boundary follows; it is
// accepted for symmetry with the walker's commit hook and not retained.
func (s *Stream) Commit(n *doctree.Node) {
	_ = n
	s.prev = s.committed
	s.committed = len(s.buf)
}

// PeekPage reports whether the committed region has reached the page
// limit, i.e. a full page is ready to be read.
func (s *Stream) PeekPage() bool {
	return s.committed >= s.limit
}

// Overshot reports whether the commit that made the page ready pushed the
// committed region past the limit while an earlier boundary exists in the
// current page. In that case the page must be cut at the earlier boundary
// (ReadPage with early=true); only when a single committed span is itself
// larger than the limit does the cut fall at the latest boundary and the
// page run oversized.
func (s *Stream) Overshot() bool {
	return s.committed > s.limit && s.prev > 0
}

// ReadPage removes and returns one page: everything up to the best cut
// boundary at or before the size limit. With early=false the cut falls at
// the latest committed boundary; with early=true it falls at the boundary
// before it, which is where the page ends when the latest commit overshot
// the limit. The orchestrator passes the same early flag to both format
// streams so their cuts land at the same node boundary even when only one
// of them filled; a stream whose cut point holds no content yet returns
// false. Reading below the limit is how a cut is forced when the other
// format's stream fills first.
func (s *Stream) ReadPage(early bool) (string, bool) {
	cut := s.committed
	if early {
		cut = s.prev
	}
	page := string(s.buf[:cut])
	s.buf = s.buf[cut:]
	s.committed -= cut
	s.prev = 0
	if cut == 0 {
		return "", false
	}
	return page, true
}

// EnsureNewPage promotes any remaining content, committed or pending,
// into a final page even if it is below the size limit. Used at the end
// of a traversal to flush the tail.
func (s *Stream) EnsureNewPage() {
	s.committed = len(s.buf)
}

// Len returns the number of buffered bytes, committed and pending.
func (s *Stream) Len() int { return len(s.buf) }
