// Package testkit holds invariant checks shared by package tests.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"codeshift/internal/model"
)

// CheckModelInvariants runs the structural invariants on a model:
// 1) every block span is non-empty, points at the model's file and lies
// within its content
// 2) the header lies within the block span
// 3) children lie within their parent and siblings never overlap or go
// backwards
// 4) a truncated model holds only blocks closed before the fault point
func CheckModelInvariants(m *model.Model) error {
	if m == nil || m.File == nil {
		return fmt.Errorf("nil model or file")
	}
	lenContent, err := safecast.Conv[uint32](len(m.File.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	type frame struct {
		parent   *model.Block
		children []*model.Block
	}
	stack := []frame{{children: m.Blocks}}
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		var prevEnd uint32
		for i, b := range fr.children {
			sp := b.Span
			if sp.End <= sp.Start {
				return fmt.Errorf("empty block span %v (%s %q)", sp, b.Kind, b.Ident)
			}
			if sp.File != m.File.ID {
				return fmt.Errorf("block span file mismatch: got=%d want=%d", sp.File, m.File.ID)
			}
			if sp.End > lenContent {
				return fmt.Errorf("block span end beyond content: %d > %d", sp.End, lenContent)
			}
			if !sp.Contains(b.Header) {
				return fmt.Errorf("header %v outside block span %v (%q)", b.Header, sp, b.Ident)
			}
			if fr.parent != nil && !fr.parent.Span.Contains(sp) {
				return fmt.Errorf("child %v (%q) outside parent %v (%q)", sp, b.Ident, fr.parent.Span, fr.parent.Ident)
			}
			if i > 0 && sp.Start < prevEnd {
				return fmt.Errorf("sibling %v (%q) overlaps previous block ending at %d", sp, b.Ident, prevEnd)
			}
			if m.Truncated && sp.End > m.FaultAt {
				return fmt.Errorf("block %v (%q) ends after fault point %d", sp, b.Ident, m.FaultAt)
			}
			prevEnd = sp.End
			if len(b.Children) > 0 {
				stack = append(stack, frame{parent: b, children: b.Children})
			}
		}
	}
	return nil
}
