// Package model holds the structural model shared by the analyzer, the scorer,
// the rule engine and the documentation bundle. It is data only.
package model

import (
	"codeshift/internal/source"
)

// Kind classifies a Block.
type Kind uint8

const (
	KindInvalid Kind = iota
	Procedure
	Declaration
	ControlFlow
	Statement
)

func (k Kind) String() string {
	switch k {
	case Procedure:
		return "procedure"
	case Declaration:
		return "declaration"
	case ControlFlow:
		return "controlflow"
	case Statement:
		return "statement"
	default:
		return "invalid"
	}
}

// MarshalText renders the kind name for reports.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Block is one syntactic unit. Children are owned; their spans lie inside Span
// and never overlap each other.
type Block struct {
	Kind     Kind
	Ident    string
	Span     source.Span
	Header   source.Span // opening construct; equals Span for leaf blocks
	Children []*Block
}

// Leaf reports whether the block has no children.
func (b *Block) Leaf() bool {
	return len(b.Children) == 0
}

// Model is the structural model of one file.
type Model struct {
	File     *source.File
	Language string
	Blocks   []*Block
	Deps     []string // sorted, de-duplicated

	TotalLines   int
	CommentLines int
	BlankLines   int

	// Truncated is set when a structural fault stopped the analysis; Blocks
	// then only holds blocks closed before FaultAt.
	Truncated bool
	FaultAt   uint32
}

// Walk visits blocks in pre-order (parent before children, source order).
// Returning false from fn skips the children of that block.
// The traversal uses an explicit stack so nesting depth is not bounded by the
// goroutine stack.
func (m *Model) Walk(fn func(b *Block, depth int) bool) {
	if m == nil {
		return
	}
	type item struct {
		b     *Block
		depth int
	}
	stack := make([]item, 0, len(m.Blocks))
	for i := len(m.Blocks) - 1; i >= 0; i-- {
		stack = append(stack, item{m.Blocks[i], 0})
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(top.b, top.depth) {
			continue
		}
		for i := len(top.b.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{top.b.Children[i], top.depth + 1})
		}
	}
}

// Count returns the number of blocks in the tree.
func (m *Model) Count() int {
	n := 0
	m.Walk(func(*Block, int) bool {
		n++
		return true
	})
	return n
}

// CountIn returns the number of blocks in the subtree rooted at b, b included.
func CountIn(b *Block) int {
	n := 0
	stack := []*Block{b}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n++
		stack = append(stack, top.Children...)
	}
	return n
}

// Text returns the source text of the block.
func (m *Model) Text(b *Block) string {
	if m == nil || m.File == nil {
		return ""
	}
	return m.File.Text(b.Span)
}

// HeaderText returns the source text of the opening construct.
func (m *Model) HeaderText(b *Block) string {
	if m == nil || m.File == nil {
		return ""
	}
	return m.File.Text(b.Header)
}
