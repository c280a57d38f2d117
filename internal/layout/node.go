// Package layout holds the positioned-text tree a page is decomposed into,
// and the traversal, classification and row clustering that run over it.
package layout

import "strings"

// Node is one element of a page layout tree. The node kinds are closed:
// *Container, *TextBox and *Graphic.
type Node interface {
	isNode()
}

// Container groups child nodes. Y is its vertical origin relative to the
// parent.
type Container struct {
	Y        float64
	Children []Node
}

// TextBox is a text-bearing leaf container: fragments on one visual line.
type TextBox struct {
	Y         float64
	Fragments []Fragment
}

// Fragment is a positioned piece of text. Text may end with a line break.
type Fragment struct {
	Y    float64
	Text string
}

// Graphic is a vector or image primitive. Traversal never looks inside it.
type Graphic struct {
	Y float64
}

func (*Container) isNode() {}
func (*TextBox) isNode()   {}
func (*Graphic) isNode()   {}

// NewTextBox builds a box whose fragments all sit on the box's own origin
func NewTextBox(y float64, texts ...string) *TextBox {
	box := &TextBox{Y: y, Fragments: make([]Fragment, 0, len(texts))}
	for _, t := range texts {
		box.Fragments = append(box.Fragments, Fragment{Text: t})
	}
	return box
}

// Text returns the concatenated text of all fragments
func (b *TextBox) Text() string {
	var sb strings.Builder
	for _, f := range b.Fragments {
		sb.WriteString(f.Text)
	}
	return sb.String()
}

// TrimmedText returns the text without trailing line breaks
func (f Fragment) TrimmedText() string {
	return strings.TrimRight(f.Text, "\r\n")
}
