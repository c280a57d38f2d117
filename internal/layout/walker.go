package layout

import (
	"strings"

	"golang-statement-extractor/pkg/logger"
)

// Visitor receives every text box found during a walk. origin is the
// absolute vertical position of the box: the sum of the Y of every
// enclosing container and of the box itself.
type Visitor interface {
	VisitTextBox(origin float64, box *TextBox)
}

// VisitorFunc adapts a function to the Visitor interface
type VisitorFunc func(origin float64, box *TextBox)

// VisitTextBox calls f
func (f VisitorFunc) VisitTextBox(origin float64, box *TextBox) {
	f(origin, box)
}

// WalkStats counts what a walk touched
type WalkStats struct {
	Containers int
	TextBoxes  int
	Graphics   int
	MaxDepth   int
}

// Walker performs depth-first traversal of a layout tree
type Walker struct {
	logger logger.Logger
}

// NewWalker creates a walker
func NewWalker(log logger.Logger) *Walker {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Walker{logger: log.WithComponent("walker")}
}

// Walk visits every text box under root in document order
func (w *Walker) Walk(root Node, v Visitor) WalkStats {
	var stats WalkStats
	w.walk(0, root, v, 0, &stats)
	w.logger.WithFields(logger.Fields{
		"containers": stats.Containers,
		"text_boxes": stats.TextBoxes,
		"graphics":   stats.Graphics,
		"max_depth":  stats.MaxDepth,
	}).Debug("Layout walk complete")
	return stats
}

func (w *Walker) walk(offset float64, n Node, v Visitor, depth int, stats *WalkStats) {
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}

	switch node := n.(type) {
	case *Container:
		stats.Containers++
		w.logger.Debugf("%s+ (%3.2f) container, %d children", strings.Repeat(" ", depth*2), offset, len(node.Children))
		for _, child := range node.Children {
			w.walk(offset+node.Y, child, v, depth+1, stats)
		}
	case *TextBox:
		stats.TextBoxes++
		w.logger.Debugf("%s> (%3.2f) %q", strings.Repeat(" ", depth*2), offset+node.Y, node.Text())
		v.VisitTextBox(offset+node.Y, node)
	case *Graphic:
		stats.Graphics++
	}
}
