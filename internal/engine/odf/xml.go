package odf

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

func is(e *etree.Element, space, tag string) bool {
	return e.Space == space && e.Tag == tag
}

// walk visits e and its descendants in document order. Children of an
// element are skipped when fn returns false for it.
func walk(e *etree.Element, fn func(*etree.Element) bool) {
	if !fn(e) {
		return
	}
	for _, child := range e.ChildElements() {
		walk(child, fn)
	}
}

func isParagraph(e *etree.Element) bool {
	return is(e, "text", "p") || is(e, "text", "h")
}

// isOpaque reports elements whose content is not part of the surrounding
// paragraph text.
func isOpaque(e *etree.Element) bool {
	switch {
	case e.Space == "draw":
		return true
	case is(e, "text", "note"), is(e, "text", "ruby-text"), is(e, "office", "annotation"):
		return true
	case isFieldElement(e):
		return true
	}
	return false
}

// isFixedText reports the inline space, tab and line break elements.
func isFixedText(e *etree.Element) bool {
	return is(e, "text", "s") || is(e, "text", "tab") || is(e, "text", "line-break")
}

// visibleText renders the text a reader sees inside e.
func visibleText(e *etree.Element) string {
	var b strings.Builder
	writeVisible(&b, e)
	return b.String()
}

func writeVisible(b *strings.Builder, e *etree.Element) {
	for _, tok := range e.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			b.WriteString(t.Data)
		case *etree.Element:
			switch {
			case isFixedText(t):
				b.WriteString(fixedText(t))
			case t.Space == "draw" || is(t, "text", "note") || is(t, "office", "annotation"):
			default:
				writeVisible(b, t)
			}
		}
	}
}

func atoiDefault(s string, dflt int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return dflt
	}
	return n
}

// replaceWithText swaps e for a plain text node in its parent.
func replaceWithText(e *etree.Element, text string) {
	parent := e.Parent()
	if parent == nil {
		return
	}
	idx := e.Index()
	parent.RemoveChildAt(idx)
	parent.InsertChildAt(idx, etree.NewText(text))
}

// clearChildren removes every child token of e.
func clearChildren(e *etree.Element) {
	for len(e.Child) > 0 {
		e.RemoveChildAt(len(e.Child) - 1)
	}
}
