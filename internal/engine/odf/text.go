package odf

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// segment is one piece of a text run: either character data or an inline
// space, tab or line break element standing for fixed text.
type segment struct {
	cd *etree.CharData
	el *etree.Element
}

func (s segment) text() string {
	if s.cd != nil {
		return s.cd.Data
	}
	return fixedText(s.el)
}

// fixedText is the text an inline space, tab or line break element renders.
func fixedText(e *etree.Element) string {
	switch {
	case is(e, "text", "s"):
		return strings.Repeat(" ", spaceCount(e))
	case is(e, "text", "tab"):
		return "\t"
	default:
		return "\n"
	}
}

func spaceCount(e *etree.Element) int {
	return atoiDefault(e.SelectAttrValue("text:c", "1"), 1)
}

// textRun is a stretch of paragraph text that may span several formatting
// elements and inline whitespace elements, but no field, frame or note.
type textRun []segment

// paragraphRuns splits the text of paragraph p into runs.
func paragraphRuns(p *etree.Element) []textRun {
	var runs []textRun
	var cur textRun
	var visit func(e *etree.Element)
	visit = func(e *etree.Element) {
		for _, tok := range e.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				cur = append(cur, segment{cd: t})
			case *etree.Element:
				switch {
				case isFixedText(t):
					cur = append(cur, segment{el: t})
				case isOpaque(t), isParagraph(t):
					if len(cur) > 0 {
						runs = append(runs, cur)
						cur = nil
					}
				default:
					visit(t)
				}
			}
		}
	}
	visit(p)
	if len(cur) > 0 {
		runs = append(runs, cur)
	}
	return runs
}

// replace performs a left-to-right, non-overlapping replace of search in the
// run's combined text. Each match keeps the formatting of the segment it
// starts in. Whitespace elements covered by a match are dropped or shortened.
func (r textRun) replace(search, repl string) int {
	if search == "" || len(r) == 0 {
		return 0
	}
	offsets := make([]int, len(r))
	lengths := make([]int, len(r))
	var b strings.Builder
	for i, seg := range r {
		t := seg.text()
		offsets[i], lengths[i] = b.Len(), len(t)
		b.WriteString(t)
	}
	text := b.String()

	var matches []int
	for from := 0; from <= len(text)-len(search); {
		i := strings.Index(text[from:], search)
		if i < 0 {
			break
		}
		matches = append(matches, from+i)
		from += i + len(search)
	}

	// Right to left, so every edit only touches text after the next match.
	for m := len(matches) - 1; m >= 0; m-- {
		start, end := matches[m], matches[m]+len(search)
		si, ei := segmentAt(offsets, lengths, start, false), segmentAt(offsets, lengths, end, true)
		if si == ei {
			r.replaceWithin(si, start-offsets[si], end-offsets[si], repl)
			continue
		}
		r.cutTail(si, start-offsets[si], repl)
		for k := si + 1; k < ei; k++ {
			r.clear(k)
		}
		r.cutHead(ei, end-offsets[ei])
	}
	return len(matches)
}

// replaceWithin swaps bytes [from, to) of segment i for repl.
func (r textRun) replaceWithin(i, from, to int, repl string) {
	seg := r[i]
	if seg.cd != nil {
		seg.cd.Data = seg.cd.Data[:from] + repl + seg.cd.Data[to:]
		return
	}
	// Only a multi-space element can hold a match strictly inside it.
	tail := len(seg.text()) - to
	if tail > 0 {
		insertAfter(seg.el, newSpaces(tail))
	}
	if from > 0 {
		seg.el.CreateAttr("text:c", strconv.Itoa(from))
		insertAfter(seg.el, etree.NewText(repl))
		return
	}
	replaceWithText(seg.el, repl)
}

// cutTail drops segment i from byte from onwards and appends repl.
func (r textRun) cutTail(i, from int, repl string) {
	seg := r[i]
	if seg.cd != nil {
		seg.cd.Data = seg.cd.Data[:from] + repl
		return
	}
	if from > 0 {
		seg.el.CreateAttr("text:c", strconv.Itoa(from))
		insertAfter(seg.el, etree.NewText(repl))
		return
	}
	replaceWithText(seg.el, repl)
}

// cutHead drops the first to bytes of segment i.
func (r textRun) cutHead(i, to int) {
	seg := r[i]
	if seg.cd != nil {
		seg.cd.Data = seg.cd.Data[to:]
		return
	}
	if rest := len(seg.text()) - to; rest > 0 {
		seg.el.CreateAttr("text:c", strconv.Itoa(rest))
		return
	}
	removeElement(seg.el)
}

func (r textRun) clear(i int) {
	if r[i].cd != nil {
		r[i].cd.Data = ""
		return
	}
	removeElement(r[i].el)
}

// segmentAt finds the segment holding byte pos. With atEnd set, pos is an
// exclusive end and belongs to the segment it closes.
func segmentAt(offsets, lengths []int, pos int, atEnd bool) int {
	for i := range offsets {
		lo, hi := offsets[i], offsets[i]+lengths[i]
		if hi == lo {
			continue
		}
		if (!atEnd && pos >= lo && pos < hi) || (atEnd && pos > lo && pos <= hi) {
			return i
		}
	}
	return len(offsets) - 1
}

func newSpaces(n int) *etree.Element {
	s := etree.NewElement("text:s")
	if n > 1 {
		s.CreateAttr("text:c", strconv.Itoa(n))
	}
	return s
}

func insertAfter(e *etree.Element, tok etree.Token) {
	if parent := e.Parent(); parent != nil {
		parent.InsertChildAt(e.Index()+1, tok)
	}
}

func removeElement(e *etree.Element) {
	if parent := e.Parent(); parent != nil {
		parent.RemoveChildAt(e.Index())
	}
}

// collectParagraphs returns every paragraph under root in document order.
func collectParagraphs(root *etree.Element) []*etree.Element {
	var out []*etree.Element
	walk(root, func(e *etree.Element) bool {
		if isParagraph(e) {
			out = append(out, e)
		}
		return true
	})
	return out
}

// replaceIn replaces search in every paragraph under root.
func replaceIn(root *etree.Element, search, repl string) int {
	if search == "" {
		return 0
	}
	n := 0
	for _, p := range collectParagraphs(root) {
		for _, run := range paragraphRuns(p) {
			n += run.replace(search, repl)
		}
	}
	return n
}

// directText returns only the character data that is an immediate child of
// the paragraphs directly inside e.
func directText(e *etree.Element) string {
	var parts []string
	for _, p := range e.ChildElements() {
		if !isParagraph(p) {
			continue
		}
		var b strings.Builder
		for _, tok := range p.Child {
			if cd, ok := tok.(*etree.CharData); ok {
				b.WriteString(cd.Data)
			}
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n")
}

// nestedText returns the text of every paragraph inside e excluding field
// content.
func nestedText(e *etree.Element) string {
	var parts []string
	for _, p := range collectParagraphs(e) {
		var b strings.Builder
		for _, run := range paragraphRuns(p) {
			for _, seg := range run {
				b.WriteString(seg.text())
			}
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n")
}

// fieldText concatenates the rendered text of field elements inside e.
func fieldText(e *etree.Element) string {
	var b strings.Builder
	walk(e, func(el *etree.Element) bool {
		if isFieldElement(el) {
			b.WriteString(visibleText(el))
			return false
		}
		return true
	})
	return b.String()
}

// contentText is the full visible text of the paragraphs inside e.
func contentText(e *etree.Element) string {
	var parts []string
	for _, p := range e.ChildElements() {
		if isParagraph(p) {
			parts = append(parts, visibleText(p))
		}
	}
	return strings.Join(parts, "\n")
}
