package odf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"albayan/internal/port"
)

// maxRepeat caps the expansion of repeated rows and cells.
const maxRepeat = 1024

type table struct {
	el   *etree.Element
	name string
	rows []*etree.Element
}

func newTable(el *etree.Element) *table {
	t := &table{el: el, name: el.SelectAttrValue("table:name", "")}
	expandColumns(el)
	t.rows = collectRows(el)
	for _, row := range t.rows {
		expandCells(row)
	}
	return t
}

// collectRows expands repeated rows and returns the table's own rows in order.
func collectRows(el *etree.Element) []*etree.Element {
	var rows []*etree.Element
	for _, child := range el.ChildElements() {
		switch {
		case is(child, "table", "table-row"):
			rows = append(rows, child)
			rows = append(rows, expandRepeated(child, "table:number-rows-repeated")...)
		case is(child, "table", "table-header-rows"),
			is(child, "table", "table-rows"),
			is(child, "table", "table-row-group"):
			rows = append(rows, collectRows(child)...)
		}
	}
	return rows
}

// expandRepeated clears attr on e and inserts the copies it stood for after
// e. The copies are returned in order.
func expandRepeated(e *etree.Element, attr string) []*etree.Element {
	n, err := strconv.Atoi(e.SelectAttrValue(attr, "1"))
	e.RemoveAttr(attr)
	if err != nil || n <= 1 {
		return nil
	}
	if n > maxRepeat {
		n = maxRepeat
	}
	parent := e.Parent()
	idx := e.Index()
	dups := make([]*etree.Element, 0, n-1)
	for i := 1; i < n; i++ {
		dup := e.Copy()
		parent.InsertChildAt(idx+i, dup)
		dups = append(dups, dup)
	}
	return dups
}

func expandColumns(el *etree.Element) {
	var visit func(e *etree.Element)
	visit = func(e *etree.Element) {
		for _, child := range e.ChildElements() {
			switch {
			case is(child, "table", "table-column"):
				expandRepeated(child, "table:number-columns-repeated")
			case is(child, "table", "table-columns"),
				is(child, "table", "table-header-columns"),
				is(child, "table", "table-column-group"):
				visit(child)
			}
		}
	}
	visit(el)
}

func expandCells(row *etree.Element) {
	for _, c := range rowCells(row) {
		expandRepeated(c, "table:number-columns-repeated")
	}
}

func isCellElement(e *etree.Element) bool {
	return is(e, "table", "table-cell") || is(e, "table", "covered-table-cell")
}

func rowCells(row *etree.Element) []*etree.Element {
	var cells []*etree.Element
	for _, c := range row.ChildElements() {
		if isCellElement(c) {
			cells = append(cells, c)
		}
	}
	return cells
}

func (t *table) Name() string  { return t.name }
func (t *table) RowCount() int { return len(t.rows) }

func (t *table) ColumnCount() int {
	cols := 0
	walk(t.el, func(e *etree.Element) bool {
		if e != t.el && is(e, "table", "table") {
			return false
		}
		if is(e, "table", "table-column") {
			cols++
		}
		return !is(e, "table", "table-row")
	})
	if cols > 0 {
		return cols
	}
	if len(t.rows) > 0 {
		return len(rowCells(t.rows[0]))
	}
	return 0
}

func (t *table) Cell(col, row int) (port.Cell, bool) {
	if row < 0 || row >= len(t.rows) {
		return nil, false
	}
	cells := rowCells(t.rows[row])
	if col < 0 || col >= len(cells) {
		return nil, false
	}
	return &cell{el: cells[col]}, true
}

// InsertRows inserts count copies of the row before index, with their text
// cleared. The copy keeps the row's cell styles.
func (t *table) InsertRows(index, count int) error {
	if count <= 0 {
		return nil
	}
	if index < 1 || index > len(t.rows) {
		return fmt.Errorf("row index %d out of range 1..%d", index, len(t.rows))
	}
	proto := t.rows[index-1]

	var parent *etree.Element
	var at int
	if index < len(t.rows) {
		next := t.rows[index]
		parent, at = next.Parent(), next.Index()
	} else {
		anchor := proto
		if p := anchor.Parent(); is(p, "table", "table-header-rows") {
			anchor = p
		}
		parent, at = anchor.Parent(), anchor.Index()+1
	}

	inserted := make([]*etree.Element, count)
	for i := 0; i < count; i++ {
		row := proto.Copy()
		for _, c := range rowCells(row) {
			clearCell(c)
		}
		parent.InsertChildAt(at+i, row)
		inserted[i] = row
	}

	rows := make([]*etree.Element, 0, len(t.rows)+count)
	rows = append(rows, t.rows[:index]...)
	rows = append(rows, inserted...)
	t.rows = append(rows, t.rows[index:]...)
	return nil
}

type cell struct {
	el *etree.Element
}

func (c *cell) Text() string       { return directText(c.el) }
func (c *cell) NestedText() string { return nestedText(c.el) }
func (c *cell) FieldText() string  { return fieldText(c.el) }
func (c *cell) Content() string    { return contentText(c.el) }

// SetText replaces the cell content with value, one paragraph per line. The
// first paragraph's style is kept.
func (c *cell) SetText(value string) {
	proto := firstParagraph(c.el)
	clearChildren(c.el)
	markString(c.el)
	for _, line := range splitLines(value) {
		p := etree.NewElement("text:p")
		if proto != nil {
			for _, a := range proto.Attr {
				p.CreateAttr(a.FullKey(), a.Value)
			}
		}
		if line != "" {
			p.SetText(line)
		}
		c.el.AddChild(p)
	}
}

func (c *cell) ReplaceAll(search, replace string) int {
	n := replaceIn(c.el, search, replace)
	if n > 0 {
		markString(c.el)
	}
	return n
}

func firstParagraph(e *etree.Element) *etree.Element {
	for _, p := range e.ChildElements() {
		if isParagraph(p) {
			return p
		}
	}
	return nil
}

func splitLines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}

// valueAttrs hold a typed cell value that would override the displayed text.
var valueAttrs = []string{
	"office:value", "office:date-value", "office:time-value",
	"office:boolean-value", "office:string-value", "office:currency",
	"table:formula", "calcext:value-type",
}

// markString turns a typed cell into a plain string cell.
func markString(e *etree.Element) {
	if e.SelectAttr("office:value-type") == nil {
		return
	}
	for _, a := range valueAttrs {
		e.RemoveAttr(a)
	}
	e.CreateAttr("office:value-type", "string")
}

// clearCell empties a cell but keeps one paragraph with the original style.
func clearCell(e *etree.Element) {
	if is(e, "table", "covered-table-cell") {
		clearChildren(e)
		return
	}
	proto := firstParagraph(e)
	clearChildren(e)
	markString(e)
	p := etree.NewElement("text:p")
	if proto != nil {
		for _, a := range proto.Attr {
			p.CreateAttr(a.FullKey(), a.Value)
		}
	}
	e.AddChild(p)
}
