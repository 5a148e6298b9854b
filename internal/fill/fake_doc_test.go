package fill_test

import (
	"context"
	"errors"
	"os"
	"strings"

	"albayan/internal/domain"
	"albayan/internal/port"
)

// fakeDoc is an in-memory document model.
type fakeDoc struct {
	paragraphs []string
	tables     []*fakeTable
	masters    []*fakeMaster
	instances  []*fakeInstance
	graphics   []*fakeGraphic

	updateErr      error
	recomputeErr   error
	updateCalls    int
	recomputeCalls int

	storeErr   error
	failFilter string
	stored     []string
	closeErr   error
	closeCalls int
	panicOn    string
}

func (d *fakeDoc) Tables() []port.Table {
	out := make([]port.Table, len(d.tables))
	for i, t := range d.tables {
		out[i] = t
	}
	return out
}

func (d *fakeDoc) Table(name string) (port.Table, bool) {
	for _, t := range d.tables {
		if t.name == name {
			return t, true
		}
	}
	return nil, false
}

func (d *fakeDoc) FieldMasters() []port.FieldMaster {
	out := make([]port.FieldMaster, len(d.masters))
	for i, m := range d.masters {
		out[i] = m
	}
	return out
}

func (d *fakeDoc) FieldInstances() []port.FieldInstance {
	out := make([]port.FieldInstance, 0, len(d.instances))
	for _, inst := range d.instances {
		if !inst.flattened {
			out = append(out, inst)
		}
	}
	return out
}

func (d *fakeDoc) GraphicNames() []string {
	names := make([]string, len(d.graphics))
	for i, g := range d.graphics {
		names[i] = g.name
	}
	return names
}

func (d *fakeDoc) Graphic(name string) (port.Graphic, bool) {
	for _, g := range d.graphics {
		if g.name == name {
			return g, true
		}
	}
	return nil, false
}

func (d *fakeDoc) BodyText() string { return strings.Join(d.paragraphs, "\n") }

func (d *fakeDoc) ReplaceAll(search, replace string) int {
	if d.panicOn == "replace" {
		panic("engine crashed")
	}
	n := 0
	for i, p := range d.paragraphs {
		n += strings.Count(p, search)
		d.paragraphs[i] = strings.ReplaceAll(p, search, replace)
	}
	return n
}

func (d *fakeDoc) UpdateFields() error {
	d.updateCalls++
	return d.updateErr
}

func (d *fakeDoc) RecomputeAll() error {
	d.recomputeCalls++
	return d.recomputeErr
}

func (d *fakeDoc) StoreToFile(_ context.Context, path, filter string) error {
	if d.storeErr != nil {
		return d.storeErr
	}
	if filter == d.failFilter {
		return errors.New("filter " + filter + " failed")
	}
	if err := os.WriteFile(path, []byte(filter+"\n"+d.BodyText()), 0o600); err != nil {
		return err
	}
	d.stored = append(d.stored, path)
	return nil
}

func (d *fakeDoc) Close() error {
	d.closeCalls++
	return d.closeErr
}

type fakeTable struct {
	name string
	rows [][]*fakeCell
}

// newFakeTable builds a table from rows of cell texts.
func newFakeTable(name string, rows ...[]string) *fakeTable {
	t := &fakeTable{name: name}
	for _, r := range rows {
		row := make([]*fakeCell, len(r))
		for i, text := range r {
			row[i] = &fakeCell{text: text}
		}
		t.rows = append(t.rows, row)
	}
	return t
}

func (t *fakeTable) Name() string  { return t.name }
func (t *fakeTable) RowCount() int { return len(t.rows) }

func (t *fakeTable) ColumnCount() int {
	if len(t.rows) == 0 {
		return 0
	}
	return len(t.rows[0])
}

func (t *fakeTable) Cell(col, row int) (port.Cell, bool) {
	if row < 0 || row >= len(t.rows) || col < 0 || col >= len(t.rows[row]) {
		return nil, false
	}
	return t.rows[row][col], true
}

func (t *fakeTable) InsertRows(index, count int) error {
	newRows := make([][]*fakeCell, count)
	for i := range newRows {
		newRows[i] = make([]*fakeCell, t.ColumnCount())
		for c := range newRows[i] {
			newRows[i][c] = &fakeCell{}
		}
	}
	rows := append([][]*fakeCell{}, t.rows[:index]...)
	rows = append(rows, newRows...)
	t.rows = append(rows, t.rows[index:]...)
	return nil
}

// texts returns every cell's content row by row.
func (t *fakeTable) texts() [][]string {
	out := make([][]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = make([]string, len(row))
		for c, cell := range row {
			out[i][c] = cell.Content()
		}
	}
	return out
}

type fakeCell struct {
	text   string
	nested string
	field  string
}

func (c *fakeCell) Text() string       { return c.text }
func (c *fakeCell) NestedText() string { return c.nested }
func (c *fakeCell) FieldText() string  { return c.field }
func (c *fakeCell) Content() string    { return c.text + c.nested + c.field }

func (c *fakeCell) SetText(value string) {
	c.text, c.nested, c.field = value, "", ""
}

func (c *fakeCell) ReplaceAll(search, replace string) int {
	n := strings.Count(c.text, search)
	c.text = strings.ReplaceAll(c.text, search, replace)
	return n
}

type fakeMaster struct {
	qualified string
	content   string
	setErr    error
}

func (m *fakeMaster) QualifiedName() string { return m.qualified }

func (m *fakeMaster) Name() string {
	return m.qualified[strings.LastIndex(m.qualified, ".")+1:]
}

func (m *fakeMaster) Content() string { return m.content }

func (m *fakeMaster) SetContent(value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.content = value
	return nil
}

type fakeInstance struct {
	master     string
	text       string
	flattened  bool
	flattenErr error
}

func (i *fakeInstance) MasterName() string { return i.master }
func (i *fakeInstance) Text() string       { return i.text }

func (i *fakeInstance) Flatten(value string) error {
	if i.flattenErr != nil {
		return i.flattenErr
	}
	i.text = value
	i.flattened = true
	return nil
}

type fakeGraphic struct {
	name        string
	url         string
	replacement string
	setURLErr   error
	replaceErr  error
}

func (g *fakeGraphic) Name() string { return g.name }

func (g *fakeGraphic) SetURL(path string) error {
	if g.setURLErr != nil {
		return g.setURLErr
	}
	g.url = path
	return nil
}

func (g *fakeGraphic) ReplaceGraphic(path string) error {
	if g.replaceErr != nil {
		return g.replaceErr
	}
	g.replacement = path
	return nil
}

var errUnsupported = domain.ErrUnsupportedOperation

const userMaster = "com.sun.star.text.FieldMaster.User."
