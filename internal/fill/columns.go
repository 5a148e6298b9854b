package fill

import (
	"strings"

	"albayan/internal/port"
)

// ColumnLetter returns the spreadsheet-style name of a zero-based column:
// A..Z, AA, AB, ...
func ColumnLetter(index int) string {
	if index < 0 {
		return ""
	}
	var buf []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		buf = append([]byte{byte('A' + (n-1)%26)}, buf...)
	}
	return string(buf)
}

// ColumnIndex parses a column name produced by ColumnLetter. It is case
// insensitive and returns false for anything that is not letters only.
func ColumnIndex(name string) (int, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" || len(name) > 3 {
		return 0, false
	}
	n := 0
	for _, r := range name {
		if r < 'A' || r > 'Z' {
			return 0, false
		}
		n = n*26 + int(r-'A'+1)
	}
	return n - 1, true
}

// ColumnHeader is the resolved header of one column.
type ColumnHeader struct {
	Text string
	// Synthesized is set when every header source was blank and Text is the
	// column letter.
	Synthesized bool
}

// ColumnHeaderMap maps the first row of a table to column positions.
type ColumnHeaderMap struct {
	Headers []ColumnHeader
}

// BuildColumnHeaderMap reads row 0 of t. Each header is the first non-blank
// of the cell's direct text, nested text and field text, else the column letter.
func BuildColumnHeaderMap(t port.Table) ColumnHeaderMap {
	cols := t.ColumnCount()
	m := ColumnHeaderMap{Headers: make([]ColumnHeader, cols)}
	for col := 0; col < cols; col++ {
		m.Headers[col] = ColumnHeader{Text: ColumnLetter(col), Synthesized: true}
		cell, ok := t.Cell(col, 0)
		if !ok {
			continue
		}
		for _, source := range []func() string{cell.Text, cell.NestedText, cell.FieldText} {
			if text := strings.TrimSpace(source()); text != "" {
				m.Headers[col] = ColumnHeader{Text: text}
				break
			}
		}
	}
	return m
}

// columnMatcher is one ranked strategy for resolving a row key to a column.
type columnMatcher struct {
	name  string
	match func(m ColumnHeaderMap, key string) (int, bool)
}

var columnMatchers = []columnMatcher{
	{"exact", matchExactHeader},
	{"letter", matchColumnLetter},
	{"contains", matchContainment},
	{"tokens", matchTokenOverlap},
}

// Resolve returns the column for key and the name of the strategy that
// found it. Strategies run in rank order and the first hit wins.
func (m ColumnHeaderMap) Resolve(key string) (col int, strategy string, ok bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return 0, "", false
	}
	for _, matcher := range columnMatchers {
		if col, ok := matcher.match(m, key); ok {
			return col, matcher.name, true
		}
	}
	return 0, "", false
}

func matchExactHeader(m ColumnHeaderMap, key string) (int, bool) {
	for i, h := range m.Headers {
		if h.Text == key {
			return i, true
		}
	}
	return 0, false
}

func matchColumnLetter(m ColumnHeaderMap, key string) (int, bool) {
	idx, ok := ColumnIndex(key)
	if !ok || idx >= len(m.Headers) {
		return 0, false
	}
	return idx, true
}

// Synthesized headers are skipped by the fuzzy strategies; a lone letter
// would otherwise be contained in most keys.
func matchContainment(m ColumnHeaderMap, key string) (int, bool) {
	lk := strings.ToLower(key)
	for i, h := range m.Headers {
		if h.Synthesized {
			continue
		}
		lh := strings.ToLower(h.Text)
		if strings.Contains(lh, lk) || strings.Contains(lk, lh) {
			return i, true
		}
	}
	return 0, false
}

func matchTokenOverlap(m ColumnHeaderMap, key string) (int, bool) {
	keyTokens := strings.Fields(strings.ToLower(key))
	for i, h := range m.Headers {
		if h.Synthesized {
			continue
		}
		for _, ht := range strings.Fields(strings.ToLower(h.Text)) {
			for _, kt := range keyTokens {
				if ht == kt {
					return i, true
				}
			}
		}
	}
	return 0, false
}
