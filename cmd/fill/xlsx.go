package main

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"albayan/internal/domain"
)

// footerMarker in the first cell of a row switches the rest of the sheet to
// footer key/value pairs.
const footerMarker = "#footer"

func readTablesWorkbook(path string) ([]domain.TableFill, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return tablesFromWorkbook(f)
}

// tablesFromWorkbook reads one table fill per sheet. The first row holds the
// column keys; later rows are data rows until a footer marker row.
func tablesFromWorkbook(f *excelize.File) ([]domain.TableFill, error) {
	var tables []domain.TableFill
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}

		header := make([]string, len(rows[0]))
		for i, h := range rows[0] {
			header[i] = strings.TrimSpace(h)
		}

		tf := domain.TableFill{TableName: sheet}
		inFooter := false
		for _, row := range rows[1:] {
			if strings.EqualFold(strings.TrimSpace(cellVal(row, 0)), footerMarker) {
				inFooter = true
				continue
			}
			if isBlank(row) {
				continue
			}
			if inFooter {
				if key := strings.TrimSpace(cellVal(row, 0)); key != "" {
					tf.Footer = append(tf.Footer, domain.Pair{Key: key, Value: cellVal(row, 1)})
				}
				continue
			}
			var pairs domain.Pairs
			for i, key := range header {
				if key == "" {
					continue
				}
				pairs = append(pairs, domain.Pair{Key: key, Value: cellVal(row, i)})
			}
			tf.Rows = append(tf.Rows, pairs)
		}
		tables = append(tables, tf)
	}
	return tables, nil
}

func cellVal(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
