package fill

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"albayan/internal/domain"
	"albayan/internal/port"
)

// FooterRowCount returns the size of the footer block of a table that had
// rows rows in the template. Tables of one or two rows have no footer.
func FooterRowCount(rows int) int {
	if rows <= 2 {
		return 0
	}
	return rows - 2
}

// FillTables writes every TableFill into the document table of the same
// name. Tables without a matching fill, and fills without a matching table,
// are skipped. Only structural failures are returned.
func FillTables(doc port.Document, fills []domain.TableFill, log *zap.Logger) error {
	byName := make(map[string]*domain.TableFill, len(fills))
	for i := range fills {
		if _, dup := byName[fills[i].TableName]; !dup {
			byName[fills[i].TableName] = &fills[i]
		}
	}

	seen := make(map[string]bool, len(fills))
	for _, table := range doc.Tables() {
		tf, ok := byName[table.Name()]
		if !ok {
			continue
		}
		seen[table.Name()] = true
		if err := fillTable(table, tf, log.With(zap.String("table", table.Name()))); err != nil {
			return fmt.Errorf("table %q: %w", table.Name(), err)
		}
	}
	for name := range byName {
		if !seen[name] {
			log.Debug("no table in document for table fill", zap.String("table", name))
		}
	}
	return nil
}

func fillTable(table port.Table, tf *domain.TableFill, log *zap.Logger) error {
	originalRows := table.RowCount()
	if originalRows == 0 {
		log.Warn("table has no rows, skipping")
		return nil
	}
	headers := BuildColumnHeaderMap(table)
	footerRows := FooterRowCount(originalRows)

	if len(tf.Rows) == 0 {
		return nil
	}

	existingData := originalRows - 1 - footerRows
	if missing := len(tf.Rows) - existingData; missing > 0 {
		if err := table.InsertRows(originalRows-footerRows, missing); err != nil {
			return fmt.Errorf("inserting %d rows: %w", missing, err)
		}
	}

	for i, row := range tf.Rows {
		rowIndex := 1 + i
		for _, kv := range row {
			col, strategy, ok := headers.Resolve(kv.Key)
			if !ok {
				log.Warn("unresolved table column", zap.String("column_key", kv.Key), zap.Int("row", rowIndex))
				continue
			}
			cell, ok := table.Cell(col, rowIndex)
			if !ok {
				log.Warn("table cell missing",
					zap.String("column_key", kv.Key), zap.Int("column", col), zap.Int("row", rowIndex))
				continue
			}
			if strategy != "exact" {
				log.Debug("table column resolved by fallback",
					zap.String("column_key", kv.Key), zap.String("header", headers.Headers[col].Text), zap.String("strategy", strategy))
			}
			cell.SetText(kv.Value)
		}
	}

	fillFooter(table, tf.Footer, footerRows, log)
	return nil
}

// fillFooter substitutes footer keys inside the last footerRows rows. Keys
// are applied in order against the cell's current text, so a key that is a
// substring of a later key is replaced first.
func fillFooter(table port.Table, footer domain.Pairs, footerRows int, log *zap.Logger) {
	if len(footer) == 0 || footerRows == 0 {
		return
	}
	total := table.RowCount()
	applied := make(map[string]bool, len(footer))
	for row := total - footerRows; row < total; row++ {
		for col := 0; col < table.ColumnCount(); col++ {
			cell, ok := table.Cell(col, row)
			if !ok {
				continue
			}
			for _, kv := range footer {
				if kv.Key == "" || !strings.Contains(cell.Content(), kv.Key) {
					continue
				}
				if cell.ReplaceAll(kv.Key, kv.Value) > 0 {
					applied[kv.Key] = true
				}
			}
		}
	}
	for _, kv := range footer {
		if !applied[kv.Key] {
			log.Warn("footer key not found", zap.String("footer_key", kv.Key))
		}
	}
}
