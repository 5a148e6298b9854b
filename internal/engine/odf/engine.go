// Package odf edits OpenDocument Text templates in memory and stores them
// as ODT or, through a Converter, in any other export format.
package odf

import (
	"context"

	"go.uber.org/zap"

	"albayan/internal/port"
)

// Converter turns an ODT file into another format with an export filter and
// returns the path of the produced file.
type Converter interface {
	Convert(ctx context.Context, src, outDir, filter, ext string) (string, error)
}

var (
	_ port.DocumentEngine = (*Engine)(nil)
	_ port.Document       = (*Document)(nil)
)

// Engine opens ODT templates. It is safe for concurrent use; the documents
// it returns are not.
type Engine struct {
	converter Converter
	log       *zap.Logger
}

// NewEngine creates a new Engine. converter may be nil, in which case only
// the native filter can be stored.
func NewEngine(converter Converter, log *zap.Logger) *Engine {
	return &Engine{converter: converter, log: log.Named("odf")}
}

// Open reads and parses the template at path.
func (e *Engine) Open(ctx context.Context, path string) (port.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pkg, err := readPackage(path)
	if err != nil {
		return nil, err
	}
	doc, err := newDocument(pkg, e.converter, e.log)
	if err != nil {
		return nil, err
	}
	e.log.Debug("document opened", zap.String("path", path), zap.Int("tables", len(doc.tables)))
	return doc, nil
}
