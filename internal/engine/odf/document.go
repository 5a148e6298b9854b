package odf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"albayan/internal/domain"
	"albayan/internal/fill"
	"albayan/internal/port"
)

var errClosed = errors.New("document is closed")

// Document is an opened OpenDocument Text package. It implements port.Document.
type Document struct {
	pkg       *odfPackage
	content   *etree.Document
	root      *etree.Element
	body      *etree.Element
	tables    []*table
	converter Converter
	log       *zap.Logger
	closed    bool
}

func newDocument(pkg *odfPackage, converter Converter, log *zap.Logger) (*Document, error) {
	raw, _ := pkg.file(contentPart)
	content := etree.NewDocument()
	if err := content.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", domain.ErrUnsupportedTemplate, contentPart, err)
	}
	root := content.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: empty %s", domain.ErrUnsupportedTemplate, contentPart)
	}
	body := root.FindElement("office:body")
	if body == nil {
		return nil, fmt.Errorf("%w: %s has no office:body", domain.ErrUnsupportedTemplate, contentPart)
	}

	d := &Document{pkg: pkg, content: content, root: root, body: body, converter: converter, log: log}
	walk(body, func(e *etree.Element) bool {
		if is(e, "table", "table") {
			d.tables = append(d.tables, newTable(e))
		}
		return true
	})
	return d, nil
}

func (d *Document) Tables() []port.Table {
	out := make([]port.Table, len(d.tables))
	for i, t := range d.tables {
		out[i] = t
	}
	return out
}

func (d *Document) Table(name string) (port.Table, bool) {
	for _, t := range d.tables {
		if t.name == name {
			return t, true
		}
	}
	return nil, false
}

// FieldMasters returns user field and variable declarations.
func (d *Document) FieldMasters() []port.FieldMaster {
	var out []port.FieldMaster
	walk(d.root, func(e *etree.Element) bool {
		if is(e, "text", "user-field-decl") || is(e, "text", "variable-decl") {
			out = append(out, &fieldMaster{doc: d, el: e})
			return false
		}
		return true
	})
	return out
}

func (d *Document) FieldInstances() []port.FieldInstance {
	var out []port.FieldInstance
	walk(d.body, func(e *etree.Element) bool {
		if isVariableInstance(e) {
			out = append(out, &fieldInstance{el: e})
			return false
		}
		return true
	})
	return out
}

func (d *Document) frames() []*etree.Element {
	var out []*etree.Element
	walk(d.body, func(e *etree.Element) bool {
		if is(e, "draw", "frame") && e.SelectAttr("draw:name") != nil && len(frameImages(e)) > 0 {
			out = append(out, e)
		}
		return true
	})
	return out
}

func (d *Document) GraphicNames() []string {
	frames := d.frames()
	names := make([]string, len(frames))
	for i, f := range frames {
		names[i] = f.SelectAttrValue("draw:name", "")
	}
	return names
}

func (d *Document) Graphic(name string) (port.Graphic, bool) {
	for _, f := range d.frames() {
		if f.SelectAttrValue("draw:name", "") == name {
			return &graphic{doc: d, frame: f}, true
		}
	}
	return nil, false
}

func (d *Document) BodyText() string {
	var parts []string
	for _, p := range collectParagraphs(d.body) {
		parts = append(parts, visibleText(p))
	}
	return strings.Join(parts, "\n")
}

func (d *Document) ReplaceAll(search, replace string) int {
	return replaceIn(d.body, search, replace)
}

func (d *Document) UpdateFields() error {
	if d.closed {
		return errClosed
	}
	return d.refreshFields(true)
}

func (d *Document) RecomputeAll() error {
	if d.closed {
		return errClosed
	}
	return d.refreshFields(false)
}

// StoreToFile writes the document to path. The native filter is written
// directly; every other filter goes through the converter.
func (d *Document) StoreToFile(ctx context.Context, path, filter string) error {
	if d.closed {
		return errClosed
	}
	raw, err := d.content.WriteToBytes()
	if err != nil {
		return fmt.Errorf("serializing %s: %w", contentPart, err)
	}
	d.pkg.put(contentPart, raw)

	if filter == fill.FilterWriterNative {
		return d.pkg.writeFile(path)
	}

	ext := fill.ExtensionForFilter(filter)
	if ext == "" {
		return fmt.Errorf("unknown export filter %q", filter)
	}
	if d.converter == nil {
		return fmt.Errorf("%w: no converter for filter %q", domain.ErrEngineUnavailable, filter)
	}

	workDir, err := os.MkdirTemp("", "albayan-export-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(workDir)

	src := filepath.Join(workDir, "document.odt")
	if err := d.pkg.writeFile(src); err != nil {
		return fmt.Errorf("writing intermediate document: %w", err)
	}
	converted, err := d.converter.Convert(ctx, src, workDir, filter, ext)
	if err != nil {
		return err
	}
	d.log.Debug("document converted", zap.String("filter", filter), zap.String("path", path))
	return moveFile(converted, path)
}

func (d *Document) Close() error {
	if d.closed {
		return errClosed
	}
	d.closed = true
	d.tables = nil
	d.pkg = nil
	return nil
}

func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
