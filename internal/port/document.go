package port

import "context"

// DocumentEngine opens template files into mutable documents.
type DocumentEngine interface {
	Open(ctx context.Context, templatePath string) (Document, error)
}

// Document is one opened template. A Document is owned by a single job and
// is not safe for concurrent use.
type Document interface {
	Tables() []Table
	Table(name string) (Table, bool)
	FieldMasters() []FieldMaster
	FieldInstances() []FieldInstance
	GraphicNames() []string
	Graphic(name string) (Graphic, bool)
	BodyText() string

	// ReplaceAll replaces every literal occurrence of search in the body and
	// returns the number of replacements.
	ReplaceAll(search, replace string) int

	// UpdateFields refreshes field instances from their masters.
	UpdateFields() error
	// RecomputeAll re-reads every declaration and refreshes all dependent fields.
	RecomputeAll() error

	StoreToFile(ctx context.Context, path, filter string) error
	Close() error
}

// Table is a named grid inside a document. Rows and columns are zero-based.
type Table interface {
	Name() string
	RowCount() int
	ColumnCount() int
	Cell(col, row int) (Cell, bool)
	// InsertRows inserts count empty rows before index.
	InsertRows(index, count int) error
}

// Cell is one table cell.
type Cell interface {
	// Text is the cell's own text, ignoring nested text ranges and fields.
	Text() string
	// NestedText is the content of every text range in the cell.
	NestedText() string
	// FieldText concatenates the rendered text of fields anchored in the cell.
	FieldText() string
	// Content is what a reader sees in the cell.
	Content() string
	SetText(value string)
	ReplaceAll(search, replace string) int
}

// FieldMaster is a named value slot that field instances render.
type FieldMaster interface {
	QualifiedName() string
	Name() string
	Content() string
	SetContent(value string) error
}

// FieldInstance is a rendered occurrence of a field master in the body.
type FieldInstance interface {
	// MasterName is the qualified name of the originating master.
	MasterName() string
	Text() string
	// Flatten replaces the instance with literal text and detaches it from
	// its master.
	Flatten(value string) error
}

// Graphic is a named embedded image object.
type Graphic interface {
	Name() string
	// SetURL rebinds the image source in place. It returns
	// domain.ErrUnsupportedOperation when the object cannot be rebound.
	SetURL(path string) error
	// ReplaceGraphic builds a new image resource from path.
	ReplaceGraphic(path string) error
}
