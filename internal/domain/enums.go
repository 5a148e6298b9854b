package domain

import "strings"

// TemplateFileType identifies the document family of a report template.
type TemplateFileType string

const (
	TemplateFileTypeODF TemplateFileType = "odf"
)

// AllowedTemplateExtensions maps template file extensions (without dot) to their type.
var AllowedTemplateExtensions = map[string]TemplateFileType{
	"odt": TemplateFileTypeODF,
}

// ODTMimeType is the mimetype entry every OpenDocument Text package carries.
const ODTMimeType = "application/vnd.oasis.opendocument.text"

// ProcessingStatus is the lifecycle of a report request.
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusSuccessful ProcessingStatus = "successful"
	StatusFailed     ProcessingStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed.
func (s ProcessingStatus) IsTerminal() bool {
	return s == StatusSuccessful || s == StatusFailed
}

// CanTransitionTo reports whether s may move to next. A request leaves
// pending exactly once and never moves backward.
func (s ProcessingStatus) CanTransitionTo(next ProcessingStatus) bool {
	return s == StatusPending && next.IsTerminal()
}

// ExportFormat is one artifact kind a job can produce.
type ExportFormat string

const (
	ExportPDF    ExportFormat = "PDF"
	ExportNative ExportFormat = "NATIVE"
)

// OutputFormat is the caller-facing output selection of a report request.
type OutputFormat string

const (
	OutputPDF          OutputFormat = "PDF"
	OutputOpenOffice   OutputFormat = "OPENOFFICE"
	OutputPDFAndNative OutputFormat = "PDF+OPENOFFICE"
)

// ParseOutputFormat normalizes a raw output format value.
func ParseOutputFormat(raw string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToUpper(strings.TrimSpace(raw))); f {
	case OutputPDF, OutputOpenOffice, OutputPDFAndNative:
		return f, nil
	default:
		return "", ErrInvalidOutputFormat
	}
}

// ExportFormats expands f into export targets, PDF first.
func (f OutputFormat) ExportFormats() []ExportFormat {
	switch f {
	case OutputPDF:
		return []ExportFormat{ExportPDF}
	case OutputOpenOffice:
		return []ExportFormat{ExportNative}
	case OutputPDFAndNative:
		return []ExportFormat{ExportPDF, ExportNative}
	default:
		return nil
	}
}
