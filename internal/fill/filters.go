package fill

import (
	"fmt"
	"path/filepath"

	"albayan/internal/domain"
)

const (
	FilterWriterPDF    = "writer_pdf_Export"
	FilterWriterNative = "writer8"
)

var filterExtensions = map[string]string{
	"writer_pdf_Export":      ".pdf",
	"calc_pdf_Export":        ".pdf",
	"impress_pdf_Export":     ".pdf",
	"writer8":                ".odt",
	"calc8":                  ".ods",
	"Rich Text Format":       ".rtf",
	"impress8":               ".odp",
	"MS Word 2007 XML":       ".docx",
	"MS Word 97":             ".doc",
	"MS Excel 2007 XML":      ".xlsx",
	"Calc MS Excel 97":       ".xls",
	"MS PowerPoint 2007 XML": ".pptx",
	"Calc MS Excel 2007 XML": ".xlsx",
}

// ExtensionForFilter returns the file extension written by filter, or "" if
// the filter is not known.
func ExtensionForFilter(filter string) string {
	return filterExtensions[filter]
}

// Filters names the export filter used for each export format.
type Filters struct {
	PDF    string
	Native string
}

// DefaultFilters are the Writer filters.
func DefaultFilters() Filters {
	return Filters{PDF: FilterWriterPDF, Native: FilterWriterNative}
}

func (f Filters) forFormat(format domain.ExportFormat) string {
	switch format {
	case domain.ExportPDF:
		return f.PDF
	case domain.ExportNative:
		return f.Native
	default:
		return ""
	}
}

// Target is one resolved export destination.
type Target struct {
	Format domain.ExportFormat
	Filter string
	Path   string
}

// ResolveTargets maps every requested format to a filter and output path
// <outputDir>/<jobID><ext>. Any unresolvable format fails the whole set.
func ResolveTargets(jobID, outputDir string, formats []domain.ExportFormat, filters Filters) ([]Target, error) {
	targets := make([]Target, 0, len(formats))
	for _, format := range formats {
		filter := filters.forFormat(format)
		ext := ExtensionForFilter(filter)
		if ext == "" {
			return nil, fmt.Errorf("no extension for export format %q (filter %q)", format, filter)
		}
		targets = append(targets, Target{
			Format: format,
			Filter: filter,
			Path:   filepath.Join(outputDir, jobID+ext),
		})
	}
	return targets, nil
}
