package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"albayan/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Report Request ID",
	"Report Template ID",
	"Template Name",
	"Output Format",
	"Processing Status",
	"Processing Error",
	"Attempts",
	"Artifact Count",
	"Artifact Files",
	"Notify Email",
	"Requested At",
	"Updated At",
	"Completed At",
}

// ColumnCount is the number of columns of every row.
var ColumnCount = len(columns)

// Writer wraps csv.Writer for exporting report request history as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteRequests converts a batch of report requests of one template to CSV
// rows and writes them.
func (w *Writer) WriteRequests(templateName string, reqs []domain.ReportRequest) error {
	for i := range reqs {
		if err := w.csv.Write(requestToRow(templateName, &reqs[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// requestToRow converts a single request to a row. Undecodable artifact
// lists leave the artifact columns empty.
func requestToRow(templateName string, req *domain.ReportRequest) []string {
	row := make([]string, len(columns))

	row[0] = req.ID.String()
	row[1] = req.DefinitionID.String()
	row[2] = templateName
	row[3] = string(req.OutputFormat)
	row[4] = string(req.ProcessingStatus)
	row[5] = req.ProcessingError
	row[6] = strconv.Itoa(req.Attempts)
	row[9] = req.NotifyEmail
	row[10] = req.CreatedAt.Format(time.RFC3339)
	row[11] = req.UpdatedAt.Format(time.RFC3339)
	row[12] = formatTime(req.CompletedAt)

	artifacts, err := req.StoredArtifacts()
	if err != nil {
		return row
	}
	names := make([]string, len(artifacts))
	for i, a := range artifacts {
		names[i] = a.FileName
	}
	row[7] = strconv.Itoa(len(artifacts))
	row[8] = strings.Join(names, "; ")

	return row
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a template name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "report"
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_template_name}_requests_{YYYY-MM-DD}.csv
func BuildFilename(templateName string) string {
	sanitized := SanitizeFilename(templateName)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_requests_%s.csv", sanitized, date)
}
