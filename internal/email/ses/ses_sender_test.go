package ses

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"albayan/internal/domain"
	"albayan/internal/port"
)

func TestBuildReportStatus_Successful(t *testing.T) {
	subject, text, body := buildReportStatus(port.ReportStatusEmail{
		RequestID: "abc",
		Template:  "Invoice",
		Status:    domain.StatusSuccessful,
		Links:     []string{"https://files.example/abc.pdf"},
	}, "https://app.example")

	assert.Equal(t, "Your report Invoice is ready", subject)
	assert.Contains(t, text, "https://files.example/abc.pdf")
	assert.Contains(t, text, "https://app.example/reports/requests/abc")
	assert.Contains(t, body, `<a href="https://files.example/abc.pdf">`)
}

func TestBuildReportStatus_FailedEscapesError(t *testing.T) {
	subject, text, body := buildReportStatus(port.ReportStatusEmail{
		RequestID: "abc",
		Template:  "Invoice",
		Status:    domain.StatusFailed,
		Error:     "table <Sales> broke",
	}, "https://app.example")

	assert.Equal(t, "Your report Invoice failed", subject)
	assert.Contains(t, text, "table <Sales> broke")
	assert.Contains(t, body, "table &lt;Sales&gt; broke")
	assert.NotContains(t, body, "<Sales>")
}
