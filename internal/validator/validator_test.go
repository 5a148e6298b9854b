package validator_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"albayan/internal/domain"
	"albayan/internal/validator"
)

func TestValidateReportData(t *testing.T) {
	v, err := validator.New()
	require.NoError(t, err)

	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{
			name: "complete payload",
			payload: `{
				"writer_placeholders": [{"{{name}}": "Acme"}],
				"writer_variables": [{"customer": "Acme"}],
				"writer_images": {"logo": "iVBORw0KGgo="},
				"writer_tables": [{"table_name": "Sales", "content": [{"Item": "Pen"}], "footer": {"{{total}}": "3"}}]
			}`,
		},
		{
			name:    "empty sections",
			payload: `{"writer_placeholders": [], "writer_variables": [], "writer_images": {}, "writer_tables": []}`,
		},
		{
			name:    "missing section",
			payload: `{"writer_placeholders": [], "writer_variables": [], "writer_images": {}}`,
			wantErr: "writer_tables",
		},
		{
			name:    "numeric placeholder value",
			payload: `{"writer_placeholders": [{"a": 1}], "writer_variables": [], "writer_images": {}, "writer_tables": []}`,
			wantErr: "/writer_placeholders/0/a",
		},
		{
			name:    "table without content",
			payload: `{"writer_placeholders": [], "writer_variables": [], "writer_images": {}, "writer_tables": [{"table_name": "T"}]}`,
			wantErr: "content",
		},
		{
			name:    "not JSON",
			payload: `{"writer_placeholders":`,
			wantErr: "invalid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateReportData([]byte(tt.payload))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.ErrorIs(t, err, domain.ErrInvalidReportData)
			assert.Contains(t, verr.Error(), tt.wantErr)
		})
	}
}

func TestValidateIssueRequest(t *testing.T) {
	v, err := validator.New()
	require.NoError(t, err)

	assert.NoError(t, v.ValidateIssueRequest([]byte(`{"report_output_format": "PDF+OPENOFFICE", "report_data": {}}`)))
	assert.NoError(t, v.ValidateIssueRequest([]byte(`{"report_output_format": "PDF", "report_data": {}, "notify_email": "ops@example.com"}`)))
	assert.Error(t, v.ValidateIssueRequest([]byte(`{"report_output_format": "DOCX", "report_data": {}}`)))
	assert.Error(t, v.ValidateIssueRequest([]byte(`{"report_output_format": "PDF"}`)))
	assert.Error(t, v.ValidateIssueRequest([]byte(`{"report_output_format": "PDF", "report_data": {}, "notify_email": "nope"}`)))
}
