package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReportDefinition is an uploaded report template.
type ReportDefinition struct {
	ID               uuid.UUID        `db:"id" json:"report_template_id"`
	Name             string           `db:"name" json:"name"`
	TemplateFileType TemplateFileType `db:"template_file_type" json:"template_file_type"`
	TemplateFile     string           `db:"template_file" json:"template_file"`
	S3Bucket         string           `db:"s3_bucket" json:"-"`
	S3Key            string           `db:"s3_key" json:"-"`
	FileSize         int64            `db:"file_size" json:"file_size"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

// ReportRequest is one fill job against a report definition.
type ReportRequest struct {
	ID               uuid.UUID        `db:"id" json:"report_request_id"`
	DefinitionID     uuid.UUID        `db:"definition_id" json:"report_template_id"`
	OutputFormat     OutputFormat     `db:"output_format" json:"report_output_format"`
	ReportData       json.RawMessage  `db:"report_data" json:"report_data,omitempty"`
	ProcessingStatus ProcessingStatus `db:"processing_status" json:"processing_status"`
	ProcessingError  string           `db:"processing_error" json:"processing_error,omitempty"`
	Artifacts        json.RawMessage  `db:"artifacts" json:"artifacts,omitempty"`
	NotifyEmail      string           `db:"notify_email" json:"notify_email,omitempty"`
	Attempts         int              `db:"attempts" json:"attempts"`
	ClaimedAt        *time.Time       `db:"claimed_at" json:"-"`
	CreatedAt        time.Time        `db:"created_at" json:"request_date"`
	UpdatedAt        time.Time        `db:"updated_at" json:"update_date"`
	CompletedAt      *time.Time       `db:"completed_at" json:"completed_at,omitempty"`
}

// StoredArtifact is an exported file after it has been uploaded.
type StoredArtifact struct {
	Format   ExportFormat `json:"format"`
	Filter   string       `json:"filter"`
	FileName string       `json:"file_name"`
	S3Key    string       `json:"s3_key"`
	URL      string       `json:"url,omitempty"`
}

// StoredArtifacts decodes the persisted artifact list.
func (r *ReportRequest) StoredArtifacts() ([]StoredArtifact, error) {
	if len(r.Artifacts) == 0 || string(r.Artifacts) == "null" {
		return nil, nil
	}
	var out []StoredArtifact
	if err := json.Unmarshal(r.Artifacts, &out); err != nil {
		return nil, fmt.Errorf("decoding artifacts of request %s: %w", r.ID, err)
	}
	return out, nil
}
