package handler

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// IssueReportRequest represents the body of a report request.
type IssueReportRequest struct {
	ReportOutputFormat string     `json:"report_output_format" binding:"required" example:"PDF+OPENOFFICE"`
	ReportData         WriterData `json:"report_data" binding:"required"`
	NotifyEmail        string     `json:"notify_email" example:"ops@example.com"`
}

// WriterData represents the fill payload of a report request.
type WriterData struct {
	Placeholders []map[string]string `json:"writer_placeholders"`
	Variables    []map[string]string `json:"writer_variables"`
	Images       map[string]string   `json:"writer_images" example:"logo:iVBORw0KGgo..."`
	Tables       []WriterTable       `json:"writer_tables"`
}

// WriterTable represents the rows written into one named table.
type WriterTable struct {
	TableName string              `json:"table_name" example:"Items"`
	Content   []map[string]string `json:"content"`
	Footer    map[string]string   `json:"footer" example:"{{total}}:42.00"`
}

// UpdateReportDefinitionRequest documents the multipart fields accepted by PATCH.
type UpdateReportDefinitionRequest struct {
	Name string `form:"name" example:"Monthly invoice"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message" example:"report template deleted"`
}

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
