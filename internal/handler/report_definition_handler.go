package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"albayan/internal/service"
)

// ReportDefinitionHandler handles report template endpoints.
type ReportDefinitionHandler struct {
	definitions service.ReportDefinitionService
	log         *zap.Logger
}

// NewReportDefinitionHandler creates a new ReportDefinitionHandler.
func NewReportDefinitionHandler(definitions service.ReportDefinitionService, log *zap.Logger) *ReportDefinitionHandler {
	return &ReportDefinitionHandler{definitions: definitions, log: log.Named("report_definition_handler")}
}

// Create handles POST /api/v1/reports
// @Summary Upload a report template
// @Description Upload an OpenDocument Text template that report requests fill
// @Tags reports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Template file (.odt)"
// @Param name formData string false "Display name, defaults to the file name"
// @Param template_file_type formData string false "Template type" default(odf)
// @Success 201 {object} Response{data=domain.ReportDefinition} "Template stored"
// @Failure 400 {object} ErrorResponseBody "Missing or unsupported file"
// @Failure 413 {object} ErrorResponseBody "Template too large"
// @Security BearerAuth
// @Router /reports [post]
func (h *ReportDefinitionHandler) Create(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	def, err := h.definitions.Create(c.Request.Context(), service.CreateDefinitionInput{
		Name:             c.PostForm("name"),
		TemplateFileType: c.PostForm("template_file_type"),
		Template: service.TemplateUpload{
			FileName: header.Filename,
			Size:     header.Size,
			Body:     file,
		},
	})
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondCreated(c, def)
}

// List handles GET /api/v1/reports
// @Summary List report templates
// @Tags reports
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.ReportDefinition,meta=PagMeta} "Report templates"
// @Security BearerAuth
// @Router /reports [get]
func (h *ReportDefinitionHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	defs, total, err := h.definitions.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondPaginated(c, defs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/reports/:definitionId
// @Summary Get a report template
// @Tags reports
// @Produce json
// @Param definitionId path string true "Report template ID (UUID)"
// @Success 200 {object} Response{data=domain.ReportDefinition} "Report template"
// @Failure 404 {object} ErrorResponseBody "Report template not found"
// @Security BearerAuth
// @Router /reports/{definitionId} [get]
func (h *ReportDefinitionHandler) GetByID(c *gin.Context) {
	id, ok := parseDefinitionID(c)
	if !ok {
		return
	}

	def, err := h.definitions.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, def)
}

// Update handles PATCH /api/v1/reports/:definitionId
// @Summary Rename a report template or replace its file
// @Tags reports
// @Accept multipart/form-data
// @Produce json
// @Param definitionId path string true "Report template ID (UUID)"
// @Param name formData string false "New display name"
// @Param file formData file false "Replacement template file (.odt)"
// @Success 200 {object} Response{data=domain.ReportDefinition} "Updated report template"
// @Failure 400 {object} ErrorResponseBody "Nothing to update or unsupported file"
// @Failure 404 {object} ErrorResponseBody "Report template not found"
// @Security BearerAuth
// @Router /reports/{definitionId} [patch]
func (h *ReportDefinitionHandler) Update(c *gin.Context) {
	id, ok := parseDefinitionID(c)
	if !ok {
		return
	}

	var input service.UpdateDefinitionInput
	if name, present := c.GetPostForm("name"); present {
		input.Name = &name
	}
	file, header, err := c.Request.FormFile("file")
	if err == nil {
		defer func() { _ = file.Close() }()
		input.Template = &service.TemplateUpload{FileName: header.Filename, Size: header.Size, Body: file}
	}
	if input.Name == nil && input.Template == nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "name or file is required")
		return
	}

	def, err := h.definitions.Update(c.Request.Context(), id, input)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, def)
}

// Delete handles DELETE /api/v1/reports/:definitionId
// @Summary Delete a report template and its requests
// @Tags reports
// @Produce json
// @Param definitionId path string true "Report template ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse} "Report template deleted"
// @Failure 404 {object} ErrorResponseBody "Report template not found"
// @Security BearerAuth
// @Router /reports/{definitionId} [delete]
func (h *ReportDefinitionHandler) Delete(c *gin.Context) {
	id, ok := parseDefinitionID(c)
	if !ok {
		return
	}

	if err := h.definitions.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, MessageResponse{Message: "report template deleted"})
}

func parseDefinitionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("definitionId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid report template ID")
		return uuid.Nil, false
	}
	return id, true
}
