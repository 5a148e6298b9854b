package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"albayan/internal/csvexport"
	"albayan/internal/service"
)

// maxIssueBodyBytes bounds a report request body; embedded images make
// these larger than typical JSON requests.
const maxIssueBodyBytes = 32 << 20

// exportBatchSize is the page size used to stream a CSV export.
const exportBatchSize = 200

// ReportRequestHandler handles report request endpoints.
type ReportRequestHandler struct {
	requests    service.ReportRequestService
	definitions service.ReportDefinitionService
	log         *zap.Logger
}

// NewReportRequestHandler creates a new ReportRequestHandler.
func NewReportRequestHandler(requests service.ReportRequestService, definitions service.ReportDefinitionService, log *zap.Logger) *ReportRequestHandler {
	return &ReportRequestHandler{requests: requests, definitions: definitions, log: log.Named("report_request_handler")}
}

// Issue handles POST /api/v1/reports/:definitionId/issue
// @Summary Request a report
// @Description Queue a fill of the report template; the request starts as pending
// @Tags report-requests
// @Accept json
// @Produce json
// @Param definitionId path string true "Report template ID (UUID)"
// @Param request body IssueReportRequest true "Output format and fill data"
// @Success 202 {object} Response{data=domain.ReportRequest} "Report request queued"
// @Failure 400 {object} ErrorResponseBody "Invalid report data or output format"
// @Failure 404 {object} ErrorResponseBody "Report template not found"
// @Security BearerAuth
// @Router /reports/{definitionId}/issue [post]
func (h *ReportRequestHandler) Issue(c *gin.Context) {
	defID, ok := parseDefinitionID(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxIssueBodyBytes))
	if err != nil {
		RespondError(c, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body is too large")
		return
	}

	req, err := h.requests.Issue(c.Request.Context(), defID, body)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondAccepted(c, req)
}

// List handles GET /api/v1/reports/:definitionId/issue
// @Summary List report requests of a template
// @Tags report-requests
// @Produce json
// @Param definitionId path string true "Report template ID (UUID)"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.ReportRequest,meta=PagMeta} "Report requests"
// @Failure 404 {object} ErrorResponseBody "Report template not found"
// @Security BearerAuth
// @Router /reports/{definitionId}/issue [get]
func (h *ReportRequestHandler) List(c *gin.Context) {
	defID, ok := parseDefinitionID(c)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	reqs, total, err := h.requests.ListByDefinition(c.Request.Context(), defID, offset, limit)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondPaginated(c, reqs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// ExportCSV handles GET /api/v1/reports/:definitionId/issue/export
// @Summary Export report request history as CSV
// @Tags report-requests
// @Produce text/csv
// @Param definitionId path string true "Report template ID (UUID)"
// @Success 200 {file} file "CSV file"
// @Failure 404 {object} ErrorResponseBody "Report template not found"
// @Security BearerAuth
// @Router /reports/{definitionId}/issue/export [get]
func (h *ReportRequestHandler) ExportCSV(c *gin.Context) {
	defID, ok := parseDefinitionID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	def, err := h.definitions.GetByID(ctx, defID)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, csvexport.BuildFilename(def.Name)))
	c.Status(http.StatusOK)

	if _, err := c.Writer.Write(csvexport.BOM); err != nil {
		return
	}
	w := csvexport.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		return
	}

	for offset := 0; ; offset += exportBatchSize {
		reqs, total, err := h.requests.ListByDefinition(ctx, defID, offset, exportBatchSize)
		if err != nil {
			// Headers are already sent; the truncated file is all we can do.
			h.log.Error("csv export aborted", zap.String("definition_id", defID.String()), zap.Int("offset", offset), zap.Error(err))
			break
		}
		if err := w.WriteRequests(def.Name, reqs); err != nil {
			break
		}
		w.Flush()
		if len(reqs) == 0 || offset+len(reqs) >= total {
			break
		}
	}
	w.Flush()
}

// GetByID handles GET /api/v1/reports/:definitionId/issue/:requestId
// @Summary Get a report request
// @Description Get a report request with presigned download URLs for its artifacts
// @Tags report-requests
// @Produce json
// @Param definitionId path string true "Report template ID (UUID)"
// @Param requestId path string true "Report request ID (UUID)"
// @Success 200 {object} Response{data=service.ReportRequestView} "Report request"
// @Failure 404 {object} ErrorResponseBody "Report request not found"
// @Security BearerAuth
// @Router /reports/{definitionId}/issue/{requestId} [get]
func (h *ReportRequestHandler) GetByID(c *gin.Context) {
	defID, reqID, ok := parseRequestIDs(c)
	if !ok {
		return
	}

	view, err := h.requests.GetByID(c.Request.Context(), defID, reqID)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, view)
}

// Delete handles DELETE /api/v1/reports/:definitionId/issue/:requestId
// @Summary Delete a report request and its artifacts
// @Tags report-requests
// @Produce json
// @Param definitionId path string true "Report template ID (UUID)"
// @Param requestId path string true "Report request ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse} "Report request deleted"
// @Failure 404 {object} ErrorResponseBody "Report request not found"
// @Security BearerAuth
// @Router /reports/{definitionId}/issue/{requestId} [delete]
func (h *ReportRequestHandler) Delete(c *gin.Context) {
	defID, reqID, ok := parseRequestIDs(c)
	if !ok {
		return
	}

	if err := h.requests.Delete(c.Request.Context(), defID, reqID); err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, MessageResponse{Message: "report request deleted"})
}

func parseRequestIDs(c *gin.Context) (defID, reqID uuid.UUID, ok bool) {
	defID, ok = parseDefinitionID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	reqID, err := uuid.Parse(c.Param("requestId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid report request ID")
		return uuid.Nil, uuid.Nil, false
	}
	return defID, reqID, true
}
