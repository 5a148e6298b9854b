package router_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"albayan/internal/domain"
	"albayan/internal/handler"
	"albayan/internal/router"
	"albayan/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setup(t *testing.T, auth *mocks.MockAuthService) (*gin.Engine, *mocks.MockReportDefinitionService, *mocks.MockReportRequestService, string) {
	t.Helper()
	log := zap.NewNop()
	defs := new(mocks.MockReportDefinitionService)
	reqs := new(mocks.MockReportRequestService)
	outDir := t.TempDir()

	var r *gin.Engine
	if auth != nil {
		r = router.Setup(log, auth, nil, outDir,
			handler.NewReportDefinitionHandler(defs, log),
			handler.NewReportRequestHandler(reqs, defs, log),
			handler.NewHealthHandler(nil, nil))
	} else {
		r = router.Setup(log, nil, nil, outDir,
			handler.NewReportDefinitionHandler(defs, log),
			handler.NewReportRequestHandler(reqs, defs, log),
			handler.NewHealthHandler(nil, nil))
	}
	return r, defs, reqs, outDir
}

func TestRoutes(t *testing.T) {
	r, defs, reqs, _ := setup(t, nil)
	defID, reqID := uuid.New(), uuid.New()
	defs.On("GetByID", mock.Anything, defID).Return(&domain.ReportDefinition{ID: defID}, nil)
	reqs.On("GetByID", mock.Anything, defID, reqID).Return(nil, domain.ErrRequestNotFound)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+defID.String(), http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+defID.String()+"/issue/"+reqID.String(), http.NoBody))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutes_RequireTokenWhenAuthEnabled(t *testing.T) {
	r, _, _, _ := setup(t, new(mocks.MockAuthService))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports", http.NoBody))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutes_ServesOutputFiles(t *testing.T) {
	r, _, _, outDir := setup(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "job.pdf"), []byte("%PDF-1.7"), 0o600))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, router.OutputRoute+"/job.pdf", http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.7", w.Body.String())
}
