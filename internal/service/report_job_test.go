package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"albayan/internal/domain"
	"albayan/internal/engine"
	"albayan/internal/engine/odf"
	"albayan/internal/fill"
	"albayan/internal/port"
	"albayan/internal/service"
	"albayan/mocks"
)

const invoiceData = `{"writer_placeholders":[{"{{customer}}":"Acme"}],"writer_variables":[],"writer_images":{},` +
	`"writer_tables":[{"table_name":"Items","content":[{"Item":"Pen","Qty":"2"},{"Item":"Ink","Qty":"1"}]}]}`

type jobFixture struct {
	job     *service.ReportJob
	defRepo *mocks.MockReportDefinitionRepo
	reqRepo *mocks.MockReportRequestRepo
	storage *mocks.MockObjectStorage
	email   *mocks.MockEmailSender
	cfg     service.ReportJobConfig
	def     *domain.ReportDefinition
}

func newJobFixture(t *testing.T) *jobFixture {
	t.Helper()
	log := zap.NewNop()
	handle := engine.NewHandle(func(context.Context) (port.DocumentEngine, error) {
		return odf.NewEngine(nil, log), nil
	}, 1, log)
	t.Cleanup(func() { _ = handle.Close() })

	f := &jobFixture{
		defRepo: new(mocks.MockReportDefinitionRepo),
		reqRepo: new(mocks.MockReportRequestRepo),
		storage: new(mocks.MockObjectStorage),
		email:   new(mocks.MockEmailSender),
		cfg: service.ReportJobConfig{
			Bucket:          "reports-bucket",
			OutputDir:       t.TempDir(),
			ScratchDir:      t.TempDir(),
			PublicOutputURL: "/output",
		},
		def: &domain.ReportDefinition{
			ID:       uuid.New(),
			Name:     "Invoice",
			S3Bucket: "reports-bucket",
			S3Key:    "templates/x/invoice.odt",
		},
	}
	f.job = service.NewReportJob(f.defRepo, f.reqRepo, f.storage, handle,
		fill.NewOrchestrator(fill.DefaultFilters(), log), f.email, f.cfg, log)
	return f
}

func (f *jobFixture) request(format domain.OutputFormat) *domain.ReportRequest {
	return &domain.ReportRequest{
		ID:               uuid.New(),
		DefinitionID:     f.def.ID,
		OutputFormat:     format,
		ReportData:       json.RawMessage(invoiceData),
		ProcessingStatus: domain.StatusPending,
		Attempts:         1,
	}
}

func (f *jobFixture) serveTemplate(t *testing.T) {
	template := buildODT(t)
	f.storage.On("Download", mock.Anything, f.def.S3Bucket, f.def.S3Key, mock.Anything).
		Run(func(args mock.Arguments) {
			w := args.Get(3).(io.WriterAt)
			_, err := w.WriteAt(template, 0)
			require.NoError(t, err)
		}).
		Return(nil)
}

func TestReportJob_Process_Native(t *testing.T) {
	f := newJobFixture(t)
	req := f.request(domain.OutputOpenOffice)
	req.NotifyEmail = "ops@example.com"

	f.defRepo.On("GetByID", mock.Anything, f.def.ID).Return(f.def, nil)
	f.serveTemplate(t)

	var uploaded []byte
	wantKey := "reports/" + req.ID.String() + "/" + req.ID.String() + ".odt"
	f.storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Key == wantKey && in.Bucket == "reports-bucket" && in.ContentType == domain.ODTMimeType
	})).
		Run(func(args mock.Arguments) {
			in := args.Get(1).(port.UploadInput)
			data, err := io.ReadAll(in.Body)
			require.NoError(t, err)
			uploaded = data
		}).
		Return(&port.UploadOutput{Location: wantKey}, nil)

	f.reqRepo.On("SetArtifacts", mock.Anything, req.ID, mock.MatchedBy(func(raw json.RawMessage) bool {
		var stored []domain.StoredArtifact
		if err := json.Unmarshal(raw, &stored); err != nil || len(stored) != 1 {
			return false
		}
		return stored[0].S3Key == wantKey && stored[0].Format == domain.ExportNative &&
			stored[0].URL == "/output/"+req.ID.String()+".odt"
	})).Return(nil)
	f.reqRepo.On("SetStatus", mock.Anything, req.ID, domain.StatusSuccessful, "").Return(nil)
	f.email.On("SendReportStatus", mock.Anything, mock.MatchedBy(func(msg port.ReportStatusEmail) bool {
		return msg.To == "ops@example.com" && msg.Status == domain.StatusSuccessful &&
			msg.Template == "Invoice" && len(msg.Links) == 1
	})).Return(nil)

	outcome := f.job.Process(context.Background(), req)

	require.True(t, outcome.Success, outcome.Error)
	require.Len(t, outcome.Artifacts, 1)
	assert.Equal(t, filepath.Join(f.cfg.OutputDir, req.ID.String()+".odt"), outcome.Artifacts[0].Path)

	content := readContent(t, uploaded)
	assert.Contains(t, content, "Invoice for Acme")
	assert.Contains(t, content, "Pen")
	assert.Contains(t, content, "Ink")
	assert.NotContains(t, content, "{{customer}}")

	_, err := os.Stat(filepath.Join(f.cfg.ScratchDir, req.ID.String()))
	assert.True(t, os.IsNotExist(err))

	f.storage.AssertExpectations(t)
	f.reqRepo.AssertExpectations(t)
	f.email.AssertExpectations(t)
}

func TestReportJob_Process_DefinitionMissing(t *testing.T) {
	f := newJobFixture(t)
	req := f.request(domain.OutputPDF)

	f.defRepo.On("GetByID", mock.Anything, f.def.ID).Return(nil, domain.ErrDefinitionNotFound)
	f.reqRepo.On("SetStatus", mock.Anything, req.ID, domain.StatusFailed, domain.ErrDefinitionNotFound.Error()).Return(nil)

	outcome := f.job.Process(context.Background(), req)

	assert.False(t, outcome.Success)
	assert.Equal(t, domain.ErrDefinitionNotFound.Error(), outcome.Error)
	f.storage.AssertNotCalled(t, "Download", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.reqRepo.AssertExpectations(t)
}

func TestReportJob_Process_DownloadFails(t *testing.T) {
	f := newJobFixture(t)
	req := f.request(domain.OutputOpenOffice)

	f.defRepo.On("GetByID", mock.Anything, f.def.ID).Return(f.def, nil)
	f.storage.On("Download", mock.Anything, f.def.S3Bucket, f.def.S3Key, mock.Anything).Return(errors.New("no such key"))
	f.reqRepo.On("SetStatus", mock.Anything, req.ID, domain.StatusFailed, mock.MatchedBy(func(msg string) bool {
		return msg != ""
	})).Return(nil)

	outcome := f.job.Process(context.Background(), req)

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Error, "no such key")
	f.reqRepo.AssertExpectations(t)
}

func TestReportJob_Process_RecordsStatusAfterJobDeadline(t *testing.T) {
	f := newJobFixture(t)
	req := f.request(domain.OutputOpenOffice)
	req.NotifyEmail = "ops@example.com"

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	f.defRepo.On("GetByID", mock.Anything, f.def.ID).Return(f.def, nil)
	f.storage.On("Download", mock.Anything, f.def.S3Bucket, f.def.S3Key, mock.Anything).Return(context.DeadlineExceeded)

	var statusErr, emailErr error
	var statusHasDeadline bool
	f.reqRepo.On("SetStatus", mock.Anything, req.ID, domain.StatusFailed, mock.Anything).
		Run(func(args mock.Arguments) {
			c := args.Get(0).(context.Context)
			statusErr = c.Err()
			_, statusHasDeadline = c.Deadline()
		}).
		Return(nil)
	f.email.On("SendReportStatus", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { emailErr = args.Get(0).(context.Context).Err() }).
		Return(nil)

	outcome := f.job.Process(ctx, req)

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Error, context.DeadlineExceeded.Error())
	assert.NoError(t, statusErr)
	assert.True(t, statusHasDeadline)
	assert.NoError(t, emailErr)
	f.reqRepo.AssertExpectations(t)
	f.email.AssertExpectations(t)
}

func TestReportJob_Process_ExportWithoutConverterFails(t *testing.T) {
	f := newJobFixture(t)
	req := f.request(domain.OutputPDF)

	f.defRepo.On("GetByID", mock.Anything, f.def.ID).Return(f.def, nil)
	f.serveTemplate(t)
	f.reqRepo.On("SetStatus", mock.Anything, req.ID, domain.StatusFailed, mock.Anything).Return(nil)

	outcome := f.job.Process(context.Background(), req)

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Error, domain.ErrEngineUnavailable.Error())
	assert.Empty(t, outcome.Artifacts)
	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestReportJob_Process_UploadFailureFailsJob(t *testing.T) {
	f := newJobFixture(t)
	req := f.request(domain.OutputOpenOffice)

	f.defRepo.On("GetByID", mock.Anything, f.def.ID).Return(f.def, nil)
	f.serveTemplate(t)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))
	f.reqRepo.On("SetStatus", mock.Anything, req.ID, domain.StatusFailed, mock.Anything).Return(nil)

	outcome := f.job.Process(context.Background(), req)

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Error, domain.ErrUploadFailed.Error())
	f.reqRepo.AssertNotCalled(t, "SetArtifacts", mock.Anything, mock.Anything, mock.Anything)
}

func TestReportJob_Process_KeepScratch(t *testing.T) {
	f := newJobFixture(t)
	f.cfg.KeepScratch = true
	log := zap.NewNop()
	handle := engine.NewHandle(func(context.Context) (port.DocumentEngine, error) {
		return odf.NewEngine(nil, log), nil
	}, 1, log)
	f.job = service.NewReportJob(f.defRepo, f.reqRepo, f.storage, handle,
		fill.NewOrchestrator(fill.DefaultFilters(), log), nil, f.cfg, log)
	req := f.request(domain.OutputOpenOffice)

	f.defRepo.On("GetByID", mock.Anything, f.def.ID).Return(f.def, nil)
	f.serveTemplate(t)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	f.reqRepo.On("SetArtifacts", mock.Anything, req.ID, mock.Anything).Return(nil)
	f.reqRepo.On("SetStatus", mock.Anything, req.ID, domain.StatusSuccessful, "").Return(nil)

	outcome := f.job.Process(context.Background(), req)

	require.True(t, outcome.Success, outcome.Error)
	assert.FileExists(t, filepath.Join(f.cfg.ScratchDir, req.ID.String(), "template.odt"))
}
