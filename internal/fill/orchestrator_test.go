package fill_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"albayan/internal/domain"
	"albayan/internal/fill"
)

func newJob(t *testing.T, req *domain.FillRequest, formats ...domain.ExportFormat) fill.Job {
	t.Helper()
	return fill.Job{
		ID:         "job-1",
		Request:    req,
		Formats:    formats,
		OutputDir:  filepath.Join(t.TempDir(), "out"),
		ScratchDir: t.TempDir(),
	}
}

func recordStates(states *[]fill.State) fill.Option {
	return fill.WithStateHook(func(_ string, s fill.State) { *states = append(*states, s) })
}

func TestOrchestrator_FullRun(t *testing.T) {
	var states []fill.State
	o := fill.NewOrchestrator(fill.DefaultFilters(), zap.NewNop(), recordStates(&states))

	sales := newFakeTable("Sales", []string{"Name", "Qty"}, []string{"", ""}, []string{"Total", ""})
	customer := &fakeMaster{qualified: userMaster + "Customer"}
	inst := &fakeInstance{master: customer.qualified}
	logo := &fakeGraphic{name: "logo"}
	doc := &fakeDoc{
		paragraphs: []string{"Invoice for {{NAME}}"},
		tables:     []*fakeTable{sales},
		masters:    []*fakeMaster{customer},
		instances:  []*fakeInstance{inst},
		graphics:   []*fakeGraphic{logo},
	}
	req := &domain.FillRequest{
		Placeholders: row("{{NAME}}", "Alice"),
		Variables:    row("Customer", "ACME"),
		Images:       map[string]string{"logo": "iVBORw0KGgoAAAANSUhEUgAAAAE="},
		Tables: []domain.TableFill{{
			TableName: "Sales",
			Rows:      []domain.Pairs{row("Name", "Pens", "Qty", "10")},
			Footer:    row("Total", "10"),
		}},
	}
	job := newJob(t, req, domain.ExportPDF, domain.ExportNative)

	outcome := o.Run(context.Background(), doc, job)

	require.True(t, outcome.Success, outcome.Error)
	assert.Empty(t, outcome.Error)
	assert.Equal(t, []domain.OutputArtifact{
		{Format: domain.ExportPDF, Filter: "writer_pdf_Export", Path: filepath.Join(job.OutputDir, "job-1.pdf")},
		{Format: domain.ExportNative, Filter: "writer8", Path: filepath.Join(job.OutputDir, "job-1.odt")},
	}, outcome.Artifacts)
	for _, a := range outcome.Artifacts {
		_, err := os.Stat(a.Path)
		assert.NoError(t, err)
	}

	assert.Equal(t, []fill.State{
		fill.StateOpened,
		fill.StatePlaceholdersFilled,
		fill.StateVariablesFilled,
		fill.StateImagesFilled,
		fill.StateTablesFilled,
		fill.StateRecomputed,
		fill.StateExported,
	}, states)
	assert.Equal(t, "Invoice for Alice", doc.BodyText())
	assert.Equal(t, "ACME", inst.text)
	assert.NotEmpty(t, logo.url)
	assert.Equal(t, [][]string{{"Name", "Qty"}, {"Pens", "10"}, {"10", ""}}, sales.texts())
	assert.Equal(t, 1, doc.updateCalls)
	assert.Zero(t, doc.recomputeCalls)
	assert.Equal(t, 1, doc.closeCalls)
}

func TestOrchestrator_EmptyRequestSkipsPhases(t *testing.T) {
	var states []fill.State
	o := fill.NewOrchestrator(fill.DefaultFilters(), zap.NewNop(), recordStates(&states))
	doc := &fakeDoc{paragraphs: []string{"static"}}

	outcome := o.Run(context.Background(), doc, newJob(t, &domain.FillRequest{}, domain.ExportNative))

	assert.True(t, outcome.Success)
	assert.Len(t, outcome.Artifacts, 1)
	assert.Equal(t, fill.StateExported, states[len(states)-1])
	assert.Equal(t, 1, doc.closeCalls)
}

func TestOrchestrator_UnknownFilterFailsWithNoArtifacts(t *testing.T) {
	var states []fill.State
	filters := fill.Filters{PDF: fill.FilterWriterPDF, Native: "NoSuchFilter"}
	o := fill.NewOrchestrator(filters, zap.NewNop(), recordStates(&states))
	doc := &fakeDoc{paragraphs: []string{"{{X}}"}}
	job := newJob(t, &domain.FillRequest{Placeholders: row("{{X}}", "y")}, domain.ExportPDF, domain.ExportNative)

	outcome := o.Run(context.Background(), doc, job)

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Error, "NoSuchFilter")
	assert.Empty(t, outcome.Artifacts)
	assert.Empty(t, doc.stored)
	_, err := os.Stat(job.OutputDir)
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, fill.StateFailed, states[len(states)-1])
	assert.Equal(t, 1, doc.closeCalls)
}

func TestOrchestrator_StoreFailureIsFatal(t *testing.T) {
	o := fill.NewOrchestrator(fill.DefaultFilters(), zap.NewNop())
	doc := &fakeDoc{storeErr: errors.New("disk full")}

	outcome := o.Run(context.Background(), doc, newJob(t, &domain.FillRequest{}, domain.ExportPDF))

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Error, "disk full")
	assert.Equal(t, 1, doc.closeCalls)
}

func TestOrchestrator_PartialExportKeepsWrittenArtifacts(t *testing.T) {
	o := fill.NewOrchestrator(fill.DefaultFilters(), zap.NewNop())
	doc := &fakeDoc{failFilter: fill.FilterWriterNative}

	outcome := o.Run(context.Background(), doc, newJob(t, &domain.FillRequest{}, domain.ExportPDF, domain.ExportNative))

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Error, "writer8")
	require.Len(t, outcome.Artifacts, 1)
	assert.Equal(t, domain.ExportPDF, outcome.Artifacts[0].Format)
	assert.FileExists(t, outcome.Artifacts[0].Path)
	assert.Equal(t, 1, doc.closeCalls)
}

func TestOrchestrator_RecomputeFailuresAreNotFatal(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	o := fill.NewOrchestrator(fill.DefaultFilters(), zap.New(core))
	doc := &fakeDoc{updateErr: errors.New("no fields"), recomputeErr: errors.New("dispatch failed")}

	outcome := o.Run(context.Background(), doc, newJob(t, &domain.FillRequest{}, domain.ExportPDF))

	assert.True(t, outcome.Success)
	assert.Equal(t, 1, doc.updateCalls)
	assert.Equal(t, 1, doc.recomputeCalls)
	assert.Equal(t, 1, logs.FilterMessage("document recompute failed").Len())
}

func TestOrchestrator_PanicBecomesFailure(t *testing.T) {
	var states []fill.State
	o := fill.NewOrchestrator(fill.DefaultFilters(), zap.NewNop(), recordStates(&states))
	doc := &fakeDoc{paragraphs: []string{"x"}, panicOn: "replace"}

	outcome := o.Run(context.Background(), doc, newJob(t, &domain.FillRequest{Placeholders: row("x", "y")}, domain.ExportPDF))

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Error, "engine crashed")
	assert.Equal(t, []fill.State{fill.StateOpened, fill.StateFailed}, states)
	assert.Equal(t, 1, doc.closeCalls)
}

func TestOrchestrator_CloseErrorDoesNotChangeOutcome(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	o := fill.NewOrchestrator(fill.DefaultFilters(), zap.New(core))
	doc := &fakeDoc{closeErr: errors.New("already closed")}

	outcome := o.Run(context.Background(), doc, newJob(t, &domain.FillRequest{}, domain.ExportNative))

	assert.True(t, outcome.Success)
	assert.Equal(t, 1, logs.FilterMessage("closing document failed").Len())
}

func TestFatalError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := error(&fill.FatalError{Phase: fill.StateRecomputed, Err: cause})

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "RECOMPUTED")
}

func TestResolveTargets(t *testing.T) {
	targets, err := fill.ResolveTargets("r1", "/out", []domain.ExportFormat{domain.ExportPDF, domain.ExportNative},
		fill.Filters{PDF: "writer_pdf_Export", Native: "MS Word 2007 XML"})
	require.NoError(t, err)
	assert.Equal(t, []fill.Target{
		{Format: domain.ExportPDF, Filter: "writer_pdf_Export", Path: filepath.Join("/out", "r1.pdf")},
		{Format: domain.ExportNative, Filter: "MS Word 2007 XML", Path: filepath.Join("/out", "r1.docx")},
	}, targets)

	_, err = fill.ResolveTargets("r1", "/out", []domain.ExportFormat{"EPUB"}, fill.DefaultFilters())
	assert.Error(t, err)
}

func TestExtensionForFilter(t *testing.T) {
	assert.Equal(t, ".pdf", fill.ExtensionForFilter("calc_pdf_Export"))
	assert.Equal(t, ".rtf", fill.ExtensionForFilter("Rich Text Format"))
	assert.Equal(t, ".xlsx", fill.ExtensionForFilter("Calc MS Excel 2007 XML"))
	assert.Equal(t, "", fill.ExtensionForFilter("writer_png_Export"))
}
