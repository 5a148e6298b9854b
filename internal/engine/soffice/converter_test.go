package soffice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"albayan/internal/domain"
)

type fakeRunner struct {
	name    string
	args    []string
	stdout  string
	stderr  string
	err     error
	produce bool
}

func (f *fakeRunner) Run(ctx context.Context, name string, _ *zap.Logger, args ...string) ([]byte, []byte, error) {
	f.name, f.args = name, args
	if f.err != nil {
		return nil, []byte(f.stderr), f.err
	}
	if f.produce {
		var outDir, src, target string
		for i, a := range args {
			switch a {
			case "--outdir":
				outDir = args[i+1]
			case "--convert-to":
				target = args[i+1]
			}
		}
		src = args[len(args)-1]
		ext := "." + strings.SplitN(target, ":", 2)[0]
		base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
		if err := os.WriteFile(filepath.Join(outDir, base+ext), []byte("converted"), 0o600); err != nil {
			return nil, nil, err
		}
	}
	return []byte(f.stdout), []byte(f.stderr), nil
}

func TestConvert_BuildsCommandAndReturnsOutput(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{produce: true}
	c := NewConverter("", time.Minute, zap.NewNop(), WithRunner(runner))

	out, err := c.Convert(context.Background(), filepath.Join(dir, "document.odt"), dir, "writer_pdf_Export", ".pdf")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "document.pdf"), out)
	assert.Equal(t, DefaultBinary, runner.name)
	assert.True(t, strings.HasPrefix(runner.args[0], "-env:UserInstallation=file://"))
	assert.Equal(t, []string{
		"--headless", "--norestore", "--nolockcheck",
		"--convert-to", "pdf:writer_pdf_Export",
		"--outdir", dir,
		filepath.Join(dir, "document.odt"),
	}, runner.args[1:])
}

func TestConvert_CommandFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 1"), stderr: "Error: source file could not be loaded\n"}
	c := NewConverter("lo", 0, zap.NewNop(), WithRunner(runner))

	_, err := c.Convert(context.Background(), "/tmp/x.odt", t.TempDir(), "writer_pdf_Export", ".pdf")

	require.Error(t, err)
	assert.Equal(t, "lo", runner.name)
	assert.Contains(t, err.Error(), "source file could not be loaded")
}

func TestConvert_NoOutputProduced(t *testing.T) {
	c := NewConverter("", 0, zap.NewNop(), WithRunner(&fakeRunner{}))

	_, err := c.Convert(context.Background(), "/tmp/x.odt", t.TempDir(), "MS Word 2007 XML", ".docx")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no output produced")
}

func TestProbe(t *testing.T) {
	ok := NewConverter("", 0, zap.NewNop(), WithRunner(&fakeRunner{stdout: "LibreOffice 7.6.4.1"}))
	require.NoError(t, ok.Probe(context.Background()))

	missing := NewConverter("", 0, zap.NewNop(), WithRunner(&fakeRunner{err: errors.New("executable file not found")}))
	assert.ErrorIs(t, missing.Probe(context.Background()), domain.ErrEngineUnavailable)
}
