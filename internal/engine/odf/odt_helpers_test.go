package odf

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const contentHead = `<?xml version="1.0" encoding="UTF-8"?>
<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0" xmlns:table="urn:oasis:names:tc:opendocument:xmlns:table:1.0" xmlns:draw="urn:oasis:names:tc:opendocument:xmlns:drawing:1.0" xmlns:xlink="http://www.w3.org/1999/xlink" xmlns:svg="urn:oasis:names:tc:opendocument:xmlns:svg-compatible:1.0" office:version="1.3"><office:body><office:text>`

const contentTail = `</office:text></office:body></office:document-content>`

const manifestXML = `<?xml version="1.0" encoding="UTF-8"?>
<manifest:manifest xmlns:manifest="urn:oasis:names:tc:opendocument:xmlns:manifest:1.0" manifest:version="1.3"><manifest:file-entry manifest:full-path="/" manifest:media-type="application/vnd.oasis.opendocument.text"/><manifest:file-entry manifest:full-path="content.xml" manifest:media-type="text/xml"/></manifest:manifest>`

type zipPart struct {
	name string
	data string
}

func zipBytes(t *testing.T, parts ...zipPart) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(p.data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// writeODT writes a minimal text document whose office:text holds body.
func writeODT(t *testing.T, body string, extra ...zipPart) string {
	t.Helper()
	parts := []zipPart{
		{"mimetype", "application/vnd.oasis.opendocument.text"},
		{"content.xml", contentHead + body + contentTail},
		{"META-INF/manifest.xml", manifestXML},
	}
	parts = append(parts, extra...)
	path := filepath.Join(t.TempDir(), "template.odt")
	require.NoError(t, os.WriteFile(path, zipBytes(t, parts...), 0o600))
	return path
}

func openODT(t *testing.T, body string, extra ...zipPart) *Document {
	t.Helper()
	doc, err := NewEngine(nil, zap.NewNop()).Open(context.Background(), writeODT(t, body, extra...))
	require.NoError(t, err)
	return doc.(*Document)
}

// readZipPart returns one entry of the zip file at path.
func readZipPart(t *testing.T, path, name string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			require.NoError(t, err)
			defer rc.Close()
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			return string(data)
		}
	}
	t.Fatalf("%s not found in %s", name, path)
	return ""
}
