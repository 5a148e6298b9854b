package odf

import (
	"archive/zip"
	"bytes"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"albayan/internal/domain"
)

const (
	contentPart  = "content.xml"
	manifestPart = "META-INF/manifest.xml"
	mimetypePart = "mimetype"

	odtTemplateMimeType = "application/vnd.oasis.opendocument.text-template"
)

type part struct {
	name string
	data []byte
}

// odfPackage is an OpenDocument zip package held in memory.
type odfPackage struct {
	parts    []*part
	byName   map[string]*part
	manifest *etree.Document
}

func readPackage(path string) (*odfPackage, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	return parsePackage(raw)
}

func parsePackage(raw []byte) (*odfPackage, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip package: %v", domain.ErrUnsupportedTemplate, err)
	}

	p := &odfPackage{byName: make(map[string]*part, len(zr.File))}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Name, err)
		}
		pt := &part{name: f.Name, data: data}
		p.parts = append(p.parts, pt)
		p.byName[f.Name] = pt
	}

	mime, ok := p.byName[mimetypePart]
	if !ok {
		return nil, fmt.Errorf("%w: missing mimetype", domain.ErrUnsupportedTemplate)
	}
	if mt := strings.TrimSpace(string(mime.data)); mt != domain.ODTMimeType && mt != odtTemplateMimeType {
		return nil, fmt.Errorf("%w: mimetype %q", domain.ErrUnsupportedTemplate, mt)
	}
	if _, ok := p.byName[contentPart]; !ok {
		return nil, fmt.Errorf("%w: missing %s", domain.ErrUnsupportedTemplate, contentPart)
	}

	if m, ok := p.byName[manifestPart]; ok {
		p.manifest = etree.NewDocument()
		if err := p.manifest.ReadFromBytes(m.data); err != nil {
			return nil, fmt.Errorf("parsing manifest: %w", err)
		}
	}
	return p, nil
}

// IsTextPackage reports whether raw is an OpenDocument Text package.
func IsTextPackage(raw []byte) bool {
	_, err := parsePackage(raw)
	return err == nil
}

func (p *odfPackage) file(name string) ([]byte, bool) {
	pt, ok := p.byName[name]
	if !ok {
		return nil, false
	}
	return pt.data, true
}

func (p *odfPackage) put(name string, data []byte) {
	if pt, ok := p.byName[name]; ok {
		pt.data = data
		return
	}
	pt := &part{name: name, data: data}
	p.parts = append(p.parts, pt)
	p.byName[name] = pt
}

// addPicture stores data under Pictures/ and registers it in the manifest.
func (p *odfPackage) addPicture(data []byte, ext, mediaType string) string {
	name := "Pictures/" + strings.ReplaceAll(uuid.NewString(), "-", "") + ext
	p.put(name, data)
	if p.manifest != nil && p.manifest.Root() != nil {
		entry := p.manifest.Root().CreateElement("manifest:file-entry")
		entry.CreateAttr("manifest:full-path", name)
		entry.CreateAttr("manifest:media-type", mediaType)
	}
	return name
}

// write serializes the package. The mimetype entry is written first and
// uncompressed so the result is a valid OpenDocument file.
func (p *odfPackage) write(w io.Writer) error {
	if p.manifest != nil {
		data, err := p.manifest.WriteToBytes()
		if err != nil {
			return fmt.Errorf("serializing manifest: %w", err)
		}
		p.put(manifestPart, data)
	}

	zw := zip.NewWriter(w)
	if mime, ok := p.byName[mimetypePart]; ok {
		fw, err := zw.CreateRaw(&zip.FileHeader{
			Name:               mimetypePart,
			Method:             zip.Store,
			CRC32:              crc32.ChecksumIEEE(mime.data),
			CompressedSize64:   uint64(len(mime.data)),
			UncompressedSize64: uint64(len(mime.data)),
		})
		if err != nil {
			return err
		}
		if _, err := fw.Write(mime.data); err != nil {
			return err
		}
	}
	for _, pt := range p.parts {
		if pt.name == mimetypePart {
			continue
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: pt.name, Method: zip.Deflate})
		if err != nil {
			return fmt.Errorf("creating %s: %w", pt.name, err)
		}
		if _, err := fw.Write(pt.data); err != nil {
			return fmt.Errorf("writing %s: %w", pt.name, err)
		}
	}
	return zw.Close()
}

// writeFile writes the package to path through a temp file in the same dir.
func (p *odfPackage) writeFile(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".odt-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := p.write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
