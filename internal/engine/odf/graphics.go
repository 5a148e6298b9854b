package odf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/beevik/etree"

	"albayan/internal/domain"
	"albayan/internal/fill"
)

type graphic struct {
	doc   *Document
	frame *etree.Element
}

func (g *graphic) Name() string { return g.frame.SelectAttrValue("draw:name", "") }

func frameImages(frame *etree.Element) []*etree.Element {
	var images []*etree.Element
	for _, c := range frame.ChildElements() {
		if is(c, "draw", "image") {
			images = append(images, c)
		}
	}
	return images
}

// SetURL points the frame's image at a new picture stored in the package.
// Frames with inline image data or several alternative images cannot be
// rebound in place.
func (g *graphic) SetURL(path string) error {
	images := frameImages(g.frame)
	if len(images) != 1 {
		return domain.ErrUnsupportedOperation
	}
	img := images[0]
	for _, c := range img.ChildElements() {
		if is(c, "office", "binary-data") {
			return domain.ErrUnsupportedOperation
		}
	}

	href, mediaType, err := g.doc.embedPicture(path)
	if err != nil {
		return err
	}
	img.CreateAttr("xlink:href", href)
	for _, attr := range []string{"draw:mime-type", "loext:mime-type"} {
		if img.SelectAttr(attr) != nil {
			img.CreateAttr(attr, mediaType)
		}
	}
	return nil
}

// ReplaceGraphic drops the frame's images and inserts a new linked image.
func (g *graphic) ReplaceGraphic(path string) error {
	href, mediaType, err := g.doc.embedPicture(path)
	if err != nil {
		return err
	}
	for _, img := range frameImages(g.frame) {
		g.frame.RemoveChild(img)
	}
	img := etree.NewElement("draw:image")
	img.CreateAttr("xlink:href", href)
	img.CreateAttr("xlink:type", "simple")
	img.CreateAttr("xlink:show", "embed")
	img.CreateAttr("xlink:actuate", "onLoad")
	img.CreateAttr("draw:mime-type", mediaType)
	g.frame.InsertChildAt(0, img)
	return nil
}

func (d *Document) embedPicture(path string) (href, mediaType string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("reading image: %w", err)
	}
	format := fill.Sniff(data)
	ext := format.Extension()
	if ext == "" {
		ext = filepath.Ext(path)
	}
	mediaType = format.MediaType()
	return d.pkg.addPicture(data, ext, mediaType), mediaType, nil
}
