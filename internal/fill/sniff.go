package fill

import (
	"bytes"
	"io"
	"os"
)

// ImageFormat is an image encoding recognized from its leading bytes.
type ImageFormat string

const (
	FormatPNG     ImageFormat = "png"
	FormatJPEG    ImageFormat = "jpg"
	FormatGIF     ImageFormat = "gif"
	FormatBMP     ImageFormat = "bmp"
	FormatTIFF    ImageFormat = "tiff"
	FormatWEBP    ImageFormat = "webp"
	FormatUnknown ImageFormat = "unknown"
)

// Extension returns the file extension including the dot, or "" for unknown.
func (f ImageFormat) Extension() string {
	if f == FormatUnknown || f == "" {
		return ""
	}
	return "." + string(f)
}

// MediaType returns the MIME type of f.
func (f ImageFormat) MediaType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	case FormatGIF:
		return "image/gif"
	case FormatBMP:
		return "image/bmp"
	case FormatTIFF:
		return "image/tiff"
	case FormatWEBP:
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

type signature struct {
	format ImageFormat
	match  func(header []byte) bool
}

func prefix(magic ...[]byte) func([]byte) bool {
	return func(header []byte) bool {
		for _, m := range magic {
			if bytes.HasPrefix(header, m) {
				return true
			}
		}
		return false
	}
}

// signatures are checked in order; the first match wins.
var signatures = []signature{
	{FormatPNG, prefix([]byte("\x89PNG\r\n\x1a\n"))},
	{FormatJPEG, prefix([]byte{0xFF, 0xD8, 0xFF})},
	{FormatGIF, prefix([]byte("GIF87a"), []byte("GIF89a"))},
	{FormatBMP, prefix([]byte("BM"))},
	{FormatTIFF, prefix([]byte("II*\x00"), []byte("MM\x00*"))},
	{FormatWEBP, func(header []byte) bool {
		return bytes.HasPrefix(header, []byte("RIFF")) && bytes.Contains(header, []byte("WEBP"))
	}},
}

const sniffLen = 12

// Sniff classifies data by its magic header. It never fails; unrecognized
// data is FormatUnknown.
func Sniff(data []byte) ImageFormat {
	header := data
	if len(header) > sniffLen {
		header = header[:sniffLen]
	}
	for _, sig := range signatures {
		if sig.match(header) {
			return sig.format
		}
	}
	return FormatUnknown
}

// SniffFile classifies the file at path.
func SniffFile(path string) (ImageFormat, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, err
	}
	defer f.Close()

	header := make([]byte, sniffLen)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FormatUnknown, err
	}
	return Sniff(header[:n]), nil
}
