package fill_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"albayan/internal/fill"
)

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want fill.ImageFormat
	}{
		{"png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), fill.FormatPNG},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}, fill.FormatJPEG},
		{"gif87a", []byte("GIF87a\x01\x00"), fill.FormatGIF},
		{"gif89a", []byte("GIF89a\x01\x00"), fill.FormatGIF},
		{"bmp", []byte("BM\x36\x00\x00\x00"), fill.FormatBMP},
		{"tiff little endian", []byte("II*\x00\x08\x00"), fill.FormatTIFF},
		{"tiff big endian", []byte("MM\x00*\x00\x08"), fill.FormatTIFF},
		{"webp", []byte("RIFF\x24\x00\x00\x00WEBPVP8 "), fill.FormatWEBP},
		{"riff without webp", []byte("RIFF\x24\x00\x00\x00WAVEfmt "), fill.FormatUnknown},
		{"webp marker past header", []byte("RIFF\x24\x00\x00\x00\x00\x00\x00\x00WEBP"), fill.FormatUnknown},
		{"text", []byte("hello world"), fill.FormatUnknown},
		{"empty", nil, fill.FormatUnknown},
		{"truncated png", []byte("\x89PN"), fill.FormatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fill.Sniff(tt.data))
		})
	}
}

func TestImageFormat_Extension(t *testing.T) {
	assert.Equal(t, ".png", fill.FormatPNG.Extension())
	assert.Equal(t, ".jpg", fill.FormatJPEG.Extension())
	assert.Equal(t, ".tiff", fill.FormatTIFF.Extension())
	assert.Equal(t, "", fill.FormatUnknown.Extension())
	assert.Equal(t, "image/jpeg", fill.FormatJPEG.MediaType())
}

func TestSniffFile(t *testing.T) {
	dir := t.TempDir()

	gif := filepath.Join(dir, "a.bin")
	require.NoError(t, os.WriteFile(gif, []byte("GIF89a....."), 0o600))
	format, err := fill.SniffFile(gif)
	require.NoError(t, err)
	assert.Equal(t, fill.FormatGIF, format)

	short := filepath.Join(dir, "short.bin")
	require.NoError(t, os.WriteFile(short, []byte("BM"), 0o600))
	format, err = fill.SniffFile(short)
	require.NoError(t, err)
	assert.Equal(t, fill.FormatBMP, format)

	_, err = fill.SniffFile(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
