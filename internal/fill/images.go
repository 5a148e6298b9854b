package fill

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"albayan/internal/domain"
	"albayan/internal/port"
)

// DecodeImage decodes a base64 payload. Data URI prefixes and embedded
// whitespace are tolerated, and unpadded input is accepted.
func DecodeImage(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		if i := strings.Index(payload, ","); i >= 0 {
			payload = payload[i+1:]
		}
	}
	payload = strings.Join(strings.Fields(payload), "")

	data, err := base64.StdEncoding.DecodeString(payload)
	if err == nil {
		return data, nil
	}
	if data, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); rawErr == nil {
		return data, nil
	}
	return nil, err
}

// FillImages rebinds each requested graphic present in the document to the
// decoded payload. Decoded files are written under scratchDir and left there.
// Every failure is scoped to its own image.
func FillImages(doc port.Document, images map[string]string, scratchDir string, log *zap.Logger) int {
	present := make(map[string]bool)
	for _, name := range doc.GraphicNames() {
		present[name] = true
	}

	names := make([]string, 0, len(images))
	for name := range images {
		names = append(names, name)
	}
	sort.Strings(names)

	replaced := 0
	for _, name := range names {
		if !present[name] {
			log.Debug("image not in document", zap.String("image", name))
			continue
		}
		if err := replaceImage(doc, name, images[name], scratchDir); err != nil {
			log.Warn("image skipped", zap.String("image", name), zap.Error(err))
			continue
		}
		replaced++
	}
	return replaced
}

func replaceImage(doc port.Document, name, payload, scratchDir string) error {
	graphic, ok := doc.Graphic(name)
	if !ok {
		return fmt.Errorf("graphic %q disappeared", name)
	}
	data, err := DecodeImage(payload)
	if err != nil {
		return fmt.Errorf("decoding payload: %w", err)
	}
	format := Sniff(data)
	if format == FormatUnknown {
		return errors.New("unrecognized image format")
	}

	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return fmt.Errorf("creating scratch dir: %w", err)
	}
	path := filepath.Join(scratchDir, uuid.NewString()+format.Extension())
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing temp image: %w", err)
	}

	err = graphic.SetURL(path)
	if errors.Is(err, domain.ErrUnsupportedOperation) {
		err = graphic.ReplaceGraphic(path)
	}
	if err != nil {
		return fmt.Errorf("rebinding graphic: %w", err)
	}
	return nil
}
