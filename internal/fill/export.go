package fill

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"albayan/internal/domain"
	"albayan/internal/port"
)

// Recompute refreshes dependent fields. A failed field update falls back to
// a document-wide recompute; neither failure is returned.
func Recompute(doc port.Document, log *zap.Logger) {
	err := doc.UpdateFields()
	if err == nil {
		return
	}
	log.Warn("field update failed, recomputing document", zap.Error(err))
	if err := doc.RecomputeAll(); err != nil {
		log.Warn("document recompute failed", zap.Error(err))
	}
}

// Export stores the document once per target. It stops at the first failure
// and returns the artifacts written so far with the error.
func Export(ctx context.Context, doc port.Document, targets []Target, log *zap.Logger) ([]domain.OutputArtifact, error) {
	artifacts := make([]domain.OutputArtifact, 0, len(targets))
	for _, t := range targets {
		if err := os.MkdirAll(filepath.Dir(t.Path), 0o755); err != nil {
			return artifacts, fmt.Errorf("creating output dir: %w", err)
		}
		if err := doc.StoreToFile(ctx, t.Path, t.Filter); err != nil {
			return artifacts, fmt.Errorf("storing %s with filter %q: %w", t.Format, t.Filter, err)
		}
		log.Info("document exported",
			zap.String("format", string(t.Format)), zap.String("filter", t.Filter), zap.String("path", t.Path))
		artifacts = append(artifacts, domain.OutputArtifact{Format: t.Format, Filter: t.Filter, Path: t.Path})
	}
	return artifacts, nil
}
