// Package soffice converts ODT files with a headless LibreOffice process.
package soffice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"albayan/internal/domain"
)

const DefaultBinary = "soffice"

// Converter runs "soffice --convert-to" for one file at a time.
type Converter struct {
	binary  string
	timeout time.Duration
	runner  Runner
	log     *zap.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithRunner replaces the command runner.
func WithRunner(r Runner) Option {
	return func(c *Converter) { c.runner = r }
}

// NewConverter creates a Converter for binary. A zero timeout disables the
// per-conversion deadline.
func NewConverter(binary string, timeout time.Duration, log *zap.Logger, opts ...Option) *Converter {
	if binary == "" {
		binary = DefaultBinary
	}
	c := &Converter{binary: binary, timeout: timeout, runner: ExecRunner{}, log: log.Named("soffice")}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert writes src converted with filter into outDir and returns the
// produced path, <outDir>/<src base name><ext>.
func (c *Converter) Convert(ctx context.Context, src, outDir, filter, ext string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	// A private profile lets several conversions run side by side.
	profile, err := os.MkdirTemp("", "albayan-lo-profile-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(profile)

	args := []string{
		"-env:UserInstallation=file://" + filepath.ToSlash(profile),
		"--headless",
		"--norestore",
		"--nolockcheck",
		"--convert-to", strings.TrimPrefix(ext, ".") + ":" + filter,
		"--outdir", outDir,
		src,
	}
	_, stderr, err := c.runner.Run(ctx, c.binary, c.log, args...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("converting with %s: timed out after %s", filter, c.timeout)
		}
		return "", fmt.Errorf("converting with %s: %w: %s", filter, err, strings.TrimSpace(string(stderr)))
	}

	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	out := filepath.Join(outDir, base+ext)
	if _, err := os.Stat(out); err != nil {
		return "", fmt.Errorf("converting with %s: no output produced: %s", filter, strings.TrimSpace(string(stderr)))
	}
	return out, nil
}

// Probe checks that the binary can be started.
func (c *Converter) Probe(ctx context.Context) error {
	stdout, _, err := c.runner.Run(ctx, c.binary, c.log, "--headless", "--version")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrEngineUnavailable, c.binary, err)
	}
	c.log.Info("document converter available", zap.String("version", strings.TrimSpace(string(stdout))))
	return nil
}
