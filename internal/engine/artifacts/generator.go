// Package artifacts produces the per-job application artifacts: the tailored
// resume PDF and the cover-letter PDF.
package artifacts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/anatolykoptev/go-apply/internal/engine"
	"github.com/anatolykoptev/go-apply/internal/engine/answers"
)

// Renderer converts an HTML document to PDF bytes. The implementation is an
// external collaborator (headless browser, wkhtmltopdf service, ...).
type Renderer interface {
	RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error)
}

// PDF size bounds: postings reject uploads above 2 MiB, and anything under
// 1 KiB is a blank render.
const (
	maxPDFSize = 2 << 20
	minPDFSize = 1 << 10
)

var pdfSignature = []byte("%PDF")

// maxRenderAttempts bounds retries for non-throttling renderer failures.
const maxRenderAttempts = 3

// Generator builds per-job artifacts in outDir.
type Generator struct {
	answerer *answers.Answerer
	renderer Renderer
	outDir   string

	sleep func(time.Duration)
}

// NewGenerator builds an artifact generator writing into outDir.
func NewGenerator(a *answers.Answerer, r Renderer, outDir string) *Generator {
	return &Generator{answerer: a, renderer: r, outDir: outDir, sleep: time.Sleep}
}

// GenerateResumePDF produces a job-tailored resume PDF and returns its
// absolute path. The LLM call inherits the throttle-aware retry of the
// answer engine; renderer throttling gets the same backoff policy here.
func (g *Generator) GenerateResumePDF(ctx context.Context) (string, error) {
	html, err := g.answerer.ResumeHTML(ctx)
	if err != nil {
		return "", fmt.Errorf("resume html: %w", err)
	}

	data, err := g.render(ctx, html)
	if err != nil {
		return "", fmt.Errorf("resume render: %w", err)
	}

	path, err := g.writePDF("CV", data)
	if err != nil {
		return "", err
	}
	slog.Info("resume generated", slog.String("path", path), slog.Int("bytes", len(data)))
	return path, nil
}

// GenerateCoverLetterPDF writes the cover letter for the current job onto a
// PDF and returns its absolute path.
func (g *Generator) GenerateCoverLetterPDF(ctx context.Context) (string, error) {
	text, err := g.answerer.CoverLetter(ctx)
	if err != nil {
		return "", fmt.Errorf("cover letter: %w", err)
	}

	data, err := layoutCoverLetter(text)
	if err != nil {
		return "", fmt.Errorf("cover letter layout: %w", err)
	}

	path, err := g.writePDF("Cover_Letter", data)
	if err != nil {
		return "", err
	}
	slog.Info("cover letter generated", slog.String("path", path), slog.Int("bytes", len(data)))
	return path, nil
}

// render calls the renderer, retrying throttles indefinitely with the
// provider's retry-after hint and other failures up to maxRenderAttempts.
func (g *Generator) render(ctx context.Context, html string) ([]byte, error) {
	attempts := 0
	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		data, err := g.renderer.RenderHTMLToPDF(ctx, html)
		if err == nil {
			if err := validatePDF(data); err != nil {
				return nil, err
			}
			engine.IncrPDFsRendered()
			return data, nil
		}

		var rl *engine.RateLimitError
		if errors.As(err, &rl) {
			wait := rl.RetryAfter
			if wait <= 0 {
				wait = 30 * time.Second
			}
			slog.Warn("renderer rate limited", slog.Duration("wait", wait))
			g.sleep(wait)
			continue
		}

		attempts++
		if attempts >= maxRenderAttempts {
			return nil, fmt.Errorf("render failed after %d attempts: %w", attempts, err)
		}
		slog.Debug("render retry", slog.Int("attempt", attempts), slog.Any("error", err))
		g.sleep(time.Second)
	}
}

// validatePDF checks the signature and the size bounds.
func validatePDF(data []byte) error {
	if !bytes.HasPrefix(data, pdfSignature) {
		return errors.New("renderer output is not a PDF")
	}
	if len(data) < minPDFSize {
		return fmt.Errorf("pdf too small: %d bytes", len(data))
	}
	if len(data) > maxPDFSize {
		return fmt.Errorf("pdf exceeds 2 MiB: %d bytes", len(data))
	}
	return nil
}

// writePDF stores data under a unique timestamped name and returns the
// absolute path. The extension is always .pdf.
func (g *Generator) writePDF(prefix string, data []byte) (string, error) {
	if err := os.MkdirAll(g.outDir, 0o750); err != nil {
		return "", fmt.Errorf("artifacts: mkdir %s: %w", g.outDir, err)
	}
	name := fmt.Sprintf("%s_%s_%s.pdf",
		prefix, time.Now().Format("20060102_150405"), uuid.NewString()[:8])
	path := filepath.Join(g.outDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("artifacts: write %s: %w", path, err)
	}
	return filepath.Abs(path)
}
