package artifacts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/anatolykoptev/go-apply/internal/engine"
)

// HTTPRenderer converts HTML to PDF through an external rendering service
// (any endpoint that accepts text/html and responds with application/pdf,
// e.g. a headless-chromium converter).
type HTTPRenderer struct {
	endpoint string
	client   *http.Client
}

// NewHTTPRenderer points the renderer at a conversion endpoint.
func NewHTTPRenderer(endpoint string) *HTTPRenderer {
	return &HTTPRenderer{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

// RenderHTMLToPDF posts the HTML document and returns the PDF bytes.
// Rate limiting surfaces as *engine.RateLimitError so the caller can honor
// the advertised wait.
func (r *HTTPRenderer) RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error) {
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, strings.NewReader(html))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "text/html; charset=utf-8")
		req.Header.Set("Accept", "application/pdf")
		return r.client.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPDFSize+1))
	if err != nil {
		return nil, fmt.Errorf("render: read body: %w", err)
	}
	return data, nil
}
