package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"meetapi/internal/config"
)

// HTTPRenderer calls an external render service over HTTP. The service
// accepts a JSON body and responds with the rendered document bytes.
type HTTPRenderer struct {
	url    string
	client *http.Client
}

// NewHTTPRenderer builds an HTTPRenderer from config.
func NewHTTPRenderer(cfg config.ExportConfig) (*HTTPRenderer, error) {
	if cfg.RenderURL == "" {
		return nil, fmt.Errorf("export render url is required")
	}
	return &HTTPRenderer{
		url:    cfg.RenderURL,
		client: &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second},
	}, nil
}

var _ DocumentExporter = (*HTTPRenderer)(nil)

type renderRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Format  string `json:"format"`
}

// Render posts the summary to the render service and returns the document bytes.
func (h *HTTPRenderer) Render(ctx context.Context, title, text string, format Format) (*Document, error) {
	body, err := json.Marshal(renderRequest{Title: title, Content: text, Format: string(format)})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling render service: %w", err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading render response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("render service error (HTTP %d): %s", resp.StatusCode, string(content))
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &Document{Content: content, ContentType: ct}, nil
}
