package customers

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

// Source fetches raw feed bytes.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	Name() string
}

// HTTPSourceConfig configures an HTTPSource.
type HTTPSourceConfig struct {
	URL     string
	Timeout time.Duration
	Retries int
}

// HTTPSource downloads the feed over HTTP. Non-2xx responses are errors.
type HTTPSource struct {
	url    string
	client *resty.Client
}

// NewHTTPSource creates an HTTP feed source.
func NewHTTPSource(cfg HTTPSourceConfig) *HTTPSource {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "text/csv, application/vnd.openxmlformats-officedocument.spreadsheetml.sheet, */*")

	return &HTTPSource{url: cfg.URL, client: client}
}

// Name returns the feed URL.
func (s *HTTPSource) Name() string { return s.url }

// Fetch downloads the feed body.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	resp, err := s.client.R().SetContext(ctx).Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch %s: %s", s.url, resp.Status())
	}
	return resp.Body(), nil
}

// FileSource reads the feed from a local file.
type FileSource struct {
	Path string
}

// Name returns the file path.
func (s FileSource) Name() string { return s.Path }

// Fetch reads the whole file.
func (s FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return data, nil
}
