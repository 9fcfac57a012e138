package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"

	"github.com/marquee-tv/marquee/internal/config"
)

// HTTPSource fetches content from <api_base>/content. Concurrent loads
// share one request.
type HTTPSource struct {
	client *resty.Client
	base   string
	group  singleflight.Group
	logger *slog.Logger
}

// NewHTTPSource creates a source for cfg.APIBase
func NewHTTPSource(cfg *config.CatalogConfig, logger *slog.Logger) *HTTPSource {
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(max(cfg.MaxRetries, 0)).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "marquee/1.0")

	// Retry on network errors, 5xx and rate limiting
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return r.StatusCode() >= 500 || r.StatusCode() == 429
	})

	return &HTTPSource{
		client: client,
		base:   strings.TrimRight(cfg.APIBase, "/"),
		logger: logger,
	}
}

// List fetches the catalog
func (h *HTTPSource) List(ctx context.Context) ([]Content, error) {
	v, err, shared := h.group.Do("content", func() (any, error) {
		return h.fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		h.logger.Debug("catalog request shared")
	}
	items := v.([]Content)
	return append([]Content(nil), items...), nil
}

func (h *HTTPSource) fetch(ctx context.Context) ([]Content, error) {
	url := h.base + "/content"
	start := time.Now()

	resp, err := h.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET request failed for %s: %w", url, err)
	}
	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("HTTP error %d for %s", resp.StatusCode(), url)
	}

	var items []Content
	if err := json.Unmarshal(resp.Body(), &items); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if items == nil {
		items = []Content{}
	}

	h.logger.Debug("catalog fetched", "url", url, "items", len(items), "elapsed", time.Since(start))
	return items, nil
}
