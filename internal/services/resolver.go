// Resolution of encoded item references into media URLs
package services

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/compilations/internal/filters"
	"github.com/desertthunder/compilations/internal/models"
	"github.com/desertthunder/compilations/internal/shared"
)

// Resolver turns an encoded item reference into a playable media URL.
type Resolver struct {
	httpClient  *http.Client
	filters     *filters.Registry
	logger      *log.Logger
	maxBodySize int64
}

// NewResolver creates a [Resolver]. Nil arguments fall back to defaults.
func NewResolver(client *http.Client, registry *filters.Registry, logger *log.Logger) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	if registry == nil {
		registry = filters.NewRegistry()
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Resolver{
		httpClient:  client,
		filters:     registry,
		logger:      shared.WithLogger(logger, "service", "resolver"),
		maxBodySize: maxBodySize,
	}
}

// Resolve decodes ref, fetches the page it points to and applies the matching rule's handler.
//
// A non-2xx fetch fails with an [UpstreamError] holding the complete response.
// A page no rule covers fails with [shared.ErrNotFound].
func (r *Resolver) Resolve(ctx context.Context, ref string) (*models.Media, error) {
	link, err := shared.DecodeReference(ref)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrBadReference, err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	// Handlers and passthrough both read through the cap.
	resp.Body = limitedBody{Reader: io.LimitReader(resp.Body, r.maxBodySize), Closer: resp.Body}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiResp, err := readAPIResponse(resp)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		r.logger.Warn("item fetch failed", "url", link, "status", resp.StatusCode)
		return nil, &UpstreamError{Response: apiResp}
	}

	rule, ok := r.filters.ForURL(link)
	if !ok || rule.Handler == nil {
		return nil, fmt.Errorf("%w: no rule for %s", shared.ErrNotFound, link)
	}

	media, err := rule.Handler(resp)
	if err != nil {
		r.logger.Error("extraction failed", "url", link, "domain", rule.Domain, "err", err)
		return nil, err
	}

	r.logger.Debug("resolved item", "url", link, "media", media.URL)
	return media, nil
}

type limitedBody struct {
	io.Reader
	io.Closer
}
