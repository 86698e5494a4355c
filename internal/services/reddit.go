// Saved-item listing and unsave against the Reddit API
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/compilations/internal/filters"
	"github.com/desertthunder/compilations/internal/models"
	"github.com/desertthunder/compilations/internal/shared"
	"golang.org/x/oauth2"
)

// redditListing is the envelope of a Reddit listing response.
type redditListing struct {
	Kind string `json:"kind"`
	Data struct {
		Dist     *int    `json:"dist"`
		After    *string `json:"after"`
		Children []struct {
			Kind string         `json:"kind"`
			Data map[string]any `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// RedditOpts contains the dependencies of [NewRedditService].
type RedditOpts struct {
	API     *APIService
	User    string
	Filters *filters.Registry
	Logger  *log.Logger
}

// RedditService lists and unsaves the configured user's saved items.
type RedditService struct {
	api     *APIService
	user    string
	filters *filters.Registry
	logger  *log.Logger
}

// NewRedditService creates a [RedditService].
func NewRedditService(opts RedditOpts) (*RedditService, error) {
	if opts.User == "" {
		return nil, fmt.Errorf("%w: missing reddit user", shared.ErrMissingCredentials)
	}
	if opts.API == nil {
		opts.API = NewAPIService("", nil)
	}
	if opts.Filters == nil {
		opts.Filters = filters.NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &RedditService{
		api:     opts.API,
		user:    opts.User,
		filters: opts.Filters,
		logger:  shared.WithLogger(opts.Logger, "service", "reddit"),
	}, nil
}

// ListSaved fetches one page of the user's saved items and keeps those accepted by the filter registry.
//
// A zero cursor starts from the first page. The returned count advances by the number of items the upstream
// page reported, which is not necessarily the number of videos returned.
func (s *RedditService) ListSaved(ctx context.Context, token *oauth2.Token, cursor models.Cursor) (*models.Page, error) {
	if token == nil {
		return nil, shared.ErrNotAuthenticated
	}

	query := url.Values{}
	count := 0
	if !cursor.IsZero() {
		count = cursor.Count
		query.Set("count", strconv.Itoa(cursor.Count))
		query.Set("after", cursor.After)
	}

	s.logger.Debug("listing saved items", "count", count, "after", cursor.After)

	resp, err := s.api.Get(ctx, token, "/user/"+url.PathEscape(s.user)+"/saved", query)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &UpstreamError{Response: resp}
	}

	var listing redditListing
	if err := json.Unmarshal(resp.Body, &listing); err != nil {
		return nil, fmt.Errorf("%w: failed to decode listing: %v", shared.ErrAPIRequest, err)
	}

	children := listing.Data.Children
	if len(children) == 0 {
		return nil, shared.ErrNoMoreItems
	}

	dist := len(children)
	if listing.Data.Dist != nil {
		dist = *listing.Data.Dist
	}

	page := &models.Page{
		Count:  count + dist,
		After:  listing.Data.After,
		Videos: []models.Video{},
	}

	for _, child := range children {
		item := savedItemFrom(child.Data)
		if !s.filters.Accept(item) {
			continue
		}
		page.Videos = append(page.Videos, models.Video{
			URL:  item.URL,
			Name: item.Name,
			GUID: shared.EncodeReference(item.URL),
		})
	}

	s.logger.Debug("listed saved items", "upstream", len(children), "kept", len(page.Videos))

	return page, nil
}

// Unsave removes the item with the given fullname from the user's saved items.
//
// The upstream response is returned whatever its status so the caller can forward it unchanged.
func (s *RedditService) Unsave(ctx context.Context, token *oauth2.Token, fullname string) (*APIResponse, error) {
	if token == nil {
		return nil, shared.ErrNotAuthenticated
	}
	if fullname == "" {
		return nil, fmt.Errorf("%w: fullname", shared.ErrMissingArgument)
	}

	resp, err := s.api.PostForm(ctx, token, "/api/unsave", url.Values{"id": {fullname}})
	if err != nil {
		return nil, err
	}

	if !resp.OK() {
		s.logger.Error("unsave failed", "fullname", fullname, "status", resp.StatusCode, "body", string(resp.Body))
	}

	return resp, nil
}

func savedItemFrom(data map[string]any) models.SavedItem {
	return models.SavedItem{
		URL:       getString(data, "url"),
		Name:      getString(data, "name"),
		Domain:    getString(data, "domain"),
		Title:     getString(data, "title"),
		Subreddit: getString(data, "subreddit"),
		PostHint:  getString(data, "post_hint"),
		IsVideo:   getBool(data, "is_video"),
		Over18:    getBool(data, "over_18"),
		Raw:       data,
	}
}

func getString(m map[string]any, key string) string {
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func getBool(m map[string]any, key string) bool {
	if val, ok := m[key]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return false
}
