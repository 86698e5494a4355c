package filters

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/desertthunder/compilations/internal/models"
	"github.com/desertthunder/compilations/internal/shared"
)

var ogVideoProperties = []string{"og:video", "og:video:url", "og:video:secure_url"}

// OGVideo returns the document's declared video URL, read from its Open Graph meta tags.
//
// Relative URLs are resolved against the request URL.
func OGVideo(resp *http.Response) (*models.Media, error) {
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse document: %v", shared.ErrExtraction, err)
	}

	for _, property := range ogVideoProperties {
		content, ok := doc.Find(fmt.Sprintf(`meta[property=%q]`, property)).First().Attr("content")
		content = strings.TrimSpace(content)
		if !ok || content == "" {
			continue
		}

		if resp.Request != nil && resp.Request.URL != nil {
			if ref, err := resp.Request.URL.Parse(content); err == nil {
				content = ref.String()
			}
		}
		return &models.Media{URL: content}, nil
	}

	return nil, fmt.Errorf("%w: no og:video meta tag", shared.ErrExtraction)
}

// Direct returns the URL the page was finally served from, after redirects.
func Direct(resp *http.Response) (*models.Media, error) {
	if resp.Request == nil || resp.Request.URL == nil {
		return nil, fmt.Errorf("%w: response has no request URL", shared.ErrExtraction)
	}
	return &models.Media{URL: resp.Request.URL.String()}, nil
}
