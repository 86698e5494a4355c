package filters

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/desertthunder/compilations/internal/models"
	"github.com/desertthunder/compilations/internal/shared"
)

const (
	MatchAlways = "always"
	MatchVideo  = "video"
)

// Predicate decides whether a saved item is kept in the listing.
type Predicate func(item models.SavedItem) bool

// HandlerFunc extracts the media URL from a successful response for a saved item's page.
//
// Implementations read the body but do not close it.
type HandlerFunc func(resp *http.Response) (*models.Media, error)

// Rule is a (domain, predicate, handler) triple.
type Rule struct {
	Domain    string
	Predicate Predicate
	Handler   HandlerFunc
}

// Always accepts every item.
func Always(models.SavedItem) bool { return true }

// Registry holds rules in registration order. It is read-only once the server starts.
type Registry struct {
	rules []Rule
}

// NewRegistry creates a [Registry] with the given rules.
func NewRegistry(rules ...Rule) *Registry {
	r := &Registry{}
	for _, rule := range rules {
		r.Register(rule)
	}
	return r
}

// Register appends a rule. A nil predicate accepts everything.
func (r *Registry) Register(rule Rule) {
	rule.Domain = strings.ToLower(strings.TrimSpace(rule.Domain))
	if rule.Predicate == nil {
		rule.Predicate = Always
	}
	r.rules = append(r.rules, rule)
}

// Rules returns a copy of the registered rules.
func (r *Registry) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.rules)
}

// Accept reports whether item should be listed.
func (r *Registry) Accept(item models.SavedItem) bool {
	if item.Domain == "" {
		return false
	}

	for _, rule := range r.rules {
		if strings.EqualFold(rule.Domain, item.Domain) {
			return rule.Predicate(item)
		}
	}
	return false
}

// ForURL returns the first rule whose domain matches the host of link.
func (r *Registry) ForURL(link string) (Rule, bool) {
	u, err := url.Parse(link)
	if err != nil {
		return Rule{}, false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return Rule{}, false
	}

	for _, rule := range r.rules {
		if host == rule.Domain || strings.HasSuffix(host, "."+rule.Domain) {
			return rule, true
		}
	}
	return Rule{}, false
}

// Handlers maps configuration handler names to implementations.
var Handlers = map[string]HandlerFunc{
	"og_video": OGVideo,
	"direct":   Direct,
}

// FromConfig builds a [Registry] from the [[rules]] section of the configuration.
func FromConfig(rules []shared.RuleConfig) (*Registry, error) {
	registry := NewRegistry()

	for i, rc := range rules {
		if rc.Domain == "" {
			return nil, fmt.Errorf("%w: rules[%d] has no domain", shared.ErrInvalidConfig, i)
		}

		name := rc.Handler
		if name == "" {
			name = "og_video"
		}
		handler, ok := Handlers[name]
		if !ok {
			return nil, fmt.Errorf("%w: rules[%d] uses unknown handler %q", shared.ErrInvalidConfig, i, rc.Handler)
		}

		predicate, err := buildPredicate(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: rules[%d]: %v", shared.ErrInvalidConfig, i, err)
		}

		registry.Register(Rule{Domain: rc.Domain, Predicate: predicate, Handler: handler})
	}

	return registry, nil
}

func buildPredicate(rc shared.RuleConfig) (Predicate, error) {
	var checks []Predicate

	switch rc.Match {
	case "", MatchAlways:
	case MatchVideo:
		checks = append(checks, IsVideo)
	default:
		return nil, fmt.Errorf("unknown match %q", rc.Match)
	}

	if rc.ExcludeNSFW {
		checks = append(checks, func(item models.SavedItem) bool { return !item.Over18 })
	}

	if rc.TitlePattern != "" {
		re, err := regexp.Compile(rc.TitlePattern)
		if err != nil {
			return nil, fmt.Errorf("bad title_pattern: %w", err)
		}
		checks = append(checks, func(item models.SavedItem) bool { return re.MatchString(item.Title) })
	}

	if len(rc.Subreddits) > 0 {
		allowed := make(map[string]bool, len(rc.Subreddits))
		for _, s := range rc.Subreddits {
			allowed[strings.ToLower(s)] = true
		}
		checks = append(checks, func(item models.SavedItem) bool { return allowed[strings.ToLower(item.Subreddit)] })
	}

	return func(item models.SavedItem) bool {
		for _, check := range checks {
			if !check(item) {
				return false
			}
		}
		return true
	}, nil
}

// IsVideo accepts items Reddit flags as video posts.
func IsVideo(item models.SavedItem) bool {
	return item.IsVideo || strings.HasSuffix(item.PostHint, ":video")
}
