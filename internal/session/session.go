// Package session stores per-user OAuth state between requests.
//
// Handlers only see the [Session] capability (get/set token, get/set CSRF state). Where the data lives
// is decided by the [Store]: in process memory, or in Redis with the same TTL as the session cookie.
// Either way nothing outlives the session.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// ErrNotFound is returned by [Store.Load] when the id is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Data is the serialisable state of one session.
type Data struct {
	Token *oauth2.Token `json:"token,omitempty"`
	State string        `json:"state,omitempty"`
}

// Session exposes the OAuth state of the current user.
type Session interface {
	ID() string
	Token() (*oauth2.Token, bool)
	SetToken(token *oauth2.Token)
	State() string
	SetState(state string)
	Clear()
}

// Store loads and saves session data by id.
type Store interface {
	Load(ctx context.Context, id string) (*Data, error)
	Save(ctx context.Context, id string, data *Data, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// Values is the [Session] implementation handed to request handlers.
// It records whether anything changed so the middleware only writes back dirty sessions.
type Values struct {
	id    string
	data  Data
	dirty bool
	mu    sync.Mutex
}

// NewValues wraps data for the session id. A nil data starts empty.
func NewValues(id string, data *Data) *Values {
	v := &Values{id: id}
	if data != nil {
		v.data = *data
	}
	return v
}

func (v *Values) ID() string { return v.id }

func (v *Values) Token() (*oauth2.Token, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.data.Token, v.data.Token != nil
}

func (v *Values) SetToken(token *oauth2.Token) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.data.Token = token
	v.dirty = true
}

func (v *Values) State() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.data.State
}

func (v *Values) SetState(state string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.data.State = state
	v.dirty = true
}

// Clear drops the token and state.
func (v *Values) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.data = Data{}
	v.dirty = true
}

// Dirty reports whether the session was modified since it was loaded.
func (v *Values) Dirty() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dirty
}

// Snapshot returns a copy of the current data.
func (v *Values) Snapshot() *Data {
	v.mu.Lock()
	defer v.mu.Unlock()
	d := v.data
	return &d
}

type contextKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session attached by [WithSession].
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}
