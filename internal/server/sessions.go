package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/compilations/internal/session"
	"github.com/desertthunder/compilations/internal/shared"
)

// SessionCookie is the name of the cookie carrying the session id.
const SessionCookie = "compilations_session"

// Sessions attaches a [session.Session] to every request, backed by a [session.Store].
type Sessions struct {
	store  session.Store
	ttl    time.Duration
	secure bool
	path   string
	logger *log.Logger
}

// SessionOpts configures [NewSessions].
type SessionOpts struct {
	Store  session.Store
	TTL    time.Duration
	Secure bool
	Path   string // cookie path, defaults to "/"
	Logger *log.Logger
}

// NewSessions creates the session middleware.
func NewSessions(opts SessionOpts) *Sessions {
	if opts.Store == nil {
		opts.Store = session.NewMemoryStore()
	}
	if opts.Path == "" {
		opts.Path = "/"
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Sessions{
		store:  opts.Store,
		ttl:    opts.TTL,
		secure: opts.Secure,
		path:   opts.Path,
		logger: opts.Logger,
	}
}

// Middleware loads the request's session, or starts a new one, and persists changes before the response is
// written.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		values, fresh, err := s.load(r)
		if err != nil {
			s.logger.Error("session load failed", "err", err)
			writeMessage(w, http.StatusInternalServerError, "session unavailable")
			return
		}

		if fresh {
			http.SetCookie(w, s.cookie(values.ID()))
		}

		sw := &sessionWriter{ResponseWriter: w, save: func() { s.persist(r.Context(), values) }}
		next.ServeHTTP(sw, r.WithContext(session.WithSession(r.Context(), values)))
		sw.flush()
	})
}

func (s *Sessions) load(r *http.Request) (*session.Values, bool, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return session.NewValues(shared.GenerateID(), nil), true, nil
	}

	data, err := s.store.Load(r.Context(), cookie.Value)
	switch {
	case errors.Is(err, session.ErrNotFound):
		return session.NewValues(shared.GenerateID(), nil), true, nil
	case err != nil:
		return nil, false, err
	}
	return session.NewValues(cookie.Value, data), false, nil
}

func (s *Sessions) persist(ctx context.Context, values *session.Values) {
	if !values.Dirty() {
		return
	}
	if err := s.store.Save(ctx, values.ID(), values.Snapshot(), s.ttl); err != nil {
		s.logger.Error("session save failed", "id", values.ID(), "err", err)
	}
}

func (s *Sessions) cookie(id string) *http.Cookie {
	c := &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     s.path,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if s.ttl > 0 {
		c.MaxAge = int(s.ttl.Seconds())
	}
	return c
}

// sessionWriter saves the session the first time the handler writes, so a client following a redirect never
// sees stale session state.
type sessionWriter struct {
	http.ResponseWriter
	save func()
	once sync.Once
}

func (w *sessionWriter) flush() { w.once.Do(w.save) }

func (w *sessionWriter) WriteHeader(code int) {
	w.flush()
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.flush()
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// currentSession returns the request's session. Handlers mounted without [Sessions.Middleware] get a throwaway one.
func currentSession(r *http.Request) session.Session {
	if s, ok := session.FromContext(r.Context()); ok {
		return s
	}
	return session.NewValues(shared.GenerateID(), nil)
}
