package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/desertthunder/compilations/internal/shared"
)

const testRedirect = "https://app.example/callback/"

func newTestOAuth(t *testing.T, tokenURL string) *OAuthManager {
	t.Helper()
	m, err := NewOAuthManager(OAuthOpts{
		ClientID:     "test_client_id",
		ClientSecret: "test_client_secret",
		AuthURL:      "https://auth.example/authorize",
		TokenURL:     tokenURL,
		UserAgent:    "agent/1.0",
	})
	if err != nil {
		t.Fatalf("failed to create oauth manager: %v", err)
	}
	return m
}

func tokenServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "test_client_id" || pass != "test_client_secret" {
			t.Errorf("expected basic client auth, got %q %q", user, pass)
		}
		if got := r.Header.Get("User-Agent"); got != "agent/1.0" {
			t.Errorf("unexpected User-Agent %q", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		if r.PostForm.Get("code") != "the_code" {
			t.Errorf("expected code the_code, got %s", r.PostForm.Get("code"))
		}
		if r.PostForm.Get("redirect_uri") != testRedirect {
			t.Errorf("expected redirect_uri %s, got %s", testRedirect, r.PostForm.Get("redirect_uri"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "new_access_token",
			"token_type":   "bearer",
			"expires_in":   3600,
			"scope":        "history save",
		})
	}))
}

func TestOAuthManager(t *testing.T) {
	t.Run("NewOAuthManager", func(t *testing.T) {
		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewOAuthManager(OAuthOpts{ClientSecret: "s"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewOAuthManager(OAuthOpts{ClientID: "id"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Defaults", func(t *testing.T) {
			m, err := NewOAuthManager(OAuthOpts{ClientID: "id", ClientSecret: "secret"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if m.config.Endpoint.AuthURL != redditAuthURL || m.config.Endpoint.TokenURL != redditTokenURL {
				t.Errorf("expected reddit endpoints, got %+v", m.config.Endpoint)
			}
			if strings.Join(m.config.Scopes, " ") != "history save" {
				t.Errorf("expected default scopes, got %v", m.config.Scopes)
			}
		})
	})

	t.Run("BeginLogin", func(t *testing.T) {
		m := newTestOAuth(t, "https://auth.example/token")

		authURL, state := m.BeginLogin(testRedirect)
		if state == "" {
			t.Fatal("expected state to be generated")
		}

		u, err := url.Parse(authURL)
		if err != nil {
			t.Fatalf("invalid auth url: %v", err)
		}
		q := u.Query()

		if u.Host != "auth.example" {
			t.Errorf("expected auth host, got %s", u.Host)
		}
		if q.Get("client_id") != "test_client_id" {
			t.Errorf("expected client_id, got %s", q.Get("client_id"))
		}
		if q.Get("state") != state {
			t.Errorf("expected state %s, got %s", state, q.Get("state"))
		}
		if q.Get("scope") != "history save" {
			t.Errorf("expected scope 'history save', got %s", q.Get("scope"))
		}
		if q.Get("redirect_uri") != testRedirect {
			t.Errorf("expected redirect_uri, got %s", q.Get("redirect_uri"))
		}
		if q.Get("response_type") != "code" {
			t.Errorf("expected response_type code, got %s", q.Get("response_type"))
		}
		if q.Get("duration") != "temporary" {
			t.Errorf("expected duration temporary, got %s", q.Get("duration"))
		}

		_, other := m.BeginLogin(testRedirect)
		if other == state {
			t.Error("expected a fresh state per login")
		}
	})

	t.Run("CompleteLogin", func(t *testing.T) {
		t.Run("Exchanges Code", func(t *testing.T) {
			server := tokenServer(t, http.StatusOK)
			defer server.Close()

			m := newTestOAuth(t, server.URL)
			token, err := m.CompleteLogin(context.Background(), "xyz", testRedirect, testRedirect+"?state=xyz&code=the_code")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if token.AccessToken != "new_access_token" {
				t.Errorf("expected new_access_token, got %s", token.AccessToken)
			}
		})

		t.Run("Exchange Rejected", func(t *testing.T) {
			server := tokenServer(t, http.StatusBadRequest)
			defer server.Close()

			m := newTestOAuth(t, server.URL)
			_, err := m.CompleteLogin(context.Background(), "xyz", testRedirect, testRedirect+"?state=xyz&code=the_code")
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", err)
			}
		})

		tc := []struct {
			name     string
			stored   string
			callback string
		}{
			{name: "Missing Stored State", stored: "", callback: testRedirect + "?state=&code=the_code"},
			{name: "State Mismatch", stored: "xyz", callback: testRedirect + "?state=abc&code=the_code"},
			{name: "Missing State", stored: "xyz", callback: testRedirect + "?code=the_code"},
			{name: "Provider Error", stored: "xyz", callback: testRedirect + "?state=xyz&error=access_denied"},
			{name: "Invalid Callback", stored: "xyz", callback: "http://[::1"},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				m := newTestOAuth(t, "http://127.0.0.1:0/unused")
				_, err := m.CompleteLogin(context.Background(), tt.stored, testRedirect, tt.callback)
				if !errors.Is(err, shared.ErrAuthFailed) {
					t.Errorf("expected ErrAuthFailed, got %v", err)
				}
			})
		}
	})
}
