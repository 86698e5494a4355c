package server

import (
	"context"

	"github.com/desertthunder/compilations/internal/models"
	"github.com/desertthunder/compilations/internal/services"
	"golang.org/x/oauth2"
)

// MockAuthenticator is a test double for [services.Authenticator]
type MockAuthenticator struct {
	AuthURL string
	State   string
	Token   *oauth2.Token
	Err     error

	GotState       string
	GotRedirectURI string
	GotCallback    string
}

func (m *MockAuthenticator) BeginLogin(redirectURI string) (string, string) {
	m.GotRedirectURI = redirectURI
	return m.AuthURL, m.State
}

func (m *MockAuthenticator) CompleteLogin(ctx context.Context, storedState, redirectURI, callbackURL string) (*oauth2.Token, error) {
	m.GotState = storedState
	m.GotRedirectURI = redirectURI
	m.GotCallback = callbackURL
	return m.Token, m.Err
}

// MockLibrary is a test double for [services.Library]
type MockLibrary struct {
	Page       *models.Page
	Unsaved    *services.APIResponse
	Err        error
	GotCursor  models.Cursor
	GotToken   *oauth2.Token
	GotUnsaved string
}

func (m *MockLibrary) ListSaved(ctx context.Context, token *oauth2.Token, cursor models.Cursor) (*models.Page, error) {
	m.GotToken = token
	m.GotCursor = cursor
	return m.Page, m.Err
}

func (m *MockLibrary) Unsave(ctx context.Context, token *oauth2.Token, fullname string) (*services.APIResponse, error) {
	m.GotToken = token
	m.GotUnsaved = fullname
	return m.Unsaved, m.Err
}

// MockResolver is a test double for [services.MediaResolver]
type MockResolver struct {
	Media  *models.Media
	Err    error
	GotRef string
}

func (m *MockResolver) Resolve(ctx context.Context, ref string) (*models.Media, error) {
	m.GotRef = ref
	return m.Media, m.Err
}

