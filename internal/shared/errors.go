package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("no valid OAuth2 token in session")

	// API and upstream errors
	ErrAPIRequest  = fmt.Errorf("API request failed")
	ErrNoMoreItems = fmt.Errorf("no more saved items")
	ErrNotFound    = fmt.Errorf("no handler matches item")
	ErrExtraction  = fmt.Errorf("media extraction failed")

	// Input validation errors
	ErrBadReference    = fmt.Errorf("invalid item reference")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
