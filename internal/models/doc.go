// Package models defines the transient entities that flow through the compilations service.
//
// Nothing here is persisted. Every value lives for the duration of one request, except the
// OAuth2 token, which lives in the user's session (see package session).
//
//   - [SavedItem] : one entry of the user's Reddit "saved" listing, decoded from the API
//   - [Video] : a saved item that survived filtering, shaped for clients
//   - [Page] : one page of filtered videos plus the cursor for the next page
//   - [Cursor] : pagination state supplied by the client
//   - [Media] : the playable URL extracted for a single video
package models
