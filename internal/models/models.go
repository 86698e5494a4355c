// package models defines the data model for the compilations web service
package models

// SavedItem is a link saved by the user, as reported by the Reddit listing API.
//
// Raw holds the complete "data" object so filter predicates can inspect fields that are not mapped.
type SavedItem struct {
	URL       string
	Name      string // fullname, e.g. t3_abc
	Domain    string
	Title     string
	Subreddit string
	PostHint  string
	IsVideo   bool
	Over18    bool
	Raw       map[string]any
}

// Video is a filtered saved item. GUID is the encoded reference of URL.
type Video struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	GUID string `json:"guid"`
}

// Page is one page of the filtered listing.
//
// Count is the caller's count plus the number of items the upstream page reported, not len(Videos).
type Page struct {
	Count  int     `json:"count"`
	After  *string `json:"after"`
	Videos []Video `json:"videos"`
}

// Cursor is the pagination state of a listing request. The zero value starts from the beginning.
type Cursor struct {
	Count int
	After string
}

// IsZero reports whether the cursor points at the first page.
func (c Cursor) IsZero() bool {
	return c.After == ""
}

// Media is the result of resolving a video.
type Media struct {
	URL string `json:"url"`
}
