package shared

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// EncodeReference encodes a source URL as an opaque, path-safe item reference (guid).
//
// The encoding is unpadded base64 over the URL-safe alphabet, so the result never contains '/', '+' or '='.
func EncodeReference(link string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(link))
}

// DecodeReference reverses [EncodeReference].
//
// Padded input is accepted. The decoded value must be an absolute http(s) URL, otherwise [ErrBadReference] is returned.
func DecodeReference(ref string) (string, error) {
	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(ref, "="))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadReference, err)
	}

	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: not valid UTF-8", ErrBadReference)
	}

	link := string(data)
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadReference, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not an absolute http(s) URL", ErrBadReference, link)
	}

	return link, nil
}
