// Package filters implements the domain filter registry.
//
// A [Rule] ties a domain to a [Predicate], which decides whether a saved item is surfaced,
// and a [HandlerFunc], which turns the fetched page of a surfaced item into a playable URL.
//
// # Matching
//
// The two lookups intentionally use different rules:
//
//   - [Registry.Accept] (listing) compares the item's reported domain to the rule domain exactly,
//     ignoring case. The first rule with that domain decides; later rules for the same domain are not consulted.
//   - [Registry.ForURL] (resolution) only has the URL, so it compares the URL host to the rule domain,
//     accepting the domain itself or any subdomain of it ("www.youtube.com" matches "youtube.com",
//     "notyoutube.com" does not). Rules are scanned in registration order.
//
// # Configuration
//
// Rules are declared in the [[rules]] section of the config file and built by [FromConfig].
// Handler names are "og_video" and "direct"; match names are "always" and "video".
package filters
