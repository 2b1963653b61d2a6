package entity

// PageSnapshot is the settled DOM state captured after the interaction
// sequence, ready for offline extraction. URL is the page's final address
// (after redirects), used to echo the search query.
type PageSnapshot struct {
	HTML string
	URL  string
}
