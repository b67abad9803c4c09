package model

import (
	"net/url"
	"strings"
)

// ArticleRef is a normalized reference to one encyclopedia article.
// Normalization removes the fragment component, so two references into
// different sections of the same article collapse to one value. Equality
// is plain string equality on the normalized form; ArticleRef is the cache
// key and the visited-set element.
type ArticleRef string

// NewArticleRef normalizes a raw page reference into an ArticleRef.
// Everything from the first '#' on is dropped. An empty input yields the
// zero ArticleRef. The operation is idempotent: normalizing an already
// normalized reference returns it unchanged.
func NewArticleRef(raw string) ArticleRef {
	normalized, _, _ := strings.Cut(raw, "#")
	return ArticleRef(normalized)
}

// ArticleURL builds the normalized reference for a named article on the
// given base URL. Spaces in the title become underscores, matching the
// encyclopedia's path convention ("dark matter" -> "/wiki/dark_matter").
func ArticleURL(baseURL, title string) ArticleRef {
	base := strings.TrimRight(baseURL, "/")
	path := "/wiki/" + strings.ReplaceAll(title, " ", "_")
	return NewArticleRef(base + path)
}

// String returns the normalized reference.
func (a ArticleRef) String() string {
	return string(a)
}

// IsZero returns true if this is the zero (empty) ArticleRef.
func (a ArticleRef) IsZero() bool {
	return a == ""
}

// Title derives a human-readable article title from the last path segment:
// percent-escapes decoded, underscores replaced with spaces. It is for
// display only; the normalized URL remains the article's identity.
func (a ArticleRef) Title() string {
	if a.IsZero() {
		return ""
	}

	segment := string(a)
	if i := strings.LastIndex(segment, "/"); i >= 0 {
		segment = segment[i+1:]
	}
	if decoded, err := url.PathUnescape(segment); err == nil {
		segment = decoded
	}
	return strings.ReplaceAll(segment, "_", " ")
}

// LinkResult is the memoized outcome of extracting the first qualifying
// link from one article's prose. Together with cache presence it forms a
// three-valued domain: not yet computed (cache miss), computed with a
// link, and computed with the explicit "no link" marker. The marker must
// stay distinguishable from a miss, so LinkResult records it explicitly
// rather than using a bare zero ArticleRef.
type LinkResult struct {
	next  ArticleRef
	found bool
}

// LinkTo returns a LinkResult recording next as the first qualifying link.
func LinkTo(next ArticleRef) LinkResult {
	return LinkResult{next: next, found: true}
}

// NoLink returns the explicit "no qualifying link" result. Unlike a cache
// miss, it records that extraction ran and found nothing.
func NoLink() LinkResult {
	return LinkResult{}
}

// Next returns the linked article and whether one was found.
func (r LinkResult) Next() (ArticleRef, bool) {
	return r.next, r.found
}

// HasLink returns true if a qualifying link was found.
func (r LinkResult) HasLink() bool {
	return r.found
}
