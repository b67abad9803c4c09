// Package walker implements the first-link walk over Wikipedia articles.
//
// The package has three pieces:
//
//   - Extractor finds the first qualifying in-content link in an article's
//     HTML: the first anchor inside a body paragraph that points at another
//     article, skipping infoboxes, citations, inline annotations, and
//     non-article namespaces.
//
//   - Source produces pages for the walk. PageSource adapts an HTTP
//     fetcher and an Extractor into a Source, collapsing concurrent
//     fetches of the same article into one request.
//
//   - Walker runs a single walk: start from a random article, repeatedly
//     follow the first link, and classify how the walk ends (reached the
//     target, looped, dead-ended, hit the step limit, or failed to fetch).
//
// Design decision: The Walker counts distinct articles entered rather
// than link-follow operations. An article increments the counter once,
// on first entry; revisiting it ends the walk as a cycle without
// counting again. This makes the count read naturally as "pages
// visited" and keeps it bounded by the step limit.
package walker
