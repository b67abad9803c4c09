// Package wiki provides HTTP access to an encyclopedia edition.
//
// The Client wraps a standard http.Client with the pieces every fetch
// needs: an identifying User-Agent on each request, a bounded read of the
// response body, an optional SOCKS5 proxy, and an explicit RetryPolicy
// that absorbs transient failures (connection errors and a fixed set of
// status codes) with exponential backoff before they ever reach the walk
// engine.
//
// Two operations matter to the rest of the application:
//   - RandomArticle resolves the random-page endpoint's redirect and
//     returns the normalized article it landed on.
//   - FetchArticle retrieves one article's HTML for link extraction.
package wiki
