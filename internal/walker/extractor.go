package walker

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/wikiwalk/wikiwalk/internal/model"
)

// contentRootID is the id of the div that holds the article body on
// Wikipedia pages. Navigation, sidebars, and footers live outside it.
const contentRootID = "mw-content-text"

// articlePathPrefix is the path prefix of article links on Wikipedia.
const articlePathPrefix = "/wiki/"

// skippedElements are elements whose subtrees never contribute links.
// Tables hold infoboxes and navboxes, sup holds citation markers, and
// span holds pronunciation guides and coordinate annotations. Skipping
// spans is what keeps the walk from following IPA and "listen" links
// that precede the first real link of the lead paragraph.
var skippedElements = map[string]bool{
	"table": true,
	"sup":   true,
	"span":  true,
}

// excludedNamespaces are non-article namespaces. A link into any of
// these is administrative, not content, and never counts as the first
// link.
var excludedNamespaces = []string{
	"Help",
	"File",
	"Wikipedia",
	"Special",
	"Category",
	"Portal",
}

// Extractor finds the first qualifying link in article HTML.
//
// Design decision: We use golang.org/x/net/html rather than regex
// because:
//  1. It correctly handles the malformed HTML MediaWiki skins produce
//  2. Skipping whole subtrees (tables, citations) needs tree structure
//  3. Document order of anchors across nested markup is exactly the
//     parse-tree traversal order
type Extractor struct {
	// baseURL resolves relative hrefs into absolute article references.
	baseURL *url.URL

	// skipParenthetical skips links that appear inside parentheses in
	// the paragraph text, following the stricter form of the first-link
	// rule. Off by default.
	skipParenthetical bool
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithSkipParenthetical toggles skipping of links inside parentheses.
func WithSkipParenthetical(skip bool) ExtractorOption {
	return func(e *Extractor) {
		e.skipParenthetical = skip
	}
}

// NewExtractor creates an Extractor that resolves links against baseURL.
// The URL has typically been validated by the HTTP client already, so no
// further validation happens here.
func NewExtractor(baseURL *url.URL, opts ...ExtractorOption) *Extractor {
	e := &Extractor{baseURL: baseURL}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FirstLink returns the first qualifying link in the given article HTML,
// or a no-link result when the page has none.
//
// A link qualifies when it is an anchor inside a paragraph of the
// article body, its href starts with /wiki/, and it does not point into
// an excluded namespace. Subtrees of skipped elements are not searched,
// and paragraphs are scanned in document order.
//
// Unparseable input yields a no-link result rather than an error; the
// walk treats such pages as dead ends.
func (e *Extractor) FirstLink(content []byte) model.LinkResult {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return model.NoLink()
	}

	root := findContentRoot(doc)
	if root == nil {
		return model.NoLink()
	}

	if ref, ok := e.firstLinkIn(root); ok {
		return model.LinkTo(ref)
	}
	return model.NoLink()
}

// firstLinkIn scans the content subtree for paragraphs and returns the
// first qualifying link found in any of them, in document order.
func (e *Extractor) firstLinkIn(root *html.Node) (model.ArticleRef, bool) {
	var search func(n *html.Node) (model.ArticleRef, bool)
	search = func(n *html.Node) (model.ArticleRef, bool) {
		if n.Type == html.ElementNode {
			if skippedElements[n.Data] {
				return "", false
			}
			if n.Data == "p" {
				return e.firstLinkInParagraph(n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if ref, ok := search(c); ok {
				return ref, true
			}
		}
		return "", false
	}
	return search(root)
}

// firstLinkInParagraph scans a single paragraph for the first qualifying
// anchor. When parenthetical skipping is enabled, parentheses in the
// paragraph's prose adjust a depth counter and anchors seen at depth > 0
// are passed over. Anchors are atomic: their own text does not adjust
// the depth.
func (e *Extractor) firstLinkInParagraph(p *html.Node) (model.ArticleRef, bool) {
	depth := 0

	var scan func(n *html.Node) (model.ArticleRef, bool)
	scan = func(n *html.Node) (model.ArticleRef, bool) {
		switch n.Type {
		case html.TextNode:
			if e.skipParenthetical {
				depth = parenDepth(n.Data, depth)
			}
			return "", false
		case html.ElementNode:
			if skippedElements[n.Data] {
				return "", false
			}
			if n.Data == "a" {
				if depth == 0 {
					if ref, ok := e.qualify(getAttr(n, "href")); ok {
						return ref, true
					}
				}
				return "", false
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if ref, ok := scan(c); ok {
				return ref, true
			}
		}
		return "", false
	}
	return scan(p)
}

// qualify reports whether href is a link to another article and, if so,
// returns it resolved against the base URL with any fragment stripped.
func (e *Extractor) qualify(href string) (model.ArticleRef, bool) {
	href = strings.TrimSpace(href)
	if !strings.HasPrefix(href, articlePathPrefix) {
		return "", false
	}

	rest := strings.TrimPrefix(href, articlePathPrefix)
	for _, ns := range excludedNamespaces {
		if strings.HasPrefix(rest, ns+":") {
			return "", false
		}
	}

	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	resolved := e.baseURL.ResolveReference(u)
	return model.NewArticleRef(resolved.String()), true
}

// parenDepth advances the parenthesis depth across a run of text.
// Unbalanced closers clamp at zero instead of going negative.
func parenDepth(text string, depth int) int {
	for _, r := range text {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		}
	}
	return depth
}

// findContentRoot locates the article body div in the parse tree.
func findContentRoot(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "div" && getAttr(n, "id") == contentRootID {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findContentRoot(c); found != nil {
			return found
		}
	}
	return nil
}

// getAttr retrieves an attribute value from an HTML node.
// Returns empty string if the attribute doesn't exist.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
