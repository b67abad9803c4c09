package report

import (
	"net/url"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// editionLanguage derives the encyclopedia edition's language from the
// first label of the base URL's host ("en" in en.wikipedia.org) and
// returns its English name. It returns the empty string when the label
// is not a recognized language tag, so callers can omit the annotation.
func editionLanguage(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}

	label, rest, found := strings.Cut(u.Hostname(), ".")
	if !found || rest == "" || label == "" {
		return ""
	}

	tag, err := language.Parse(label)
	if err != nil {
		return ""
	}
	return display.English.Languages().Name(tag)
}
