package walker

import (
	"net/url"
	"testing"
)

// testExtractor builds an Extractor rooted at the English Wikipedia.
func testExtractor(t *testing.T, opts ...ExtractorOption) *Extractor {
	t.Helper()

	base, err := url.Parse("https://en.wikipedia.org")
	if err != nil {
		t.Fatalf("failed to parse base URL: %v", err)
	}
	return NewExtractor(base, opts...)
}

// articlePage wraps body markup in the surrounding structure of a
// Wikipedia article page, including navigation links that must never be
// chosen.
func articlePage(body string) []byte {
	return []byte(`<html><head><title>Test</title></head><body>
		<div id="mw-navigation"><a href="/wiki/Main_Page">Main page</a></div>
		<div id="mw-content-text">` + body + `</div>
		<div id="footer"><a href="/wiki/Terms_of_Use">Terms</a></div>
	</body></html>`)
}

// TestExtractorFirstLink tests first-link selection over article HTML.
func TestExtractorFirstLink(t *testing.T) {
	t.Parallel()

	t.Run("returns the first paragraph link resolved against the base", func(t *testing.T) {
		t.Parallel()

		body := `<p>In <a href="/wiki/Greek_language">Greek</a> and <a href="/wiki/Latin">Latin</a>.</p>`
		result := testExtractor(t).FirstLink(articlePage(body))

		next, ok := result.Next()
		if !ok {
			t.Fatal("expected a link, got none")
		}
		if want := "https://en.wikipedia.org/wiki/Greek_language"; next.String() != want {
			t.Errorf("FirstLink() = %q, expected %q", next, want)
		}
	})

	t.Run("ignores links outside paragraphs", func(t *testing.T) {
		t.Parallel()

		body := `<div class="hatnote"><a href="/wiki/Philosophy_(disambiguation)">disambiguation</a></div>
			<ul><li><a href="/wiki/List_entry">entry</a></li></ul>
			<p>The real <a href="/wiki/First_link">first link</a>.</p>`
		result := testExtractor(t).FirstLink(articlePage(body))

		next, ok := result.Next()
		if !ok {
			t.Fatal("expected a link, got none")
		}
		if want := "https://en.wikipedia.org/wiki/First_link"; next.String() != want {
			t.Errorf("FirstLink() = %q, expected %q", next, want)
		}
	})

	t.Run("skips tables including paragraphs inside them", func(t *testing.T) {
		t.Parallel()

		body := `<table class="infobox"><tr><td>
				<a href="/wiki/Infobox_link">infobox</a>
				<p><a href="/wiki/Table_paragraph_link">table paragraph</a></p>
			</td></tr></table>
			<p>Lead with <a href="/wiki/Lead_link">a link</a>.</p>`
		result := testExtractor(t).FirstLink(articlePage(body))

		next, ok := result.Next()
		if !ok {
			t.Fatal("expected a link, got none")
		}
		if want := "https://en.wikipedia.org/wiki/Lead_link"; next.String() != want {
			t.Errorf("FirstLink() = %q, expected %q", next, want)
		}
	})

	t.Run("skips citation markers and span annotations", func(t *testing.T) {
		t.Parallel()

		body := `<p><sup class="reference"><a href="/wiki/Citation_needed">[1]</a></sup>
			<span class="IPA"><a href="/wiki/International_Phonetic_Alphabet">/f/</a></span>
			Philosophy is the study of <a href="/wiki/Knowledge">knowledge</a>.</p>`
		result := testExtractor(t).FirstLink(articlePage(body))

		next, ok := result.Next()
		if !ok {
			t.Fatal("expected a link, got none")
		}
		if want := "https://en.wikipedia.org/wiki/Knowledge"; next.String() != want {
			t.Errorf("FirstLink() = %q, expected %q", next, want)
		}
	})

	t.Run("skips non-article namespaces", func(t *testing.T) {
		t.Parallel()

		body := `<p><a href="/wiki/Help:Contents">help</a>
			<a href="/wiki/File:Plato.jpg">image</a>
			<a href="/wiki/Wikipedia:About">about</a>
			<a href="/wiki/Special:Random">random</a>
			<a href="/wiki/Category:Concepts">category</a>
			<a href="/wiki/Portal:Philosophy">portal</a>
			then <a href="/wiki/Concept">a concept</a>.</p>`
		result := testExtractor(t).FirstLink(articlePage(body))

		next, ok := result.Next()
		if !ok {
			t.Fatal("expected a link, got none")
		}
		if want := "https://en.wikipedia.org/wiki/Concept"; next.String() != want {
			t.Errorf("FirstLink() = %q, expected %q", next, want)
		}
	})

	t.Run("skips external and non-article hrefs", func(t *testing.T) {
		t.Parallel()

		body := `<p><a href="https://example.com/wiki/Elsewhere">external</a>
			<a href="/w/index.php?title=Edit">edit</a>
			<a href="#cite_note-1">note</a>
			<a href="/wiki/Qualifying_article">qualifying</a>.</p>`
		result := testExtractor(t).FirstLink(articlePage(body))

		next, ok := result.Next()
		if !ok {
			t.Fatal("expected a link, got none")
		}
		if want := "https://en.wikipedia.org/wiki/Qualifying_article"; next.String() != want {
			t.Errorf("FirstLink() = %q, expected %q", next, want)
		}
	})

	t.Run("strips the fragment from the chosen link", func(t *testing.T) {
		t.Parallel()

		body := `<p>See <a href="/wiki/Logic#Etymology">logic</a>.</p>`
		result := testExtractor(t).FirstLink(articlePage(body))

		next, ok := result.Next()
		if !ok {
			t.Fatal("expected a link, got none")
		}
		if want := "https://en.wikipedia.org/wiki/Logic"; next.String() != want {
			t.Errorf("FirstLink() = %q, expected %q", next, want)
		}
	})

	t.Run("falls through to a later paragraph", func(t *testing.T) {
		t.Parallel()

		body := `<p>No links here, only <a href="/wiki/Category:Empty">a category</a>.</p>
			<p>Second paragraph links <a href="/wiki/Second_chance">here</a>.</p>`
		result := testExtractor(t).FirstLink(articlePage(body))

		next, ok := result.Next()
		if !ok {
			t.Fatal("expected a link, got none")
		}
		if want := "https://en.wikipedia.org/wiki/Second_chance"; next.String() != want {
			t.Errorf("FirstLink() = %q, expected %q", next, want)
		}
	})

	t.Run("page without a content root has no link", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><p><a href="/wiki/Orphan">orphan</a></p></body></html>`
		result := testExtractor(t).FirstLink([]byte(html))

		if result.HasLink() {
			next, _ := result.Next()
			t.Errorf("expected no link, got %q", next)
		}
	})

	t.Run("page without qualifying links has no link", func(t *testing.T) {
		t.Parallel()

		body := `<p>Nothing but <a href="/wiki/Special:Statistics">statistics</a> here.</p>`
		result := testExtractor(t).FirstLink(articlePage(body))

		if result.HasLink() {
			next, _ := result.Next()
			t.Errorf("expected no link, got %q", next)
		}
	})

	t.Run("empty input has no link", func(t *testing.T) {
		t.Parallel()

		result := testExtractor(t).FirstLink(nil)

		if result.HasLink() {
			next, _ := result.Next()
			t.Errorf("expected no link, got %q", next)
		}
	})

	t.Run("percent-escaped titles survive resolution", func(t *testing.T) {
		t.Parallel()

		body := `<p>See <a href="/wiki/G%C3%B6del's_incompleteness_theorems">the theorems</a>.</p>`
		result := testExtractor(t).FirstLink(articlePage(body))

		next, ok := result.Next()
		if !ok {
			t.Fatal("expected a link, got none")
		}
		if want := "https://en.wikipedia.org/wiki/G%C3%B6del's_incompleteness_theorems"; next.String() != want {
			t.Errorf("FirstLink() = %q, expected %q", next, want)
		}
	})
}

// TestExtractorSkipParenthetical tests the stricter rule that passes
// over links inside parentheses.
func TestExtractorSkipParenthetical(t *testing.T) {
	t.Parallel()

	const lead = `<p>Philosophy (from <a href="/wiki/Greek_language">Greek</a>, love of wisdom)
		is the study of <a href="/wiki/Knowledge">knowledge</a>.</p>`

	t.Run("disabled by default", func(t *testing.T) {
		t.Parallel()

		result := testExtractor(t).FirstLink(articlePage(lead))

		next, ok := result.Next()
		if !ok {
			t.Fatal("expected a link, got none")
		}
		if want := "https://en.wikipedia.org/wiki/Greek_language"; next.String() != want {
			t.Errorf("FirstLink() = %q, expected %q", next, want)
		}
	})

	t.Run("enabled skips the parenthesized link", func(t *testing.T) {
		t.Parallel()

		result := testExtractor(t, WithSkipParenthetical(true)).FirstLink(articlePage(lead))

		next, ok := result.Next()
		if !ok {
			t.Fatal("expected a link, got none")
		}
		if want := "https://en.wikipedia.org/wiki/Knowledge"; next.String() != want {
			t.Errorf("FirstLink() = %q, expected %q", next, want)
		}
	})

	t.Run("tracks nested parentheses", func(t *testing.T) {
		t.Parallel()

		body := `<p>A term ((deeply) parenthesized <a href="/wiki/Hidden">hidden</a>)
			followed by <a href="/wiki/Visible">visible</a>.</p>`
		result := testExtractor(t, WithSkipParenthetical(true)).FirstLink(articlePage(body))

		next, ok := result.Next()
		if !ok {
			t.Fatal("expected a link, got none")
		}
		if want := "https://en.wikipedia.org/wiki/Visible"; next.String() != want {
			t.Errorf("FirstLink() = %q, expected %q", next, want)
		}
	})

	t.Run("unbalanced closers do not poison later links", func(t *testing.T) {
		t.Parallel()

		body := `<p>) a stray closer, then <a href="/wiki/Recovered">recovered</a>.</p>`
		result := testExtractor(t, WithSkipParenthetical(true)).FirstLink(articlePage(body))

		next, ok := result.Next()
		if !ok {
			t.Fatal("expected a link, got none")
		}
		if want := "https://en.wikipedia.org/wiki/Recovered"; next.String() != want {
			t.Errorf("FirstLink() = %q, expected %q", next, want)
		}
	})

	t.Run("depth resets between paragraphs", func(t *testing.T) {
		t.Parallel()

		body := `<p>An unclosed (parenthesis with <a href="/wiki/Swallowed">a link</a></p>
			<p>Next paragraph links <a href="/wiki/Fresh_start">normally</a>.</p>`
		result := testExtractor(t, WithSkipParenthetical(true)).FirstLink(articlePage(body))

		next, ok := result.Next()
		if !ok {
			t.Fatal("expected a link, got none")
		}
		if want := "https://en.wikipedia.org/wiki/Fresh_start"; next.String() != want {
			t.Errorf("FirstLink() = %q, expected %q", next, want)
		}
	})
}
