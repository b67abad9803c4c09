package walker

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/wikiwalk/wikiwalk/internal/model"
)

// Fetcher retrieves pages over the network. The wiki package's Client
// satisfies it.
type Fetcher interface {
	// RandomArticle returns a randomly selected article.
	RandomArticle(ctx context.Context) (model.ArticleRef, error)

	// FetchArticle retrieves the HTML body of an article.
	FetchArticle(ctx context.Context, ref model.ArticleRef) ([]byte, error)
}

// PageSource combines a Fetcher and an Extractor into a Source.
//
// Design decision: Concurrent FirstLink calls for the same article are
// collapsed into a single fetch via singleflight. With multiple workers
// the walks converge on the same popular articles quickly, and without
// collapsing every worker would fetch them independently before the
// shared cache has an entry. The in-flight call runs under the first
// caller's context; if that caller is cancelled the others see its
// error and retry on their own walk, which is rare enough not to
// special-case.
type PageSource struct {
	fetcher   Fetcher
	extractor *Extractor
	group     singleflight.Group
}

// NewPageSource creates a Source backed by fetcher and extractor.
func NewPageSource(fetcher Fetcher, extractor *Extractor) *PageSource {
	return &PageSource{
		fetcher:   fetcher,
		extractor: extractor,
	}
}

// RandomArticle returns a randomly selected article.
func (s *PageSource) RandomArticle(ctx context.Context) (model.ArticleRef, error) {
	return s.fetcher.RandomArticle(ctx)
}

// FirstLink fetches the article and extracts its first qualifying link.
func (s *PageSource) FirstLink(ctx context.Context, ref model.ArticleRef) (model.LinkResult, error) {
	v, err, _ := s.group.Do(ref.String(), func() (any, error) {
		body, err := s.fetcher.FetchArticle(ctx, ref)
		if err != nil {
			return nil, err
		}
		return s.extractor.FirstLink(body), nil
	})
	if err != nil {
		return model.LinkResult{}, err
	}
	return v.(model.LinkResult), nil
}
