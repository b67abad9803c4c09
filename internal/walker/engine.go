package walker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wikiwalk/wikiwalk/internal/model"
)

// DefaultMaxSteps bounds a single walk. Wikipedia first-link chains
// reach Philosophy well within a few dozen hops; walks still going
// after this many articles are looping through content we don't detect
// or wandering somewhere unbounded.
const DefaultMaxSteps = 150

// Source produces the pages a walk moves through.
//
// Design decision: The Walker depends on this small interface rather
// than on the HTTP client because:
//  1. Walk logic is testable with synthetic page graphs, no network
//  2. The engine doesn't care whether a link came from a fetch or a
//     fixture
//  3. Concerns split cleanly: Source owns fetching, Walker owns the
//     walk bookkeeping
type Source interface {
	// RandomArticle returns a randomly selected article to start from.
	RandomArticle(ctx context.Context) (model.ArticleRef, error)

	// FirstLink returns the first qualifying link of the given article.
	FirstLink(ctx context.Context, ref model.ArticleRef) (model.LinkResult, error)
}

// LinkCache stores resolved first links so repeated visits to the same
// article skip the network entirely. The walker is the consumer; the
// database package provides the persistent implementation.
//
// Lookup's second result distinguishes "not cached" from a cached
// no-link entry, which is itself a valid, final answer for a page.
type LinkCache interface {
	Lookup(ctx context.Context, ref model.ArticleRef) (model.LinkResult, bool, error)
	Store(ctx context.Context, ref model.ArticleRef, result model.LinkResult) error
}

// Walker runs first-link walks from random articles toward a target.
type Walker struct {
	// source produces seed articles and first links.
	source Source

	// cache is the optional persistent link cache. Nil disables caching.
	cache LinkCache

	// target is the article that counts as success when entered.
	target model.ArticleRef

	// maxSteps caps the number of distinct articles a walk may enter.
	maxSteps int

	// logger records walk progress at debug level.
	logger *slog.Logger
}

// WalkerOption configures a Walker.
type WalkerOption func(*Walker)

// WithMaxSteps caps the number of distinct articles per walk.
func WithMaxSteps(n int) WalkerOption {
	return func(w *Walker) {
		w.maxSteps = n
	}
}

// WithCache sets the persistent link cache.
func WithCache(cache LinkCache) WalkerOption {
	return func(w *Walker) {
		w.cache = cache
	}
}

// WithLogger sets the logger for walk progress events.
func WithLogger(logger *slog.Logger) WalkerOption {
	return func(w *Walker) {
		w.logger = logger
	}
}

// NewWalker creates a Walker that walks from random articles toward
// target.
func NewWalker(source Source, target model.ArticleRef, opts ...WalkerOption) *Walker {
	w := &Walker{
		source:   source,
		target:   target,
		maxSteps: DefaultMaxSteps,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Walk runs one walk and classifies its outcome.
//
// The walk starts from a random article and follows first links until
// it enters the target (success), re-enters an article it has already
// visited (cycle), reaches a page with no qualifying link (dead end),
// exhausts the step limit, or fails to fetch a page (fetch error). All
// of these are recorded as outcomes, not errors.
//
// A non-nil error means the walk itself could not proceed: the context
// was cancelled or the link cache failed. No outcome accompanies an
// error.
//
// PagesVisited counts distinct articles entered, the seed included.
// Entering the target is checked before the step limit, so a walk that
// reaches it on exactly the last allowed article still succeeds. The
// limit is checked before the next link is resolved, so a walk never
// fetches a page it isn't allowed to enter.
func (w *Walker) Walk(ctx context.Context, runID int) (model.WalkOutcome, error) {
	outcome := model.WalkOutcome{RunID: runID}

	seed, err := w.source.RandomArticle(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return model.WalkOutcome{}, ctx.Err()
		}
		w.logger.DebugContext(ctx, "random article failed", "run", runID, "error", err)
		outcome.State = model.StateFetchError
		return outcome, nil
	}

	w.logger.DebugContext(ctx, "walk started", "run", runID, "seed", seed.String())

	visited := make(map[model.ArticleRef]struct{})
	current := seed

	for {
		if _, seen := visited[current]; seen {
			outcome.State = model.StateCycle
			outcome.TerminalPage = current
			w.logWalkEnd(ctx, outcome)
			return outcome, nil
		}

		outcome.PagesVisited++

		if current == w.target {
			outcome.ReachedTarget = true
			outcome.State = model.StateSuccess
			w.logWalkEnd(ctx, outcome)
			return outcome, nil
		}

		visited[current] = struct{}{}

		if outcome.PagesVisited >= w.maxSteps {
			outcome.HitMaxSteps = true
			outcome.State = model.StateStepLimit
			outcome.TerminalPage = current
			w.logWalkEnd(ctx, outcome)
			return outcome, nil
		}

		result, err := w.resolve(ctx, current)
		if err != nil {
			if ctx.Err() != nil {
				return model.WalkOutcome{}, ctx.Err()
			}
			var cacheErr *cacheError
			if errors.As(err, &cacheErr) {
				return model.WalkOutcome{}, err
			}
			w.logger.DebugContext(ctx, "fetch failed", "run", runID, "article", current.String(), "error", err)
			outcome.State = model.StateFetchError
			outcome.TerminalPage = current
			w.logWalkEnd(ctx, outcome)
			return outcome, nil
		}

		next, ok := result.Next()
		if !ok {
			outcome.State = model.StateDeadEnd
			outcome.TerminalPage = current
			w.logWalkEnd(ctx, outcome)
			return outcome, nil
		}

		current = next
	}
}

// resolve returns the first link of an article, consulting the cache
// first and storing fresh results on a miss. Cache failures come back
// as *cacheError so the caller can tell them from fetch failures.
func (w *Walker) resolve(ctx context.Context, ref model.ArticleRef) (model.LinkResult, error) {
	if w.cache != nil {
		result, ok, err := w.cache.Lookup(ctx, ref)
		if err != nil {
			return model.LinkResult{}, &cacheError{op: "lookup", ref: ref, err: err}
		}
		if ok {
			w.logger.DebugContext(ctx, "cache hit", "article", ref.String())
			return result, nil
		}
	}

	result, err := w.source.FirstLink(ctx, ref)
	if err != nil {
		return model.LinkResult{}, err
	}

	if w.cache != nil {
		if err := w.cache.Store(ctx, ref, result); err != nil {
			return model.LinkResult{}, &cacheError{op: "store", ref: ref, err: err}
		}
	}

	return result, nil
}

func (w *Walker) logWalkEnd(ctx context.Context, outcome model.WalkOutcome) {
	w.logger.DebugContext(ctx, "walk finished",
		"run", outcome.RunID,
		"state", outcome.State.String(),
		"pages", outcome.PagesVisited,
		"terminal", outcome.TerminalPage.String(),
	)
}

// cacheError marks a link cache failure. The walk aborts on these:
// unlike a fetch failure, a broken cache invalidates every subsequent
// walk in the experiment.
type cacheError struct {
	op  string
	ref model.ArticleRef
	err error
}

func (e *cacheError) Error() string {
	return fmt.Sprintf("link cache %s for %s: %v", e.op, e.ref, e.err)
}

func (e *cacheError) Unwrap() error {
	return e.err
}
