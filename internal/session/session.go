package session

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/user/catalogs/internal/catalog"
	"github.com/user/catalogs/internal/logger"
	"github.com/user/catalogs/internal/results"
	"github.com/user/catalogs/internal/sources"
)

// Lister is the read side of a persistent store.
type Lister interface {
	ListAll(ctx context.Context) ([]catalog.Item, error)
}

// Outcome is a finished search or saved-items load, ready to be applied.
type Outcome struct {
	Kind    catalog.Kind
	Query   string
	Items   []catalog.Item
	Skipped int
	Saved   bool

	generation uint64
}

// Session runs searches for one catalog and feeds the result set.
//
// Search and LoadSaved do the slow work and may run on any goroutine.
// Apply must run on the goroutine that owns the result set; it drops outcomes
// superseded by a newer request or arriving after Detach.
type Session struct {
	source  sources.Source
	results *results.Set
	log     logger.Logger

	issued   atomic.Uint64
	detached atomic.Bool
}

func New(src sources.Source, set *results.Set, log logger.Logger) *Session {
	if log == nil {
		log = logger.Nop()
	}
	return &Session{
		source:  src,
		results: set,
		log:     log.With(logger.String("catalog", string(src.Kind()))),
	}
}

func (s *Session) Kind() catalog.Kind {
	return s.source.Kind()
}

func (s *Session) Results() *results.Set {
	return s.results
}

// Search fetches and maps one query. Records that fail to map are skipped and
// counted; only a fetch failure fails the search.
func (s *Session) Search(ctx context.Context, query string, opts sources.Options) (Outcome, error) {
	gen := s.issued.Add(1)

	raw, err := s.source.Fetch(ctx, query, opts)
	if err != nil {
		s.log.Warn("search failed", logger.String("query", query), logger.Error(err))
		return Outcome{}, err
	}

	out := Outcome{
		Kind:       s.source.Kind(),
		Query:      query,
		Items:      make([]catalog.Item, 0, len(raw)),
		generation: gen,
	}
	for i, rec := range raw {
		item, err := s.source.Map(rec)
		if err != nil {
			var me *catalog.MappingError
			if !errors.As(err, &me) {
				return Outcome{}, err
			}
			out.Skipped++
			s.log.Debug("skipping record", logger.Int("index", i), logger.Error(err))
			continue
		}
		out.Items = append(out.Items, item)
	}

	s.log.Info("search finished",
		logger.String("query", query),
		logger.Int("results", len(out.Items)),
		logger.Int("skipped", out.Skipped))
	return out, nil
}

// LoadSaved reads every saved item of the catalog from store.
func (s *Session) LoadSaved(ctx context.Context, store Lister) (Outcome, error) {
	gen := s.issued.Add(1)

	items, err := store.ListAll(ctx)
	if err != nil {
		s.log.Error("listing saved items failed", logger.Error(err))
		return Outcome{}, err
	}
	return Outcome{
		Kind:       s.source.Kind(),
		Items:      items,
		Saved:      true,
		generation: gen,
	}, nil
}

// Apply replaces the result set with o. It reports false, leaving the set
// untouched, when o is stale or the session is detached.
func (s *Session) Apply(o Outcome) bool {
	if s.detached.Load() || o.generation == 0 || o.generation != s.issued.Load() {
		return false
	}
	s.results.Replace(o.Items)
	return true
}

// Run searches and applies on the calling goroutine.
func (s *Session) Run(ctx context.Context, query string, opts sources.Options) (Outcome, error) {
	out, err := s.Search(ctx, query, opts)
	if err != nil {
		return Outcome{}, err
	}
	s.Apply(out)
	return out, nil
}

// ShowSaved loads the saved items and applies them on the calling goroutine.
func (s *Session) ShowSaved(ctx context.Context, store Lister) (Outcome, error) {
	out, err := s.LoadSaved(ctx, store)
	if err != nil {
		return Outcome{}, err
	}
	s.Apply(out)
	return out, nil
}

// Detach stops all further Apply calls, for when the view observing the
// result set is gone. In-flight requests still complete.
func (s *Session) Detach() {
	s.detached.Store(true)
}
