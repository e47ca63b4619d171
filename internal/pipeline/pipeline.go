// Package pipeline ties one catalog's search session, saved items, undoable
// deletes and image saving together.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/user/catalogs/internal/catalog"
	"github.com/user/catalogs/internal/logger"
	"github.com/user/catalogs/internal/results"
	"github.com/user/catalogs/internal/session"
	"github.com/user/catalogs/internal/sources"
	"github.com/user/catalogs/internal/undo"
)

// Collection is the saved-items store of one catalog.
type Collection interface {
	Put(ctx context.Context, item catalog.Item) (catalog.Item, error)
	ListAll(ctx context.Context) ([]catalog.Item, error)
	Delete(ctx context.Context, item catalog.Item) error
}

// Prefs remembers the last search of each catalog.
type Prefs interface {
	SearchTerm(kind catalog.Kind) (string, error)
	SetSearchTerm(kind catalog.Kind, term string) error
	Radius() (string, error)
	SetRadius(radius string) error
}

type ImageSaver interface {
	Save(ctx context.Context, imageURL string) (string, error)
}

// Deps are the collaborators of a Pipeline. Prefs and Images are optional.
type Deps struct {
	Source     sources.Source
	Store      Collection
	Prefs      Prefs
	Images     ImageSaver
	UndoWindow time.Duration
	Clock      clock.Clock
	Log        logger.Logger
}

// Saved reports a finished save. ImageErr is set when the item was stored
// but its image could not be written.
type Saved struct {
	Item      catalog.Item
	ImagePath string
	ImageErr  error
}

type Pipeline struct {
	kind    catalog.Kind
	session *session.Session
	results *results.Set
	store   Collection
	prefs   Prefs
	images  ImageSaver
	undo    *undo.Coordinator
	log     logger.Logger
}

func New(d Deps) *Pipeline {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	kind := d.Source.Kind()
	log = log.With(logger.String("catalog", string(kind)))

	set := results.New()
	opts := []undo.Option{
		undo.WithLogger(log),
		undo.OnFinalize(func(p undo.Pending) {
			log.Info("deletion is final", logger.Int64("id", p.Item.ID))
		}),
	}
	if d.Clock != nil {
		opts = append(opts, undo.WithClock(d.Clock))
	}

	return &Pipeline{
		kind:    kind,
		session: session.New(d.Source, set, d.Log),
		results: set,
		store:   d.Store,
		prefs:   d.Prefs,
		images:  d.Images,
		undo:    undo.New(d.Store, d.UndoWindow, opts...),
		log:     log,
	}
}

func (p *Pipeline) Kind() catalog.Kind {
	return p.kind
}

func (p *Pipeline) Results() *results.Set {
	return p.results
}

func (p *Pipeline) UndoWindow() time.Duration {
	return p.undo.Window()
}

// LastSearch returns the remembered query and, for events, radius.
func (p *Pipeline) LastSearch() (query, radius string) {
	if p.prefs == nil {
		return "", ""
	}
	query, err := p.prefs.SearchTerm(p.kind)
	if err != nil {
		p.log.Warn("reading saved search term failed", logger.Error(err))
	}
	if p.kind == catalog.Event {
		if radius, err = p.prefs.Radius(); err != nil {
			p.log.Warn("reading saved radius failed", logger.Error(err))
		}
	}
	return query, radius
}

// Search remembers the query and runs it without touching the result set.
// Safe to call off the foreground goroutine.
func (p *Pipeline) Search(ctx context.Context, query string, opts sources.Options) (session.Outcome, error) {
	query = strings.TrimSpace(query)
	if query != "" {
		p.remember(query, opts)
	}
	return p.session.Search(ctx, query, opts)
}

func (p *Pipeline) remember(query string, opts sources.Options) {
	if p.prefs == nil {
		return
	}
	if err := p.prefs.SetSearchTerm(p.kind, query); err != nil {
		p.log.Warn("saving search term failed", logger.Error(err))
	}
	if p.kind == catalog.Event {
		if err := p.prefs.SetRadius(opts.Radius); err != nil {
			p.log.Warn("saving radius failed", logger.Error(err))
		}
	}
}

// LoadSaved reads the saved items without touching the result set.
func (p *Pipeline) LoadSaved(ctx context.Context) (session.Outcome, error) {
	return p.session.LoadSaved(ctx, p.store)
}

// Apply publishes o to the result set. Must run on the foreground goroutine.
func (p *Pipeline) Apply(o session.Outcome) bool {
	return p.session.Apply(o)
}

func (p *Pipeline) Run(ctx context.Context, query string, opts sources.Options) (session.Outcome, error) {
	out, err := p.Search(ctx, query, opts)
	if err != nil {
		return session.Outcome{}, err
	}
	p.Apply(out)
	return out, nil
}

func (p *Pipeline) ShowSaved(ctx context.Context) (session.Outcome, error) {
	out, err := p.LoadSaved(ctx)
	if err != nil {
		return session.Outcome{}, err
	}
	p.Apply(out)
	return out, nil
}

// Save stores item under a fresh identity. With withImage set it also writes
// the item's image; that step is best effort and never undoes the store.
func (p *Pipeline) Save(ctx context.Context, item catalog.Item, withImage bool) (Saved, error) {
	stored, err := p.store.Put(ctx, item)
	if err != nil {
		p.log.Error("saving item failed", logger.String("title", item.Title), logger.Error(err))
		return Saved{}, err
	}
	p.log.Info("item saved", logger.Int64("id", stored.ID), logger.String("title", stored.Title))

	out := Saved{Item: stored}
	if !withImage || p.images == nil || stored.ImageURL == "" {
		return out, nil
	}
	out.ImagePath, out.ImageErr = p.images.Save(ctx, stored.ImageURL)
	if out.ImageErr != nil {
		p.log.Warn("saving image failed", logger.String("url", stored.ImageURL), logger.Error(out.ImageErr))
	}
	return out, nil
}

// Remove deletes a saved item and opens its undo window.
func (p *Pipeline) Remove(ctx context.Context, item catalog.Item) (undo.Pending, error) {
	pending, err := p.undo.Begin(ctx, item)
	if err != nil {
		p.log.Error("removing item failed", logger.Int64("id", item.ID), logger.Error(err))
		return undo.Pending{}, err
	}
	return pending, nil
}

// Undo restores a removed item. The restored item has a new identity.
func (p *Pipeline) Undo(ctx context.Context, id uuid.UUID) (catalog.Item, error) {
	return p.undo.Undo(ctx, id)
}

// PendingUndo returns the deletion the undo prompt should offer, if any.
func (p *Pipeline) PendingUndo() (undo.Pending, bool) {
	return p.undo.Visible()
}

func (p *Pipeline) DismissUndo(id uuid.UUID) {
	p.undo.Dismiss(id)
}

// Close detaches the result set and finalizes open undo windows.
func (p *Pipeline) Close() {
	p.session.Detach()
	p.undo.Close()
}
