// Package undo implements delete-now-undo-later for saved items.
//
// Begin deletes from the store immediately, so listing the store never shows a
// record the user has removed. Undo compensates by inserting the item again,
// which gives it a new identity. When the window closes the deletion simply
// stands; nothing further touches the store.
package undo

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/user/catalogs/internal/catalog"
	"github.com/user/catalogs/internal/logger"
)

var (
	// ErrUndoExpired is returned by Undo once the window has closed.
	ErrUndoExpired = errors.New("undo window has expired")

	// ErrNoPendingUndo is returned by Undo for an unknown or already reverted deletion.
	ErrNoPendingUndo = errors.New("no pending deletion")
)

// Store is the part of a persistent store the coordinator needs.
type Store interface {
	Put(ctx context.Context, item catalog.Item) (catalog.Item, error)
	Delete(ctx context.Context, item catalog.Item) error
}

type State int

const (
	PendingUndo State = iota
	Reverted
	Finalized
)

func (s State) String() string {
	switch s {
	case PendingUndo:
		return "pending"
	case Reverted:
		return "reverted"
	case Finalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// Pending is a deletion that can still be reverted.
type Pending struct {
	ID        uuid.UUID
	Item      catalog.Item
	Kind      catalog.Kind
	DeletedAt time.Time
	Deadline  time.Time
	State     State
}

// Remaining returns how long the undo window stays open after now.
func (p Pending) Remaining(now time.Time) time.Duration {
	if d := p.Deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}

type entry struct {
	p         Pending
	timer     *clock.Timer
	reverting bool
}

type Option func(*Coordinator)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clock.Clock) Option {
	return func(co *Coordinator) { co.clock = c }
}

func WithLogger(l logger.Logger) Option {
	return func(co *Coordinator) { co.log = l }
}

// OnFinalize registers fn to run once for every deletion whose window closes.
// It runs on the timer goroutine.
func OnFinalize(fn func(Pending)) Option {
	return func(co *Coordinator) { co.onFinalize = fn }
}

// Coordinator tracks every open undo window of one store. Several deletions
// may be pending at once, each with its own deadline; only the latest one is
// visible.
type Coordinator struct {
	store      Store
	window     time.Duration
	clock      clock.Clock
	log        logger.Logger
	onFinalize func(Pending)

	mu      sync.Mutex
	pending map[uuid.UUID]*entry
	settled map[uuid.UUID]State
	visible uuid.UUID
}

func New(store Store, window time.Duration, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:   store,
		window:  window,
		clock:   clock.New(),
		log:     logger.Nop(),
		pending: make(map[uuid.UUID]*entry),
		settled: make(map[uuid.UUID]State),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) Window() time.Duration {
	return c.window
}

// Begin deletes item from the store right away and opens its undo window.
// A failed delete opens no window.
func (c *Coordinator) Begin(ctx context.Context, item catalog.Item) (Pending, error) {
	if !item.HasIdentity() {
		return Pending{}, catalog.ErrNoIdentity
	}
	if err := c.store.Delete(ctx, item); err != nil {
		return Pending{}, err
	}

	now := c.clock.Now()
	p := Pending{
		ID:        uuid.New(),
		Item:      item,
		Kind:      item.Kind,
		DeletedAt: now,
		Deadline:  now.Add(c.window),
		State:     PendingUndo,
	}

	c.mu.Lock()
	e := &entry{p: p}
	c.pending[p.ID] = e
	c.visible = p.ID
	e.timer = c.clock.AfterFunc(c.window, func() { c.expire(p.ID) })
	c.mu.Unlock()

	c.log.Debug("deletion pending",
		logger.String("catalog", string(item.Kind)),
		logger.Int64("id", item.ID),
		logger.Duration("window", c.window))
	return p, nil
}

// Undo reverts a pending deletion by re-inserting its item. The restored item
// carries a new identity.
func (c *Coordinator) Undo(ctx context.Context, id uuid.UUID) (catalog.Item, error) {
	c.mu.Lock()
	e, ok := c.pending[id]
	if !ok || e.reverting {
		st := c.settled[id]
		c.mu.Unlock()
		if st == Finalized {
			return catalog.Item{}, ErrUndoExpired
		}
		return catalog.Item{}, ErrNoPendingUndo
	}
	// The timer may be late (suspended process), so the deadline is checked here too.
	if !c.clock.Now().Before(e.p.Deadline) {
		p, settled := c.finalizeLocked(id)
		c.mu.Unlock()
		if settled {
			c.finalized(p)
		}
		return catalog.Item{}, ErrUndoExpired
	}
	e.reverting = true
	e.timer.Stop()
	item := e.p.Item
	c.mu.Unlock()

	restored, err := c.store.Put(ctx, item)

	c.mu.Lock()
	if err != nil {
		e.reverting = false
		remaining := e.p.Remaining(c.clock.Now())
		if remaining == 0 {
			p, settled := c.finalizeLocked(id)
			c.mu.Unlock()
			if settled {
				c.finalized(p)
			}
			return catalog.Item{}, err
		}
		e.timer = c.clock.AfterFunc(remaining, func() { c.expire(id) })
		c.mu.Unlock()
		return catalog.Item{}, err
	}
	e.p.State = Reverted
	delete(c.pending, id)
	c.settled[id] = Reverted
	if c.visible == id {
		c.visible = uuid.Nil
	}
	c.mu.Unlock()

	c.log.Debug("deletion reverted",
		logger.String("catalog", string(item.Kind)),
		logger.Int64("old_id", item.ID),
		logger.Int64("new_id", restored.ID))
	return restored, nil
}

// Visible returns the most recent deletion still open for undo.
func (c *Coordinator) Visible() (Pending, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.pending[c.visible]
	if !ok {
		return Pending{}, false
	}
	return e.p, true
}

// Dismiss hides the visible undo affordance. The deletion keeps its own deadline.
func (c *Coordinator) Dismiss(id uuid.UUID) {
	c.mu.Lock()
	if c.visible == id {
		c.visible = uuid.Nil
	}
	c.mu.Unlock()
}

// Get returns the pending deletion with id, if its window is still open.
func (c *Coordinator) Get(id uuid.UUID) (Pending, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.pending[id]
	if !ok {
		return Pending{}, false
	}
	return e.p, true
}

// Len returns the number of open undo windows.
func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Close finalizes every open window immediately.
func (c *Coordinator) Close() {
	c.mu.Lock()
	var settled []Pending
	for id, e := range c.pending {
		if e.reverting {
			continue
		}
		e.timer.Stop()
		if p, ok := c.finalizeLocked(id); ok {
			settled = append(settled, p)
		}
	}
	c.mu.Unlock()

	for _, p := range settled {
		c.finalized(p)
	}
}

func (c *Coordinator) expire(id uuid.UUID) {
	c.mu.Lock()
	e, ok := c.pending[id]
	if !ok || e.reverting {
		c.mu.Unlock()
		return
	}
	p, settled := c.finalizeLocked(id)
	c.mu.Unlock()

	if settled {
		c.finalized(p)
	}
}

// finalizeLocked moves id to Finalized. It reports false when id was already settled.
func (c *Coordinator) finalizeLocked(id uuid.UUID) (Pending, bool) {
	e, ok := c.pending[id]
	if !ok || e.p.State != PendingUndo {
		return Pending{}, false
	}
	e.p.State = Finalized
	delete(c.pending, id)
	c.settled[id] = Finalized
	if c.visible == id {
		c.visible = uuid.Nil
	}
	return e.p, true
}

func (c *Coordinator) finalized(p Pending) {
	c.log.Debug("deletion finalized",
		logger.String("catalog", string(p.Kind)),
		logger.Int64("id", p.Item.ID))
	if c.onFinalize != nil {
		c.onFinalize(p)
	}
}
