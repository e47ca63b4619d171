// Package results holds the ordered list of Items currently on screen.
package results

import "github.com/user/catalogs/internal/catalog"

// Observer is notified synchronously with the full contents after every mutation.
type Observer func(items []catalog.Item)

// Set is an ordered, observable collection of Items. It performs no
// deduplication. Set is owned by the foreground loop and is not safe for
// concurrent use.
type Set struct {
	items     []catalog.Item
	observers map[int]Observer
	nextObs   int
}

func New() *Set {
	return &Set{observers: make(map[int]Observer)}
}

// Replace discards the previous contents and installs items in the given order.
func (s *Set) Replace(items []catalog.Item) {
	s.items = append(make([]catalog.Item, 0, len(items)), items...)
	s.notify()
}

// Append adds one item at the end.
func (s *Set) Append(item catalog.Item) {
	s.items = append(s.items, item)
	s.notify()
}

// Items returns a copy of the current contents.
func (s *Set) Items() []catalog.Item {
	return append([]catalog.Item(nil), s.items...)
}

func (s *Set) Len() int {
	return len(s.items)
}

// At returns the item at index i.
func (s *Set) At(i int) (catalog.Item, bool) {
	if i < 0 || i >= len(s.items) {
		return catalog.Item{}, false
	}
	return s.items[i], true
}

// Subscribe registers fn and returns a function that removes it.
func (s *Set) Subscribe(fn Observer) (cancel func()) {
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	return func() { delete(s.observers, id) }
}

func (s *Set) notify() {
	if len(s.observers) == 0 {
		return
	}
	snapshot := s.Items()
	for i := 0; i < s.nextObs; i++ {
		if fn, ok := s.observers[i]; ok {
			fn(snapshot)
		}
	}
}
