package catalog

// Attr is one secondary display field of an Item (year, rating, dimensions, date...).
type Attr struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Item is the canonical shape of a search result or a saved record.
// ID is zero for items that have not been persisted.
type Item struct {
	ID       int64  `json:"id,omitempty"`
	Kind     Kind   `json:"kind"`
	Title    string `json:"title"`
	Attrs    []Attr `json:"attrs"`
	ImageURL string `json:"image_url"`
	LinkURL  string `json:"link_url,omitempty"`
}

// HasIdentity reports whether the item was assigned an identity by a store.
func (i Item) HasIdentity() bool {
	return i.ID != 0
}

// Attr returns the value stored under key, or "" when absent.
func (i Item) Attr(key string) string {
	for _, a := range i.Attrs {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

// WithoutIdentity returns a copy of the item with its identity cleared.
func (i Item) WithoutIdentity() Item {
	c := i
	c.ID = 0
	c.Attrs = append([]Attr(nil), i.Attrs...)
	return c
}

// SameContent compares every displayed field, ignoring identity.
func (i Item) SameContent(o Item) bool {
	if i.Kind != o.Kind || i.Title != o.Title || i.ImageURL != o.ImageURL || i.LinkURL != o.LinkURL {
		return false
	}
	if len(i.Attrs) != len(o.Attrs) {
		return false
	}
	for n := range i.Attrs {
		if i.Attrs[n] != o.Attrs[n] {
			return false
		}
	}
	return true
}
