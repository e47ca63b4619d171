package catalog

import "fmt"

// Kind identifies one of the remote catalogs.
type Kind string

const (
	Movie Kind = "movie"
	Photo Kind = "photo"
	Event Kind = "event"
)

// Kinds lists the catalogs in display order.
var Kinds = []Kind{Movie, Photo, Event}

// ParseKind accepts a kind name or its storage namespace.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if s == string(k) || s == SchemaFor(k).Namespace {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCatalog, s)
}

// Field describes one stored attribute: its key in Item.Attrs and a display label.
type Field struct {
	Key   string
	Label string
}

// Schema is the per-catalog field list. Column names double as Item keys so
// each catalog keeps its own table layout.
type Schema struct {
	Kind       Kind
	Namespace  string
	Label      string
	TitleKey   string
	TitleLabel string
	Attrs      []Field
	ImageKey   string
	LinkKey    string // empty when the catalog has no link-out URL
}

// Columns returns every stored column in table order.
func (s Schema) Columns() []string {
	cols := []string{s.TitleKey}
	for _, f := range s.Attrs {
		cols = append(cols, f.Key)
	}
	cols = append(cols, s.ImageKey)
	if s.LinkKey != "" {
		cols = append(cols, s.LinkKey)
	}
	return cols
}

// Values returns the item's values in Columns order.
func (s Schema) Values(it Item) []string {
	vals := []string{it.Title}
	for _, f := range s.Attrs {
		vals = append(vals, it.Attr(f.Key))
	}
	vals = append(vals, it.ImageURL)
	if s.LinkKey != "" {
		vals = append(vals, it.LinkURL)
	}
	return vals
}

// Build is the inverse of Values.
func (s Schema) Build(id int64, vals []string) Item {
	it := Item{ID: id, Kind: s.Kind}
	n := 0
	next := func() string {
		v := vals[n]
		n++
		return v
	}
	it.Title = next()
	it.Attrs = make([]Attr, 0, len(s.Attrs))
	for _, f := range s.Attrs {
		it.Attrs = append(it.Attrs, Attr{Key: f.Key, Value: next()})
	}
	it.ImageURL = next()
	if s.LinkKey != "" {
		it.LinkURL = next()
	}
	return it
}

// LabelFor returns the display label of an attribute key.
func (s Schema) LabelFor(key string) string {
	for _, f := range s.Attrs {
		if f.Key == key {
			return f.Label
		}
	}
	return key
}

// EventPriceRange is what the events catalog stores as price range.
// Upstream priceRanges is frequently missing, so the value is a fixed placeholder
// rather than derived from the response.
const EventPriceRange = "Min: 10  Max: 2220"

var schemas = map[Kind]Schema{
	Movie: {
		Kind:       Movie,
		Namespace:  "movie",
		Label:      "Movies",
		TitleKey:   "title",
		TitleLabel: "Title",
		Attrs: []Field{
			{Key: "year", Label: "Year"},
			{Key: "rating", Label: "Rating"},
			{Key: "runtime", Label: "Runtime"},
			{Key: "mainActors", Label: "Actors"},
			{Key: "plot", Label: "Plot"},
		},
		ImageKey: "posterUrl",
	},
	Photo: {
		Kind:       Photo,
		Namespace:  "pexels",
		Label:      "Photos",
		TitleKey:   "photographer",
		TitleLabel: "Photographer",
		Attrs: []Field{
			{Key: "width", Label: "Width"},
			{Key: "height", Label: "Height"},
			{Key: "thumbnailUrl", Label: "Thumbnail"},
		},
		ImageKey: "imageUrl",
		LinkKey:  "url",
	},
	Event: {
		Kind:       Event,
		Namespace:  "events",
		Label:      "Events",
		TitleKey:   "name",
		TitleLabel: "Name",
		Attrs: []Field{
			{Key: "startingDate", Label: "Date"},
			{Key: "priceRange", Label: "Price range"},
		},
		ImageKey: "promoImageUrl",
		LinkKey:  "url",
	},
}

// SchemaFor returns the schema of k. It panics on an unknown kind.
func SchemaFor(k Kind) Schema {
	s, ok := schemas[k]
	if !ok {
		panic(fmt.Sprintf("catalog: no schema for kind %q", k))
	}
	return s
}
