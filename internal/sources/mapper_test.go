package sources

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/user/catalogs/internal/catalog"
)

const fullMovie = `{"Title":"Inception","Year":"2010","imdbRating":"8.8","Runtime":"148 min","Actors":"Leonardo DiCaprio","Plot":"A thief...","Poster":"https://img/p.jpg"}`

func TestMapOMDb(t *testing.T) {
	item, err := mapOMDb(json.RawMessage(fullMovie))
	if err != nil {
		t.Fatalf("mapOMDb() error = %v", err)
	}
	if item.Kind != catalog.Movie || item.Title != "Inception" {
		t.Errorf("got %+v", item)
	}
	if item.Attr("rating") != "8.8" || item.Attr("runtime") != "148 min" {
		t.Errorf("attrs = %+v", item.Attrs)
	}
	if item.ImageURL != "https://img/p.jpg" {
		t.Errorf("ImageURL = %q", item.ImageURL)
	}
}

func TestMappersRejectMissingFields(t *testing.T) {
	cases := []struct {
		name  string
		mapf  func(json.RawMessage) (catalog.Item, error)
		raw   string
		field string
	}{
		{"movie without Year", mapOMDb, `{"Title":"X","imdbRating":"1","Runtime":"1","Actors":"a","Plot":"p","Poster":"i"}`, "Year"},
		{"movie without Poster", mapOMDb, `{"Title":"X","Year":"1","imdbRating":"1","Runtime":"1","Actors":"a","Plot":"p"}`, "Poster"},
		{"photo without photographer", mapPexels, `{"width":1,"height":2,"url":"u","src":{"tiny":"t","original":"o"}}`, "photographer"},
		{"photo without src", mapPexels, `{"width":1,"height":2,"url":"u","photographer":"p"}`, "src"},
		{"photo without original", mapPexels, `{"width":1,"height":2,"url":"u","photographer":"p","src":{"tiny":"t"}}`, "src.original"},
		{"photo width wrong type", mapPexels, `{"width":"wide","height":2,"url":"u","photographer":"p","src":{"tiny":"t","original":"o"}}`, "width"},
		{"event without dates", mapTicketmaster, `{"name":"n","url":"u","images":[{"url":"i"}]}`, "dates"},
		{"event without localDate", mapTicketmaster, `{"name":"n","url":"u","dates":{"start":{}},"images":[{"url":"i"}]}`, "dates.start.localDate"},
		{"event without images", mapTicketmaster, `{"name":"n","url":"u","dates":{"start":{"localDate":"2024-05-01"}},"images":[]}`, "images"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item, err := tc.mapf(json.RawMessage(tc.raw))
			var me *catalog.MappingError
			if !errors.As(err, &me) {
				t.Fatalf("expected MappingError, got %v", err)
			}
			if me.Field != tc.field {
				t.Errorf("field = %q, want %q", me.Field, tc.field)
			}
			if item.Title != "" || item.Attrs != nil {
				t.Errorf("expected zero Item on failure, got %+v", item)
			}
		})
	}
}

func TestMapTicketmasterUsesPlaceholderPrice(t *testing.T) {
	raw := `{"name":"Jazz Night","url":"https://tm/e/1","dates":{"start":{"localDate":"2024-05-01"}},
		"priceRanges":[{"min":45.5,"max":90}],"images":[{"url":"https://tm/i/1.jpg"},{"url":"https://tm/i/2.jpg"}]}`

	item, err := mapTicketmaster(json.RawMessage(raw))
	if err != nil {
		t.Fatalf("mapTicketmaster() error = %v", err)
	}
	if got := item.Attr("priceRange"); got != catalog.EventPriceRange {
		t.Errorf("priceRange = %q, want placeholder %q", got, catalog.EventPriceRange)
	}
	if item.ImageURL != "https://tm/i/1.jpg" {
		t.Errorf("ImageURL = %q, want first image", item.ImageURL)
	}
	if item.Attr("startingDate") != "2024-05-01" {
		t.Errorf("startingDate = %q", item.Attr("startingDate"))
	}
}

func TestExtractTicketmasterNested(t *testing.T) {
	body := []byte(`{"_embedded":{"events":[{"name":"a"},{"name":"b"}]},"page":{}}`)
	records, err := extractTicketmaster(body)
	if err != nil {
		t.Fatalf("extractTicketmaster() error = %v", err)
	}
	if len(records) != 2 {
		t.Errorf("got %d records, want 2", len(records))
	}
}
