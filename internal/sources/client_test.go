package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/user/catalogs/internal/catalog"
)

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestMovieFetchEncodesQueryAndKey(t *testing.T) {
	var gotTitle, gotKey string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.URL.Query().Get("t")
		gotKey = r.URL.Query().Get("apikey")
		w.Write([]byte(`{"Title":"Inception","Year":"2010","imdbRating":"8.8","Runtime":"148 min","Actors":"Leonardo DiCaprio","Plot":"A thief...","Poster":"https://img/p.jpg","Response":"True"}`))
	})

	src := NewMovieSource(srv.URL, "secret", time.Second)
	defer src.Close()

	records, err := src.Fetch(context.Background(), "Inception & more", Options{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if gotTitle != "Inception & more" {
		t.Errorf("server saw t=%q, want the decoded query", gotTitle)
	}
	if gotKey != "secret" {
		t.Errorf("server saw apikey=%q", gotKey)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	item, err := src.Map(records[0])
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if item.Title != "Inception" || item.Attr("year") != "2010" {
		t.Errorf("got %q (%q), want Inception (2010)", item.Title, item.Attr("year"))
	}
	if item.HasIdentity() {
		t.Error("mapped item must not carry an identity")
	}
}

func TestMovieFetchResponseFalseIsShapeError(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
	})

	src := NewMovieSource(srv.URL, "k", time.Second)
	_, err := src.Fetch(context.Background(), "zzzz", Options{})

	var fe *catalog.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.Kind != catalog.FetchShape || fe.Message != "Movie not found!" {
		t.Errorf("got %s %q", fe.Kind, fe.Message)
	}
}

func TestPhotoFetchSendsAuthorization(t *testing.T) {
	var auth, query string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		query = r.URL.Query().Get("query")
		if r.URL.Path != "/v1/search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"photos":[{"width":1,"height":2,"url":"u","photographer":"p","src":{"tiny":"t","original":"o"}}]}`))
	})

	src := NewPhotoSource(srv.URL, "pexels-key", time.Second)
	records, err := src.Fetch(context.Background(), "red cars", Options{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if auth != "pexels-key" {
		t.Errorf("Authorization = %q", auth)
	}
	if query != "red cars" {
		t.Errorf("query = %q", query)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want 1", len(records))
	}
}

func TestEventFetchRadiusAndEmptyResult(t *testing.T) {
	var radius, city string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		radius = r.URL.Query().Get("radius")
		city = r.URL.Query().Get("city")
		w.Write([]byte(`{"page":{"size":20,"totalElements":0}}`))
	})

	src := NewEventSource(srv.URL, "k", time.Second)
	records, err := src.Fetch(context.Background(), "Ottawa", Options{Radius: "50"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
	if radius != "50" || city != "Ottawa" {
		t.Errorf("city=%q radius=%q", city, radius)
	}
}

func TestFetchErrors(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		want    catalog.FetchErrorKind
	}{
		{
			name: "non-success status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", http.StatusUnauthorized)
			},
			want: catalog.FetchStatus,
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>`))
			},
			want: catalog.FetchShape,
		},
		{
			name: "missing array",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"total_results":0}`))
			},
			want: catalog.FetchShape,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newServer(t, tc.handler)
			src := NewPhotoSource(srv.URL, "k", time.Second)

			_, err := src.Fetch(context.Background(), "cats", Options{})
			var fe *catalog.FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FetchError, got %v", err)
			}
			if fe.Kind != tc.want {
				t.Errorf("kind = %s, want %s", fe.Kind, tc.want)
			}
		})
	}
}

func TestFetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	src := NewMovieSource(url, "k", time.Second)
	_, err := src.Fetch(context.Background(), "Inception", Options{})

	var fe *catalog.FetchError
	if !errors.As(err, &fe) || fe.Kind != catalog.FetchTransport {
		t.Fatalf("expected transport FetchError, got %v", err)
	}
}

func TestFetchRejectsEmptyQuery(t *testing.T) {
	calls := 0
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) { calls++ })

	src := NewMovieSource(srv.URL, "k", time.Second)
	if _, err := src.Fetch(context.Background(), "   ", Options{}); !errors.Is(err, catalog.ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
	if calls != 0 {
		t.Errorf("empty query must not reach the network, got %d calls", calls)
	}
}
