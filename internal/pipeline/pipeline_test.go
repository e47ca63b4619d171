package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/user/catalogs/internal/catalog"
	"github.com/user/catalogs/internal/config"
	"github.com/user/catalogs/internal/sources"
	"github.com/user/catalogs/internal/undo"
)

const inceptionJSON = `{"Title":"Inception","Year":"2010","imdbRating":"8.8","Runtime":"148 min",
"Actors":"Leonardo DiCaprio, Joseph Gordon-Levitt","Plot":"A thief who steals corporate secrets.",
"Poster":"%s/poster.jpg","Response":"True"}`

func newRemote(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			fmt.Fprintf(w, inceptionJSON, srv.URL)
		case "/v1/search":
			w.Write([]byte(`{"photos":[{"width":640,"height":480,"url":"https://pexels.com/p/1",
				"photographer":"Ann","src":{"tiny":"` + srv.URL + `/tiny.jpg","original":"` + srv.URL + `/missing.jpg"}}]}`))
		case "/poster.jpg":
			w.Write([]byte{0xff, 0xd8, 0xff})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newContainer(t *testing.T, base string, mock *clock.Mock) *Container {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "catalogs-pipeline")
	if err != nil {
		t.Fatalf("MkdirTemp() error = %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	cfg := &config.Config{
		DataDir:     tmpDir,
		UndoWindow:  5 * time.Second,
		HTTPTimeout: 2 * time.Second,
	}
	cfg.Catalogs.Movie = config.RemoteConfig{BaseURL: base, APIKey: "k"}
	cfg.Catalogs.Photo = config.RemoteConfig{BaseURL: base, APIKey: "k"}
	cfg.Catalogs.Event.RemoteConfig = config.RemoteConfig{BaseURL: base, APIKey: "k"}

	c, err := NewContainer(cfg, nil, mock)
	if err != nil {
		t.Fatalf("NewContainer() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestInceptionSaveRemoveUndo(t *testing.T) {
	srv := newRemote(t)
	mock := clock.NewMock()
	c := newContainer(t, srv.URL, mock)
	p := c.Pipeline(catalog.Movie)
	ctx := context.Background()

	out, err := p.Run(ctx, "Inception", sources.Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(out.Items) != 1 || p.Results().Len() != 1 {
		t.Fatalf("expected one result, got %d", p.Results().Len())
	}
	found, _ := p.Results().At(0)
	if found.Title != "Inception" || found.Attr("year") != "2010" || found.HasIdentity() {
		t.Fatalf("unexpected result %+v", found)
	}

	saved, err := p.Save(ctx, found, false)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !saved.Item.HasIdentity() {
		t.Fatal("saved item has no identity")
	}

	if _, err := p.ShowSaved(ctx); err != nil {
		t.Fatalf("ShowSaved() error = %v", err)
	}
	if p.Results().Len() != 1 {
		t.Fatalf("expected 1 saved item, got %d", p.Results().Len())
	}

	pending, err := p.Remove(ctx, saved.Item)
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if n, _ := c.Store.Collection(catalog.Movie).Count(ctx); n != 0 {
		t.Fatalf("expected delete to be immediate, %d left", n)
	}
	if v, ok := p.PendingUndo(); !ok || v.ID != pending.ID {
		t.Fatal("removed item not offered for undo")
	}

	mock.Add(2 * time.Second)
	restored, err := p.Undo(ctx, pending.ID)
	if err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if restored.ID == saved.Item.ID {
		t.Errorf("restored item reused identity %d", restored.ID)
	}
	if !restored.SameContent(saved.Item) {
		t.Error("restored item differs from the removed one")
	}

	p.ShowSaved(ctx)
	items := p.Results().Items()
	if len(items) != 1 || items[0].ID != restored.ID {
		t.Fatalf("expected restored item listed once, got %+v", items)
	}

	// Second removal left to expire.
	pending, err = p.Remove(ctx, restored)
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	mock.Add(6 * time.Second)
	if _, err := p.Undo(ctx, pending.ID); !errors.Is(err, undo.ErrUndoExpired) {
		t.Errorf("Undo() after window = %v, want ErrUndoExpired", err)
	}
	p.ShowSaved(ctx)
	if p.Results().Len() != 0 {
		t.Errorf("expired deletion left %d items", p.Results().Len())
	}
}

func TestSaveWritesImageBestEffort(t *testing.T) {
	srv := newRemote(t)
	c := newContainer(t, srv.URL, clock.NewMock())
	ctx := context.Background()

	movies := c.Pipeline(catalog.Movie)
	movies.Run(ctx, "Inception", sources.Options{})
	movie, _ := movies.Results().At(0)

	saved, err := movies.Save(ctx, movie, true)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.ImageErr != nil {
		t.Fatalf("image error = %v", saved.ImageErr)
	}
	if filepath.Dir(saved.ImagePath) != c.Config.ImageDir() {
		t.Errorf("image written to %s", saved.ImagePath)
	}

	// The photo's original image 404s; the save itself must still succeed.
	photos := c.Pipeline(catalog.Photo)
	photos.Run(ctx, "mountains", sources.Options{})
	photo, ok := photos.Results().At(0)
	if !ok {
		t.Fatal("expected a photo result")
	}
	saved, err = photos.Save(ctx, photo, true)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.ImageErr == nil {
		t.Error("expected image error")
	}
	if n, _ := c.Store.Collection(catalog.Photo).Count(ctx); n != 1 {
		t.Errorf("expected photo persisted despite image failure, got %d", n)
	}
}

func TestFetchErrorKeepsResults(t *testing.T) {
	srv := newRemote(t)
	c := newContainer(t, srv.URL, clock.NewMock())
	ctx := context.Background()
	p := c.Pipeline(catalog.Movie)

	p.Run(ctx, "Inception", sources.Options{})
	srv.Close()

	_, err := p.Run(ctx, "Memento", sources.Options{})
	var fe *catalog.FetchError
	if !errors.As(err, &fe) || fe.Kind != catalog.FetchTransport {
		t.Fatalf("expected transport FetchError, got %v", err)
	}
	if got, _ := p.Results().At(0); got.Title != "Inception" {
		t.Errorf("results changed after failed search: %+v", got)
	}
}

func TestSearchRemembersTermAndRadius(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"page":{"totalElements":0}}`))
	}))
	defer srv.Close()
	c := newContainer(t, srv.URL, clock.NewMock())
	ctx := context.Background()

	events := c.Pipeline(catalog.Event)
	if _, err := events.Run(ctx, "  Berlin ", sources.Options{Radius: "25"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	query, radius := events.LastSearch()
	if query != "Berlin" || radius != "25" {
		t.Errorf("LastSearch() = %q, %q", query, radius)
	}

	if q, r := c.Pipeline(catalog.Movie).LastSearch(); q != "" || r != "" {
		t.Errorf("movie LastSearch() = %q, %q, want empty", q, r)
	}
}

func TestRemoveWithoutIdentity(t *testing.T) {
	srv := newRemote(t)
	c := newContainer(t, srv.URL, clock.NewMock())

	_, err := c.Pipeline(catalog.Movie).Remove(context.Background(), catalog.Item{Kind: catalog.Movie, Title: "x"})
	if !errors.Is(err, catalog.ErrNoIdentity) {
		t.Errorf("Remove() = %v, want ErrNoIdentity", err)
	}
}
