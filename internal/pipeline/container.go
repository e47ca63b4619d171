package pipeline

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/user/catalogs/internal/catalog"
	"github.com/user/catalogs/internal/config"
	"github.com/user/catalogs/internal/db"
	"github.com/user/catalogs/internal/logger"
	"github.com/user/catalogs/internal/media"
	"github.com/user/catalogs/internal/sources"
)

// Container holds one pipeline per catalog over a shared database.
type Container struct {
	Config *config.Config
	Store  *db.Store
	Images *media.Saver
	Log    logger.Logger

	pipelines map[catalog.Kind]*Pipeline
	clients   []*sources.Client
}

// NewContainer opens the database and builds every catalog's pipeline. A nil
// clk means the wall clock.
func NewContainer(cfg *config.Config, log logger.Logger, clk clock.Clock) (*Container, error) {
	if log == nil {
		log = logger.Nop()
	}
	if clk == nil {
		clk = clock.New()
	}

	store, err := db.NewStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	c := &Container{
		Config:    cfg,
		Store:     store,
		Images:    media.NewSaver(cfg.ImageDir(), cfg.HTTPTimeout, clk),
		Log:       log,
		pipelines: make(map[catalog.Kind]*Pipeline),
	}

	for _, kind := range catalog.Kinds {
		remote := cfg.Remote(kind)
		client := newClient(kind, remote, cfg)
		c.clients = append(c.clients, client)
		c.pipelines[kind] = New(Deps{
			Source:     client,
			Store:      store.Collection(kind),
			Prefs:      store,
			Images:     c.Images,
			UndoWindow: cfg.UndoWindow,
			Clock:      clk,
			Log:        log,
		})
	}

	return c, nil
}

func newClient(kind catalog.Kind, remote config.RemoteConfig, cfg *config.Config) *sources.Client {
	switch kind {
	case catalog.Photo:
		return sources.NewPhotoSource(remote.BaseURL, remote.APIKey, cfg.HTTPTimeout)
	case catalog.Event:
		return sources.NewEventSource(remote.BaseURL, remote.APIKey, cfg.HTTPTimeout)
	default:
		return sources.NewMovieSource(remote.BaseURL, remote.APIKey, cfg.HTTPTimeout)
	}
}

func (c *Container) Pipeline(kind catalog.Kind) *Pipeline {
	return c.pipelines[kind]
}

// Close finalizes pending deletions before closing the database.
func (c *Container) Close() error {
	for _, p := range c.pipelines {
		p.Close()
	}
	for _, cl := range c.clients {
		cl.Close()
	}
	c.Images.Close()
	c.Log.Sync()
	return c.Store.Close()
}
