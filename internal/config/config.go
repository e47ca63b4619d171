package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/user/catalogs/internal/catalog"
)

type Config struct {
	DataDir     string         `mapstructure:"data_dir"`
	UndoWindow  time.Duration  `mapstructure:"undo_window"`
	HTTPTimeout time.Duration  `mapstructure:"http_timeout"`
	Log         LogConfig      `mapstructure:"log"`
	Catalogs    CatalogsConfig `mapstructure:"catalogs"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type CatalogsConfig struct {
	Movie RemoteConfig `mapstructure:"movie"`
	Photo RemoteConfig `mapstructure:"photo"`
	Event EventConfig  `mapstructure:"event"`
}

type RemoteConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type EventConfig struct {
	RemoteConfig `mapstructure:",squash"`
	Radius       string `mapstructure:"radius"`
}

// Remote returns the endpoint settings of kind.
func (c *Config) Remote(kind catalog.Kind) RemoteConfig {
	switch kind {
	case catalog.Photo:
		return c.Catalogs.Photo
	case catalog.Event:
		return c.Catalogs.Event.RemoteConfig
	default:
		return c.Catalogs.Movie
	}
}

func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	defaultDataDir := filepath.Join(homeDir, ".catalogs")

	v := viper.New()
	setDefaults(v, defaultDataDir)

	// Environment variable overrides, e.g. CATALOGS_CATALOGS_PHOTO_API_KEY
	v.SetEnvPrefix("CATALOGS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("data_dir", "CATALOGS_DATA_DIR")
	v.BindEnv("catalogs.movie.api_key", "OMDB_API_KEY", "CATALOGS_CATALOGS_MOVIE_API_KEY")
	v.BindEnv("catalogs.photo.api_key", "PEXELS_API_KEY", "CATALOGS_CATALOGS_PHOTO_API_KEY")
	v.BindEnv("catalogs.event.api_key", "TICKETMASTER_API_KEY", "CATALOGS_CATALOGS_EVENT_API_KEY")

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(v.GetString("data_dir"))

	// Read config file if exists (ignore error if not found)
	_ = v.ReadInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, dataDir string) {
	v.SetDefault("data_dir", dataDir)
	v.SetDefault("undo_window", 5*time.Second)
	v.SetDefault("http_timeout", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetDefault("catalogs.movie.base_url", "https://www.omdbapi.com")
	v.SetDefault("catalogs.movie.api_key", "")
	v.SetDefault("catalogs.photo.base_url", "https://api.pexels.com")
	v.SetDefault("catalogs.photo.api_key", "")
	v.SetDefault("catalogs.event.base_url", "https://app.ticketmaster.com")
	v.SetDefault("catalogs.event.api_key", "")
	v.SetDefault("catalogs.event.radius", "")
}

func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "catalogs.db")
}

// ImageDir is where saved items' images are written.
func (c *Config) ImageDir() string {
	return filepath.Join(c.DataDir, "images")
}

func (c *Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(c.DataDir, "catalogs.log")
}
