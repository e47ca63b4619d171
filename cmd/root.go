package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/user/catalogs/internal/config"
	"github.com/user/catalogs/internal/logger"
	"github.com/user/catalogs/internal/pipeline"
	"github.com/user/catalogs/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "catalogs",
	Short: "Search movies, photos and events and keep the ones you like",
	Long:  "A TUI app to search OMDb movies, Pexels photos and Ticketmaster events, save results locally and undo deletes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openContainer(cmd)
		if err != nil {
			return err
		}
		defer c.Close()
		return tui.Run(c)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("data-dir", "", "Data directory (default: ~/.catalogs)")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		os.Setenv("CATALOGS_DATA_DIR", dir)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// openContainer loads the config and wires every catalog. Logs go to a file
// so they never interleave with command output or the TUI.
func openContainer(cmd *cobra.Command) (*pipeline.Container, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.LogPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	c, err := pipeline.NewContainer(cfg, log, nil)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return c, nil
}
