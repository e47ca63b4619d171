package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/catalogs/internal/catalog"
	"github.com/user/catalogs/internal/sources"
)

var (
	addRadius  string
	addNoImage bool
)

var addCmd = &cobra.Command{
	Use:   "add <catalog> <query>",
	Short: "Save the top search result",
	Long:  "Search a catalog and save the first result, downloading its image unless --no-image is set.",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := catalog.ParseKind(args[0])
		if err != nil {
			return err
		}
		query := strings.Join(args[1:], " ")

		c, err := openContainer(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		p := c.Pipeline(kind)
		ctx := context.Background()
		if _, err := p.Run(ctx, query, sources.Options{Radius: addRadius}); err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		item, ok := p.Results().At(0)
		if !ok {
			return fmt.Errorf("no results for %q", query)
		}

		saved, err := p.Save(ctx, item, !addNoImage)
		if err != nil {
			return fmt.Errorf("failed to save: %w", err)
		}

		fmt.Printf("Added #%d: %s\n", saved.Item.ID, saved.Item.Title)
		if saved.ImageErr != nil {
			fmt.Printf("Warning: could not save image: %v\n", saved.ImageErr)
		} else if saved.ImagePath != "" {
			fmt.Printf("Image: %s\n", saved.ImagePath)
		}
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addRadius, "radius", "r", "", "Search radius for events")
	addCmd.Flags().BoolVar(&addNoImage, "no-image", false, "Do not download the image")
	rootCmd.AddCommand(addCmd)
}
