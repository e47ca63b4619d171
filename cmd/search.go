package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/catalogs/internal/catalog"
	"github.com/user/catalogs/internal/sources"
)

var (
	jsonOutput      bool
	plaintextOutput bool
	searchRadius    string
)

var searchCmd = &cobra.Command{
	Use:   "search <catalog> <query>",
	Short: "Search a catalog",
	Long:  "Search movies (OMDb, by exact title), photos (Pexels) or events (Ticketmaster, by city).",
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

		radius := searchRadius
		if radius == "" && kind == catalog.Event {
			radius = c.Config.Catalogs.Event.Radius
		}

		out, err := c.Pipeline(kind).Run(context.Background(), query, sources.Options{Radius: radius})
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		if jsonOutput {
			return outputJSON(out.Items)
		}
		if plaintextOutput {
			return outputPlaintext(out.Items)
		}
		if err := outputDefault(out.Items); err != nil {
			return err
		}
		if out.Skipped > 0 {
			fmt.Printf("Skipped %d incomplete records.\n", out.Skipped)
		}
		return nil
	},
}

func outputJSON(items []catalog.Item) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func outputPlaintext(items []catalog.Item) error {
	for _, it := range items {
		link := it.LinkURL
		if link == "" {
			link = it.ImageURL
		}
		fmt.Printf("%d\t%s\t%s\t%s\n", it.ID, it.Kind, it.Title, link)
	}
	return nil
}

func outputDefault(items []catalog.Item) error {
	if len(items) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	for i, it := range items {
		schema := catalog.SchemaFor(it.Kind)
		icon := kindIcon(it.Kind)
		if it.HasIdentity() {
			fmt.Printf("%d. %s #%d %s\n", i+1, icon, it.ID, it.Title)
		} else {
			fmt.Printf("%d. %s %s\n", i+1, icon, it.Title)
		}
		for _, a := range it.Attrs {
			fmt.Printf("   %s: %s\n", schema.LabelFor(a.Key), truncate(a.Value, 100))
		}
		if it.LinkURL != "" {
			fmt.Printf("   %s\n", it.LinkURL)
		}
		fmt.Println()
	}
	return nil
}

func kindIcon(kind catalog.Kind) string {
	switch kind {
	case catalog.Movie:
		return "[M]"
	case catalog.Photo:
		return "[P]"
	case catalog.Event:
		return "[E]"
	default:
		return "[?]"
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func init() {
	searchCmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	searchCmd.Flags().BoolVarP(&plaintextOutput, "plaintext", "p", false, "Output as plaintext")
	searchCmd.Flags().StringVarP(&searchRadius, "radius", "r", "", "Search radius for events")
	rootCmd.AddCommand(searchCmd)
}
