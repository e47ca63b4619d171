package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user/catalogs/internal/catalog"
)

var savedJSON bool

var savedCmd = &cobra.Command{
	Use:   "saved <catalog>",
	Short: "List saved items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := catalog.ParseKind(args[0])
		if err != nil {
			return err
		}

		c, err := openContainer(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		out, err := c.Pipeline(kind).ShowSaved(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list saved items: %w", err)
		}

		if savedJSON {
			return outputJSON(out.Items)
		}
		if len(out.Items) == 0 {
			fmt.Println("No saved items.")
			return nil
		}
		return outputDefault(out.Items)
	},
}

func init() {
	savedCmd.Flags().BoolVarP(&savedJSON, "json", "j", false, "Output as JSON")
	rootCmd.AddCommand(savedCmd)
}
