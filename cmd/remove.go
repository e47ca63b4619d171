package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/user/catalogs/internal/catalog"
	"github.com/user/catalogs/internal/undo"
)

var removeYes bool

var removeCmd = &cobra.Command{
	Use:   "remove <catalog> <id>",
	Short: "Delete a saved item",
	Long:  "Delete a saved item by ID. The delete can be undone by typing u while the undo window is open.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := catalog.ParseKind(args[0])
		if err != nil {
			return err
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[1])
		}

		c, err := openContainer(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		ctx := context.Background()
		item, err := c.Store.Collection(kind).Get(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load item: %w", err)
		}
		if item == nil {
			return fmt.Errorf("no saved %s with id %d", kind, id)
		}

		lines := readLines()
		if !removeYes {
			fmt.Printf("Delete %q? Do you want to delete? [y/N] ", item.Title)
			if answer := <-lines; strings.ToLower(strings.TrimSpace(answer)) != "y" {
				fmt.Println("Kept.")
				return nil
			}
		}

		p := c.Pipeline(kind)
		pending, err := p.Remove(ctx, *item)
		if err != nil {
			return fmt.Errorf("failed to delete: %w", err)
		}

		remaining := pending.Remaining(time.Now())
		fmt.Printf("You deleted it. Type u and press Enter within %s to undo.\n", remaining.Round(time.Second))

		timer := time.NewTimer(remaining)
		defer timer.Stop()
		for {
			select {
			case <-timer.C:
				fmt.Println("Deleted.")
				return nil
			case line, ok := <-lines:
				if !ok {
					// stdin closed; wait out the window
					lines = nil
					continue
				}
				if strings.TrimSpace(line) != "u" {
					continue
				}
				restored, err := p.Undo(ctx, pending.ID)
				if errors.Is(err, undo.ErrUndoExpired) {
					fmt.Println("Too late to undo. Deleted.")
					return nil
				}
				if err != nil {
					return fmt.Errorf("undo failed: %w", err)
				}
				fmt.Printf("Restored as #%d.\n", restored.ID)
				return nil
			}
		}
	},
}

// readLines streams stdin lines until EOF.
func readLines() <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			ch <- scanner.Text()
		}
	}()
	return ch
}

func init() {
	removeCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "Skip the confirmation")
	rootCmd.AddCommand(removeCmd)
}
