package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/marquee-tv/marquee/internal/catalog"
	"github.com/marquee-tv/marquee/internal/progress"
	"github.com/marquee-tv/marquee/internal/tui/utils"
	"github.com/marquee-tv/marquee/internal/watchlist"
)

// continueCmd lists titles that were started but not finished
var continueCmd = &cobra.Command{
	Use:   "continue",
	Short: "Show the continue-watching list",
	Args:  cobra.NoArgs,
	RunE:  runContinueList,
}

var continueRemoveCmd = &cobra.Command{
	Use:   "rm <content-id>",
	Short: "Forget saved progress for a title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services.progress.Remove(cmd.Context(), args[0])
		fmt.Printf("Removed %s from continue watching\n", args[0])
		return nil
	},
}

func runContinueList(cmd *cobra.Command, args []string) error {
	records := services.progress.List(cmd.Context())
	if jsonOutput(cmd) {
		return printJSON(records)
	}
	if len(records) == 0 {
		fmt.Println("Nothing to continue. Start something with: marquee play <content-id>")
		return nil
	}

	now := time.Now()
	fmt.Println("Continue watching:")
	for _, r := range records {
		fmt.Printf("  %-12s %-36s %3.0f%%  %-10s %s\n",
			r.ContentID,
			utils.TruncateWithWidth(r.Title, 36),
			r.Percentage,
			progress.FormatRemaining(r.Remaining()),
			humanize.RelTime(r.Timestamp, now, "ago", "from now"))
	}
	return nil
}

// watchlistCmd shows and edits the watchlist
var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Show the watchlist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		items := services.watchlist.List(cmd.Context())
		if jsonOutput(cmd) {
			return printJSON(items)
		}
		if len(items) == 0 {
			fmt.Println("Your watchlist is empty.")
			return nil
		}
		for _, item := range items {
			fmt.Printf("  %-12s %-36s %-7s %d  %s\n",
				item.ContentID,
				utils.TruncateWithWidth(item.Title, 36),
				item.Type,
				item.Year,
				strings.Join(item.Genre, ", "))
		}
		return nil
	},
}

var watchlistAddCmd = &cobra.Command{
	Use:   "add <content-id>",
	Short: "Add a title to the watchlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := services.catalog.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get content: %w", err)
		}
		services.watchlist.Add(cmd.Context(), watchlist.FromContent(content))
		fmt.Printf("Added %s to your watchlist\n", content.Title)
		return nil
	},
}

var watchlistRemoveCmd = &cobra.Command{
	Use:   "rm <content-id>",
	Short: "Remove a title from the watchlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !services.watchlist.Contains(cmd.Context(), args[0]) {
			return fmt.Errorf("%s is not on your watchlist", args[0])
		}
		services.watchlist.Remove(cmd.Context(), args[0])
		fmt.Printf("Removed %s from your watchlist\n", args[0])
		return nil
	},
}

// catalogCmd browses the catalog
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("type")

		var (
			items []catalog.Content
			err   error
		)
		if kind != "" {
			items, err = services.catalog.ByType(cmd.Context(), kind)
		} else {
			items, err = services.catalog.List(cmd.Context())
		}
		if err != nil {
			return fmt.Errorf("failed to list catalog: %w", err)
		}
		return printContent(cmd, items)
	},
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search titles",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := services.catalog.Search(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if len(items) == 0 && !jsonOutput(cmd) {
			fmt.Println("No results found")
			return nil
		}
		return printContent(cmd, items)
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <content-id>",
	Short: "Show details for a title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := services.catalog.Get(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get content: %w", err)
		}
		if jsonOutput(cmd) {
			return printJSON(c)
		}

		fmt.Printf("%s (%d)\n", c.Title, c.Year)
		fmt.Printf("  %s • %s • %s • %s views\n", c.Type, c.Rating, c.Duration, humanize.Comma(int64(c.Views)))
		if len(c.Genre) > 0 {
			fmt.Printf("  Genre:    %s\n", strings.Join(c.Genre, ", "))
		}
		if c.Director != "" {
			fmt.Printf("  Director: %s\n", c.Director)
		}
		if len(c.Cast) > 0 {
			fmt.Printf("  Cast:     %s\n", strings.Join(c.Cast, ", "))
		}
		if c.Description != "" {
			fmt.Printf("\n  %s\n", c.Description)
		}
		if r, ok := services.progress.Get(ctx, c.ID); ok {
			fmt.Printf("\n  Watched %.0f%%, %s\n", r.Percentage, progress.FormatRemaining(r.Remaining()))
		}
		if services.watchlist.Contains(ctx, c.ID) {
			fmt.Println("  On your watchlist")
		}
		if c.VideoURL == "" {
			fmt.Println("  Video unavailable")
		}
		return nil
	},
}

var catalogShareCmd = &cobra.Command{
	Use:   "share <content-id>",
	Short: "Copy a link to a title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		open, _ := cmd.Flags().GetBool("open")

		c, err := services.catalog.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get content: %w", err)
		}

		link := catalog.ShareURL(conf().Catalog.ShareBase, c.ID)
		sharer := catalog.NewSharer()
		if open {
			if err := sharer.Open(link); err != nil {
				return fmt.Errorf("failed to open browser: %w", err)
			}
		}
		if err := sharer.Copy(link); err != nil {
			// No clipboard is not fatal, the link is printed anyway
			logger.Warn("failed to copy link", "error", err)
			fmt.Println(link)
			return nil
		}
		fmt.Printf("Copied %s\n", link)
		return nil
	},
}

func init() {
	continueCmd.AddCommand(continueRemoveCmd)
	watchlistCmd.AddCommand(watchlistAddCmd)
	watchlistCmd.AddCommand(watchlistRemoveCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogShareCmd)

	for _, c := range []*cobra.Command{continueCmd, watchlistCmd, catalogCmd} {
		c.PersistentFlags().Bool("json", false, "print JSON output")
	}
	catalogCmd.Flags().StringP("type", "t", "", "only list this type (movie, series)")
	catalogShareCmd.Flags().Bool("open", false, "also open the link in a browser")
}

func printContent(cmd *cobra.Command, items []catalog.Content) error {
	if jsonOutput(cmd) {
		return printJSON(items)
	}
	for _, c := range items {
		fmt.Printf("  %-12s %-36s %-7s %d  %s\n", c.ID, utils.TruncateWithWidth(c.Title, 36), c.Type, c.Year, c.Rating)
	}
	return nil
}

func jsonOutput(cmd *cobra.Command) bool {
	v, err := cmd.Flags().GetBool("json")
	return err == nil && v
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
