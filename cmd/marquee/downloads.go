package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marquee-tv/marquee/internal/downloads"
	"github.com/marquee-tv/marquee/internal/tui"
)

// downloadsCmd opens the live downloads view
var downloadsCmd = &cobra.Command{
	Use:   "downloads",
	Short: "Manage offline downloads",
	Long: `Without a subcommand, open the downloads view. Downloads only advance
while marquee is running and pick up where they left off on the next start.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		services.downloads.OnDownloadComplete(func(job downloads.Job) {
			logger.Info("download complete", "id", job.ID, "title", job.Title)
		})
		services.downloads.Start(ctx)
		defer services.downloads.Stop()

		return tui.RunDownloads(ctx, services.downloads, &conf().UI)
	},
}

var downloadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print downloads",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs := services.downloads.List(cmd.Context())
		if jsonOutput(cmd) {
			return printJSON(jobs)
		}
		if len(jobs) == 0 {
			fmt.Println("No downloads")
			return nil
		}
		for _, j := range jobs {
			fmt.Printf("  %-12s %-36s %-6s %-12s %3d%%\n", j.ID, j.Title, j.Quality, j.Status, j.Progress)
		}
		stats := downloads.Summarize(jobs)
		fmt.Printf("\n%d total, %d active, %d paused, %d completed\n", stats.Total, stats.Active, stats.Paused, stats.Completed)
		return nil
	},
}

var downloadsAddCmd = &cobra.Command{
	Use:   "add <content-id>",
	Short: "Queue a title for download",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		quality, _ := cmd.Flags().GetString("quality")
		if quality == "" {
			quality = conf().Player.DefaultQuality
		}

		c, err := services.catalog.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get content: %w", err)
		}
		if c.VideoURL == "" {
			return fmt.Errorf("%s has no downloadable media", c.Title)
		}

		added := services.downloads.Add(cmd.Context(), downloads.Request{
			ID:        c.ID,
			Title:     c.Title,
			Thumbnail: c.ThumbnailURL,
			Quality:   quality,
			MediaURL:  c.VideoURL,
		})
		if !added {
			fmt.Printf("%s is already in downloads\n", c.Title)
			return nil
		}
		fmt.Printf("Queued %s [%s]. Run marquee downloads to watch it progress.\n", c.Title, quality)
		return nil
	},
}

var downloadsRemoveCmd = &cobra.Command{
	Use:   "rm <content-id>",
	Short: "Delete a download",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := services.downloads.Get(cmd.Context(), args[0]); err != nil {
			return err
		}
		services.downloads.Remove(cmd.Context(), args[0])
		fmt.Printf("Removed %s\n", args[0])
		return nil
	},
}

var downloadsPauseCmd = &cobra.Command{
	Use:   "pause <content-id>",
	Short: "Pause a download",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transitionMessage(cmd.Context(), services.downloads.Pause(cmd.Context(), args[0]), args[0], "Paused")
	},
}

var downloadsResumeCmd = &cobra.Command{
	Use:   "resume <content-id>",
	Short: "Resume a paused download",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transitionMessage(cmd.Context(), services.downloads.Resume(cmd.Context(), args[0]), args[0], "Resumed")
	},
}

var downloadsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every download",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n := len(services.downloads.List(cmd.Context()))
		services.downloads.Clear(cmd.Context())
		fmt.Printf("Removed %d downloads\n", n)
		return nil
	},
}

func init() {
	downloadsCmd.AddCommand(downloadsListCmd)
	downloadsCmd.AddCommand(downloadsAddCmd)
	downloadsCmd.AddCommand(downloadsRemoveCmd)
	downloadsCmd.AddCommand(downloadsPauseCmd)
	downloadsCmd.AddCommand(downloadsResumeCmd)
	downloadsCmd.AddCommand(downloadsClearCmd)

	downloadsListCmd.Flags().Bool("json", false, "print JSON output")
	downloadsAddCmd.Flags().StringP("quality", "q", "", "quality to download (default: player.default_quality)")
}

func transitionMessage(ctx context.Context, err error, id, verb string) error {
	switch {
	case errors.Is(err, downloads.ErrInvalidTransition):
		job, getErr := services.downloads.Get(ctx, id)
		if getErr == nil {
			return fmt.Errorf("cannot change %s while it is %s", job.Title, job.Status)
		}
		return err
	case err != nil:
		return err
	}
	fmt.Printf("%s %s\n", verb, id)
	return nil
}
