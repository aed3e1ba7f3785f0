// ABOUTME: Commands for the backend's dashboard and document store
// ABOUTME: stats, analytics, files {list,upload,delete}, and health

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/2389/swavik-portal/internal/client"
)

func newStatsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show document and query counters",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, _ []string) error {
			_, c, err := a.requireUser(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := c.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching stats: %w", err)
			}
			a.renderer.Stats(stats)
			return nil
		}),
	}
}

func newAnalyticsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Chart queries per day",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, _ []string) error {
			_, c, err := a.requireUser(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := c.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching stats: %w", err)
			}
			a.renderer.Analytics(stats.ChartData)
			return nil
		}),
	}
}

func newFilesCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Manage the documents the assistant answers from",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List indexed documents",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, _ []string) error {
			_, c, err := a.requireUser(cmd.Context())
			if err != nil {
				return err
			}
			files, err := c.ListFiles(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing files: %w", err)
			}
			a.renderer.Files(files)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "upload <file.csv>...",
		Short: "Upload CSV documents and reindex",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			_, c, err := a.requireUser(cmd.Context())
			if err != nil {
				return err
			}
			for _, path := range args {
				if err := uploadFile(cmd, a, c, path); err != nil {
					return err
				}
			}
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a document and reindex",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			_, c, err := a.requireUser(cmd.Context())
			if err != nil {
				return err
			}
			if err := c.DeleteFile(cmd.Context(), args[0]); err != nil {
				if client.IsNotFound(err) {
					return fmt.Errorf("%s: file not found", args[0])
				}
				return fmt.Errorf("deleting %s: %w", args[0], err)
			}
			a.renderer.Info("Deleted %s", args[0])
			return nil
		}),
	})

	return cmd
}

func uploadFile(cmd *cobra.Command, a *app, c *client.Client, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	result, err := c.Upload(cmd.Context(), filepath.Base(path), f)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", path, err)
	}

	a.logger.Debug("upload complete", "file", result.Filename, "index_result", string(result.IndexResult))
	a.renderer.Info("%s: %s", result.Filename, result.Message)
	return nil
}

func newHealthCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, _ []string) error {
			c := a.client("")
			h, err := c.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			a.renderer.Health(h, c.BaseURL())
			return nil
		}),
	}
}
