package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/evanschultz/achiever/internal/app"
)

func newStatsCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show overall progress, priority buckets and upcoming tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd, "stats", func(s *session) error {
				if _, err := currentUser(s.store); err != nil {
					return err
				}
				if !cmd.Flags().Changed("limit") {
					limit = s.env.cfg.Statistics.UpcomingLimit
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), s.renderer.Statistics(s.store.Statistics(limit)))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", app.DefaultUpcomingLimit, "number of upcoming tasks to show (default from config)")
	return cmd
}

func newExportCmd(c *cli) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole state as a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd, "export", func(s *session) error {
				snap := s.store.ExportSnapshot()
				encoded, err := json.MarshalIndent(snap, "", "  ")
				if err != nil {
					return fmt.Errorf("encode snapshot json: %w", err)
				}
				encoded = append(encoded, '\n')

				if outPath == "-" {
					if _, err := cmd.OutOrStdout().Write(encoded); err != nil {
						return fmt.Errorf("write snapshot to stdout: %w", err)
					}
					return nil
				}
				if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
					return fmt.Errorf("create export output dir: %w", err)
				}
				if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
					return fmt.Errorf("write export file: %w", err)
				}
				s.logger.Info("snapshot exported", "path", outPath, "targets", len(snap.Targets), "users", len(snap.Users))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	return cmd
}

func newImportCmd(c *cli) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the whole state with a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd, "import", func(s *session) error {
				content, err := os.ReadFile(inPath)
				if err != nil {
					return fmt.Errorf("read import file: %w", err)
				}
				snap, err := app.DecodeSnapshot(content)
				if err != nil {
					return err
				}
				if err := s.store.ImportSnapshot(snap); err != nil {
					return fmt.Errorf("import snapshot: %w", err)
				}
				s.logger.Info("snapshot imported", "path", inPath, "targets", len(snap.Targets), "users", len(snap.Users))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input snapshot JSON file")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
