package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"studio/internal/adapter/repo"
	"studio/internal/infra"
	"studio/internal/migration"
	"studio/internal/storage"
)

type jobFunc func(ctx context.Context, runner *migration.Runner) (*migration.Report, error)

// withRunner wires a Runner from the environment, runs job and prints the
// report as JSON on stdout.
func withRunner(opts *rootOptions, job jobFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := infra.LoadConfig()
		if err != nil {
			return err
		}
		logger := opts.logger(cfg)
		ctx := cmd.Context()

		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		files, err := storage.NewFileStore(cfg.PublicDir)
		if err != nil {
			return err
		}
		objects, err := storage.ObjectStoreFromConfig(cfg)
		if err != nil {
			return err
		}
		images := repo.NewImageRepository(infra.NewSQLRunner(pool, logger))

		report, err := job(ctx, migration.NewRunner(images, files, objects, logger))
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run gallery storage jobs",
		Long: `Each job processes images one by one, records a per-image result and
never rolls back. Failed items can be fixed and the job re-run.`,
	}

	var fixesFile string
	fixURLs := &cobra.Command{
		Use:     "fix-urls",
		Short:   "Apply id/url pairs from a JSON file",
		Example: `  studioctl migrate fix-urls --file fixes.json`,
		RunE: withRunner(opts, func(ctx context.Context, runner *migration.Runner) (*migration.Report, error) {
			data, err := os.ReadFile(fixesFile)
			if err != nil {
				return nil, err
			}
			var fixes []migration.URLFix
			if err := json.Unmarshal(data, &fixes); err != nil {
				return nil, fmt.Errorf("parse %s: %w", fixesFile, err)
			}
			return runner.ApplyURLFixes(ctx, fixes)
		}),
	}
	fixURLs.Flags().StringVarP(&fixesFile, "file", "f", "", "JSON array of {\"id\",\"url\"} objects")
	_ = fixURLs.MarkFlagRequired("file")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add-local",
			Short: "Insert rows for gallery files missing from the database",
			RunE: withRunner(opts, func(ctx context.Context, runner *migration.Runner) (*migration.Report, error) {
				return runner.AddLocalImages(ctx)
			}),
		},
		&cobra.Command{
			Use:   "to-storage",
			Short: "Upload local gallery files to the object store",
			RunE: withRunner(opts, func(ctx context.Context, runner *migration.Runner) (*migration.Report, error) {
				return runner.MigrateToStorage(ctx)
			}),
		},
		&cobra.Command{
			Use:   "revert",
			Short: "Point object store rows back at their local files",
			RunE: withRunner(opts, func(ctx context.Context, runner *migration.Runner) (*migration.Report, error) {
				return runner.RevertToLocal(ctx)
			}),
		},
		&cobra.Command{
			Use:   "suggest",
			Short: "Suggest URLs for rows whose local file is missing",
			RunE: withRunner(opts, func(ctx context.Context, runner *migration.Runner) (*migration.Report, error) {
				return runner.SuggestURLs(ctx)
			}),
		},
		fixURLs,
	)
	return cmd
}
