package main

import (
	"github.com/spf13/cobra"

	"studio/internal/infra"
)

func newDBCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending schema migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := infra.LoadConfig()
				if err != nil {
					return err
				}
				return infra.RunMigrations(cmd.Context(), cfg.DatabaseURL, opts.logger(cfg))
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the migration status",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := infra.LoadConfig()
				if err != nil {
					return err
				}
				return infra.MigrationStatus(cmd.Context(), cfg.DatabaseURL)
			},
		},
	)
	return cmd
}
