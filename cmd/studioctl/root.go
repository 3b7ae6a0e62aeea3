package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"studio/internal/infra"
)

type rootOptions struct {
	quiet bool
}

func (o *rootOptions) logger(cfg *infra.Config) infra.Logger {
	if o.quiet {
		return infra.NopLogger()
	}
	return infra.NewLogger(cfg.AppEnv)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "studioctl",
		Short: "Maintenance tasks for the studio backend",
		Long: `studioctl applies schema migrations and runs the gallery storage jobs
offline, with the same environment configuration as the API.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}
	cmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress log output")

	cmd.AddCommand(newDBCmd(opts), newMigrateCmd(opts))
	return cmd
}
