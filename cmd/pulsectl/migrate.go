package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kiranshivaraju/studentpulse/internal/config"
)

func (a *app) migrateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations (requires DATABASE_URL)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := config.LoadDatabase()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := a.migrate(db.URL, dir); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return err
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "migrations", "directory holding the migration files")
	return cmd
}
