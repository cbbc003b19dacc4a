package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback <pkg>",
	Short: "Restore a package's most recent pre-install snapshot",
	Long: `Rollback restores the local database entries and binary captured by the
snapshot taken immediately before the package's last install, on a
best-effort basis: every restorable artifact is restored even if one of
them fails.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pkg := args[0]

		if _, ok := reapApp.orchestrator.Backup.Latest(pkg); !ok {
			return fmt.Errorf("no snapshot found for %s", pkg)
		}

		errs := reapApp.orchestrator.Backup.Rollback(pkg)
		if len(errs) > 0 {
			return fmt.Errorf("rollback %s: %w", pkg, errors.Join(errs...))
		}
		fmt.Printf("rolled back %s\n", pkg)
		return nil
	},
}
