package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "List packages with a local backup snapshot",
	Long: `Backup lists every package that has at least one snapshot under the
backup directory, and the number of snapshots retained for it. Snapshots
are written automatically before every install, and consumed by
'rollback'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := os.ReadDir(reapApp.cfg.BackupDir)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Println("No backups yet.")
				return nil
			}
			return fmt.Errorf("read backup directory: %w", err)
		}

		var pkgs []string
		for _, e := range entries {
			if e.IsDir() {
				pkgs = append(pkgs, e.Name())
			}
		}
		sort.Strings(pkgs)

		if len(pkgs) == 0 {
			fmt.Println("No backups yet.")
			return nil
		}

		for _, pkg := range pkgs {
			snapshots, err := os.ReadDir(filepath.Join(reapApp.cfg.BackupDir, pkg))
			if err != nil {
				continue
			}
			fmt.Printf("%-24s %d snapshot(s)\n", pkg, len(snapshots))
		}
		return nil
	},
}
