package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reap-dev/reap/internal/backend"
)

var (
	orphanRemove bool
	orphanAll    bool
)

var orphanCmd = &cobra.Command{
	Use:   "orphan",
	Short: "List (and optionally remove) orphaned packages",
	Long: `Orphan lists packages pacman installed only as a dependency that nothing
now requires, partitioned into AUR-origin and repo-origin lists. With
--remove, every orphan in the selected partition is removed; with --all,
both partitions are selected (the default selects AUR-origin only, since
repo-origin orphans are more often pulled back in by a later -Syu).

Examples:
  reap orphan
  reap orphan --remove
  reap orphan --remove --all`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		orphans, err := reapApp.catalog.OrphanPackages(ctx)
		if err != nil {
			return fmt.Errorf("list orphans: %w", err)
		}
		if len(orphans) == 0 {
			fmt.Println("No orphaned packages.")
			return nil
		}

		foreign, err := reapApp.catalog.ForeignPackages(ctx)
		if err != nil {
			foreign = map[string]bool{}
		}

		var aurOrigin, repoOrigin []string
		for _, pkg := range orphans {
			if foreign[pkg] {
				aurOrigin = append(aurOrigin, pkg)
			} else {
				repoOrigin = append(repoOrigin, pkg)
			}
		}

		printOrphanList("AUR-origin", aurOrigin)
		printOrphanList("repo-origin", repoOrigin)

		if !orphanRemove {
			return nil
		}

		toRemove := aurOrigin
		if orphanAll {
			toRemove = append(append([]string{}, aurOrigin...), repoOrigin...)
		}

		pacman, ok := reapApp.orchestrator.Backend(backend.Pacman)
		if !ok {
			return fmt.Errorf("pacman backend unavailable")
		}

		for _, pkg := range toRemove {
			if err := pacman.Run(ctx, reapApp.sink, pkg, "remove", "", "-Rns", "--noconfirm", pkg); err != nil {
				fmt.Printf("failed to remove orphan %s: %v\n", pkg, err)
				continue
			}
			fmt.Printf("removed orphan %s\n", pkg)
		}
		return nil
	},
}

func printOrphanList(label string, pkgs []string) {
	if len(pkgs) == 0 {
		return
	}
	fmt.Printf("%s:\n", label)
	for _, pkg := range pkgs {
		fmt.Printf("  %s\n", pkg)
	}
}

func init() {
	orphanCmd.Flags().BoolVar(&orphanRemove, "remove", false, "remove the listed orphans")
	orphanCmd.Flags().BoolVar(&orphanAll, "all", false, "select both AUR-origin and repo-origin orphans (default: AUR-origin only)")
}
