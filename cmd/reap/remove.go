package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reap-dev/reap/internal/backend"
)

var removeCmd = &cobra.Command{
	Use:   "remove <pkg>...",
	Short: "Remove one or more installed packages",
	Long: `Remove dispatches to flatpak for an installed Flatpak application ID,
and to pacman otherwise, since pacman's local database covers packages
installed through the official repositories, third-party binary repos,
the AUR, and taps alike.

Examples:
  reap remove htop
  reap remove org.mozilla.firefox`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		flatpakIDs, err := reapApp.catalog.FlatpakInstalled(ctx)
		if err != nil {
			flatpakIDs = nil
		}
		isFlatpak := make(map[string]bool, len(flatpakIDs))
		for _, id := range flatpakIDs {
			isFlatpak[id] = true
		}

		failed := 0
		for _, pkg := range args {
			if err := removeOne(ctx, pkg, isFlatpak[pkg]); err != nil {
				fmt.Printf("failed to remove %s: %v\n", pkg, err)
				failed++
				continue
			}
			fmt.Printf("removed %s\n", pkg)
		}
		if failed > 0 {
			fmt.Printf("%d of %d package(s) failed to remove; see the log above for details.\n", failed, len(args))
		}
		return nil
	},
}

func removeOne(ctx context.Context, pkg string, isFlatpak bool) error {
	name := backend.Pacman
	args := []string{"-Rns", "--noconfirm", pkg}
	if isFlatpak {
		name = backend.Flatpak
		args = []string{"uninstall", "-y", pkg}
	}

	b, ok := reapApp.orchestrator.Backend(name)
	if !ok {
		return fmt.Errorf("backend %q unavailable", name)
	}
	return b.Run(ctx, reapApp.sink, pkg, "remove", "", args...)
}
