package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reap-dev/reap/internal/backend"
	"github.com/reap-dev/reap/internal/orchestrator"
)

var upgradeParallel int

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade every outdated AUR-origin package",
	Long: `Upgrade diffs every pacman-installed package's local version against the
AUR RPC index and reinstalls whichever ones are behind, skipping anything
in the ignored-package set. Packages from the official repos are left to
a plain pacman -Syu; this only covers packages the AUR index tracks.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := orchestrator.Options{MaxParallel: upgradeParallel}

		results, err := reapApp.orchestrator.UpgradeAll(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("upgrade: %w", err)
		}

		if len(results) == 0 {
			fmt.Println("Everything is up to date.")
			return nil
		}

		failed := 0
		for pkg, err := range results {
			if err != nil {
				failed++
				continue
			}
			fmt.Printf("upgraded %s\n", pkg)
		}
		if failed > 0 {
			fmt.Printf("%d of %d upgrade(s) failed; see the log above for details.\n", failed, len(results))
		}
		return nil
	},
}

var upgradeAllCmd = &cobra.Command{
	Use:   "upgrade-all",
	Short: "Upgrade both the official repos and AUR-origin packages",
	Long: `Upgrade-all runs a plain pacman system upgrade (-Syu) for the official
and any configured third-party binary repos, then runs the same AUR
version diff as 'upgrade'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pacman, ok := reapApp.orchestrator.Backend(backend.Pacman)
		if !ok {
			return fmt.Errorf("pacman backend unavailable")
		}
		if err := pacman.Run(ctx, reapApp.sink, "system", "upgrade", "", "-Syu", "--noconfirm"); err != nil {
			fmt.Printf("pacman system upgrade failed: %v\n", err)
		}

		results, err := reapApp.orchestrator.UpgradeAll(ctx, orchestrator.Options{MaxParallel: upgradeParallel})
		if err != nil {
			return fmt.Errorf("upgrade-all: %w", err)
		}
		for pkg, err := range results {
			if err != nil {
				fmt.Printf("failed to upgrade %s: %v\n", pkg, err)
				continue
			}
			fmt.Printf("upgraded %s\n", pkg)
		}
		return nil
	},
}

var flatpakUpgradeCmd = &cobra.Command{
	Use:   "flatpak-upgrade",
	Short: "Upgrade every installed Flatpak application",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flatpak, ok := reapApp.orchestrator.Backend(backend.Flatpak)
		if !ok {
			return fmt.Errorf("flatpak backend unavailable")
		}
		if err := flatpak.Run(cmd.Context(), reapApp.sink, "all", "upgrade", "", "update", "-y"); err != nil {
			return fmt.Errorf("flatpak-upgrade: %w", err)
		}
		fmt.Println("flatpak applications upgraded")
		return nil
	},
}

func init() {
	upgradeCmd.Flags().IntVar(&upgradeParallel, "parallel", 0, "max concurrent upgrades (0 = use config default)")
}
