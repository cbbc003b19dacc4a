package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reap-dev/reap/internal/buildpipeline"
	"github.com/reap-dev/reap/internal/orchestrator"
	"github.com/reap-dev/reap/internal/trust"
)

var (
	installRepo       string
	installBinaryOnly bool
	installBackend    string
	installInsecure   bool
	installKeyserver  string
	installParallel   int
)

var installCmd = &cobra.Command{
	Use:   "install <pkg>...",
	Short: "Install one or more packages",
	Long: `Install resolves each package name against any enabled taps, the
official repositories, the AUR, and Flatpak, in that priority order, then
builds or installs it through the matching backend.

Examples:
  reap install htop
  reap install yay-bin --repo myuser/mytap
  reap install some-aur-only-tool --insecure`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := orchestrator.Options{
			MaxParallel: installParallel,
			ForcedTap:   installRepo,
			Insecure:    installInsecure,
		}

		if installKeyserver != "" {
			if p, ok := reapApp.orchestrator.Pipeline.(*buildpipeline.Pipeline); ok {
				p.ImportKey = trust.ImportFromKeyserver(installKeyserver)
			}
		}

		restoreBackendOrder := applyBackendOverride(installBackend)
		defer restoreBackendOrder()

		results := reapApp.orchestrator.InstallMany(cmd.Context(), args, opts)

		failed := 0
		for _, pkg := range args {
			if err := results[pkg]; err != nil {
				failed++
			}
		}
		if failed > 0 {
			fmt.Printf("%d of %d package(s) failed; see the log above for details.\n", failed, len(args))
		}
		return nil
	},
}

func init() {
	installCmd.Flags().StringVar(&installRepo, "repo", "", "force resolution to a specific enabled tap; pacman repositories cannot be forced")
	installCmd.Flags().BoolVar(&installBinaryOnly, "binary-only", false, "accepted but has no effect: resolution may still pick an AUR or tap source build")
	installCmd.Flags().StringVar(&installBackend, "backend", "auto", "restrict resolution to one backend (auto|pacman|aur)")
	installCmd.Flags().BoolVar(&installInsecure, "insecure", false, "continue past a missing or invalid tap signature")
	installCmd.Flags().StringVar(&installKeyserver, "gpg-keyserver", "", "override the keyserver used for signer key import")
	installCmd.Flags().IntVar(&installParallel, "parallel", 0, "max concurrent installs (0 = use config default)")
}
