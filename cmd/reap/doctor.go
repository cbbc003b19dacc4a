package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that reap's environment is configured correctly",
	Long: `Doctor verifies that reap's directories exist, pacman/makepkg/flatpak
are on PATH, and the tap registry and global config parse cleanly.

Exits with a non-zero status if any check fails, making it suitable for
use as a gate in scripts:

  reap doctor || exit 1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := false

		check := func(label string, ok bool, hint string) {
			status := "ok"
			if !ok {
				status = "FAIL"
				failed = true
			}
			fmt.Printf("  %-28s ... %s\n", label, status)
			if !ok && hint != "" {
				fmt.Fprintf(os.Stderr, "    %s\n", hint)
			}
		}

		fmt.Println("Checking reap environment...")

		cfg := reapApp.cfg
		for _, dir := range []struct {
			label string
			path  string
		}{
			{"config directory", cfg.ConfigDir},
			{"cache directory", cfg.CacheDir},
			{"data directory", cfg.DataDir},
		} {
			info, err := os.Stat(dir.path)
			check(dir.label+" exists", err == nil && info.IsDir(), fmt.Sprintf("%s is missing; run any reap command once to create it", dir.path))
		}

		for _, bin := range []string{"pacman", "makepkg"} {
			_, err := exec.LookPath(bin)
			check(bin+" on PATH", err == nil, fmt.Sprintf("%s not found on PATH", bin))
		}

		if _, err := exec.LookPath("flatpak"); err != nil {
			fmt.Printf("  %-28s ... %s\n", "flatpak on PATH", "skipped")
			fmt.Println("    flatpak not found; Flatpak sources will be unavailable")
		} else {
			fmt.Printf("  %-28s ... ok\n", "flatpak on PATH")
		}

		check("taps.toml readable", reapApp.taps != nil, "failed to parse "+cfg.TapsFile)
		check("config.toml readable", reapApp.globalConfig != nil, "failed to parse "+cfg.ConfigFile)

		if failed {
			return fmt.Errorf("one or more checks failed")
		}
		fmt.Println("Everything looks good.")
		return nil
	},
}
