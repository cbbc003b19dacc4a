package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/reap-dev/reap/internal/catalog"
	"github.com/reap-dev/reap/internal/tap"
)

var searchCmd = &cobra.Command{
	Use:   "search <term>...",
	Short: "Search the official repos, the AUR, Flatpak, and any enabled taps",
	Long: `Search queries pacman's synced databases (covering both the official
repos and any enabled third-party binary repos), the AUR RPC index,
Flatpak's configured remotes, and every enabled tap's clone, and prints the
combined results. When a package name is found in more than one of the AUR,
Flatpak, and a tap, only the tap result is kept, then the AUR result, per
the same priority a tap enjoys at install time.

Examples:
  reap search neovim`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		term := args[0]
		ctx := cmd.Context()

		var results []catalog.SearchResult

		if pacmanResults, err := reapApp.catalog.SearchPacman(ctx, term); err == nil {
			results = append(results, pacmanResults...)
		}

		var tapAurFlatpak []catalog.SearchResult

		for _, r := range tap.SearchByTerm(reapApp.taps.List(), reapApp.cfg.TapDir, term) {
			tapAurFlatpak = append(tapAurFlatpak, catalog.SearchResult{
				Name:        r.Name,
				Description: r.Description,
				Source:      fmt.Sprintf("%s (tap)", r.TapName),
			})
		}

		if aurResults, err := reapApp.aur.Search(ctx, term); err == nil {
			for _, r := range aurResults {
				tapAurFlatpak = append(tapAurFlatpak, catalog.SearchResult{Name: r.Name, Description: r.Description, Source: "aur"})
			}
		}

		if flatpakResults, err := reapApp.catalog.SearchFlatpak(ctx, term); err == nil {
			tapAurFlatpak = append(tapAurFlatpak, flatpakResults...)
		}

		results = append(results, dedupByName(tapAurFlatpak)...)

		if len(results) == 0 {
			fmt.Printf("No results for %q.\n", term)
			return nil
		}

		printSearchResults(results)
		return nil
	},
}

// dedupByName keeps the first result seen for each package name, so
// appending tap results ahead of AUR ahead of Flatpak gives tap > aur >
// flatpak priority on a name collision.
func dedupByName(results []catalog.SearchResult) []catalog.SearchResult {
	seen := make(map[string]bool, len(results))
	out := make([]catalog.SearchResult, 0, len(results))
	for _, r := range results {
		if seen[r.Name] {
			continue
		}
		seen[r.Name] = true
		out = append(out, r)
	}
	return out
}

const (
	searchNameWidth = 20
	searchDescWidth = 40
)

// printSearchResults renders the fixed-width name/description/source
// columns. Bold styling on the name column is skipped when stdout isn't a
// terminal, so piping `search` output to a file or another command
// doesn't embed raw ANSI escapes in the name field.
func printSearchResults(results []catalog.SearchResult) {
	boldName := func(s string) string { return s }
	if term.IsTerminal(int(os.Stdout.Fd())) {
		style := pterm.NewStyle(pterm.Bold)
		boldName = style.Sprint
	}

	for _, r := range results {
		name := fmt.Sprintf("%-*s", searchNameWidth, truncate(r.Name, searchNameWidth))
		desc := truncate(r.Description, searchDescWidth)
		fmt.Printf("%s  %-*s  %s\n", boldName(name), searchDescWidth, desc, r.Source)
	}
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}
