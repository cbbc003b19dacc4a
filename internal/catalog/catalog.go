// Package catalog answers "does source X carry package P" for the official
// repos, third-party binary repos, the AUR and Flatpak (taps are answered
// by the tap package), on demand and uncached — the Resolver calls straight
// through to the live backend on every resolution rather than keeping a
// local index that could drift from reality.
package catalog

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/reap-dev/reap/internal/aurapi"
)

// Catalog queries every configured source kind for package presence.
type Catalog struct {
	aur        *aurapi.Client
	pacmanConf string
	runPacman  func(ctx context.Context, args ...string) (string, error)
	runFlatpak func(ctx context.Context, args ...string) (string, error)
}

// New builds a Catalog that shells out to the real pacman/flatpak binaries
// and queries the live AUR RPC endpoint.
func New() *Catalog {
	return &Catalog{
		aur:        aurapi.New(),
		pacmanConf: "/etc/pacman.conf",
		runPacman:  runCommand("pacman"),
		runFlatpak: runCommand("flatpak"),
	}
}

func runCommand(name string) func(context.Context, ...string) (string, error) {
	return func(ctx context.Context, args ...string) (string, error) {
		out, err := exec.CommandContext(ctx, name, args...).Output()
		return string(out), err
	}
}

// OfficialRepoHas reports whether pacman's synced databases (core, extra,
// ...) carry pkg, via `pacman -Si`. A lookup failure (pacman missing,
// network-backed sync database unavailable) is reported as absent, never
// fatal.
func (c *Catalog) OfficialRepoHas(ctx context.Context, pkg string) bool {
	_, err := c.runPacman(ctx, "-Si", pkg)
	return err == nil
}

var repoHeaderRegex = regexp.MustCompile(`^\[([^\]]+)\]$`)

// EnabledThirdPartyBinaryRepos parses /etc/pacman.conf for repositories
// other than the built-in "core"/"extra"/"multilib" set — by convention,
// anything else configured there (chaotic-aur and similar) is a
// ThirdPartyBinaryRepo candidate.
func (c *Catalog) EnabledThirdPartyBinaryRepos() ([]string, error) {
	f, err := os.Open(c.pacmanConf)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	builtins := map[string]bool{"options": true, "core": true, "extra": true, "multilib": true}

	var repos []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		m := repoHeaderRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := m[1]
		if !builtins[name] {
			repos = append(repos, name)
		}
	}
	return repos, scanner.Err()
}

// ThirdPartyRepoHas reports whether repoName, passed as `pacman -Sl
// <repo>`, carries pkg.
func (c *Catalog) ThirdPartyRepoHas(ctx context.Context, repoName, pkg string) bool {
	out, err := c.runPacman(ctx, "-Sl", repoName)
	if err != nil {
		return false
	}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == pkg {
			return true
		}
	}
	return false
}

// AurHas reports whether the AUR RPC index carries pkg.
func (c *Catalog) AurHas(ctx context.Context, pkg string) bool {
	return c.aur.Has(ctx, pkg)
}

// FlatpakHas reports whether a Flatpak remote carries an application whose
// ID matches pkg, via `flatpak search`.
func (c *Catalog) FlatpakHas(ctx context.Context, pkg string) bool {
	out, err := c.runFlatpak(ctx, "search", "--columns=application", pkg)
	if err != nil {
		return false
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == pkg {
			return true
		}
	}
	return false
}

// InstalledPackages lists packages pacman's local database reports as
// installed, via `pacman -Qq`. UpgradeAll does not use it; it takes
// installed versions from InstalledVersions.
func (c *Catalog) InstalledPackages(ctx context.Context) ([]string, error) {
	out, err := c.runPacman(ctx, "-Qq")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

// SearchResult is one hit from a free-text search against a binary
// source, used by `search` to render its aligned output table.
type SearchResult struct {
	Name        string
	Description string
	Source      string
}

// SearchPacman runs `pacman -Ss term`, covering both the official repos
// and any enabled third-party binary repos in one pass, since pacman does
// not distinguish them in search output. A no-match exit is reported as
// zero results, not an error.
func (c *Catalog) SearchPacman(ctx context.Context, term string) ([]SearchResult, error) {
	out, err := c.runPacman(ctx, "-Ss", term)
	if err != nil {
		return nil, nil
	}

	lines := strings.Split(out, "\n")
	var results []SearchResult
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if line == "" || strings.HasPrefix(line, " ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		repoAndName := strings.SplitN(fields[0], "/", 2)
		if len(repoAndName) != 2 {
			continue
		}
		desc := ""
		if i+1 < len(lines) && strings.HasPrefix(lines[i+1], " ") {
			desc = strings.TrimSpace(lines[i+1])
		}
		results = append(results, SearchResult{Name: repoAndName[1], Description: desc, Source: repoAndName[0]})
	}
	return results, nil
}

// SearchFlatpak runs `flatpak search term`, reporting zero results rather
// than an error when flatpak is unavailable or nothing matches.
func (c *Catalog) SearchFlatpak(ctx context.Context, term string) ([]SearchResult, error) {
	out, err := c.runFlatpak(ctx, "search", "--columns=application,description", term)
	if err != nil {
		return nil, nil
	}

	var results []SearchResult
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		desc := ""
		if len(parts) > 1 {
			desc = parts[1]
		}
		results = append(results, SearchResult{Name: parts[0], Description: desc, Source: "flatpak"})
	}
	return results, nil
}

// FlatpakInstalled lists application IDs flatpak reports as installed, via
// `flatpak list`, used by `remove` to decide which backend to dispatch to.
func (c *Catalog) FlatpakInstalled(ctx context.Context) ([]string, error) {
	out, err := c.runFlatpak(ctx, "list", "--columns=application")
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line != "" {
			ids = append(ids, line)
		}
	}
	return ids, nil
}

// OrphanPackages lists packages pacman installed only as a dependency and
// that nothing now requires, via `pacman -Qdtq`.
func (c *Catalog) OrphanPackages(ctx context.Context) ([]string, error) {
	out, err := c.runPacman(ctx, "-Qdtq")
	if err != nil {
		// pacman exits non-zero when the orphan set is empty; that is not
		// a failure reap should surface.
		if strings.TrimSpace(out) == "" {
			return nil, nil
		}
	}
	var names []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

// ForeignPackages lists packages not present in any synced repository
// database, via `pacman -Qmq` — the AUR/tap-origin subset of installed
// packages, used to partition orphan output into AUR-origin vs repo-origin.
func (c *Catalog) ForeignPackages(ctx context.Context) (map[string]bool, error) {
	out, err := c.runPacman(ctx, "-Qmq")
	if err != nil && strings.TrimSpace(out) == "" {
		return map[string]bool{}, nil
	}
	foreign := make(map[string]bool)
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line != "" {
			foreign[line] = true
		}
	}
	return foreign, nil
}

// InstalledVersions maps every installed package to its installed version
// string, via `pacman -Q`, used by UpgradeAll to diff against the remote
// index.
func (c *Catalog) InstalledVersions(ctx context.Context) (map[string]string, error) {
	out, err := c.runPacman(ctx, "-Q")
	if err != nil {
		return nil, err
	}

	versions := make(map[string]string)
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 {
			versions[fields[0]] = fields[1]
		}
	}
	return versions, nil
}
