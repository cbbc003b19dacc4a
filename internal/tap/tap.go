// Package tap manages the set of user-added, git-backed third-party recipe
// repositories, persisted as TOML under the config directory via keyed
// atomic read/rewrite of a single file, not a database.
package tap

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/reap-dev/reap/internal/gitutil"
)

// PublisherInfo identifies the signer of a tap's recipes. It is stored
// inline on the Tap record rather than in a separate file, since taps are
// 1:1 with a single publisher in practice.
type PublisherInfo struct {
	Name        string `toml:"name"`
	Fingerprint string `toml:"fingerprint,omitempty"`
	Verified    bool   `toml:"verified"`
}

// Tap is a single registered third-party recipe repository.
type Tap struct {
	Name      string        `toml:"name"`
	URL       string        `toml:"url"`
	Priority  int           `toml:"priority"`
	Enabled   bool          `toml:"enabled"`
	Publisher PublisherInfo `toml:"publisher"`
}

type registryFile struct {
	Taps []Tap `toml:"tap"`
}

// Registry is the in-memory set of registered taps, backed by a TOML file.
type Registry struct {
	path string
	taps map[string]Tap
}

// Load reads the registry at path, returning an empty Registry if the file
// does not yet exist.
func Load(path string) (*Registry, error) {
	r := &Registry{path: path, taps: make(map[string]Tap)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read taps registry: %w", err)
	}

	var file registryFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse taps registry %s: %w", path, err)
	}

	for _, t := range file.Taps {
		r.taps[t.Name] = t
	}
	return r, nil
}

// Save atomically rewrites the registry file, in deterministic List() order
// so repeated saves with no logical change produce byte-identical output.
func (r *Registry) Save() error {
	file := registryFile{Taps: r.List()}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("marshal taps registry: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".taps-*.toml.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, r.path); err != nil {
		return fmt.Errorf("rename temp file into place: %w", err)
	}
	return nil
}

// Add clones url into tapDir via gitutil and registers the tap, enabled by
// default, at the given priority.
func (r *Registry) Add(name, url, tapDir string, priority int) error {
	if _, exists := r.taps[name]; exists {
		return fmt.Errorf("tap %q is already registered", name)
	}

	if err := gitutil.Clone(tapDir, url); err != nil {
		return fmt.Errorf("clone tap %q: %w", name, err)
	}

	r.taps[name] = Tap{Name: name, URL: url, Priority: priority, Enabled: true}
	return nil
}

// Remove unregisters a tap. It does not delete the tap's clone directory;
// callers that also want the files gone remove tapDir themselves.
func (r *Registry) Remove(name string) error {
	if _, exists := r.taps[name]; !exists {
		return fmt.Errorf("tap %q is not registered", name)
	}
	delete(r.taps, name)
	return nil
}

// SetEnabled toggles whether a registered tap participates in resolution.
func (r *Registry) SetEnabled(name string, enabled bool) error {
	t, exists := r.taps[name]
	if !exists {
		return fmt.Errorf("tap %q is not registered", name)
	}
	t.Enabled = enabled
	r.taps[name] = t
	return nil
}

// SetPublisher records publisher identity/verification for a tap.
func (r *Registry) SetPublisher(name string, publisher PublisherInfo) error {
	t, exists := r.taps[name]
	if !exists {
		return fmt.Errorf("tap %q is not registered", name)
	}
	t.Publisher = publisher
	r.taps[name] = t
	return nil
}

// Get returns a single registered tap by name.
func (r *Registry) Get(name string) (Tap, bool) {
	t, ok := r.taps[name]
	return t, ok
}

// List returns every registered tap in descending-priority, then
// ascending-name order — the same deterministic ordering the Resolver
// relies on when more than one enabled tap carries a package.
func (r *Registry) List() []Tap {
	out := make([]Tap, 0, len(r.taps))
	for _, t := range r.taps {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// SyncResult records the outcome of syncing a single tap.
type SyncResult struct {
	Name string
	Err  error
}

// Sync fast-forwards every enabled tap's clone in List() order. A tap whose
// fast-forward fails (diverged local history) is recorded in the returned
// results and skipped — it never aborts the rest of the batch.
func Sync(taps []Tap, tapDir func(name string) string) []SyncResult {
	results := make([]SyncResult, 0, len(taps))
	for _, t := range taps {
		if !t.Enabled {
			continue
		}
		dir := tapDir(t.Name)
		err := gitutil.Fetch(dir)
		if err == nil {
			err = gitutil.FastForward(dir)
		}
		results = append(results, SyncResult{Name: t.Name, Err: err})
	}
	return results
}

// SearchResult is one package recipe found in a tap clone by SearchByTerm.
type SearchResult struct {
	Name        string
	Description string
	TapName     string
}

// SearchByTerm scans every enabled tap's clone directory for recipe
// subdirectories whose name contains term (case-insensitive), in List()
// order. Each recipe directory is a package name; its description, if
// any, is read from the PKGBUILD's pkgdesc field.
func SearchByTerm(taps []Tap, tapDir func(name string) string, term string) []SearchResult {
	term = strings.ToLower(term)
	var results []SearchResult

	for _, t := range taps {
		if !t.Enabled {
			continue
		}
		entries, err := os.ReadDir(tapDir(t.Name))
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() || !strings.Contains(strings.ToLower(e.Name()), term) {
				continue
			}
			pkgbuild := filepath.Join(tapDir(t.Name), e.Name(), "PKGBUILD")
			results = append(results, SearchResult{
				Name:        e.Name(),
				Description: readPkgdesc(pkgbuild),
				TapName:     t.Name,
			})
		}
	}
	return results
}

// readPkgdesc extracts the pkgdesc value from a PKGBUILD, returning "" if
// the file is missing or the field isn't a plain quoted string.
func readPkgdesc(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "pkgdesc=") {
			continue
		}
		value := strings.TrimPrefix(line, "pkgdesc=")
		if unquoted, err := strconv.Unquote(value); err == nil {
			return unquoted
		}
		return strings.Trim(value, `"'`)
	}
	return ""
}

// FindForPackage returns the tap that should serve pkg: forcedTapName if
// non-empty, registered, enabled and reported by hasPackage to contain pkg,
// otherwise the highest-priority enabled tap reported by hasPackage to
// contain pkg. Returns ok=false if none match.
func FindForPackage(taps []Tap, pkg, forcedTapName string, hasPackage func(tap Tap, pkg string) bool) (Tap, bool) {
	if forcedTapName != "" {
		for _, t := range taps {
			if t.Name == forcedTapName && t.Enabled && hasPackage(t, pkg) {
				return t, true
			}
		}
	}

	for _, t := range taps {
		if !t.Enabled {
			continue
		}
		if hasPackage(t, pkg) {
			return t, true
		}
	}
	return Tap{}, false
}
