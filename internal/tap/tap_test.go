package tap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_OrdersByPriorityDescendingThenName(t *testing.T) {
	r := &Registry{taps: map[string]Tap{
		"zeta":  {Name: "zeta", Priority: 5, Enabled: true},
		"alpha": {Name: "alpha", Priority: 5, Enabled: true},
		"beta":  {Name: "beta", Priority: 10, Enabled: true},
	}}

	got := r.List()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"beta", "alpha", "zeta"}, []string{got[0].Name, got[1].Name, got[2].Name})
}

func TestLoad_MissingFileReturnsEmptyRegistry(t *testing.T) {
	r, err := Load(filepath.Join(t.TempDir(), "taps.toml"))
	require.NoError(t, err)
	assert.Empty(t, r.List())
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taps.toml")
	r := &Registry{path: path, taps: make(map[string]Tap)}
	r.taps["myorg"] = Tap{
		Name:     "myorg",
		URL:      "https://example.invalid/myorg/taps.git",
		Priority: 7,
		Enabled:  true,
		Publisher: PublisherInfo{
			Name:        "My Org",
			Fingerprint: "0123456789ABCDEF0123456789ABCDEF01234567",
			Verified:    true,
		},
	}
	require.NoError(t, r.Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)

	got, ok := loaded.Get("myorg")
	require.True(t, ok)
	assert.Equal(t, "https://example.invalid/myorg/taps.git", got.URL)
	assert.True(t, got.Publisher.Verified)
}

func TestRemove_UnknownTapErrors(t *testing.T) {
	r := &Registry{taps: make(map[string]Tap)}
	assert.Error(t, r.Remove("nope"))
}

func TestSetEnabled(t *testing.T) {
	r := &Registry{taps: map[string]Tap{"myorg": {Name: "myorg", Enabled: true}}}
	require.NoError(t, r.SetEnabled("myorg", false))
	got, _ := r.Get("myorg")
	assert.False(t, got.Enabled)
}

func TestSync_SkipsDisabledAndContinuesPastFailure(t *testing.T) {
	taps := []Tap{
		{Name: "broken", Enabled: true},
		{Name: "disabled", Enabled: false},
	}

	results := Sync(taps, func(name string) string {
		return filepath.Join(t.TempDir(), name)
	})

	require.Len(t, results, 1)
	assert.Equal(t, "broken", results[0].Name)
	assert.Error(t, results[0].Err)
}

func TestFindForPackage_ForcedTapName(t *testing.T) {
	taps := []Tap{
		{Name: "a", Priority: 10, Enabled: true},
		{Name: "b", Priority: 5, Enabled: true},
	}

	found, ok := FindForPackage(taps, "foo", "b", func(tap Tap, pkg string) bool { return true })
	require.True(t, ok)
	assert.Equal(t, "b", found.Name)
}

func TestFindForPackage_FallsBackToHighestPriorityMatch(t *testing.T) {
	taps := []Tap{
		{Name: "a", Priority: 10, Enabled: true},
		{Name: "b", Priority: 5, Enabled: true},
	}

	found, ok := FindForPackage(taps, "foo", "", func(tap Tap, pkg string) bool {
		return tap.Name == "b"
	})
	require.True(t, ok)
	assert.Equal(t, "b", found.Name)
}

func TestFindForPackage_NoMatch(t *testing.T) {
	_, ok := FindForPackage(nil, "foo", "", func(tap Tap, pkg string) bool { return false })
	assert.False(t, ok)
}

func TestSearchByTerm_MatchesNameAndReadsDescription(t *testing.T) {
	root := t.TempDir()
	recipe := filepath.Join(root, "myfoo")
	require.NoError(t, os.MkdirAll(recipe, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(recipe, "PKGBUILD"),
		[]byte("pkgname=myfoo\npkgdesc=\"a handy foo tool\"\npkgver=1.0\n"), 0o644))

	taps := []Tap{{Name: "myuser/mytap", Enabled: true}}
	tapDir := func(name string) string { return root }

	results := SearchByTerm(taps, tapDir, "foo")

	require.Len(t, results, 1)
	assert.Equal(t, "myfoo", results[0].Name)
	assert.Equal(t, "a handy foo tool", results[0].Description)
	assert.Equal(t, "myuser/mytap", results[0].TapName)
}

func TestSearchByTerm_SkipsDisabledTapsAndNonMatches(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bar"), 0o755))

	taps := []Tap{{Name: "disabled-tap", Enabled: false}}
	results := SearchByTerm(taps, func(name string) string { return root }, "bar")
	assert.Empty(t, results)

	taps = []Tap{{Name: "enabled-tap", Enabled: true}}
	results = SearchByTerm(taps, func(name string) string { return root }, "nomatch")
	assert.Empty(t, results)
}
