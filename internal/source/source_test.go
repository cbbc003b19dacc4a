package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestKindsExhaustive fails the moment a Kind is added to the Kind block
// without being appended to Kinds, catching silent coverage gaps in any
// switch that ranges over Kinds instead of hard-coding five cases.
func TestKindsExhaustive(t *testing.T) {
	seen := map[Kind]bool{}
	for _, k := range Kinds {
		seen[k] = true
	}

	for _, k := range []Kind{OfficialRepo, ThirdPartyBinaryRepo, Aur, Flatpak, Tap} {
		assert.True(t, seen[k], "Kind %v missing from Kinds", k)
	}
	assert.Len(t, Kinds, 5, "Kinds grew without a corresponding test update")
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		OfficialRepo:         "official-repo",
		ThirdPartyBinaryRepo: "third-party-repo",
		Aur:                  "aur",
		Flatpak:              "flatpak",
		Tap:                  "tap",
	}
	for k, want := range cases {
		assert.Equal(t, want, k.String())
	}
}

func TestLabel(t *testing.T) {
	require.Equal(t, "core (official repo)", Official("core").Label())
	require.Equal(t, "repo-aur (third-party repo)", ThirdParty("repo-aur").Label())
	require.Equal(t, "aur", FromAur().Label())
	require.Equal(t, "flatpak", FromFlatpak().Label())
	require.Equal(t, "myuser/mytap (tap)", FromTap("myuser/mytap").Label())
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, Source{Kind: OfficialRepo, Repo: "core"}, Official("core"))
	assert.Equal(t, Source{Kind: ThirdPartyBinaryRepo, Repo: "repo-aur"}, ThirdParty("repo-aur"))
	assert.Equal(t, Source{Kind: Aur}, FromAur())
	assert.Equal(t, Source{Kind: Flatpak}, FromFlatpak())
	assert.Equal(t, Source{Kind: Tap, TapName: "alpha"}, FromTap("alpha"))
}
