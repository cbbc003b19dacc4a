// Package source defines the closed set of places a package can come from.
package source

import "fmt"

// Kind tags a Source variant. The set is closed: resolver and trust code
// switch over Kind, and source_test.go checks that Kinds lists exactly the
// five known values; it does not inspect switch sites.
type Kind int

const (
	// OfficialRepo is a package carried by one of the system's own binary
	// repositories (e.g. "core", "extra").
	OfficialRepo Kind = iota
	// ThirdPartyBinaryRepo is a configured third-party binary repository,
	// typically suffixed "-aur" by convention.
	ThirdPartyBinaryRepo
	// Aur is the community source-build repository.
	Aur
	// Flatpak is a sandboxed application bundle.
	Flatpak
	// Tap is a user-added, git-backed third-party recipe repository.
	Tap
)

// Kinds lists every known Kind, official repo first through tap last.
var Kinds = []Kind{OfficialRepo, ThirdPartyBinaryRepo, Aur, Flatpak, Tap}

// String returns the stable human label used in logs.
func (k Kind) String() string {
	switch k {
	case OfficialRepo:
		return "official-repo"
	case ThirdPartyBinaryRepo:
		return "third-party-repo"
	case Aur:
		return "aur"
	case Flatpak:
		return "flatpak"
	case Tap:
		return "tap"
	default:
		return fmt.Sprintf("source.Kind(%d)", int(k))
	}
}

// Source is a closed sum type naming where a package lives. It is a plain
// struct with a discriminant rather than an interface hierarchy so callers
// can switch over Kind exhaustively. Repo is populated for OfficialRepo and
// ThirdPartyBinaryRepo; TapName is populated for Tap. Aur and Flatpak carry
// no payload.
type Source struct {
	Kind    Kind
	Repo    string
	TapName string
}

// Official constructs an OfficialRepo source for the given repo name.
func Official(repo string) Source { return Source{Kind: OfficialRepo, Repo: repo} }

// ThirdParty constructs a ThirdPartyBinaryRepo source for the given repo name.
func ThirdParty(repo string) Source { return Source{Kind: ThirdPartyBinaryRepo, Repo: repo} }

// FromAur constructs an Aur source.
func FromAur() Source { return Source{Kind: Aur} }

// FromFlatpak constructs a Flatpak source.
func FromFlatpak() Source { return Source{Kind: Flatpak} }

// FromTap constructs a Tap source for the given tap name.
func FromTap(tapName string) Source { return Source{Kind: Tap, TapName: tapName} }

// Label returns the stable human label used in logs, e.g. "core (official
// repo)" or "myuser/mytap (tap)".
func (s Source) Label() string {
	switch s.Kind {
	case OfficialRepo:
		return fmt.Sprintf("%s (official repo)", s.Repo)
	case ThirdPartyBinaryRepo:
		return fmt.Sprintf("%s (third-party repo)", s.Repo)
	case Aur:
		return "aur"
	case Flatpak:
		return "flatpak"
	case Tap:
		return fmt.Sprintf("%s (tap)", s.TapName)
	default:
		return s.Kind.String()
	}
}

// Decision is the Resolver's output: a chosen Source plus the advisory
// priority that selected it. For a tap, the tap name is Source.TapName.
type Decision struct {
	Source   Source
	Priority int
}

// InstallTask pairs a package name with its resolved Source, produced by
// the Resolver and consumed by the Orchestrator.
type InstallTask struct {
	Package string
	Source  Source
}
