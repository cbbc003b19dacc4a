// Package resolver implements the pure, deterministic priority algorithm
// that picks a single Source for a package name, combining the Tap
// Registry, the Source Catalog, and the configured backend order.
package resolver

import (
	"context"

	"github.com/reap-dev/reap/internal/config"
	"github.com/reap-dev/reap/internal/source"
	"github.com/reap-dev/reap/internal/tap"
)

// Fixed, non-configurable priorities for the non-tap steps. A tap's own
// priority (>=30 by convention) always outranks these.
const (
	priorityOfficialRepo = 20
	priorityAur          = 10
	priorityFlatpak      = 1
)

// Catalog is the subset of *catalog.Catalog the Resolver needs, narrowed
// to an interface so tests can substitute a fake without shelling out.
type Catalog interface {
	OfficialRepoHas(ctx context.Context, pkg string) bool
	AurHas(ctx context.Context, pkg string) bool
	FlatpakHas(ctx context.Context, pkg string) bool
}

// TapFinder is the subset of the Tap Registry the Resolver needs.
type TapFinder interface {
	List() []tap.Tap
}

// HasRecipe reports whether t's clone contains a recipe directory for pkg.
type HasRecipe func(t tap.Tap, pkg string) bool

// Resolve evaluates taps, then official repos, then the AUR, then
// Flatpak, in that fixed order, and returns the first hit. It is a pure
// function of its arguments: calling it twice with an unchanged
// catalog/registry snapshot returns the same Decision, and never reorders
// the official/AUR/Flatpak steps regardless of tap priorities, which only
// break ties among taps within the first step.
func Resolve(ctx context.Context, pkg string, forcedTap string, cat Catalog, taps TapFinder, hasRecipe HasRecipe, backendOrder *config.GlobalConfig) (source.Decision, bool) {
	if t, ok := tap.FindForPackage(taps.List(), pkg, forcedTap, hasRecipe); ok {
		return source.Decision{Source: source.FromTap(t.Name), Priority: t.Priority}, true
	}

	if backendOrder.HasBackend("pacman") && cat.OfficialRepoHas(ctx, pkg) {
		return source.Decision{Source: source.Official("core"), Priority: priorityOfficialRepo}, true
	}

	if backendOrder.HasBackend("aur") && cat.AurHas(ctx, pkg) {
		return source.Decision{Source: source.FromAur(), Priority: priorityAur}, true
	}

	if backendOrder.HasBackend("flatpak") && cat.FlatpakHas(ctx, pkg) {
		return source.Decision{Source: source.FromFlatpak(), Priority: priorityFlatpak}, true
	}

	return source.Decision{}, false
}
