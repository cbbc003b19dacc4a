// Package profile carries the policy overlay threaded through a single
// parameterized install path: one function, parameterized by an optional
// Overlay, rather than a second near-duplicate code path for stricter
// policy profiles.
package profile

// Overlay carries per-call policy overrides on top of config.GlobalConfig's
// defaults. A nil *Overlay means "use default policy" everywhere it is
// carried in orchestrator.Options and buildpipeline.Options through
// orchestrator.InstallOne/InstallMany and buildpipeline.Pipeline.RunTap.
type Overlay struct {
	// StrictSignatures requires a valid signature on every tap install and
	// is never overridden by Insecure.
	StrictSignatures bool
	// MaxParallel bounds concurrent installs for this call, overriding
	// config.GlobalConfig.DefaultParallelism when non-zero.
	MaxParallel int
}

// EffectiveStrictSignatures reports whether strict signature enforcement
// applies, treating a nil overlay as "not strict".
func EffectiveStrictSignatures(o *Overlay) bool {
	return o != nil && o.StrictSignatures
}

// EffectiveMaxParallel returns the overlay's MaxParallel if set and
// positive, else fallback.
func EffectiveMaxParallel(o *Overlay, fallback int) int {
	if o != nil && o.MaxParallel > 0 {
		return o.MaxParallel
	}
	return fallback
}
