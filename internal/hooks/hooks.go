// Package hooks runs user-registered pre_install/post_install callbacks in
// registration order, isolating the installer from a misbehaving hook: a
// panicking or erroring hook is caught and logged, never allowed to abort
// the install it's attached to.
package hooks

import (
	"fmt"
)

// Context is passed to every hook callback.
type Context struct {
	Package string
	Step    string // "pre_install" or "post_install"

	// Version is the version being installed, when known. Empty for
	// sources that don't report one up front (e.g. pacman resolves its
	// own version internally).
	Version string

	// Source is the human label of the chosen source, e.g. "aur" or
	// "core (official repo)" — the same string Source.Label() produces.
	Source string

	// InstallPath is the working directory the build ran in, for
	// source-form installs (AUR, Tap). Empty for pacman/Flatpak, which
	// manage their own paths.
	InstallPath string

	// TapName is set when Source is a tap install, naming which one.
	TapName string
}

// Func is a single hook callback. A returned error is logged, not
// propagated.
type Func func(Context) error

// Runner holds the ordered sets of pre/post install hooks.
type Runner struct {
	pre  []Func
	post []Func
	log  func(line string)
}

// New builds a Runner whose failures are reported through log.
func New(log func(line string)) *Runner {
	return &Runner{log: log}
}

// RegisterPreInstall appends fn to the pre_install set.
func (r *Runner) RegisterPreInstall(fn Func) {
	r.pre = append(r.pre, fn)
}

// RegisterPostInstall appends fn to the post_install set.
func (r *Runner) RegisterPostInstall(fn Func) {
	r.post = append(r.post, fn)
}

// PreInstall synchronously invokes every registered pre_install hook, in
// registration order. ctx.Step is overwritten with "pre_install"
// regardless of what the caller set.
func (r *Runner) PreInstall(ctx Context) {
	ctx.Step = "pre_install"
	r.run(r.pre, ctx)
}

// PostInstall synchronously invokes every registered post_install hook, in
// registration order. ctx.Step is overwritten with "post_install"
// regardless of what the caller set.
func (r *Runner) PostInstall(ctx Context) {
	ctx.Step = "post_install"
	r.run(r.post, ctx)
}

func (r *Runner) run(fns []Func, ctx Context) {
	for _, fn := range fns {
		r.runOne(fn, ctx)
	}
}

func (r *Runner) runOne(fn Func, ctx Context) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logf("%s hook for %s panicked: %v", ctx.Step, ctx.Package, rec)
		}
	}()

	if err := fn(ctx); err != nil {
		r.logf("%s hook for %s failed: %v", ctx.Step, ctx.Package, err)
	}
}

func (r *Runner) logf(format string, args ...any) {
	if r.log != nil {
		r.log(fmt.Sprintf(format, args...))
	}
}
