// Package orchestrator drives the end-to-end install flow per package —
// resolve, trust, hooks, backup, build/install, rollback on failure — and
// bounds concurrent installs with a counting semaphore.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/sync/semaphore"

	"github.com/reap-dev/reap/internal/backend"
	"github.com/reap-dev/reap/internal/backup"
	"github.com/reap-dev/reap/internal/buildpipeline"
	"github.com/reap-dev/reap/internal/config"
	"github.com/reap-dev/reap/internal/errmsg"
	"github.com/reap-dev/reap/internal/hooks"
	"github.com/reap-dev/reap/internal/logsink"
	"github.com/reap-dev/reap/internal/profile"
	"github.com/reap-dev/reap/internal/resolver"
	"github.com/reap-dev/reap/internal/source"
	"github.com/reap-dev/reap/internal/tap"
	"github.com/reap-dev/reap/internal/trust"
)

// Options is a single install request's policy overrides, spanning both
// the Build Pipeline's Verify gating and the Orchestrator's own
// concurrency bound.
type Options struct {
	MaxParallel int
	ForcedTap   string
	Insecure    bool
	Interactive bool
	Editor      string
	Overlay     *profile.Overlay
}

func (o Options) pipelineOptions() buildpipeline.Options {
	return buildpipeline.Options{
		Insecure:    o.Insecure,
		Interactive: o.Interactive,
		Editor:      o.Editor,
		Overlay:     o.Overlay,
	}
}

func (o Options) maxParallel() int {
	return profile.EffectiveMaxParallel(o.Overlay, o.MaxParallel)
}

// Pipeline is the subset of *buildpipeline.Pipeline the Orchestrator
// drives, narrowed to an interface so tests can substitute a fake that
// never shells out to a real build tool.
type Pipeline interface {
	RunAur(ctx context.Context, pkg, repoURL, workDir string, b backend.Backend, opts buildpipeline.Options) (buildpipeline.Result, error)
	RunTap(ctx context.Context, pkg, recipeDir, workDir string, signer buildpipeline.SignerInfo, b backend.Backend, opts buildpipeline.Options) (buildpipeline.Result, error)
}

// BackendFor resolves a backend.Name to a runnable Backend, narrowed to a
// func field (rather than calling backend.For directly) so tests can
// substitute a fake that never execs a real subprocess.
type BackendFor func(name backend.Name) (backend.Backend, bool)

// Orchestrator wires together every other module behind install and
// upgrade.
type Orchestrator struct {
	Catalog      resolver.Catalog
	Taps         *tap.Registry
	HasRecipe    resolver.HasRecipe
	RecipeDir    func(t tap.Tap, pkg string) string
	GlobalConfig *config.GlobalConfig
	Hooks        *hooks.Runner
	Backup       *backup.Snapshotter
	Pipeline     Pipeline
	Backend      BackendFor
	AurRepoURL   func(pkg string) string
	BuildDir     func(pkg string, timestamp int64) string
	Sink         logsink.Sink
	Installed    func(ctx context.Context) (map[string]string, error) // pkg -> installed version
	RemoteAur    func(ctx context.Context, pkg string) (string, bool) // pkg -> remote version
}

// New builds an Orchestrator whose Pipeline and Backend fields dispatch to
// the real buildpipeline.Pipeline and backend.For.
func New(pipeline *buildpipeline.Pipeline) *Orchestrator {
	return &Orchestrator{Pipeline: pipeline, Backend: backend.For}
}

// InstallOne resolves, verifies, snapshots, and installs a single package.
// Errors are pushed to the log sink in addition to being returned, so
// callers that discard the error still see the failure.
func (o *Orchestrator) InstallOne(ctx context.Context, pkg string, opts Options) error {
	err := o.installOne(ctx, pkg, opts)
	if err != nil {
		o.Sink.Push(logsink.Tagged(pkg, "install", err.Error()))
	}
	return err
}

func (o *Orchestrator) installOne(ctx context.Context, pkg string, opts Options) error {
	if o.GlobalConfig.IsIgnored(pkg) {
		return errmsg.New(pkg, errmsg.StepResolve, "remove it from the ignored list to install it", fmt.Errorf("package is ignored"))
	}

	decision, ok := resolver.Resolve(ctx, pkg, opts.ForcedTap, o.Catalog, o.Taps, o.HasRecipe, o.GlobalConfig)
	if !ok {
		o.rollback(pkg)
		return errmsg.New(pkg, errmsg.StepResolve, "no configured source (official repo, AUR, tap, or Flatpak) provides this package", fmt.Errorf("unresolved"))
	}

	if decision.Source.Kind == source.Tap {
		o.logTrust(pkg, decision.Source)
	}

	timestamp := time.Now().UnixNano()
	hookCtx := hooks.Context{
		Package:     pkg,
		Source:      decision.Source.Label(),
		TapName:     decision.Source.TapName,
		InstallPath: o.installPath(pkg, decision.Source, timestamp),
	}
	if decision.Source.Kind == source.Aur && o.RemoteAur != nil {
		if v, ok := o.RemoteAur(ctx, pkg); ok {
			hookCtx.Version = v
		}
	}

	o.Hooks.PreInstall(hookCtx)

	if _, err := o.Backup.Snapshot(pkg, timestamp); err != nil {
		o.Sink.Push(logsink.Tagged(pkg, "backup", fmt.Sprintf("snapshot failed, continuing: %v", err)))
	}

	if err := o.dispatch(ctx, pkg, decision.Source, timestamp, opts); err != nil {
		o.rollback(pkg)
		return err
	}

	o.Hooks.PostInstall(hookCtx)
	return nil
}

// installPath returns the working directory a source-form install runs
// in, empty for sources the Orchestrator doesn't build locally.
func (o *Orchestrator) installPath(pkg string, src source.Source, timestamp int64) string {
	switch src.Kind {
	case source.Aur, source.Tap:
		return o.BuildDir(pkg, timestamp)
	default:
		return ""
	}
}

func (o *Orchestrator) logTrust(pkg string, src source.Source) {
	t, ok := o.Taps.Get(src.TapName)
	if !ok {
		return
	}
	score := trust.Score(src, false, t.Publisher.Verified)
	o.Sink.Push(logsink.Tagged(pkg, "trust", fmt.Sprintf("%s trust score %d (%s)", src.Label(), score.Score, score.Badge())))
}

func (o *Orchestrator) dispatch(ctx context.Context, pkg string, src source.Source, timestamp int64, opts Options) error {
	switch src.Kind {
	case source.Aur:
		b, _ := o.Backend(backend.Aur)
		_, err := o.Pipeline.RunAur(ctx, pkg, o.AurRepoURL(pkg), o.BuildDir(pkg, timestamp), b, opts.pipelineOptions())
		return err

	case source.Tap:
		t, ok := o.Taps.Get(src.TapName)
		if !ok {
			return errmsg.New(pkg, errmsg.StepResolve, "the tap was removed between resolution and install", fmt.Errorf("tap %q not found", src.TapName))
		}
		b, _ := o.Backend(backend.Aur)
		signer := buildpipeline.SignerInfo{Fingerprint: t.Publisher.Fingerprint}
		_, err := o.Pipeline.RunTap(ctx, pkg, o.RecipeDir(t, pkg), o.BuildDir(pkg, timestamp), signer, b, opts.pipelineOptions())
		return err

	case source.OfficialRepo:
		b, _ := o.Backend(backend.Pacman)
		if err := b.Run(ctx, o.Sink, pkg, "install", "", "-S", "--noconfirm", "--needed", pkg); err != nil {
			return errmsg.New(pkg, errmsg.StepInstall, "check pacman's own output above", err)
		}
		return nil

	case source.Flatpak:
		b, _ := o.Backend(backend.Flatpak)
		if err := b.Run(ctx, o.Sink, pkg, "install", "", "install", "-y", pkg); err != nil {
			return errmsg.New(pkg, errmsg.StepInstall, "check flatpak's own output above", err)
		}
		return nil

	default:
		return errmsg.New(pkg, errmsg.StepInstall, "", fmt.Errorf("unhandled source kind %v", src.Kind))
	}
}

func (o *Orchestrator) rollback(pkg string) {
	if _, ok := o.Backup.Latest(pkg); !ok {
		o.Sink.Push(logsink.Tagged(pkg, "rollback", "warning: no snapshot found, nothing to roll back"))
		return
	}
	errs := o.Backup.Rollback(pkg)
	if len(errs) == 0 {
		return
	}
	for _, err := range errs {
		o.Sink.Push(logsink.Tagged(pkg, "rollback", err.Error()))
	}
}

// InstallMany runs InstallOne for each package, bounded to
// opts.maxParallel() concurrently in flight at any instant via a counting
// semaphore. One package's failure never cancels its peers (no shared
// context cancellation is installed); InstallMany returns only once every
// task has reached a terminal state.
func (o *Orchestrator) InstallMany(ctx context.Context, pkgs []string, opts Options) map[string]error {
	max := opts.maxParallel()
	if max < 1 && o.GlobalConfig != nil {
		max = o.GlobalConfig.DefaultParallelism
	}
	if max < 1 {
		max = 1
	}

	sem := semaphore.NewWeighted(int64(max))
	results := make(map[string]error, len(pkgs))
	resultsCh := make(chan struct {
		pkg string
		err error
	}, len(pkgs))

	for _, pkg := range pkgs {
		pkg := pkg
		if err := sem.Acquire(ctx, 1); err != nil {
			resultsCh <- struct {
				pkg string
				err error
			}{pkg, err}
			continue
		}
		go func() {
			defer sem.Release(1)
			err := o.InstallOne(ctx, pkg, opts)
			resultsCh <- struct {
				pkg string
				err error
			}{pkg, err}
		}()
	}

	for range pkgs {
		r := <-resultsCh
		results[r.pkg] = r.err
	}
	return results
}

// UpgradeAll enumerates locally-installed packages, filters out
// config.ignored, diffs each against its remote version, and invokes
// InstallMany on the outdated subset.
func (o *Orchestrator) UpgradeAll(ctx context.Context, opts Options) (map[string]error, error) {
	installed, err := o.Installed(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate installed packages: %w", err)
	}

	var outdated []string
	for pkg, localVersion := range installed {
		if o.GlobalConfig.IsIgnored(pkg) {
			continue
		}

		remoteVersion, ok := o.RemoteAur(ctx, pkg)
		if !ok {
			continue
		}

		if isOutdated(localVersion, remoteVersion) {
			outdated = append(outdated, pkg)
		}
	}

	return o.InstallMany(ctx, outdated, opts), nil
}

// isOutdated compares two version strings with Masterminds/semver,
// falling back to a plain string inequality when either side isn't valid
// semver — pacman/AUR versions can carry an epoch prefix semver can't
// parse (e.g. "1:2.0.0-1").
func isOutdated(local, remote string) bool {
	localVer, err1 := semver.NewVersion(local)
	remoteVer, err2 := semver.NewVersion(remote)
	if err1 == nil && err2 == nil {
		return localVer.LessThan(remoteVer)
	}
	return local != remote
}
