package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reap-dev/reap/internal/backend"
	"github.com/reap-dev/reap/internal/backup"
	"github.com/reap-dev/reap/internal/buildpipeline"
	"github.com/reap-dev/reap/internal/config"
	"github.com/reap-dev/reap/internal/hooks"
	"github.com/reap-dev/reap/internal/logsink"
	"github.com/reap-dev/reap/internal/resolver"
	"github.com/reap-dev/reap/internal/tap"
)

type fakeCatalog struct{ aur map[string]bool }

func (f fakeCatalog) OfficialRepoHas(ctx context.Context, pkg string) bool { return false }
func (f fakeCatalog) AurHas(ctx context.Context, pkg string) bool         { return f.aur[pkg] }
func (f fakeCatalog) FlatpakHas(ctx context.Context, pkg string) bool     { return false }

type fakePipeline struct {
	mu       sync.Mutex
	inFlight int32
	peak     int32
	delay    time.Duration
	failFor  map[string]bool
}

func (f *fakePipeline) RunAur(ctx context.Context, pkg, repoURL, workDir string, b backend.Backend, opts buildpipeline.Options) (buildpipeline.Result, error) {
	cur := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)

	f.mu.Lock()
	if cur > f.peak {
		f.peak = cur
	}
	f.mu.Unlock()

	time.Sleep(f.delay)

	if f.failFor[pkg] {
		return buildpipeline.Result{}, assertError(pkg)
	}
	return buildpipeline.Result{}, nil
}

func (f *fakePipeline) RunTap(ctx context.Context, pkg, recipeDir, workDir string, signer buildpipeline.SignerInfo, b backend.Backend, opts buildpipeline.Options) (buildpipeline.Result, error) {
	return f.RunAur(ctx, pkg, recipeDir, workDir, b, opts)
}

type simpleErr string

func (e simpleErr) Error() string { return string(e) }

func assertError(pkg string) error { return simpleErr(pkg + " failed") }

func newTestOrchestrator(t *testing.T, pipeline *fakePipeline) *Orchestrator {
	t.Helper()
	sink := logsink.New(nil)
	backupDir := t.TempDir()
	return &Orchestrator{
		Catalog:      fakeCatalog{aur: map[string]bool{"yay-bin": true, "pkg-a": true, "pkg-b": true, "pkg-c": true}},
		Taps:         &tap.Registry{},
		HasRecipe:    func(tp tap.Tap, pkg string) bool { return false },
		GlobalConfig: config.DefaultGlobalConfig(),
		Hooks:        hooks.New(func(string) {}),
		Backup:       backup.New(backupDir, t.TempDir()),
		Pipeline:     pipeline,
		Backend:      func(name backend.Name) (backend.Backend, bool) { return nil, true },
		AurRepoURL:   func(pkg string) string { return "https://aur.example.invalid/" + pkg + ".git" },
		BuildDir:     func(pkg string, ts int64) string { return t.TempDir() },
		Sink:         sink,
	}
}

func TestInstallOne_ResolvesAndInstallsViaPipeline(t *testing.T) {
	pipeline := &fakePipeline{}
	o := newTestOrchestrator(t, pipeline)

	err := o.InstallOne(context.Background(), "yay-bin", Options{})
	assert.NoError(t, err)
}

func TestInstallOne_IgnoredPackageNeverDispatches(t *testing.T) {
	pipeline := &fakePipeline{}
	o := newTestOrchestrator(t, pipeline)
	o.GlobalConfig.Ignored = []string{"yay-bin"}

	err := o.InstallOne(context.Background(), "yay-bin", Options{})
	require.Error(t, err)
	assert.Equal(t, int32(0), pipeline.peak)
}

func TestInstallOne_UnresolvedPackageRollsBack(t *testing.T) {
	pipeline := &fakePipeline{}
	o := newTestOrchestrator(t, pipeline)

	localDB := t.TempDir()
	o.Backup = backup.New(t.TempDir(), localDB)
	desc := filepath.Join(localDB, "nonexistent-1.0-1", "desc")
	require.NoError(t, os.MkdirAll(filepath.Dir(desc), 0o755))
	require.NoError(t, os.WriteFile(desc, []byte("original"), 0o644))
	_, err := o.Backup.Snapshot("nonexistent", 1)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(desc, []byte("mutated"), 0o644))

	err = o.InstallOne(context.Background(), "nonexistent", Options{})
	require.Error(t, err)

	restored, err := os.ReadFile(desc)
	require.NoError(t, err)
	assert.Equal(t, "original", string(restored))
}

func TestInstallMany_NeverExceedsMaxParallel(t *testing.T) {
	pipeline := &fakePipeline{delay: 20 * time.Millisecond}
	o := newTestOrchestrator(t, pipeline)

	pkgs := []string{"pkg-a", "pkg-b", "pkg-c"}
	results := o.InstallMany(context.Background(), pkgs, Options{MaxParallel: 2})

	require.Len(t, results, 3)
	assert.LessOrEqual(t, pipeline.peak, int32(2))
}

func TestInstallMany_OneFailureDoesNotCancelPeers(t *testing.T) {
	pipeline := &fakePipeline{failFor: map[string]bool{"pkg-a": true}}
	o := newTestOrchestrator(t, pipeline)

	results := o.InstallMany(context.Background(), []string{"pkg-a", "pkg-b", "pkg-c"}, Options{MaxParallel: 3})

	require.Len(t, results, 3)
	assert.Error(t, results["pkg-a"])
	assert.NoError(t, results["pkg-b"])
	assert.NoError(t, results["pkg-c"])
}

func TestUpgradeAll_SkipsIgnoredAndUpToDate(t *testing.T) {
	pipeline := &fakePipeline{}
	o := newTestOrchestrator(t, pipeline)
	o.GlobalConfig.Ignored = []string{"pkg-b"}

	o.Installed = func(ctx context.Context) (map[string]string, error) {
		return map[string]string{"pkg-a": "1.0.0", "pkg-b": "1.0.0", "pkg-c": "1.0.0"}, nil
	}
	o.RemoteAur = func(ctx context.Context, pkg string) (string, bool) {
		switch pkg {
		case "pkg-a":
			return "2.0.0", true
		case "pkg-c":
			return "1.0.0", true
		}
		return "", false
	}

	results, err := o.UpgradeAll(context.Background(), Options{})
	require.NoError(t, err)

	_, upgradedA := results["pkg-a"]
	_, upgradedB := results["pkg-b"]
	_, upgradedC := results["pkg-c"]
	assert.True(t, upgradedA)
	assert.False(t, upgradedB)
	assert.False(t, upgradedC)
}

func TestInstallOne_HooksReceiveSourceVersionAndInstallPath(t *testing.T) {
	pipeline := &fakePipeline{}
	o := newTestOrchestrator(t, pipeline)
	o.RemoteAur = func(ctx context.Context, pkg string) (string, bool) { return "9.9.9", true }

	var pre, post hooks.Context
	o.Hooks.RegisterPreInstall(func(ctx hooks.Context) error { pre = ctx; return nil })
	o.Hooks.RegisterPostInstall(func(ctx hooks.Context) error { post = ctx; return nil })

	require.NoError(t, o.InstallOne(context.Background(), "yay-bin", Options{}))

	for _, ctx := range []hooks.Context{pre, post} {
		assert.Equal(t, "yay-bin", ctx.Package)
		assert.Equal(t, "aur", ctx.Source)
		assert.Equal(t, "9.9.9", ctx.Version)
		assert.NotEmpty(t, ctx.InstallPath)
	}
	assert.Equal(t, "pre_install", pre.Step)
	assert.Equal(t, "post_install", post.Step)
}

var _ resolver.Catalog = fakeCatalog{}
