package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/reap-dev/reap/internal/aurapi"
	"github.com/reap-dev/reap/internal/backup"
	"github.com/reap-dev/reap/internal/buildpipeline"
	"github.com/reap-dev/reap/internal/catalog"
	"github.com/reap-dev/reap/internal/config"
	"github.com/reap-dev/reap/internal/errmsg"
	"github.com/reap-dev/reap/internal/hooks"
	"github.com/reap-dev/reap/internal/logsink"
	"github.com/reap-dev/reap/internal/orchestrator"
	"github.com/reap-dev/reap/internal/tap"
	"github.com/reap-dev/reap/internal/trust"
)

// app bundles every wired-up component a subcommand needs, built once in
// root.go's PersistentPreRunE and stored in the package-level reapApp,
// which tests can replace with a fake app.
type app struct {
	cfg          *config.Config
	globalConfig *config.GlobalConfig
	sink         logsink.Sink
	catalog      *catalog.Catalog
	aur          *aurapi.Client
	taps         *tap.Registry
	orchestrator *orchestrator.Orchestrator
}

func newApp() (*app, error) {
	cfg, err := config.DefaultConfig()
	if err != nil {
		return nil, errmsg.New("", errmsg.StepConfig, "check $XDG_CONFIG_HOME and $HOME are set correctly", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, errmsg.New("", errmsg.StepConfig, "check permissions on reap's config and cache directories", err)
	}

	globalConfig, err := config.LoadGlobalConfig(cfg.ConfigFile)
	if err != nil {
		return nil, errmsg.New("", errmsg.StepConfig, "check "+cfg.ConfigFile+" for syntax errors", err)
	}

	taps, err := tap.Load(cfg.TapsFile)
	if err != nil {
		return nil, errmsg.New("", errmsg.StepConfig, "check "+cfg.TapsFile+" for syntax errors", err)
	}

	sink := logsink.New(os.Stdout)
	cat := catalog.New()
	aur := aurapi.New()

	orch := buildOrchestrator(cfg, globalConfig, sink, cat, taps, aur)

	return &app{
		cfg:          cfg,
		globalConfig: globalConfig,
		sink:         sink,
		catalog:      cat,
		aur:          aur,
		taps:         taps,
		orchestrator: orch,
	}, nil
}

func buildOrchestrator(cfg *config.Config, globalConfig *config.GlobalConfig, sink logsink.Sink, cat *catalog.Catalog, taps *tap.Registry, aur *aurapi.Client) *orchestrator.Orchestrator {
	pipeline := &buildpipeline.Pipeline{
		Sink:             sink,
		KeyCache:         trust.NewKeyCache(cfg.KeyCacheDir),
		ImportKey:        trust.ImportFromKeyserver(config.GetGPGKeyserver()),
		RunEditor:        runEditor,
		PKGBUILDCacheDir: filepath.Join(cfg.CacheDir, "pkgbuild-cache"),
	}

	snapshotter := backup.New(cfg.BackupDir, "/var/lib/pacman/local")

	orch := orchestrator.New(pipeline)
	orch.Catalog = cat
	orch.Taps = taps
	orch.HasRecipe = func(t tap.Tap, pkg string) bool {
		_, err := os.Stat(filepath.Join(cfg.TapDir(t.Name), pkg, "PKGBUILD"))
		return err == nil
	}
	orch.RecipeDir = func(t tap.Tap, pkg string) string {
		return filepath.Join(cfg.TapDir(t.Name), pkg)
	}
	orch.GlobalConfig = globalConfig
	orch.Hooks = hooks.New(func(line string) { sink.Push(line) })
	orch.Backup = snapshotter
	orch.AurRepoURL = func(pkg string) string {
		return "https://aur.archlinux.org/" + pkg + ".git"
	}
	orch.BuildDir = cfg.BuildDir
	orch.Sink = sink
	orch.Installed = cat.InstalledVersions
	orch.RemoteAur = func(ctx context.Context, pkg string) (string, bool) {
		results, err := aur.Info(ctx, pkg)
		if err != nil || len(results) == 0 {
			return "", false
		}
		return results[0].Version, true
	}

	return orch
}

// runEditor is a placeholder until the Review step's interactive terminal
// plumbing lands in the CLI layer; RunTap/RunAur only call it when
// opts.Interactive is set, which none of the current subcommands enable
// yet.
func runEditor(editor, path string) error {
	return fmt.Errorf("editor review requires an interactive terminal")
}

// applyBackendOverride narrows reapApp's global backend order to a single
// backend for the duration of a command when choice is anything but "auto",
// and returns a func restoring the prior order. Resolution order itself
// (tap, then repo, then AUR, then Flatpak) is never reordered by this; it
// only gates which backends HasBackend reports as present.
func applyBackendOverride(choice string) func() {
	if choice == "" || choice == "auto" || reapApp == nil || reapApp.globalConfig == nil {
		return func() {}
	}

	cfg := reapApp.globalConfig
	previous := cfg.BackendOrder
	cfg.BackendOrder = []string{choice}
	return func() { cfg.BackendOrder = previous }
}
