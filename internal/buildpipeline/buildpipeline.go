// Package buildpipeline drives the Fetch -> Verify -> (Review) -> Build ->
// Install -> Cleanup state machine for source-form packages (AUR or Tap).
package buildpipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ProtonMail/gopenpgp/v2/crypto"

	"github.com/reap-dev/reap/internal/backend"
	"github.com/reap-dev/reap/internal/diffutil"
	"github.com/reap-dev/reap/internal/errmsg"
	"github.com/reap-dev/reap/internal/gitutil"
	"github.com/reap-dev/reap/internal/logsink"
	"github.com/reap-dev/reap/internal/profile"
	"github.com/reap-dev/reap/internal/trust"
)

// Options carries the per-install overrides the Verify step consults.
type Options struct {
	// Insecure allows a failed or missing signature to downgrade to a
	// logged warning instead of aborting — unless Overlay.StrictSignatures
	// is set, which vetoes Insecure entirely.
	Insecure bool

	// Interactive gates the Review step.
	Interactive bool

	// Editor is the command invoked on the recipe during Review.
	Editor string

	Overlay *profile.Overlay
}

// SignerInfo identifies the key a Tap source's recipe should be verified
// against. Zero value means "no publisher key on file" (Verify treats a
// missing fingerprint the same as a missing signature).
type SignerInfo struct {
	Fingerprint string
}

// ImportKey fetches a signer's public key (typically from a keyserver) on
// a local keyring cache miss.
type ImportKey func(ctx context.Context, fingerprint string) (*crypto.Key, error)

// Pipeline runs the build/install state machine for one package at a time.
type Pipeline struct {
	Sink      logsink.Sink
	KeyCache  *trust.KeyCache
	ImportKey ImportKey
	RunEditor func(editor, path string) error
	Exec      func(ctx context.Context, name string, args ...string) error

	// PKGBUILDCacheDir holds the last-seen PKGBUILD for each package,
	// keyed by name, independent of the ephemeral per-install workDir —
	// the Review diff compares against this copy, not against workDir's
	// own (always-empty, freshly created) prior state.
	PKGBUILDCacheDir string
}

// Result reports the diff text, if any, emitted after Fetch.
type Result struct {
	DiffText string
}

// RunAur executes the pipeline for an AUR package: clone its recipe
// repository, then diff/Review/Build/Install/Cleanup, with no Verify step.
// AUR packages
// aren't signature-gated — only tap sources carry a publisher key to
// verify against — so Insecure/Overlay are irrelevant here.
func (p *Pipeline) RunAur(ctx context.Context, pkg, repoURL, workDir string, b backend.Backend, opts Options) (Result, error) {
	var result Result

	defer p.cleanup(pkg, workDir)

	cachedPKGBUILD := p.loadCachedPKGBUILD(pkg)

	if err := p.fetchGit(ctx, pkg, repoURL, workDir); err != nil {
		return result, err
	}

	result.DiffText = p.emitDiff(pkg, cachedPKGBUILD, workDir)
	p.saveCachedPKGBUILD(pkg, workDir)

	if opts.Interactive {
		p.review(pkg, opts.Editor, workDir)
	}

	return result, p.buildAndInstall(ctx, pkg, workDir, b)
}

// RunTap executes the pipeline for a Tap package whose recipe already
// lives at recipeDir inside a synced tap clone: Verify its detached
// signature, then (Review)/Build/Install/Cleanup. Fetch copies the
// already-cloned recipe directory into a dedicated working directory,
// rather than a fresh git clone as AUR's Fetch does.
func (p *Pipeline) RunTap(ctx context.Context, pkg, recipeDir, workDir string, signer SignerInfo, b backend.Backend, opts Options) (Result, error) {
	var result Result

	defer p.cleanup(pkg, workDir)

	cachedPKGBUILD := p.loadCachedPKGBUILD(pkg)

	if err := p.fetchLocal(pkg, recipeDir, workDir); err != nil {
		return result, err
	}

	result.DiffText = p.emitDiff(pkg, cachedPKGBUILD, workDir)
	p.saveCachedPKGBUILD(pkg, workDir)

	if err := p.verify(ctx, pkg, workDir, signer, opts); err != nil {
		return result, err
	}

	if opts.Interactive {
		p.review(pkg, opts.Editor, workDir)
	}

	return result, p.buildAndInstall(ctx, pkg, workDir, b)
}

func (p *Pipeline) push(pkg, step, msg string) {
	p.Sink.Push(logsink.Tagged(pkg, step, msg))
}

func (p *Pipeline) fetchGit(ctx context.Context, pkg, repoURL, workDir string) error {
	p.push(pkg, "clone", fmt.Sprintf("cloning %s into %s", repoURL, workDir))
	if err := gitutil.Clone(workDir, repoURL); err != nil {
		return errmsg.New(pkg, errmsg.StepFetch, "check the package name and network connectivity", err)
	}
	return nil
}

func (p *Pipeline) fetchLocal(pkg, recipeDir, workDir string) error {
	p.push(pkg, "clone", fmt.Sprintf("copying recipe from %s", recipeDir))
	if err := copyDir(recipeDir, workDir); err != nil {
		return errmsg.New(pkg, errmsg.StepFetch, "the tap clone may be missing this package's recipe directory", err)
	}
	return nil
}

func (p *Pipeline) cachedPKGBUILDPath(pkg string) string {
	return filepath.Join(p.PKGBUILDCacheDir, pkg, "PKGBUILD")
}

func (p *Pipeline) loadCachedPKGBUILD(pkg string) string {
	if p.PKGBUILDCacheDir == "" {
		return ""
	}
	data, err := os.ReadFile(p.cachedPKGBUILDPath(pkg))
	if err != nil {
		return ""
	}
	return string(data)
}

func (p *Pipeline) saveCachedPKGBUILD(pkg, workDir string) {
	if p.PKGBUILDCacheDir == "" {
		return
	}
	data, err := os.ReadFile(filepath.Join(workDir, "PKGBUILD"))
	if err != nil {
		return
	}
	dst := p.cachedPKGBUILDPath(pkg)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		p.push(pkg, "diff", fmt.Sprintf("failed to cache PKGBUILD for next install: %v", err))
		return
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		p.push(pkg, "diff", fmt.Sprintf("failed to cache PKGBUILD for next install: %v", err))
	}
}

func (p *Pipeline) emitDiff(pkg, cachedPKGBUILD, workDir string) string {
	newPKGBUILD, err := os.ReadFile(filepath.Join(workDir, "PKGBUILD"))
	if err != nil {
		return ""
	}

	rendered, err := diffutil.Unified(pkg, cachedPKGBUILD, string(newPKGBUILD))
	if err != nil || rendered == "" {
		return rendered
	}

	for _, line := range diffutil.Lines(rendered) {
		p.push(pkg, "diff", line)
	}
	return rendered
}

func (p *Pipeline) verify(ctx context.Context, pkg, workDir string, signer SignerInfo, opts Options) error {
	strict := profile.EffectiveStrictSignatures(opts.Overlay)

	if signer.Fingerprint == "" {
		return p.verifyOutcome(pkg, fmt.Errorf("no publisher signing key on file"), opts.Insecure, strict)
	}

	err := trust.VerifyRecipe(ctx, p.KeyCache, workDir, signer.Fingerprint, p.ImportKey)
	return p.verifyOutcome(pkg, err, opts.Insecure, strict)
}

func (p *Pipeline) verifyOutcome(pkg string, err error, insecure, strict bool) error {
	if err == nil {
		p.push(pkg, "verify", "signature verified")
		return nil
	}

	if insecure && !strict {
		p.push(pkg, "verify", fmt.Sprintf("warning: %v (continuing, insecure override set)", err))
		return nil
	}

	return errmsg.New(pkg, errmsg.StepVerify, "pass --insecure to continue despite this, unless strict_signatures is set", err)
}

func (p *Pipeline) review(pkg, editor, workDir string) {
	if editor == "" || p.RunEditor == nil {
		return
	}
	pkgbuild := filepath.Join(workDir, "PKGBUILD")
	if err := p.RunEditor(editor, pkgbuild); err != nil {
		p.push(pkg, "review", fmt.Sprintf("editor exited non-zero, continuing: %v", err))
	}
}

func (p *Pipeline) buildAndInstall(ctx context.Context, pkg, workDir string, b backend.Backend) error {
	if err := b.Run(ctx, p.Sink, pkg, "build", workDir, "-si", "--noconfirm", "--needed"); err != nil {
		return errmsg.New(pkg, errmsg.StepBuild, "inspect the build log above for the failing step", err)
	}
	return nil
}

func (p *Pipeline) cleanup(pkg, workDir string) {
	if err := os.RemoveAll(workDir); err != nil {
		p.push(pkg, "cleanup", fmt.Sprintf("failed to remove working directory %s: %v", workDir, err))
	}
}

func copyDir(src, dst string) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, e := range entries {
		srcPath := filepath.Join(src, e.Name())
		dstPath := filepath.Join(dst, e.Name())
		if e.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		data, err := os.ReadFile(srcPath)
		if err != nil {
			return err
		}
		if err := os.WriteFile(dstPath, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}
