package buildpipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ProtonMail/gopenpgp/v2/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reap-dev/reap/internal/backend"
	"github.com/reap-dev/reap/internal/logsink"
	"github.com/reap-dev/reap/internal/profile"
)

type fakeBackend struct {
	err error
}

func (f *fakeBackend) Name() backend.Name { return backend.Aur }
func (f *fakeBackend) Run(ctx context.Context, sink logsink.Sink, pkg, step, dir string, args ...string) error {
	return f.err
}

func newPipeline(t *testing.T) (*Pipeline, logsink.Sink) {
	t.Helper()
	sink := logsink.New(nil)
	return &Pipeline{
		Sink:             sink,
		PKGBUILDCacheDir: filepath.Join(t.TempDir(), "pkgbuild-cache"),
		ImportKey: func(ctx context.Context, fingerprint string) (*crypto.Key, error) {
			return nil, errors.New("no keyserver in tests")
		},
	}, sink
}

func TestRunTap_MissingSignatureAbortsWithoutInsecure(t *testing.T) {
	p, _ := newPipeline(t)

	recipeDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(recipeDir, "PKGBUILD"), []byte("pkgname=foo\n"), 0o644))

	workDir := filepath.Join(t.TempDir(), "work")
	_, err := p.RunTap(context.Background(), "foo", recipeDir, workDir, SignerInfo{}, &fakeBackend{}, Options{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "verify")
}

func TestRunTap_MissingSignatureWithInsecureContinues(t *testing.T) {
	p, _ := newPipeline(t)

	recipeDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(recipeDir, "PKGBUILD"), []byte("pkgname=foo\n"), 0o644))

	workDir := filepath.Join(t.TempDir(), "work")
	_, err := p.RunTap(context.Background(), "foo", recipeDir, workDir, SignerInfo{}, &fakeBackend{},
		Options{Insecure: true})

	assert.NoError(t, err)
}

func TestRunTap_StrictSignaturesVetoesInsecure(t *testing.T) {
	p, _ := newPipeline(t)

	recipeDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(recipeDir, "PKGBUILD"), []byte("pkgname=foo\n"), 0o644))

	workDir := filepath.Join(t.TempDir(), "work")
	_, err := p.RunTap(context.Background(), "foo", recipeDir, workDir, SignerInfo{}, &fakeBackend{},
		Options{Insecure: true, Overlay: &profile.Overlay{StrictSignatures: true}})

	require.Error(t, err)
}

func TestRunAur_FetchFailureIsFatal(t *testing.T) {
	p, _ := newPipeline(t)
	p.Exec = nil

	workDir := filepath.Join(t.TempDir(), "work")
	// fetchGit will fail without a real remote; assert it's surfaced as a Fetch-stage error.
	_, err := p.RunAur(context.Background(), "foo", "https://example.invalid/does-not-exist.git", workDir, &fakeBackend{}, Options{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch")
}

func TestRunTap_DiffComparesAgainstPersistedCacheAcrossInstalls(t *testing.T) {
	p, _ := newPipeline(t)

	recipeDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(recipeDir, "PKGBUILD"), []byte("pkgname=foo\npkgver=1.0\n"), 0o644))

	workDir1 := filepath.Join(t.TempDir(), "work1")
	result1, err := p.RunTap(context.Background(), "foo", recipeDir, workDir1, SignerInfo{}, &fakeBackend{}, Options{Insecure: true})
	require.NoError(t, err)
	assert.Contains(t, result1.DiffText, "+pkgname=foo")

	require.NoError(t, os.WriteFile(filepath.Join(recipeDir, "PKGBUILD"), []byte("pkgname=foo\npkgver=2.0\n"), 0o644))

	workDir2 := filepath.Join(t.TempDir(), "work2")
	result2, err := p.RunTap(context.Background(), "foo", recipeDir, workDir2, SignerInfo{}, &fakeBackend{}, Options{Insecure: true})
	require.NoError(t, err)
	assert.Contains(t, result2.DiffText, "-pkgver=1.0")
	assert.Contains(t, result2.DiffText, "+pkgver=2.0")
	assert.NotContains(t, result2.DiffText, "+pkgname=foo")
}

func TestCleanup_AlwaysRemovesWorkDir(t *testing.T) {
	p, _ := newPipeline(t)
	workDir := filepath.Join(t.TempDir(), "work")
	require.NoError(t, os.MkdirAll(workDir, 0o755))

	p.cleanup("foo", workDir)

	_, err := os.Stat(workDir)
	assert.True(t, os.IsNotExist(err))
}
