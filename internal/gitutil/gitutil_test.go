package gitutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

var testSignature = object.Signature{
	Name:  "reap test",
	Email: "test@example.invalid",
	When:  time.Unix(1700000000, 0),
}

// newLocalRepo creates a git repository on disk with one committed file,
// suitable for use as a Clone/Fetch source via a plain filesystem path.
func newLocalRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "PKGBUILD"), []byte("pkgname=foo\n"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("PKGBUILD")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &testSignature,
	})
	require.NoError(t, err)

	return dir
}

func TestCloneAndFetch(t *testing.T) {
	src := newLocalRepo(t)
	dst := filepath.Join(t.TempDir(), "clone")

	require.NoError(t, Clone(dst, src))
	require.FileExists(t, filepath.Join(dst, "PKGBUILD"))

	// Cloning again onto the same directory is a no-op, not an error.
	require.NoError(t, Clone(dst, src))

	require.NoError(t, Fetch(dst))
}

func TestFastForward_UpToDateIsNotAnError(t *testing.T) {
	src := newLocalRepo(t)
	dst := filepath.Join(t.TempDir(), "clone")
	require.NoError(t, Clone(dst, src))

	require.NoError(t, FastForward(dst))
}
