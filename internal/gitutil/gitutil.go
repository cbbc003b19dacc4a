// Package gitutil wraps go-git clone/fetch operations shared by the Tap
// Registry (cloning a tap's repository) and the Build Pipeline (fetching
// an AUR package's recipe repository), avoiding a shell-out to the git
// binary. It only handles the plain-HTTPS case reap's two callers need;
// taps and AUR recipes are always fetched over HTTPS, so there's no SSH
// key fallback.
package gitutil

import (
	"errors"
	"fmt"

	git "github.com/go-git/go-git/v5"
)

// Clone clones url into dir. If dir already holds a repository, Clone is a
// no-op (callers that want fresh state should call Fetch instead).
func Clone(dir, url string) error {
	_, err := git.PlainClone(dir, false, &git.CloneOptions{URL: url})
	if errors.Is(err, git.ErrRepositoryAlreadyExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("clone %s: %w", url, err)
	}
	return nil
}

// Fetch downloads new objects and refs from the origin remote into the
// repository at dir without touching its worktree, returning nil if it is
// already up to date.
func Fetch(dir string) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("open %s: %w", dir, err)
	}

	err = repo.Fetch(&git.FetchOptions{})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch %s: %w", dir, err)
	}
	return nil
}

// FastForward merges the origin's default branch into the worktree at dir,
// failing (rather than merging) if the local branch has diverged — the
// Tap Registry treats a failed fast-forward as a per-tap warning, never
// fatal to the overall sync.
func FastForward(dir string) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("open %s: %w", dir, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("worktree %s: %w", dir, err)
	}

	err = wt.Pull(&git.PullOptions{})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("fast-forward %s: %w", dir, err)
	}
	return nil
}
