// Package git reads repository metadata of the project workspace.
package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gitsight/go-vcsurl"
	"github.com/go-git/go-git/v5"
)

// ErrNotRepository is returned when the project directory is not inside a git repository.
var ErrNotRepository = errors.New("project directory is not inside a git repository")

// RepositoryMetadata describes the repository a project directory belongs to.
type RepositoryMetadata struct {
	BranchName     *string
	CommitHash     *string
	RemoteURL      *string
	RepositoryName string // empty when there is no origin remote
	RepoRootFolder string
}

// CollectRepositoryMetadata collects branch, commit and origin information for projectDir.
// Parent directories are searched for the repository root.
func CollectRepositoryMetadata(projectDir string) (*RepositoryMetadata, error) {
	if projectDir == "" {
		return &RepositoryMetadata{}, fmt.Errorf("project directory is not set")
	}

	if abs, err := filepath.Abs(projectDir); err == nil {
		projectDir = abs
	}
	md := &RepositoryMetadata{RepoRootFolder: filepath.Clean(projectDir)}

	repo, err := git.PlainOpenWithOptions(projectDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return md, ErrNotRepository
		}
		return md, fmt.Errorf("failed to open repository: %w", err)
	}

	if wt, err := repo.Worktree(); err == nil {
		md.RepoRootFolder = filepath.Clean(wt.Filesystem.Root())
	}

	if head, err := repo.Head(); err == nil {
		if head.Name().IsBranch() {
			branchName := head.Name().Short()
			md.BranchName = &branchName
		}
		hash := head.Hash().String()
		md.CommitHash = &hash
	}

	if remote, err := repo.Remote("origin"); err == nil {
		if cfg := remote.Config(); cfg != nil && len(cfg.URLs) > 0 {
			remoteURL := cfg.URLs[0]
			md.RemoteURL = &remoteURL
			md.RepositoryName = RepositoryName(remoteURL)
		}
	}

	return md, nil
}

// RepositoryName extracts the repository name from a remote URL, e.g. "shop" for git@github.com:acme/shop.git.
func RepositoryName(remoteURL string) string {
	if info, err := vcsurl.Parse(remoteURL); err == nil && info.Name != "" {
		return info.Name
	}

	trimmed := strings.TrimSuffix(strings.TrimRight(strings.TrimSpace(remoteURL), "/"), ".git")
	if i := strings.LastIndexAny(trimmed, "/:"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
