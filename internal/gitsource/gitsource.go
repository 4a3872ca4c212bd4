// Package gitsource keeps local checkouts of git repositories holding decks.
package gitsource

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"

	"github.com/conorfennell/brainstack/internal/domain"
)

// IsGitURL reports whether source names a remote repository rather than a
// local directory.
func IsGitURL(source string) bool {
	if strings.HasSuffix(source, ".git") {
		return true
	}
	u, err := url.Parse(source)
	if err == nil && (u.Scheme == "https" || u.Scheme == "http" || u.Scheme == "ssh" || u.Scheme == "git") {
		return true
	}
	return strings.HasPrefix(source, "git@")
}

// LocalPath maps a repository URL to a directory under baseDir, keyed by host
// and repository path. Both https and scp-like ssh URLs are understood. The
// result never leaves baseDir.
func LocalPath(baseDir, repoURL string) (string, error) {
	host, repoPath, err := splitURL(repoURL)
	if err != nil {
		return "", err
	}
	for _, segment := range append([]string{host}, strings.Split(repoPath, "/")...) {
		if segment == "" || segment == "." || segment == ".." {
			return "", fmt.Errorf("%w: unsafe git URL: %s", domain.ErrInvalidInput, repoURL)
		}
	}

	p := filepath.Join(baseDir, host, filepath.FromSlash(repoPath))
	rel, err := filepath.Rel(baseDir, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: unsafe git URL: %s", domain.ErrInvalidInput, repoURL)
	}
	return p, nil
}

// splitURL returns the host and the slash-separated repository path of
// repoURL without a trailing ".git".
func splitURL(repoURL string) (string, string, error) {
	u, err := url.Parse(repoURL)
	if err == nil && u.Host != "" && u.Scheme != "" {
		repoPath := strings.TrimSuffix(strings.Trim(u.Path, "/"), ".git")
		if repoPath == "" {
			return "", "", fmt.Errorf("%w: could not parse git URL: %s", domain.ErrInvalidInput, repoURL)
		}
		return u.Hostname(), repoPath, nil
	}

	// git@host:owner/repo.git
	userHost, repoPath, ok := strings.Cut(repoURL, ":")
	if !ok {
		return "", "", fmt.Errorf("%w: could not parse git URL: %s", domain.ErrInvalidInput, repoURL)
	}
	_, host, ok := strings.Cut(userHost, "@")
	repoPath = strings.TrimSuffix(strings.Trim(repoPath, "/"), ".git")
	if !ok || host == "" || repoPath == "" {
		return "", "", fmt.Errorf("%w: could not parse git URL: %s", domain.ErrInvalidInput, repoURL)
	}
	return host, repoPath, nil
}

// Sync clones a git repository if it doesn't exist at the given path,
// or pulls the latest changes if it does.
func Sync(ctx context.Context, log *zap.Logger, repoURL, localPath string) error {
	_, err := os.Stat(localPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Info("cloning repository", zap.String("url", repoURL), zap.String("path", localPath))
		if _, err := git.PlainCloneContext(ctx, localPath, false, &git.CloneOptions{URL: repoURL}); err != nil {
			return fmt.Errorf("failed to clone repo %s: %w", repoURL, err)
		}
	case err == nil:
		log.Info("pulling repository", zap.String("path", localPath))
		repo, err := git.PlainOpen(localPath)
		if err != nil {
			return fmt.Errorf("failed to open existing repo at %s: %w", localPath, err)
		}
		worktree, err := repo.Worktree()
		if err != nil {
			return fmt.Errorf("failed to get worktree for repo at %s: %w", localPath, err)
		}
		err = worktree.PullContext(ctx, &git.PullOptions{RemoteName: "origin"})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return fmt.Errorf("failed to pull changes for repo at %s: %w", localPath, err)
		}
	default:
		return fmt.Errorf("error checking path %s: %w", localPath, err)
	}
	return nil
}
