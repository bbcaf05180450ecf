package gitsource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// Ref points at a deck file inside a git repository, written as
// <repo-url>//<path-in-repo>.
type Ref struct {
	URL  string
	Path string
}

// ParseRef splits a deck argument into a repository URL and a file path.
// ok is false when s is not a git reference.
func ParseRef(s string) (ref Ref, ok bool) {
	offset := 0
	if i := strings.Index(s, "://"); i >= 0 {
		offset = i + len("://")
	} else if !strings.Contains(s, "@") {
		return Ref{}, false
	}

	i := strings.Index(s[offset:], "//")
	if i < 0 {
		return Ref{}, false
	}
	repo := s[:offset+i]
	path := strings.TrimLeft(s[offset+i+2:], "/")
	if repo == "" || path == "" {
		return Ref{}, false
	}
	return Ref{URL: repo, Path: path}, true
}

// LocalPath maps a repository URL to a directory under baseDir, keyed by
// host and repository path.
func LocalPath(baseDir, repoURL string) (string, error) {
	parsedURL, err := url.Parse(repoURL)
	if err == nil && (parsedURL.Scheme == "https" || parsedURL.Scheme == "http" ||
		parsedURL.Scheme == "ssh" || parsedURL.Scheme == "file") {
		sanitizedPath := strings.TrimSuffix(parsedURL.Path, ".git")
		return filepath.Join(baseDir, parsedURL.Host, filepath.FromSlash(sanitizedPath)), nil
	}

	// scp-like syntax: user@host:path/repo.git
	if strings.Contains(repoURL, "@") {
		parts := strings.SplitN(repoURL, ":", 2)
		if len(parts) == 2 {
			hostAndUser := strings.Split(parts[0], "@")
			if len(hostAndUser) == 2 {
				host := hostAndUser[1]
				repoPath := strings.TrimSuffix(parts[1], ".git")
				return filepath.Join(baseDir, host, filepath.FromSlash(repoPath)), nil
			}
		}
	}
	return "", fmt.Errorf("could not parse git URL: %s", repoURL)
}

// Sync clones a git repository if it doesn't exist at the given path,
// or pulls the latest changes if it does.
func Sync(ctx context.Context, repoURL, localPath string, logger *slog.Logger) error {
	_, err := os.Stat(localPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("cloning deck repository", "url", repoURL, "path", localPath)
		_, err := git.PlainCloneContext(ctx, localPath, false, &git.CloneOptions{URL: repoURL})
		if err != nil {
			_ = os.RemoveAll(localPath)
			return fmt.Errorf("failed to clone repo %s: %w", repoURL, err)
		}

	case err == nil:
		logger.Info("pulling deck repository", "url", repoURL, "path", localPath)
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

// Fetcher resolves git deck references to files in a local checkout cache.
type Fetcher struct {
	BaseDir string
	Logger  *slog.Logger
}

// Fetch brings the repository of ref up to date under BaseDir and returns the
// local path of the referenced file.
func (f *Fetcher) Fetch(ctx context.Context, ref Ref) (string, error) {
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}

	repoDir, err := LocalPath(f.BaseDir, ref.URL)
	if err != nil {
		return "", err
	}
	if err := Sync(ctx, ref.URL, repoDir, logger); err != nil {
		return "", err
	}

	path := filepath.Join(repoDir, filepath.FromSlash(ref.Path))
	if rel, err := filepath.Rel(repoDir, path); err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("deck path %s escapes repository %s", ref.Path, ref.URL)
	}
	return path, nil
}
