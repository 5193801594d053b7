// Package git answers questions about the git repository enclosing a
// directory, using go-git so no git binary is required.
package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Common Git errors
var (
	ErrNotAGitRepo = errors.New("not a git repository")
	ErrInvalidRepo = errors.New("invalid git repository")
)

// Client inspects the repository containing a path.
type Client struct {
	path string
}

// NewClient creates a new Git client for path. The path may be anywhere
// inside a worktree.
func NewClient(path string) *Client {
	return &Client{path: path}
}

// IsGitRepo reports whether the path is inside a git worktree.
// Returns (true, nil) if so, (false, nil) if not, (false, err) if corrupted.
func (c *Client) IsGitRepo(ctx context.Context) (bool, error) {
	_, err := c.Root(ctx)
	if errors.Is(err, ErrNotAGitRepo) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Root returns the top directory of the enclosing worktree.
func (c *Client) Root(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context cancelled: %w", err)
	}

	repo, err := gogit.PlainOpenWithOptions(c.path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		return "", ErrNotAGitRepo
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidRepo, err.Error())
	}

	worktree, err := repo.Worktree()
	if err != nil {
		// Bare repositories have no worktree to ignore files in.
		return "", ErrNotAGitRepo
	}
	return worktree.Filesystem.Root(), nil
}

// IgnoreMatcher holds the ignore rules of one worktree.
type IgnoreMatcher struct {
	root    string
	matcher gitignore.Matcher
}

// Ignores loads every .gitignore in the worktree plus .git/info/exclude.
// Directories already ignored are not searched for nested rules.
func (c *Client) Ignores(ctx context.Context) (*IgnoreMatcher, error) {
	root, err := c.Root(ctx)
	if err != nil {
		return nil, err
	}

	patterns, err := gitignore.ReadPatterns(osfs.New(root), nil)
	if err != nil {
		return nil, fmt.Errorf("read ignore patterns in %s: %w", root, err)
	}

	return &IgnoreMatcher{root: root, matcher: gitignore.NewMatcher(patterns)}, nil
}

// Root returns the worktree the rules belong to.
func (m *IgnoreMatcher) Root() string {
	return m.root
}

// Ignored reports whether git would ignore path. Paths outside the
// worktree are never ignored.
func (m *IgnoreMatcher) Ignored(path string, isDir bool) bool {
	rel, err := filepath.Rel(m.root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return m.matcher.Match(strings.Split(filepath.ToSlash(rel), "/"), isDir)
}
