package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Warning records a directory that failed during a discovery pass. A
// warning never aborts the pass; it is reported alongside the result.
type Warning struct {
	Path string
	Err  error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.Path, w.Err)
}

// Scanner finds project directories under a set of roots. Roots may be
// literal directories or glob patterns ("~/src/*", "/work/**").
type Scanner struct {
	Roots []string
}

// Scan walks the roots and returns every directory holding a parseable
// descriptor file. Order is deterministic: roots in configuration
// order, children in directory order.
//
// Worktree exclusion happens before the descriptor check: a linked
// working copy duplicates a repository that is (or can be) discovered
// at its primary location, so it is dropped even when it carries no
// descriptor of its own.
func (s *Scanner) Scan() ([]*Project, []Warning) {
	var projects []*Project
	var warnings []Warning
	seen := make(map[string]bool)

	for _, dir := range s.expandRoots(&warnings) {
		for _, candidate := range candidateDirs(dir) {
			abs, err := filepath.Abs(candidate)
			if err != nil {
				continue
			}
			if seen[abs] {
				continue
			}
			seen[abs] = true

			if isLinkedWorktree(abs) {
				continue
			}

			descPath := filepath.Join(abs, DescriptorFile)
			if _, err := os.Stat(descPath); err != nil {
				continue
			}
			desc, err := ReadDescriptor(descPath)
			if err != nil {
				warnings = append(warnings, Warning{Path: abs, Err: err})
				continue
			}
			projects = append(projects, projectFromDescriptor(desc, abs, false))
		}
	}
	return projects, warnings
}

// expandRoots resolves glob patterns to concrete directories.
// Non-glob roots pass through even if currently absent — a root
// appearing later is not an error now.
func (s *Scanner) expandRoots(warnings *[]Warning) []string {
	var roots []string
	for _, root := range s.Roots {
		if !strings.ContainsAny(root, "*?[{") {
			roots = append(roots, root)
			continue
		}
		base, pattern := doublestar.SplitPattern(root)
		matches, err := doublestar.Glob(os.DirFS(base), pattern)
		if err != nil {
			*warnings = append(*warnings, Warning{Path: root, Err: err})
			continue
		}
		for _, m := range matches {
			full := filepath.Join(base, m)
			if info, err := os.Stat(full); err == nil && info.IsDir() {
				roots = append(roots, full)
			}
		}
	}
	return roots
}

// candidateDirs returns the directories to check under one root: the
// root itself plus its direct children. Deeper nesting requires its
// own root (or a glob).
func candidateDirs(root string) []string {
	dirs := []string{root}
	entries, err := os.ReadDir(root)
	if err != nil {
		return dirs
	}
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		dirs = append(dirs, filepath.Join(root, e.Name()))
	}
	return dirs
}

// isLinkedWorktree reports whether dir is a secondary git working copy.
// In a linked worktree ".git" is a regular file containing a "gitdir:"
// pointer into the primary repository's .git/worktrees directory; in a
// primary working copy ".git" is a directory.
func isLinkedWorktree(dir string) bool {
	gitPath := filepath.Join(dir, ".git")
	info, err := os.Stat(gitPath)
	if err != nil || info.IsDir() {
		return false
	}
	data, err := os.ReadFile(gitPath)
	if err != nil {
		return false
	}
	target := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(string(data)), "gitdir:"))
	sep := string(filepath.Separator)
	return strings.Contains(target, sep+".git"+sep+"worktrees"+sep) ||
		strings.Contains(target, "/.git/worktrees/")
}
