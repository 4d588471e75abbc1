// Package gitdiff collects the change set a review runs against.
package gitdiff

import (
	"fmt"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// maxFileBytes caps the per-file content shipped to reviewers. Larger files
// are listed in the diff but their full content is omitted.
const maxFileBytes = 64 * 1024

// Result is the collected change set between the base ref and HEAD.
type Result struct {
	// Diff is the unified diff from the merge base to HEAD.
	Diff string
	// Files maps changed file paths to their content at HEAD. Deleted
	// files and files over the size cap are absent.
	Files map[string]string
	// ChangedFiles lists all changed paths, sorted.
	ChangedFiles []string
	// Additions and Deletions are aggregate line counts.
	Additions int
	Deletions int
}

// Empty reports whether the change set has no changes.
func (r *Result) Empty() bool {
	return len(r.ChangedFiles) == 0
}

// Root returns the worktree root of the repository containing path.
func Root(path string) (string, error) {
	repo, err := open(path)
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to resolve worktree: %w", err)
	}
	return wt.Filesystem.Root(), nil
}

// Collect computes the change set between baseRef and HEAD in the
// repository containing path. The diff is taken from the merge base, so
// commits on the base branch after the fork point are not attributed to
// the change under review.
func Collect(path, baseRef string) (*Result, error) {
	repo, err := open(path)
	if err != nil {
		return nil, err
	}

	baseHash, err := repo.ResolveRevision(plumbing.Revision(baseRef))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base ref %q: %w", baseRef, err)
	}
	baseCommit, err := repo.CommitObject(*baseHash)
	if err != nil {
		return nil, fmt.Errorf("failed to load base commit: %w", err)
	}

	headRef, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	headCommit, err := repo.CommitObject(headRef.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to load HEAD commit: %w", err)
	}

	from := baseCommit
	if baseCommit.Hash != headCommit.Hash {
		mergeBases, err := baseCommit.MergeBase(headCommit)
		if err == nil && len(mergeBases) > 0 {
			from = mergeBases[0]
		}
	}

	patch, err := from.Patch(headCommit)
	if err != nil {
		return nil, fmt.Errorf("failed to compute diff: %w", err)
	}

	result := &Result{
		Diff:  patch.String(),
		Files: make(map[string]string),
	}

	for _, stat := range patch.Stats() {
		result.Additions += stat.Addition
		result.Deletions += stat.Deletion
	}

	headTree, err := headCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load HEAD tree: %w", err)
	}

	seen := make(map[string]bool)
	for _, fp := range patch.FilePatches() {
		fromFile, toFile := fp.Files()
		for _, f := range []diff.File{fromFile, toFile} {
			if f == nil {
				continue
			}
			if p := f.Path(); p != "" && !seen[p] {
				seen[p] = true
				result.ChangedFiles = append(result.ChangedFiles, p)
			}
		}
		if toFile == nil {
			continue // deleted file, no content at HEAD
		}
		if content, ok := fileContents(headTree, toFile.Path()); ok {
			result.Files[toFile.Path()] = content
		}
	}
	sort.Strings(result.ChangedFiles)

	return result, nil
}

// fileContents reads a file from the tree, skipping binaries and files
// over the size cap.
func fileContents(tree *object.Tree, path string) (string, bool) {
	f, err := tree.File(path)
	if err != nil {
		return "", false
	}
	if f.Size > maxFileBytes {
		return "", false
	}
	if isBinary, err := f.IsBinary(); err != nil || isBinary {
		return "", false
	}
	content, err := f.Contents()
	if err != nil {
		return "", false
	}
	return content, true
}

func open(path string) (*gogit.Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if err == gogit.ErrRepositoryNotExists {
			return nil, fmt.Errorf("not inside a git repository: %s", path)
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	return repo, nil
}

// Summary returns a one-line description of the change set.
func (r *Result) Summary() string {
	if r.Empty() {
		return "no changes"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d file", len(r.ChangedFiles))
	if len(r.ChangedFiles) != 1 {
		b.WriteString("s")
	}
	fmt.Fprintf(&b, " changed, +%d -%d", r.Additions, r.Deletions)
	return b.String()
}
