package main

import (
	"testing"

	"github.com/quorumlabs/quorum/internal/gitdiff"
)

func TestBuildRequest_CountsChangedFiles(t *testing.T) {
	change := &gitdiff.Result{
		Diff: "diff --git a/main.go b/main.go\n",
		Files: map[string]string{
			"main.go": "package main\n",
			"util.go": "package main\n",
		},
		ChangedFiles: []string{"main.go", "util.go"},
		Additions:    7,
		Deletions:    2,
	}

	req := buildRequest(change, "main")

	if req.Diff != change.Diff {
		t.Error("diff not carried into the request")
	}
	if len(req.Files) != 2 {
		t.Errorf("expected 2 file contents, got %d", len(req.Files))
	}
	if req.Context.BaseBranch != "main" {
		t.Errorf("base branch = %q, want main", req.Context.BaseBranch)
	}
	if req.Context.ChangedFiles != 2 {
		t.Errorf("changed-file count = %d, want 2", req.Context.ChangedFiles)
	}
	if req.Context.Additions != 7 || req.Context.Deletions != 2 {
		t.Errorf("stats = +%d -%d, want +7 -2", req.Context.Additions, req.Context.Deletions)
	}
}

func TestBuildRequest_EmptyChange(t *testing.T) {
	req := buildRequest(&gitdiff.Result{}, "develop")
	if req.Context.ChangedFiles != 0 {
		t.Errorf("expected 0 changed files, got %d", req.Context.ChangedFiles)
	}
	if req.Context.BaseBranch != "develop" {
		t.Errorf("base branch = %q, want develop", req.Context.BaseBranch)
	}
}
