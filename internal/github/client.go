// Package github provides GitHub PR context and comment posting.
package github

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	gogithub "github.com/google/go-github/v69/github"
	"golang.org/x/oauth2"

	"github.com/quorumlabs/quorum/internal/domain"
)

// ErrNoToken indicates no GitHub token is available in the environment.
var ErrNoToken = errors.New("no GitHub token found (set GITHUB_TOKEN or GH_TOKEN)")

// Client wraps the GitHub API for a single repository.
type Client struct {
	api   *gogithub.Client
	owner string
	repo  string
}

// ParseRepo splits an "owner/name" slug.
func ParseRepo(slug string) (owner, name string, err error) {
	parts := strings.Split(strings.TrimSpace(slug), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q, expected owner/name", slug)
	}
	return parts[0], parts[1], nil
}

// tokenFromEnv reads the GitHub token, trying GITHUB_TOKEN then GH_TOKEN.
func tokenFromEnv() string {
	if t := os.Getenv("GITHUB_TOKEN"); t != "" {
		return t
	}
	return os.Getenv("GH_TOKEN")
}

// NewClient creates an authenticated client for the given "owner/name" slug.
func NewClient(ctx context.Context, slug string) (*Client, error) {
	owner, name, err := ParseRepo(slug)
	if err != nil {
		return nil, err
	}

	token := tokenFromEnv()
	if token == "" {
		return nil, ErrNoToken
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(ctx, ts)

	return &Client{
		api:   gogithub.NewClient(httpClient),
		owner: owner,
		repo:  name,
	}, nil
}

// Repo returns the "owner/name" slug the client is bound to.
func (c *Client) Repo() string {
	return c.owner + "/" + c.repo
}

// PRContext fetches pull request metadata for the review prompt.
func (c *Client) PRContext(ctx context.Context, number int) (domain.ReviewContext, error) {
	pr, _, err := c.api.PullRequests.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		return domain.ReviewContext{}, fmt.Errorf("failed to fetch PR #%d: %w", number, err)
	}

	rc := domain.ReviewContext{
		Repo:        c.Repo(),
		PRNumber:    number,
		Title:       pr.GetTitle(),
		Description: pr.GetBody(),
		BaseBranch:  pr.GetBase().GetRef(),
		HeadBranch:  pr.GetHead().GetRef(),
		Author:      pr.GetUser().GetLogin(),
		Additions:   pr.GetAdditions(),
		Deletions:   pr.GetDeletions(),
	}
	for _, label := range pr.Labels {
		rc.Labels = append(rc.Labels, label.GetName())
	}

	files, err := c.changedFiles(ctx, number)
	if err != nil {
		return domain.ReviewContext{}, err
	}
	rc.ChangedFiles = len(files)

	return rc, nil
}

// changedFiles lists all changed paths in the PR, following pagination.
func (c *Client) changedFiles(ctx context.Context, number int) ([]string, error) {
	var paths []string
	opts := &gogithub.ListOptions{PerPage: 100}
	for {
		files, resp, err := c.api.PullRequests.ListFiles(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list PR #%d files: %w", number, err)
		}
		for _, f := range files {
			paths = append(paths, f.GetFilename())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return paths, nil
}

// PostComment posts a review comment on the pull request.
func (c *Client) PostComment(ctx context.Context, number int, body string) error {
	comment := &gogithub.IssueComment{Body: gogithub.Ptr(body)}
	if _, _, err := c.api.Issues.CreateComment(ctx, c.owner, c.repo, number, comment); err != nil {
		return fmt.Errorf("failed to post comment on PR #%d: %w", number, err)
	}
	return nil
}
