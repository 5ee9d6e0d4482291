package notes

//go:generate mockgen -typed -source=source.go -destination=./internal/mocks/mocks.go -package=mocks

import (
	"context"
	"errors"

	"github.com/yourorg/relnotes/internal/github"
)

// PageSize is the number of entries requested from every listing.
// Only the first page is ever read.
const PageSize = 100

// Source is the read-only query contract the engine needs from a
// repository hosting service.
type Source interface {
	// GetReleaseByTag returns nil and no error when the tag does not exist.
	GetReleaseByTag(ctx context.Context, tag string) (*ReleaseTag, error)
	// ListReleases returns releases most recent first.
	ListReleases(ctx context.Context, pageSize int) ([]ReleaseTag, error)
	// ListClosedPullRequests returns closed pull requests most recently updated first.
	ListClosedPullRequests(ctx context.Context, pageSize int) ([]PullRequest, error)
}

// GitHubSource adapts github.Client to Source for a single repository
type GitHubSource struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGitHubSource creates a Source backed by the GitHub REST API
func NewGitHubSource(client *github.Client, owner, repo string) *GitHubSource {
	return &GitHubSource{client: client, owner: owner, repo: repo}
}

// GetReleaseByTag implements Source.GetReleaseByTag
func (s *GitHubSource) GetReleaseByTag(ctx context.Context, tag string) (*ReleaseTag, error) {
	release, err := s.client.GetReleaseByTag(ctx, s.owner, s.repo, tag)
	if errors.Is(err, github.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ReleaseTag{Name: release.TagName, CreatedAt: release.CreatedAt}, nil
}

// ListReleases implements Source.ListReleases
func (s *GitHubSource) ListReleases(ctx context.Context, pageSize int) ([]ReleaseTag, error) {
	resp, err := s.client.ListReleases(ctx, s.owner, s.repo, pageSize, "")
	if err != nil {
		return nil, err
	}

	tags := make([]ReleaseTag, 0, len(resp.Releases))
	for _, r := range resp.Releases {
		tags = append(tags, ReleaseTag{Name: r.TagName, CreatedAt: r.CreatedAt})
	}
	return tags, nil
}

// ListClosedPullRequests implements Source.ListClosedPullRequests
func (s *GitHubSource) ListClosedPullRequests(ctx context.Context, pageSize int) ([]PullRequest, error) {
	ghPRs, err := s.client.ListClosedPullRequests(ctx, s.owner, s.repo, pageSize)
	if err != nil {
		return nil, err
	}

	prs := make([]PullRequest, 0, len(ghPRs))
	for _, p := range ghPRs {
		labels := make([]string, 0, len(p.Labels))
		for _, l := range p.Labels {
			labels = append(labels, l.Name)
		}
		prs = append(prs, PullRequest{
			Number:   p.Number,
			Title:    p.Title,
			MergedAt: p.MergedAt,
			Author:   p.User.Login,
			Labels:   labels,
			Body:     p.Body,
			URL:      p.HTMLURL,
		})
	}
	return prs, nil
}
