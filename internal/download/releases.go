package download

import (
	"context"
	"fmt"

	"github.com/google/go-github/v80/github"
)

// Resolver looks up the newest published version of a GitHub project.
// Callers fall back to their pinned version when resolution fails, so an
// unreachable API degrades to the original scripts' hardcoded behavior.
type Resolver interface {
	LatestTag(ctx context.Context, owner, repo string) (string, error)
}

// GitHubResolver resolves versions through the GitHub releases API.
// Unauthenticated requests are fine here: a full install makes at most
// three lookups.
type GitHubResolver struct {
	client *github.Client
}

// NewGitHubResolver creates a resolver backed by api.github.com.
func NewGitHubResolver() *GitHubResolver {
	return &GitHubResolver{client: github.NewClient(nil)}
}

// LatestTag returns the tag name of the repository's latest published
// release (e.g. "v2.29.7").
func (r *GitHubResolver) LatestTag(ctx context.Context, owner, repo string) (string, error) {
	release, _, err := r.client.Repositories.GetLatestRelease(ctx, owner, repo)
	if err != nil {
		return "", fmt.Errorf("failed to resolve latest release of %s/%s: %w", owner, repo, err)
	}
	if release.GetTagName() == "" {
		return "", fmt.Errorf("latest release of %s/%s has no tag name", owner, repo)
	}
	return release.GetTagName(), nil
}

// StaticResolver always answers with fixed tags. Used in tests and as the
// implementation behind pinned-version installs.
type StaticResolver struct {
	// Tags maps "owner/repo" to the tag to return.
	Tags map[string]string
}

// LatestTag returns the configured tag or an error when none is set.
func (r *StaticResolver) LatestTag(_ context.Context, owner, repo string) (string, error) {
	if tag, ok := r.Tags[owner+"/"+repo]; ok {
		return tag, nil
	}
	return "", fmt.Errorf("no tag configured for %s/%s", owner, repo)
}
