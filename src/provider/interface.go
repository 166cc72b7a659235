package provider

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Forge retrieves repository activity from a source forge. Every method that
// accepts a token uses it instead of the client's default credential when it
// is non-empty. Empty results are valid.
type Forge interface {
	// Issues returns the total match count and issues updated in the last
	// days, optionally limited to those involving user.
	Issues(ctx context.Context, owner, repo, user string, days int, token string) (int, []Item, error)

	// Commits returns the total match count and commits from the last days,
	// optionally limited to those authored by user.
	Commits(ctx context.Context, owner, repo, user string, days int, token string) (int, []Item, error)

	// Discussions returns the total match count and discussions updated in the
	// last days, with their comments inline.
	Discussions(ctx context.Context, owner, repo, user string, days int, token string) (int, []Item, error)

	// Comments returns the comments at an issue's comments URL.
	Comments(ctx context.Context, commentsURL string, token string) ([]Comment, error)

	// Patch returns the raw patch text for a commit's HTML URL.
	Patch(ctx context.Context, commitURL string, token string) (string, error)

	// Readme returns the decoded README, or "" if the repository has none.
	Readme(ctx context.Context, owner, repo string) (string, error)

	// Contributors returns contributor logins ordered by contribution count.
	Contributors(ctx context.Context, owner, repo string) ([]string, error)

	// CommunityProfile fails when the repository does not exist.
	CommunityProfile(ctx context.Context, owner, repo string) (*CommunityProfile, error)

	// UserProfile returns a one-line description of a user.
	UserProfile(ctx context.Context, login string) (string, error)
}

var (
	repoURLPattern  = regexp.MustCompile(`^https?://github\.com/([^/\s]+)/([^/\s]+?)(?:\.git)?/?$`)
	repoSlugPattern = regexp.MustCompile(`^([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)$`)
)

// ParseRepo accepts "owner/repo" or a github.com repository URL.
func ParseRepo(s string) (owner, repo string, err error) {
	s = strings.TrimSpace(s)
	if m := repoURLPattern.FindStringSubmatch(s); m != nil {
		return m[1], m[2], nil
	}
	if m := repoSlugPattern.FindStringSubmatch(s); m != nil {
		return m[1], m[2], nil
	}
	return "", "", fmt.Errorf("%w: %s", ErrInvalidRepo, s)
}
