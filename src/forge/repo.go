package forge

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"devpulse-agent/src/provider"
)

// maxContributorPages caps contributor pagination at 5000 logins.
const maxContributorPages = 50

// CommunityProfile fetches the repository community profile. A missing
// profile means the repository does not exist or is not visible.
func (c *Client) CommunityProfile(ctx context.Context, owner, repo string) (*provider.CommunityProfile, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/community/profile", c.baseURL, owner, repo)

	var raw apiCommunityProfile
	if err := c.getJSON(ctx, url, "", &raw); err != nil {
		return nil, fmt.Errorf("community profile: %w", err)
	}

	return &provider.CommunityProfile{
		Description: deref(raw.Description),
		HasReadme:   raw.Files.Readme != nil && raw.Files.Readme.URL != nil,
	}, nil
}

// Readme fetches and decodes the repository README. A repository without one
// yields "".
func (c *Client) Readme(ctx context.Context, owner, repo string) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/readme", c.baseURL, owner, repo)

	var raw apiReadme
	if err := c.getJSON(ctx, url, "", &raw); err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			return "", fmt.Errorf("readme for %s/%s: %w", owner, repo, provider.ErrNoContent)
		}
		return "", fmt.Errorf("readme: %w", err)
	}

	content := raw.Content
	if raw.Encoding == "base64" {
		// GitHub wraps base64 content at 60 columns.
		decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(raw.Content, "\n", ""))
		if err != nil {
			return "", fmt.Errorf("decode readme: %w", err)
		}
		content = string(decoded)
	}
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("readme for %s/%s: %w", owner, repo, provider.ErrNoContent)
	}
	return content, nil
}

// Contributors lists contributor logins, most active first.
func (c *Client) Contributors(ctx context.Context, owner, repo string) ([]string, error) {
	var logins []string

	for page := 1; page <= maxContributorPages; page++ {
		url := fmt.Sprintf("%s/repos/%s/%s/contributors?per_page=%d&page=%d",
			c.baseURL, owner, repo, perPage, page)

		var users []apiUser
		if err := c.getJSON(ctx, url, "", &users); err != nil {
			return nil, fmt.Errorf("contributors: %w", err)
		}

		for _, u := range users {
			if u.Login != "" {
				logins = append(logins, u.Login)
			}
		}

		if len(users) < perPage {
			break
		}
	}

	return logins, nil
}

// UserProfile renders a user's public profile on one line.
func (c *Client) UserProfile(ctx context.Context, login string) (string, error) {
	url := fmt.Sprintf("%s/users/%s", c.baseURL, login)

	var p apiProfile
	if err := c.getJSON(ctx, url, "", &p); err != nil {
		return "", fmt.Errorf("user profile: %w", err)
	}

	var parts []string
	add := func(label, value string) {
		if value != "" {
			parts = append(parts, label+": "+value)
		}
	}
	add("Login", p.Login)
	add("Name", deref(p.Name))
	add("Url", p.HTMLURL)
	add("Twitter", deref(p.Twitter))
	add("Bio", deref(p.Bio))
	add("Company", deref(p.Company))
	add("Location", deref(p.Location))
	if t, err := time.Parse(time.RFC3339, p.CreatedAt); err == nil {
		add("Created At", t.Format("2006-01-02"))
	}
	add("Email", deref(p.Email))

	return strings.Join(parts, ", "), nil
}
