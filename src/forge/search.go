package forge

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"devpulse-agent/src/provider"
)

// maxSearchPages bounds search pagination to the most recent 200 results.
const maxSearchPages = 2

// since returns the start of a trailing window of days.
func (c *Client) since(days int) time.Time {
	if days <= 0 {
		days = 7
	}
	return c.now().UTC().AddDate(0, 0, -days)
}

func searchURL(base, kind, query, sort string, page int) string {
	v := url.Values{}
	v.Set("q", query)
	v.Set("sort", sort)
	v.Set("order", "desc")
	v.Set("per_page", fmt.Sprint(perPage))
	v.Set("page", fmt.Sprint(page))
	return fmt.Sprintf("%s/search/%s?%s", base, kind, v.Encode())
}

// Issues searches issues in owner/repo updated in the last days. When user is
// set only issues involving that user are returned.
func (c *Client) Issues(ctx context.Context, owner, repo, user string, days int, token string) (int, []provider.Item, error) {
	terms := []string{fmt.Sprintf("repo:%s/%s", owner, repo), "is:issue"}
	if user != "" {
		terms = append(terms, "involves:"+user)
	}
	terms = append(terms, "updated:>"+c.since(days).Format("2006-01-02T15:04:05Z"))
	query := strings.Join(terms, " ")

	var total int
	var items []provider.Item
	for page := 1; page <= maxSearchPages; page++ {
		var resp issueSearchResponse
		if err := c.getJSON(ctx, searchURL(c.baseURL, "issues", query, "updated", page), token, &resp); err != nil {
			return 0, nil, fmt.Errorf("search issues: %w", err)
		}
		total = resp.TotalCount

		for _, is := range resp.Items {
			labels := make([]string, 0, len(is.Labels))
			for _, l := range is.Labels {
				labels = append(labels, l.Name)
			}
			items = append(items, provider.Item{
				Kind:        provider.KindIssue,
				Number:      is.Number,
				Author:      is.User.Login,
				Title:       is.Title,
				Body:        deref(is.Body),
				Labels:      labels,
				APIURL:      is.URL,
				HTMLURL:     is.HTMLURL,
				CommentsURL: is.CommentsURL,
			})
		}

		if len(resp.Items) < perPage || len(items) >= total {
			break
		}
	}

	return total, items, nil
}

// Commits searches commits in owner/repo committed in the last days. When
// user is set only commits authored by that user are returned.
func (c *Client) Commits(ctx context.Context, owner, repo, user string, days int, token string) (int, []provider.Item, error) {
	terms := []string{fmt.Sprintf("repo:%s/%s", owner, repo)}
	if user != "" {
		terms = append(terms, "author:"+user)
	}
	terms = append(terms, "committer-date:>"+c.since(days).Format("2006-01-02"))
	query := strings.Join(terms, " ")

	var total int
	var items []provider.Item
	for page := 1; page <= maxSearchPages; page++ {
		var resp commitSearchResponse
		if err := c.getJSON(ctx, searchURL(c.baseURL, "commits", query, "committer-date", page), token, &resp); err != nil {
			return 0, nil, fmt.Errorf("search commits: %w", err)
		}
		total = resp.TotalCount

		for _, cm := range resp.Items {
			author := cm.Commit.Author.Name
			if cm.Author != nil && cm.Author.Login != "" {
				author = cm.Author.Login
			}
			items = append(items, provider.Item{
				Kind:    provider.KindCommit,
				SHA:     cm.SHA,
				Author:  author,
				Title:   cm.Commit.Message,
				APIURL:  cm.URL,
				HTMLURL: cm.HTMLURL,
			})
		}

		if len(resp.Items) < perPage || len(items) >= total {
			break
		}
	}

	return total, items, nil
}

// Comments fetches up to one page of comments, most recently updated first.
func (c *Client) Comments(ctx context.Context, commentsURL string, token string) ([]provider.Comment, error) {
	sep := "?"
	if strings.Contains(commentsURL, "?") {
		sep = "&"
	}
	u := fmt.Sprintf("%s%ssort=updated&direction=desc&per_page=%d", commentsURL, sep, perPage)

	var raw []apiComment
	if err := c.getJSON(ctx, u, token, &raw); err != nil {
		return nil, fmt.Errorf("fetch comments: %w", err)
	}

	comments := make([]provider.Comment, 0, len(raw))
	for _, cm := range raw {
		comments = append(comments, provider.Comment{
			Author: cm.User.Login,
			Body:   deref(cm.Body),
		})
	}
	return comments, nil
}

// Patch fetches the patch for a commit from its HTML URL.
func (c *Client) Patch(ctx context.Context, commitURL string, token string) (string, error) {
	text, err := c.getRaw(ctx, strings.TrimSuffix(commitURL, "/")+".patch", token)
	if err != nil {
		return "", fmt.Errorf("fetch patch: %w", err)
	}
	return text, nil
}
