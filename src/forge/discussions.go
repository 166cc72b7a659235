package forge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"devpulse-agent/src/provider"
)

const discussionQuery = `query($q: String!, $first: Int!) {
  search(query: $q, type: DISCUSSION, first: $first) {
    discussionCount
    nodes {
      ... on Discussion {
        number
        title
        body
        url
        author { login }
        comments(first: 50) {
          nodes {
            author { login }
            body
          }
        }
      }
    }
  }
}`

// Discussions searches discussions in owner/repo updated in the last days
// through the GraphQL API. Comments are returned inline on each item.
func (c *Client) Discussions(ctx context.Context, owner, repo, user string, days int, token string) (int, []provider.Item, error) {
	terms := []string{fmt.Sprintf("repo:%s/%s", owner, repo)}
	if user != "" {
		terms = append(terms, "involves:"+user)
	}
	terms = append(terms, "updated:>"+c.since(days).Format("2006-01-02"))

	payload := graphqlRequest{
		Query: discussionQuery,
		Variables: map[string]any{
			"q":     strings.Join(terms, " "),
			"first": perPage,
		},
	}

	var resp discussionSearchResponse
	if err := c.postJSON(ctx, c.baseURL+"/graphql", token, payload, &resp); err != nil {
		return 0, nil, fmt.Errorf("search discussions: %w", err)
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return 0, nil, fmt.Errorf("search discussions: %w", errors.New(strings.Join(msgs, "; ")))
	}

	search := resp.Data.Search
	items := make([]provider.Item, 0, len(search.Nodes))
	for _, n := range search.Nodes {
		// non-discussion nodes decode empty
		if n.URL == "" {
			continue
		}
		item := provider.Item{
			Kind:    provider.KindDiscussion,
			Number:  n.Number,
			Title:   n.Title,
			Body:    n.Body,
			HTMLURL: n.URL,
			APIURL:  n.URL,
		}
		if n.Author != nil {
			item.Author = n.Author.Login
		}
		for _, cm := range n.Comments.Nodes {
			comment := provider.Comment{Body: cm.Body}
			if cm.Author != nil {
				comment.Author = cm.Author.Login
			}
			item.Comments = append(item.Comments, comment)
		}
		items = append(items, item)
	}

	return search.DiscussionCount, items, nil
}
