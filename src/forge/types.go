package forge

// apiUser is the account object embedded in most GitHub payloads.
type apiUser struct {
	Login string `json:"login"`
}

type apiLabel struct {
	Name string `json:"name"`
}

// apiIssue is an issue as returned by the search API.
type apiIssue struct {
	Number      int        `json:"number"`
	Title       string     `json:"title"`
	Body        *string    `json:"body"`
	User        apiUser    `json:"user"`
	Labels      []apiLabel `json:"labels"`
	URL         string     `json:"url"`
	HTMLURL     string     `json:"html_url"`
	CommentsURL string     `json:"comments_url"`
}

type issueSearchResponse struct {
	TotalCount int        `json:"total_count"`
	Items      []apiIssue `json:"items"`
}

// apiCommit is a commit as returned by the search API.
type apiCommit struct {
	SHA     string   `json:"sha"`
	URL     string   `json:"url"`
	HTMLURL string   `json:"html_url"`
	Author  *apiUser `json:"author"`
	Commit  struct {
		Message string `json:"message"`
		Author  struct {
			Name string `json:"name"`
		} `json:"author"`
	} `json:"commit"`
}

type commitSearchResponse struct {
	TotalCount int         `json:"total_count"`
	Items      []apiCommit `json:"items"`
}

type apiComment struct {
	User apiUser `json:"user"`
	Body *string `json:"body"`
}

type apiReadme struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type apiCommunityProfile struct {
	Description *string `json:"description"`
	Files       struct {
		Readme *struct {
			URL *string `json:"url"`
		} `json:"readme"`
	} `json:"files"`
}

type apiProfile struct {
	Login     string  `json:"login"`
	Name      *string `json:"name"`
	HTMLURL   string  `json:"html_url"`
	Twitter   *string `json:"twitter_username"`
	Bio       *string `json:"bio"`
	Company   *string `json:"company"`
	Location  *string `json:"location"`
	Email     *string `json:"email"`
	CreatedAt string  `json:"created_at"`
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type discussionSearchResponse struct {
	Data struct {
		Search struct {
			DiscussionCount int `json:"discussionCount"`
			Nodes           []struct {
				Number int    `json:"number"`
				Title  string `json:"title"`
				Body   string `json:"body"`
				URL    string `json:"url"`
				Author *struct {
					Login string `json:"login"`
				} `json:"author"`
				Comments struct {
					Nodes []struct {
						Author *struct {
							Login string `json:"login"`
						} `json:"author"`
						Body string `json:"body"`
					} `json:"nodes"`
				} `json:"comments"`
			} `json:"nodes"`
		} `json:"search"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
