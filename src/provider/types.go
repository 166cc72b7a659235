package provider

// Kind is the type of activity an Item records.
type Kind string

const (
	KindIssue      Kind = "issue"
	KindCommit     Kind = "commit"
	KindDiscussion Kind = "discussion"
)

// Item is one issue, commit or discussion fetched from the forge.
type Item struct {
	Kind   Kind
	Number int
	// SHA is set for commits only.
	SHA    string
	Author string
	// Title holds the issue or discussion title, or the commit message.
	Title  string
	Body   string
	Labels []string
	// APIURL is the canonical API location; HTMLURL is what a person opens.
	APIURL      string
	HTMLURL     string
	CommentsURL string
	// Comments is filled for discussions, which arrive with their replies.
	Comments []Comment
}

// Comment is a reply on an issue or discussion.
type Comment struct {
	Author string
	Body   string
}

// CommunityProfile is the subset of the repository community profile used to
// validate a repository.
type CommunityProfile struct {
	Description string
	HasReadme   bool
}
