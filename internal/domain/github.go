package domain

// Repository represents a GitHub repository.
type Repository struct {
	FullName        string `json:"full_name"`
	HTMLURL         string `json:"html_url"`
	Description     string `json:"description"`
	StargazersCount int    `json:"stargazers_count"`
	ForksCount      int    `json:"forks_count"`
	OpenIssuesCount int    `json:"open_issues_count"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
	Language        string `json:"language"`
	Private         bool   `json:"private"`
}

// User represents a GitHub account.
type User struct {
	Login string `json:"login"`
}

// Label represents a GitHub issue label.
type Label struct {
	Name string `json:"name"`
}

// Issue represents a GitHub issue.
type Issue struct {
	Number    int     `json:"number"`
	Title     string  `json:"title"`
	Body      string  `json:"body"`
	HTMLURL   string  `json:"html_url"`
	User      *User   `json:"user,omitempty"`
	Labels    []Label `json:"labels"`
	CreatedAt string  `json:"created_at"`
}

// IssueCreate represents the payload for creating an issue.
type IssueCreate struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels"`
}

// Commit represents an entry of the commits listing.
type Commit struct {
	SHA     string       `json:"sha"`
	HTMLURL string       `json:"html_url"`
	Commit  CommitDetail `json:"commit"`
}

// CommitDetail holds the git-level commit data.
type CommitDetail struct {
	Message string        `json:"message"`
	Author  *CommitAuthor `json:"author,omitempty"`
}

// CommitAuthor identifies the author of a commit.
type CommitAuthor struct {
	Name string `json:"name"`
	Date string `json:"date"` // ISO 8601
}
