package document

// Well-known metadata keys. The comment on each key names the Value kind
// stored under it.
const (
	// Title is a String.
	Title = "Title"
	// Description is a String.
	Description = "Description"
	// Author is a String.
	Author = "Author"
	// Link is a String holding an absolute URL.
	Link = "Link"
	// Published is a Time.
	Published = "Published"
	// SourceCode is a String holding the repository URL of a project.
	SourceCode = "SourceCode"

	// GitHubOwner is a String.
	GitHubOwner = "GitHubOwner"
	// GitHubName is a String.
	GitHubName = "GitHubName"
	// Issues is Records holding []github.Issue sorted by creation, newest first.
	Issues = "Issues"
	// IssuesCount is an Int.
	IssuesCount = "IssuesCount"
	// RecentIssuesCount is an Int.
	RecentIssuesCount = "RecentIssuesCount"
	// HelpWantedIssuesCount is an Int.
	HelpWantedIssuesCount = "HelpWantedIssuesCount"
	// Microsoft is a Bool.
	Microsoft = "Microsoft"
	// Foundation is a Bool.
	Foundation = "Foundation"

	// FeedItem is Any holding a feeds.FeedItem.
	FeedItem = "FeedItem"
)
