package github

import (
	"slices"
	"strings"
	"time"
)

// HelpWantedLabel marks issues open for outside contribution.
const HelpWantedLabel = "help wanted"

// RawIssue is an entry of GET /repos/{owner}/{name}/issues. The endpoint
// also returns pull requests, which carry a PullRequest back-reference.
type RawIssue struct {
	Number      int          `json:"number"`
	Title       string       `json:"title"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Labels      []RawLabel   `json:"labels"`
	PullRequest *PullRequest `json:"pull_request"`
	HTMLURL     string       `json:"html_url"`
}

// RawLabel is a label attached to an issue.
type RawLabel struct {
	Name string `json:"name"`
}

// PullRequest is the back-reference set on pull-request entries.
type PullRequest struct {
	URL string `json:"url"`
}

// IsPullRequest reports whether the entry is a pull request.
func (r RawIssue) IsPullRequest() bool { return r.PullRequest != nil }

// Issue is the issue record stored in document metadata.
type Issue struct {
	Number     int       `json:"number"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Labels     []string  `json:"labels"`
	Recent     bool      `json:"recent"`
	HelpWanted bool      `json:"helpWanted"`
	URL        string    `json:"url"`
}

// NewIssue builds an Issue. It is recent when created at or after anchor.
func NewIssue(raw RawIssue, anchor time.Time) Issue {
	labels := make([]string, len(raw.Labels))
	for i, l := range raw.Labels {
		labels[i] = l.Name
	}
	return Issue{
		Number:     raw.Number,
		Title:      raw.Title,
		CreatedAt:  raw.CreatedAt,
		UpdatedAt:  raw.UpdatedAt,
		Labels:     labels,
		Recent:     !raw.CreatedAt.Before(anchor),
		HelpWanted: slices.ContainsFunc(labels, isHelpWanted),
		URL:        raw.HTMLURL,
	}
}

func isHelpWanted(label string) bool {
	return strings.EqualFold(label, HelpWantedLabel)
}

// BuildIssues drops pull requests, converts the rest and sorts them by
// creation time, newest first. Issues created at the same instant keep
// their API order.
func BuildIssues(raw []RawIssue, anchor time.Time) []Issue {
	issues := make([]Issue, 0, len(raw))
	for _, r := range raw {
		if r.IsPullRequest() {
			continue
		}
		issues = append(issues, NewIssue(r, anchor))
	}
	slices.SortStableFunc(issues, func(a, b Issue) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return issues
}

// IssueCounts summarizes a set of issues.
type IssueCounts struct {
	Total      int
	Recent     int
	HelpWanted int
}

// CountIssues tallies total, recent and help-wanted issues.
func CountIssues(issues []Issue) IssueCounts {
	c := IssueCounts{Total: len(issues)}
	for _, i := range issues {
		if i.Recent {
			c.Recent++
		}
		if i.HelpWanted {
			c.HelpWanted++
		}
	}
	return c
}

// DefaultMicrosoftOwners are the GitHub organizations whose projects are
// flagged as Microsoft projects.
var DefaultMicrosoftOwners = []string{
	"aspnet",
	"azure",
	"dotnet",
	"microsoft",
	"mono",
	"nuget",
	"powershell",
	"xamarin",
}

func isMicrosoftOwner(owners []string, owner string) bool {
	return slices.ContainsFunc(owners, func(o string) bool {
		return strings.EqualFold(o, owner)
	})
}
