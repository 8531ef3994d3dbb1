// Package github enriches project documents with issue data from the GitHub
// REST API.
//
// Client fetches every issue of a repository, following Link pagination.
// Concurrent requests for the same repository share one fetch, successful
// results are cached for a configurable TTL, transient failures are retried
// with backoff, and an exhausted quota is waited out on the client's clock
// before the same page is requested again.
//
// IssueEnricher is the pipeline module that turns a project's SourceCode URL
// into issue metadata. Credentials are either a personal access token or a
// GitHub App installation (AppTokenSource).
package github
