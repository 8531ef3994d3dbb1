// Package site assembles the sitegen build: configuration, the services the
// pipelines share, and the pipelines themselves.
//
// Projects reads project YAML, enriches it with GitHub issue data and writes
// one JSON file per project. Posts and Episodes read feed entries that
// NewsFeed merges into the Atom and RSS news feeds. Deploy copies the
// generated output to the deployment storage and only runs when asked to.
package site
