package site

import (
	"github.com/kbukum/sitekit/feeds"
	"github.com/kbukum/sitekit/github"
	"github.com/kbukum/sitekit/pipeline"
)

// Pipeline names.
const (
	Projects = "Projects"
	Posts    = "Posts"
	Episodes = "Episodes"
	NewsFeed = "NewsFeed"
	Deploy   = "Deploy"
)

// Pipelines returns the site's pipelines. Deploy is included only when svc
// has a deployment target.
func Pipelines(cfg *Config, svc *Services) []*pipeline.Pipeline {
	enricherOpts := []github.EnricherOption{github.WithParallelism(cfg.DocumentParallelism)}
	if svc.Foundation != nil {
		enricherOpts = append(enricherOpts, github.WithFoundation(svc.Foundation))
	}
	if len(cfg.GitHub.MicrosoftOwners) > 0 {
		enricherOpts = append(enricherOpts, github.WithMicrosoftOwners(cfg.GitHub.MicrosoftOwners...))
	}

	pipelines := []*pipeline.Pipeline{
		{
			Name:         Projects,
			InputModules: []pipeline.Module{pipeline.ReadFiles(svc.Input, "projects/**/*.yml", "projects/**/*.yaml")},
			ProcessModules: []pipeline.Module{
				github.NewIssueEnricher(svc.Issues, enricherOpts...),
				pipeline.RenderJSON(),
				pipeline.SetDestination(pipeline.ReplaceExtension(".json")),
			},
			OutputModules: []pipeline.Module{pipeline.WriteFiles(svc.Output)},
		},
		{
			Name:           Posts,
			InputModules:   []pipeline.Module{pipeline.ReadFiles(svc.Input, "posts/**/*.yml", "posts/**/*.yaml")},
			ProcessModules: []pipeline.Module{feeds.Project()},
			ReadOnly:       true,
		},
		{
			Name:           Episodes,
			InputModules:   []pipeline.Module{pipeline.ReadFiles(svc.Input, "episodes/**/*.yml", "episodes/**/*.yaml")},
			ProcessModules: []pipeline.Module{feeds.Project()},
			ReadOnly:       true,
		},
		{
			Name:         NewsFeed,
			Dependencies: []string{Posts, Episodes},
			InputModules: []pipeline.Module{pipeline.ReplaceDocuments(Posts, Episodes)},
			ProcessModules: []pipeline.Module{
				pipeline.Filter(feeds.IsRecent),
				pipeline.OrderDocuments(feeds.ByPublished).Descending(),
				feeds.NewGenerator(feeds.Config{
					AtomPath:    cfg.Feeds.AtomPath,
					RSSPath:     cfg.Feeds.RSSPath,
					Title:       cfg.Feeds.Title,
					Description: cfg.Feeds.Description,
					Link:        cfg.Site.Link,
				}),
			},
			OutputModules: []pipeline.Module{pipeline.WriteFiles(svc.Output)},
		},
	}

	if svc.Deploy != nil {
		pipelines = append(pipelines, &pipeline.Pipeline{
			Name:          Deploy,
			InputModules:  []pipeline.Module{pipeline.ReadStorage(svc.Output, "")},
			OutputModules: []pipeline.Module{pipeline.WriteFiles(svc.Deploy)},
			Deployment:    true,
		})
	}
	return pipelines
}

// NewScheduler registers the site's pipelines with a scheduler configured
// from cfg. opts are applied after the configured ones.
func NewScheduler(cfg *Config, svc *Services, opts ...pipeline.Option) (*pipeline.Scheduler, error) {
	base := []pipeline.Option{
		pipeline.WithMaxParallel(cfg.MaxParallel),
		pipeline.WithSettings(pipeline.Settings{Validate: cfg.Validate}),
	}
	s := pipeline.NewScheduler(append(base, opts...)...)
	if err := s.Register(Pipelines(cfg, svc)...); err != nil {
		return nil, err
	}
	return s, nil
}
