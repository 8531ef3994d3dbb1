package site

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kbukum/sitekit/errors"
	"github.com/kbukum/sitekit/foundation"
	"github.com/kbukum/sitekit/github"
	"github.com/kbukum/sitekit/logger"
	"github.com/kbukum/sitekit/observability"
	"github.com/kbukum/sitekit/storage"
	"github.com/kbukum/sitekit/version"

	_ "github.com/kbukum/sitekit/storage/local"
	_ "github.com/kbukum/sitekit/storage/memory"
	_ "github.com/kbukum/sitekit/storage/s3"
)

// Services are the collaborators the pipelines share.
type Services struct {
	// Input holds the YAML sources.
	Input  fs.FS
	Output storage.Storage
	// Deploy is nil when no deployment target is configured.
	Deploy     storage.Storage
	Issues     github.IssueFetcher
	Foundation github.Membership
}

// NewServices builds the services described by cfg. metrics may be nil.
func NewServices(ctx context.Context, cfg *Config, log *logger.Logger, metrics *observability.Metrics) (*Services, error) {
	svc := &Services{Input: os.DirFS(cfg.InputDir)}

	out, err := storage.New(ctx, storage.Config{Provider: storage.ProviderLocal, BasePath: cfg.OutputDir}, log)
	if err != nil {
		return nil, errors.Configuration("output storage: %v", err).WithCause(err)
	}
	svc.Output = out

	if cfg.Deploy.Provider != "" {
		deploy, err := storage.New(ctx, cfg.Deploy, log)
		if err != nil {
			return nil, errors.Configuration("deploy storage: %v", err).WithCause(err)
		}
		svc.Deploy = deploy
	}

	client, err := newGitHubClient(cfg.GitHub, log, metrics)
	if err != nil {
		return nil, err
	}
	svc.Issues = client

	source, err := newFoundationSource(cfg.Foundation)
	if err != nil {
		return nil, err
	}
	if source != nil {
		svc.Foundation = foundation.NewSet(source, log)
	}
	return svc, nil
}

func newGitHubClient(cfg GitHubConfig, log *logger.Logger, metrics *observability.Metrics) (*github.Client, error) {
	opts := []github.Option{github.WithLogger(log)}
	if metrics != nil {
		opts = append(opts, github.WithMetrics(metrics))
	}
	if cfg.UsesApp() {
		key, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, errors.Configuration("github app private key: %v", err).WithCause(err)
		}
		tokens, err := github.NewAppTokenSource(github.AppConfig{
			AppID:          cfg.AppID,
			InstallationID: cfg.InstallationID,
			PrivateKey:     key,
			BaseURL:        cfg.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, github.WithTokenSource(tokens))
	} else if cfg.Token == "" {
		log.Warn("no GitHub credentials configured, requests are unauthenticated")
	}

	return github.NewClient(github.Config{
		BaseURL:     cfg.BaseURL,
		Token:       cfg.Token,
		CacheTTL:    cfg.CacheTTL,
		Timeout:     cfg.Timeout,
		MaxRetries:  cfg.MaxRetries,
		UserAgent:   version.UserAgent(ServiceName),
		RequestRate: cfg.RequestRate,
	}, opts...)
}

// newFoundationSource returns nil when no source is configured.
func newFoundationSource(cfg FoundationConfig) (foundation.Source, error) {
	switch {
	case cfg.URL != "":
		return foundation.NewHTTPSource(cfg.URL)
	case cfg.File != "":
		return &foundation.FileSource{
			FS:   os.DirFS(filepath.Dir(cfg.File)),
			Path: filepath.Base(cfg.File),
		}, nil
	default:
		return nil, nil
	}
}
