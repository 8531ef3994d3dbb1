// Command sitegen builds the site: it enriches project data with GitHub
// issues, generates the news feeds and optionally deploys the output.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kbukum/sitekit/config"
	"github.com/kbukum/sitekit/logger"
	"github.com/kbukum/sitekit/site"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "sitegen",
	Short:         "Static site data generator",
	Long:          "sitegen reads project, post and episode YAML files, enriches projects with GitHub issue data and writes JSON data files plus Atom and RSS news feeds.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: sitegen.yml or config.yml in standard locations)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig loads the configuration and initializes the global logger.
func loadConfig() (*site.Config, error) {
	var opts []config.LoaderOption
	if configPath != "" {
		opts = append(opts, config.WithConfigFile(configPath))
	}
	cfg, err := site.Load(opts...)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Logging)
	return cfg, nil
}
