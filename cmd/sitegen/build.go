package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/sitekit/logger"
	"github.com/kbukum/sitekit/pipeline"
	"github.com/kbukum/sitekit/site"
)

var buildCommand = &cobra.Command{
	Use:   "build [pipelines...]",
	Short: "Run the build pipelines",
	Long: `Runs the named pipelines and everything they depend on. Without arguments
every pipeline that is not manual runs.

--deploy additionally runs the Deploy pipeline after all others.
--validate reads and checks every input without calling GitHub.`,
	RunE: runBuild,
}

var (
	buildDeploy   bool
	buildValidate bool
)

func init() {
	buildCommand.Flags().BoolVar(&buildDeploy, "deploy", false, "Deploy the generated output")
	buildCommand.Flags().BoolVar(&buildValidate, "validate", false, "Validate inputs without calling external services")

	rootCmd.AddCommand(buildCommand)
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if buildValidate {
		cfg.Validate = true
	}
	log := logger.GetGlobalLogger()

	tel, err := startTelemetry(ctx, cfg)
	if err != nil {
		return err
	}
	defer tel.shutdown(log)

	svc, err := site.NewServices(ctx, cfg, log, tel.metrics)
	if err != nil {
		return err
	}
	opts := []pipeline.Option{pipeline.WithLogger(log)}
	if tel.metrics != nil {
		opts = append(opts, pipeline.WithMetrics(tel.metrics))
	}
	scheduler, err := site.NewScheduler(cfg, svc, opts...)
	if err != nil {
		return err
	}

	res, err := scheduler.Run(ctx, pipeline.RunOptions{Targets: args, Deploy: buildDeploy})
	if err != nil {
		return err
	}
	log.Info("site built", logger.Fields(
		"pipelines", res.Order,
		logger.FieldDuration, res.Duration.Milliseconds(),
	))
	return nil
}
