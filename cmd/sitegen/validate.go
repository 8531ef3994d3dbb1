package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/sitekit/logger"
	"github.com/kbukum/sitekit/pipeline"
	"github.com/kbukum/sitekit/site"
)

var validateCommand = &cobra.Command{
	Use:   "validate [pipelines...]",
	Short: "Check the configuration and print the execution plan",
	RunE:  runValidate,
}

var validateDeploy bool

func init() {
	validateCommand.Flags().BoolVar(&validateDeploy, "deploy", false, "Include the Deploy pipeline in the plan")

	rootCmd.AddCommand(validateCommand)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := site.NewServices(cmd.Context(), cfg, logger.GetGlobalLogger(), nil)
	if err != nil {
		return err
	}
	scheduler, err := site.NewScheduler(cfg, svc)
	if err != nil {
		return err
	}
	levels, err := scheduler.Plan(pipeline.RunOptions{Targets: args, Deploy: validateDeploy})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, level := range levels {
		fmt.Fprintf(out, "%d: %s\n", i+1, strings.Join(level, ", "))
	}
	return nil
}
