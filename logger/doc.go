// Package logger provides structured logging for the site build using
// zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers (scheduler, github, feeds, ...) that carry
// structured fields such as the pipeline name or repository.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//
// # Usage
//
//	log := logger.WithComponent("github")
//	log.Info("getting GitHub issue data", logger.Fields("owner", owner, "name", name))
package logger
