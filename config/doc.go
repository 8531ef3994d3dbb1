// Package config loads build configuration from a YAML file, a .env file
// and environment variables.
//
// Values are layered: defaults, then the config file, then the environment.
// Environment variables map onto nested keys by splitting on underscores,
// so SITEGEN_GITHUB_CACHE_TTL sets github.cache_ttl when the loader runs
// with the SITEGEN prefix.
//
// # Usage
//
//	cfg, err := config.Load[site.Config]("sitegen", config.WithEnvPrefix("SITEGEN"))
//
// Load applies the struct's defaults and validates it before returning.
package config
