package config

import (
	"github.com/kbukum/sitekit/errors"
)

// Config is implemented by configuration structs loaded with Load.
type Config interface {
	ApplyDefaults()
	Validate() error
}

// Load reads configuration for serviceName into a new T, applies its
// defaults and validates it. Validation failures are returned unchanged so
// callers see every failing field.
func Load[T any, PT interface {
	*T
	Config
}](serviceName string, opts ...LoaderOption) (*T, error) {
	cfg := new(T)
	if err := LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	PT(cfg).ApplyDefaults()
	if err := PT(cfg).Validate(); err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.Configuration("%s: %v", serviceName, err).WithCause(err)
	}
	return cfg, nil
}
