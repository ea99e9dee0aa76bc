// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// Provider loads configuration from explicit options.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
}

type fileProvider struct{}

// NewProvider creates a provider that reads config files and the environment.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, _, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Static returns a provider that always yields cfg.
func Static(cfg *Config) Provider {
	return staticProvider{cfg: cfg}
}

type staticProvider struct{ cfg *Config }

func (p staticProvider) Load(context.Context, LoadOptions) (*Config, error) {
	c := *p.cfg
	c.Oracle.Types = append([]string(nil), p.cfg.Oracle.Types...)
	return &c, nil
}
