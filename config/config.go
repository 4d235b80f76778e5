// Package config loads client settings from YAML files.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/kuechlerm/arkstruct/client"
	"github.com/kuechlerm/arkstruct/loadbalance"
	"github.com/kuechlerm/arkstruct/middleware"
	"github.com/kuechlerm/arkstruct/registry"
	"github.com/kuechlerm/arkstruct/transport"
)

type Config struct {
	BaseURL           string           `yaml:"base_url"`
	ErrorPolicy       string           `yaml:"error_policy"` // "message" (default) or "status"
	OmitContentType   bool             `yaml:"omit_content_type"`
	ValidateRequests  bool             `yaml:"validate_requests"`
	ValidateResponses bool             `yaml:"validate_responses"`
	Timeout           time.Duration    `yaml:"timeout"` // 0 disables the timeout middleware
	RateLimit         *RateLimitConfig `yaml:"rate_limit"`
	LogLevel          string           `yaml:"log_level"`
	Discovery         *DiscoveryConfig `yaml:"discovery"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// DiscoveryConfig replaces base_url with instances found in etcd.
type DiscoveryConfig struct {
	Endpoints []string `yaml:"endpoints"`
	Service   string   `yaml:"service"`
	Balancer  string   `yaml:"balancer"` // round_robin, weighted_random or consistent_hash
}

const DefaultService = "arkstruct"

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = zerolog.InfoLevel.String()
	}
	if c.RateLimit != nil && c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 1
	}
	if c.Discovery != nil && c.Discovery.Service == "" {
		c.Discovery.Service = DefaultService
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := transport.ParseErrorPolicy(c.ErrorPolicy); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.RateLimit != nil && c.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate_limit.rps must be positive")
	}
	if c.Discovery != nil {
		if len(c.Discovery.Endpoints) == 0 {
			return fmt.Errorf("discovery.endpoints must not be empty")
		}
		if _, err := loadbalance.New(c.Discovery.Balancer); err != nil {
			return fmt.Errorf("discovery.balancer: %w", err)
		}
	} else if c.BaseURL == "" {
		return fmt.Errorf("base_url or discovery is required")
	}
	return nil
}

// Logger returns a logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// ClientOptions translates the configuration into client options. reg is consulted only
// when discovery is configured; the resolver then follows registry updates until ctx is
// done.
func (c *Config) ClientOptions(ctx context.Context, log zerolog.Logger, reg registry.Registry) ([]client.Option, error) {
	policy, err := transport.ParseErrorPolicy(c.ErrorPolicy)
	if err != nil {
		return nil, err
	}
	opts := []client.Option{client.WithLogger(log), client.WithErrorPolicy(policy)}
	if c.OmitContentType {
		opts = append(opts, client.WithoutContentType())
	}
	if c.ValidateRequests {
		opts = append(opts, client.WithRequestValidation())
	}
	if c.ValidateResponses {
		opts = append(opts, client.WithResponseValidation())
	}
	if c.RateLimit != nil {
		opts = append(opts, client.WithMiddleware(middleware.RateLimitMiddleware(c.RateLimit.RPS, c.RateLimit.Burst)))
	}
	if c.Timeout > 0 {
		opts = append(opts, client.WithMiddleware(middleware.TimeOutMiddleware(c.Timeout)))
	}
	if c.Discovery != nil {
		if reg == nil {
			return nil, fmt.Errorf("discovery is configured but no registry was given")
		}
		bal, err := loadbalance.New(c.Discovery.Balancer)
		if err != nil {
			return nil, err
		}
		resolver := loadbalance.NewResolver(reg, bal, c.Discovery.Service)
		resolver.Watch(ctx)
		opts = append(opts, client.WithResolver(resolver))
	}
	return opts, nil
}

func noop() error { return nil }

// NewClient builds a client, connecting to etcd when discovery is configured. release
// stops watching and closes that connection, and is never nil.
func (c *Config) NewClient(log zerolog.Logger, extra ...client.Option) (cl *client.Client, release func() error, err error) {
	release = noop
	ctx := context.Background()
	var reg registry.Registry
	if c.Discovery != nil {
		etcd, err := registry.NewEtcdRegistry(c.Discovery.Endpoints)
		if err != nil {
			return nil, noop, fmt.Errorf("connecting to etcd: %w", err)
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		reg = etcd
		release = func() error {
			cancel()
			return etcd.Close()
		}
	}
	opts, err := c.ClientOptions(ctx, log, reg)
	if err != nil {
		release()
		return nil, noop, err
	}
	return client.New(c.BaseURL, append(opts, extra...)...), release, nil
}
