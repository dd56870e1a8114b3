// Package config resolves SMSGlobal connection settings and credentials from
// the environment or a YAML file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	client "github.com/lubluniky/smsglobal-client-go"
)

// EnvPrefix prefixes every environment variable, e.g. SMSGLOBAL_API_KEY.
const EnvPrefix = "SMSGLOBAL"

// Config holds everything needed to build a client.Client. Only
// SMSGLOBAL_* variables are read; bare names like PORT or HOST are ignored.
type Config struct {
	Host       string `split_words:"true" yaml:"host" default:"api.smsglobal.com"`
	Protocol   string `split_words:"true" yaml:"protocol" default:"https"`
	Port       int    `split_words:"true" yaml:"port" default:"443"`
	APIVersion string `split_words:"true" yaml:"apiVersion" default:"v2"`

	APIKey        string `split_words:"true" yaml:"apiKey"`
	SecretKey     string `split_words:"true" yaml:"secretKey"`
	HashAlgorithm string `split_words:"true" yaml:"hashAlgorithm" default:"sha256"`

	Debug bool `split_words:"true" yaml:"debug" default:"false"`
}

// New builds a Config from SMSGLOBAL_* environment variables.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.logSummary()
	return &cfg, nil
}

// LoadFile reads a YAML file on top of the environment. Keys present in the
// file win over environment values, which win over defaults.
func LoadFile(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.logSummary()
	return &cfg, nil
}

// Validate checks the fields NewClient would reject. The hash algorithm is
// left to the signer.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Protocol) {
	case "http", "https":
	default:
		return fmt.Errorf("unsupported PROTOCOL: %s", c.Protocol)
	}
	if c.Host == "" {
		return fmt.Errorf("HOST must not be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.APIKey == "" || c.SecretKey == "" {
		return fmt.Errorf("API_KEY and SECRET_KEY are required")
	}
	return nil
}

// Connection returns the connection part of the configuration.
func (c *Config) Connection() client.ConnectionConfig {
	return client.ConnectionConfig{
		Host:       c.Host,
		Protocol:   c.Protocol,
		Port:       c.Port,
		APIVersion: c.APIVersion,
	}
}

// Credentials returns the credential part of the configuration.
func (c *Config) Credentials() client.Credentials {
	return client.Credentials{
		APIKey:        c.APIKey,
		SecretKey:     c.SecretKey,
		HashAlgorithm: c.HashAlgorithm,
	}
}

// NewClient builds a client.Client from the configuration.
func (c *Config) NewClient(opts ...client.Option) (*client.Client, error) {
	if c.Debug {
		opts = append(opts, client.WithDebugLogging(true))
	}
	return client.NewClient(c.Credentials(), c.Connection(), opts...)
}

func (c *Config) logSummary() {
	if !c.Debug {
		return
	}
	log.Debug().
		Str("host", c.Host).
		Str("protocol", c.Protocol).
		Int("port", c.Port).
		Str("api_version", c.APIVersion).
		Str("hash_algorithm", c.HashAlgorithm).
		Bool("api_key_present", c.APIKey != "").
		Bool("debug", c.Debug).
		Msg("smsglobal configuration loaded")
}
