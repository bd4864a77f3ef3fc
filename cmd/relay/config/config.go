// Package config loads the relay configuration.
//
// Supported configuration sources (in order of precedence):
//  1. Command-line flags
//  2. Environment variables
//  3. Config file (-config-file, any format viper reads: YAML, TOML, JSON)
//  4. Default values
//
// Keys are the flag names, so a YAML file uses e.g. `upstream-url: https://...`.
//
// Example usage:
//
//	cfg, err := config.Load(os.Args[1:])
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/HatiCode/fwirelay/pkg/logger"
	"github.com/HatiCode/fwirelay/pkg/relay"
	"github.com/HatiCode/fwirelay/pkg/tls"
)

// DefaultUpstreamURL is the hosted prediction service.
const DefaultUpstreamURL = "https://algerian-forest-fire-prediction-3cpe.onrender.com"

// Config holds all relay configuration.
type Config struct {
	ConfigFile      string
	Listen          string
	GRPCListen      string
	UpstreamURL     string
	UpstreamTimeout time.Duration
	UpstreamCAFile  string
	AllowedOrigin   string
	LogLevel        string
	LogFormat       string
	TLS             tls.Config
}

// Keys, shared by flags, environment bindings and config files.
const (
	keyListen          = "listen"
	keyGRPCListen      = "grpc-listen"
	keyUpstreamURL     = "upstream-url"
	keyUpstreamTimeout = "upstream-timeout"
	keyUpstreamCAFile  = "upstream-ca-file"
	keyAllowedOrigin   = "allowed-origin"
	keyLogLevel        = "log-level"
	keyLogFormat       = "log-format"
	keyTLSEnabled      = "tls-enabled"
	keyTLSCertFile     = "tls-cert-file"
	keyTLSKeyFile      = "tls-key-file"
	keyTLSCAFile       = "tls-ca-file"
)

// envNames lists the environment variables bound to each key, first match wins.
var envNames = map[string][]string{
	keyListen:          {"LISTEN"},
	keyGRPCListen:      {"GRPC_LISTEN"},
	keyUpstreamURL:     {"UPSTREAM_URL", "API_BASE_URL", "NEXT_PUBLIC_API_BASE_URL"},
	keyUpstreamTimeout: {"UPSTREAM_TIMEOUT"},
	keyUpstreamCAFile:  {"UPSTREAM_CA_FILE"},
	keyAllowedOrigin:   {"ALLOWED_ORIGIN"},
	keyLogLevel:        {"LOG_LEVEL"},
	keyLogFormat:       {"LOG_FORMAT"},
	keyTLSEnabled:      {"TLS_ENABLED"},
	keyTLSCertFile:     {"TLS_CERT_FILE"},
	keyTLSKeyFile:      {"TLS_KEY_FILE"},
	keyTLSCAFile:       {"TLS_CA_FILE"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyListen, ":8080")
	v.SetDefault(keyGRPCListen, "")
	v.SetDefault(keyUpstreamURL, DefaultUpstreamURL)
	v.SetDefault(keyUpstreamTimeout, "60s")
	v.SetDefault(keyUpstreamCAFile, "")
	v.SetDefault(keyAllowedOrigin, "*")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFormat, "text")
	v.SetDefault(keyTLSEnabled, false)
	v.SetDefault(keyTLSCertFile, "")
	v.SetDefault(keyTLSKeyFile, "")
	v.SetDefault(keyTLSCAFile, "")
}

// NewFlagSet declares every relay flag. Flag defaults are informational only;
// unset flags never override the environment or the config file.
func NewFlagSet(cfgFile *string) *flag.FlagSet {
	fs := flag.NewFlagSet("relay", flag.ContinueOnError)

	fs.StringVar(cfgFile, "config-file", os.Getenv("CONFIG_FILE"), "Optional config file (yaml, toml or json)")

	fs.String(keyListen, ":8080", "HTTP listen address")
	fs.String(keyGRPCListen, "", "gRPC health listen address (empty disables)")
	fs.String(keyUpstreamURL, DefaultUpstreamURL, "Base URL of the prediction service")
	fs.Duration(keyUpstreamTimeout, 60*time.Second, "Timeout for one upstream call")
	fs.String(keyUpstreamCAFile, "", "CA bundle for verifying the upstream (default: system roots)")
	fs.String(keyAllowedOrigin, "*", "Access-Control-Allow-Origin value")
	fs.String(keyLogLevel, "info", "Log level: debug, info, warn, error")
	fs.String(keyLogFormat, "text", "Log format: text or json")
	fs.Bool(keyTLSEnabled, false, "Serve HTTPS (and TLS gRPC)")
	fs.String(keyTLSCertFile, "", "TLS certificate file")
	fs.String(keyTLSKeyFile, "", "TLS private key file")
	fs.String(keyTLSCAFile, "", "CA for verifying client certificates (enables mutual TLS)")

	return fs
}

// Load parses args and merges every configuration source.
func Load(args []string) (*Config, error) {
	var cfgFile string
	fs := NewFlagSet(&cfgFile)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	for key, names := range envNames {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name != "config-file" {
			v.Set(f.Name, f.Value.String())
		}
	})

	cfg := &Config{
		ConfigFile:      cfgFile,
		Listen:          v.GetString(keyListen),
		GRPCListen:      v.GetString(keyGRPCListen),
		UpstreamURL:     v.GetString(keyUpstreamURL),
		UpstreamTimeout: v.GetDuration(keyUpstreamTimeout),
		UpstreamCAFile:  v.GetString(keyUpstreamCAFile),
		AllowedOrigin:   v.GetString(keyAllowedOrigin),
		LogLevel:        v.GetString(keyLogLevel),
		LogFormat:       v.GetString(keyLogFormat),
		TLS: tls.Config{
			Enabled:  v.GetBool(keyTLSEnabled),
			CertFile: v.GetString(keyTLSCertFile),
			KeyFile:  v.GetString(keyTLSKeyFile),
			CAFile:   v.GetString(keyTLSCAFile),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// writeMargin is the time left after a full upstream timeout to write the error reply.
const writeMargin = 30 * time.Second

// WriteTimeout is the HTTP server write timeout: long enough for a request that
// waits the full upstream timeout to still receive its 500 reply.
func (c *Config) WriteTimeout() time.Duration {
	return c.UpstreamTimeout + writeMargin
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return errors.New("listen address cannot be empty")
	}
	if c.GRPCListen != "" && c.GRPCListen == c.Listen {
		return fmt.Errorf("grpc-listen and listen cannot share %s", c.Listen)
	}
	if _, err := relay.Endpoint(c.UpstreamURL); err != nil {
		return fmt.Errorf("upstream-url: %w", err)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("upstream-timeout must be > 0, got %v", c.UpstreamTimeout)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q (must be text or json)", c.LogFormat)
	}
	if err := c.TLS.Validate(); err != nil {
		return fmt.Errorf("tls: %w", err)
	}
	return nil
}
