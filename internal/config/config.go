// Package config provides functionality for managing configuration options
// for the application using command-line flags, an optional JSON file and
// environment variables.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"
)

// Options holds the configuration values for the server.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"address"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn"`

	// LogLevel is the zap level name (debug, info, warn, error).
	LogLevel string `json:"log_level"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// CountryCode is prefixed to the 10-digit phone numbers.
	CountryCode string `json:"country_code"`

	// SessionTTL is the lifetime of a sign-in session.
	SessionTTL Duration `json:"session_ttl"`
	// OTPTTL is the lifetime of a one-time code.
	OTPTTL Duration `json:"otp_ttl"`
	// CleanupInterval is how often expired sessions and codes are purged.
	CleanupInterval Duration `json:"cleanup_interval"`

	// ChatProvider selects the upstream completions API: openrouter or gemini.
	ChatProvider string `json:"chat_provider"`
	// ChatBaseURL overrides the provider's API root.
	ChatBaseURL string `json:"chat_base_url"`
	// ChatModel is the upstream model name. Empty means the provider default.
	ChatModel string `json:"chat_model"`
	// ChatAPIKey is the server-held upstream credential. Environment only.
	ChatAPIKey string `json:"-"`
	// ChatTimeout bounds a single upstream call.
	ChatTimeout Duration `json:"chat_timeout"`

	// VideoRegion is the object-storage region used to resolve s3:// video references.
	VideoRegion string `json:"video_region"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// Duration is a time.Duration that reads "90s"-style strings from JSON.
type Duration struct {
	time.Duration
}

// UnmarshalJSON accepts a Go duration string.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Default returns options with every default applied.
func Default() *Options {
	return &Options{
		Port:            "localhost:8080",
		LogLevel:        "info",
		CountryCode:     "+91",
		SessionTTL:      Duration{30 * 24 * time.Hour},
		OTPTTL:          Duration{5 * time.Minute},
		CleanupInterval: Duration{time.Hour},
		ChatProvider:    "openrouter",
		ChatTimeout:     Duration{60 * time.Second},
		VideoRegion:     "eu-north-1",
		Config:          "config.json",
	}
}

// Parse parses args and environment variables into Options.
// Precedence, lowest first: defaults, config file, flags, environment.
func Parse(args []string) (*Options, error) {
	options := Default()

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&options.Port, "a", options.Port, "run on ip:port server")
	fs.StringVar(&options.DatabaseDSN, "d", options.DatabaseDSN, "db address")
	fs.StringVar(&options.LogLevel, "l", options.LogLevel, "log level")
	fs.StringVar(&options.Config, "config", options.Config, "path to config file")
	fs.StringVar(&options.Config, "c", options.Config, "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				return nil, fmt.Errorf("error while reading config file: %w", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
			// explicit flags win over the file
			if err := fs.Parse(args); err != nil {
				return nil, err
			}
		}
	}

	applyEnv(options)
	if err := options.validate(); err != nil {
		return nil, err
	}
	return options, nil
}

func (o *Options) validate() error {
	durations := []struct {
		name string
		d    Duration
	}{
		{"session_ttl", o.SessionTTL},
		{"otp_ttl", o.OTPTTL},
		{"cleanup_interval", o.CleanupInterval},
		{"chat_timeout", o.ChatTimeout},
	}
	for _, d := range durations {
		if d.d.Duration <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, d.d)
		}
	}
	return nil
}

func applyEnv(o *Options) {
	env := map[string]*string{
		"SERVER_ADDRESS": &o.Port,
		"DATABASE_DSN":   &o.DatabaseDSN,
		"LOG_LEVEL":      &o.LogLevel,
		"TLS_CERT":       &o.TLSCert,
		"TLS_KEY":        &o.TLSKey,
		"COUNTRY_CODE":   &o.CountryCode,
		"CHAT_PROVIDER":  &o.ChatProvider,
		"CHAT_BASE_URL":  &o.ChatBaseURL,
		"CHAT_MODEL":     &o.ChatModel,
		"CHAT_API_KEY":   &o.ChatAPIKey,
		"VIDEO_REGION":   &o.VideoRegion,
	}
	for name, dst := range env {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
}
