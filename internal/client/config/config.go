package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
)

// Transports understood by the client factory.
const (
	TransportHTTP = "http"
	TransportGRPC = "grpc"
)

// Config holds runtime settings for the notekeeper CLI.
type Config struct {
	APIBaseURL          string
	Transport           string
	GRPCEndpointAddr    string
	DatabaseDSN         string
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
	ProgressInterval    time.Duration
	MaxNotifications    int
	LogBackend          string
	LogFormat           string
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:5000/api"
	c.Transport = TransportHTTP
	c.GRPCEndpointAddr = "127.0.0.1:50051"
	c.DatabaseDSN = "notekeeper.db"
	c.RequestTimeout = 30 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.ProgressInterval = 100 * time.Millisecond
	c.MaxNotifications = 5
	c.LogBackend = logging.BackendSlog
	c.LogFormat = logging.FormatText
	c.LogLevel = "info"
}

// Validate rejects settings the rest of the client cannot work with.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportHTTP:
		if c.APIBaseURL == "" {
			return fmt.Errorf("api base url is required for transport %q", c.Transport)
		}
	case TransportGRPC:
		if c.GRPCEndpointAddr == "" {
			return fmt.Errorf("grpc endpoint address is required for transport %q", c.Transport)
		}
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval must be positive, got %s", c.OnlineCheckInterval)
	}
	if c.MaxNotifications < 0 {
		return fmt.Errorf("max notifications must not be negative, got %d", c.MaxNotifications)
	}
	return nil
}

// LoadConfig builds a Config from defaults, then the JSON file named by
// -c/-config (if any), then command-line flags. args excludes the program
// name. Later sources win.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
