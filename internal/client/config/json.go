package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/flagx"
)

// Duration decodes either a Go duration string ("3s") or integer
// nanoseconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return errors.New("invalid duration")
	}
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// fileConfig mirrors the JSON file layout.
type fileConfig struct {
	APIBaseURL          string   `json:"api_base_url"`
	Transport           string   `json:"transport"`
	GRPCEndpointAddr    string   `json:"grpc_endpoint_addr"`
	DatabaseDSN         string   `json:"database_dsn"`
	RequestTimeout      Duration `json:"request_timeout"`
	OnlineCheckInterval Duration `json:"online_check_interval"`
	ProgressInterval    Duration `json:"progress_interval"`
	MaxNotifications    int      `json:"max_notifications"`
	LogBackend          string   `json:"log_backend"`
	LogFormat           string   `json:"log_format"`
	LogLevel            string   `json:"log_level"`
}

// parseJSON overlays cfg with the non-zero values of the file named by
// -c/-config. Without such a flag it does nothing.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.APIBaseURL, fc.APIBaseURL)
	setString(&cfg.Transport, fc.Transport)
	setString(&cfg.GRPCEndpointAddr, fc.GRPCEndpointAddr)
	setString(&cfg.DatabaseDSN, fc.DatabaseDSN)
	setDuration(&cfg.RequestTimeout, fc.RequestTimeout)
	setDuration(&cfg.OnlineCheckInterval, fc.OnlineCheckInterval)
	setDuration(&cfg.ProgressInterval, fc.ProgressInterval)
	if fc.MaxNotifications != 0 {
		cfg.MaxNotifications = fc.MaxNotifications
	}
	setString(&cfg.LogBackend, fc.LogBackend)
	setString(&cfg.LogFormat, fc.LogFormat)
	setString(&cfg.LogLevel, fc.LogLevel)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
