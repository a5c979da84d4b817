package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/flagx"
)

var knownFlags = []string{"-a", "-t", "-g", "-d", "-r", "-i", "-l"}

// parseFlags overlays cfg with the flags this package owns. Other flags in
// args are ignored so that -c/-config and unrelated components coexist.
//
//	-a string   base URL of the Identity Service REST API
//	-t string   transport: http or grpc
//	-g string   host:port of the Identity Service gRPC endpoint
//	-d string   local database DSN
//	-r int      request timeout (seconds)
//	-i int      online check interval (seconds)
//	-l string   log level
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("notekeeper", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "identity service base url")
	fs.StringVar(&cfg.Transport, "t", cfg.Transport, "transport (http|grpc)")
	fs.StringVar(&cfg.GRPCEndpointAddr, "g", cfg.GRPCEndpointAddr, "grpc endpoint address")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "local database dsn")
	timeout := fs.Int("r", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	interval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return err
	}

	// Only touch durations that were given, so sub-second JSON values survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "r":
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		case "i":
			cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
		}
	})
	return nil
}
