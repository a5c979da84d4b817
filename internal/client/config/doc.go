// Package config loads runtime configuration for the notekeeper CLI.
//
// Sources, later ones winning:
//
//  1. Built-in defaults ((*Config).LoadDefaults).
//  2. A JSON file named by -c or -config.
//  3. Command-line flags.
//
// Flags
//
//	-a string   identity service REST base URL
//	-t string   transport, http or grpc
//	-g string   identity service gRPC address
//	-d string   local database DSN
//	-r int      request timeout (seconds)
//	-i int      online check interval (seconds)
//	-l string   log level
//
// # JSON file
//
// Durations are strings like "3s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:5000/api",
//	  "transport": "http",
//	  "grpc_endpoint_addr": "127.0.0.1:50051",
//	  "database_dsn": "notekeeper.db",
//	  "request_timeout": "30s",
//	  "online_check_interval": "3s",
//	  "progress_interval": "100ms",
//	  "max_notifications": 5,
//	  "log_backend": "zap",
//	  "log_format": "json",
//	  "log_level": "debug"
//	}
//
// Environment variables are not read.
package config
