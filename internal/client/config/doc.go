// Package config loads runtime configuration for the TuParKing CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend HTTP API
//	-t int      request timeout (seconds)
//	-d string   path of the local sqlite database
//	-s string   path of the JSON fallback store ("" selects the sqlite store)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so the value can be
// either a string like "15s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "http://127.0.0.1:8080",
//	  "request_timeout": "15s",
//	  "database_dsn": "tuparking.db",
//	  "store_file_path": ""
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
