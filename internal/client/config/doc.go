// Package config loads runtime configuration for the peer client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-s string   coordinator host
//	-p int      coordinator port
//	-w string   time service URL (optional)
//
// # JSON schema
//
//	{
//	  "server_host": "127.0.0.1",
//	  "server_port": 5000,
//	  "time_service_url": "http://127.0.0.1:8000/datetime",
//	  "request_timeout": "5s"
//	}
package config
