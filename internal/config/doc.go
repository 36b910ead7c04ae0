// Package config handles configuration loading for frontdesk-gateway.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable
// expansion. A .env file in the working directory is loaded first so local
// development secrets never have to live in the YAML. The package provides
// validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	completion:
//	  api_key: "${FRONTDESK_COMPLETION_KEY}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to the empty string.
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	help_requests:
//	  timeout: "1h"
//	  sweep_interval: "5m"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//
// Database:
//
//	database:
//	  path: "/var/lib/frontdesk/gateway.db"
//
// Completion backend:
//
//	completion:
//	  provider: "openai"   # or "anthropic"
//	  api_url: "https://api.openai.com/v1/chat/completions"
//	  api_key: "${FRONTDESK_COMPLETION_KEY}"
//	  model: "gpt-4o-mini"
//
// Realtime voice transport (passed through to deployment tooling, not read
// by the engines):
//
//	realtime:
//	  url: "wss://realtime.example.com"
//	  api_key: "${FRONTDESK_REALTIME_KEY}"
//	  api_secret: "${FRONTDESK_REALTIME_SECRET}"
//
// Help request timing:
//
//	help_requests:
//	  timeout: "1h"
//	  sweep_interval: "5m"
//
// Notifications:
//
//	notifications:
//	  retry_count: 3
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
// Load configuration from a path:
//
//	cfg, err := config.Load("/etc/frontdesk/gateway.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
