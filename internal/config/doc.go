// Package config handles configuration loading for the swavik portal client.
//
// # Overview
//
// Configuration is loaded from YAML or TOML files with environment variable
// expansion. Every value has a default, so a missing file is not an error
// unless the user asked for it by name.
//
// # Configuration File
//
// Locations (in order):
//
//  1. The --config flag
//  2. Path from SWAVIK_CONFIG environment variable
//  3. $XDG_CONFIG_HOME/swavik/config.yaml
//  4. ~/.config/swavik/config.yaml
//
// Files ending in .toml are decoded as TOML; everything else as YAML.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  session_secret: "${SWAVIK_SESSION_SECRET}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	backend:
//	  request_timeout: "0s"   # no timeout
//	auth:
//	  session_ttl: "24h"
//
// # Configuration Sections
//
//	app:
//	  name: "Swavik"             # transcript filename prefix
//	  time_layout: "03:04 PM"    # message timestamp layout
//
//	backend:
//	  base_url: "http://127.0.0.1:8000"
//
//	storage:
//	  driver: "sqlite"           # or "memory"
//	  path: "~/.local/share/swavik/portal.db"
//
//	auth:
//	  min_password_length: 4
//
//	export:
//	  dir: "."
//	  format: "text"             # or "html"
//
//	render:
//	  markdown: true
//	  style: "dark"              # glamour style
//
//	logging:
//	  level: "info"              # debug, info, warn, error
//	  format: "text"             # or "json"
//
// # Validation
//
// Load validates the result: the backend URL must be http or https, the
// storage driver must be known, and durations must be sensible.
package config
