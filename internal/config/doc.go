// Package config handles configuration loading for docket-gateway.
//
// # Overview
//
// Configuration is loaded from a YAML file, or a TOML file when the path
// ends in .toml. Environment variables are expanded before parsing and
// defaults are applied before validation.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from DOCKET_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/docket/gateway.yaml
//  3. ~/.config/docket/gateway.yaml
//
// # Environment Variable Expansion
//
//	auth:
//	  jwt_secret: "${DOCKET_JWT_SECRET}"
//
// # Configuration Sections
//
//	server:
//	  grpc_addr: "0.0.0.0:50051"
//	  http_addr: "0.0.0.0:8080"
//
//	database:
//	  path: "/var/lib/docket/docket.db"
//
//	auth:
//	  jwt_secret: "${DOCKET_JWT_SECRET}"  # at least 32 bytes
//	  token_ttl: "24h"
//
//	storage:
//	  dir: "/var/lib/docket/files"       # defaults to <database dir>/files
//	  max_file_size: 10485760
//
//	legal:
//	  catalog_url: ""                      # empty uses the built-in catalog
//	  timeout: "15s"
//
//	idempotency:
//	  ttl: "10m"
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
//	cfg, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
