// Package config provides centralized configuration management for the
// Demand Pulse system. It handles loading configuration from multiple
// sources, validation, and owns the static dataset registry every other
// component consumes.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration files (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern DEMAND_* for namespacing:
//
//	DEMAND_SERVER_PORT=8080
//	DEMAND_DATA_DIR=data
//	DEMAND_DATA_CACHE_TTL=1h
//	DEMAND_LOGGING_LEVEL=info
//
// # Dataset Registry
//
// The registry maps logical dataset keys to immutable descriptors: file
// path, required columns, numeric bounds and cache TTL. The same descriptor
// drives schema validation of real files and the output contract of the
// synthetic generator:
//
//	registry := config.NewRegistry(cfg)
//	desc, ok := registry.Get(config.DatasetCalendar)
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
