// Package config loads the service configuration.
//
// # Configuration Sources
//
// Values are resolved in the following order, later sources winning:
//
//  1. Default() values
//  2. A YAML file: $CHUNKDASH_CONFIG_FILE, config.yaml or configs/config.yaml
//  3. Environment variables prefixed with CHUNKDASH_
//
// Only keys present in the file and variables that are set override earlier
// values, so a partial file or a single variable is enough to change one
// setting.
//
// # Environment Variables
//
// Variable names are built from the section and field names:
//
//	CHUNKDASH_SERVER_PORT=3000
//	CHUNKDASH_DATABASE_DRIVER=pgx
//	CHUNKDASH_DATABASE_DSN=postgres://reports:secret@db:5432/sales
//	CHUNKDASH_BREAKER_FAILURE_THRESHOLD=5
//	CHUNKDASH_REPORTS_CATALOG_FILE=/etc/chunkdash/catalog.yaml
//	CHUNKDASH_SECURITY_ALLOWED_ORIGINS=https://a.example,https://b.example
//
// # Example File
//
//	server:
//	  port: 3000
//	  request_timeout: 60s
//	database:
//	  driver: sqlite
//	  dsn: file:reports.db?mode=ro
//	logging:
//	  level: debug
//
// Load validates the result and returns an error naming the first invalid
// setting.
package config
