package config

import "time"

// Application constants
const (
	AppName = "chunkdash"

	// EnvPrefix namespaces every environment variable, e.g. CHUNKDASH_SERVER_PORT
	EnvPrefix = "CHUNKDASH"

	// Database drivers registered by the data source package
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"

	DefaultPort           = 3000
	DefaultRequestTimeout = 60 * time.Second
	DefaultQueryTimeout   = 30 * time.Second
	DefaultMaxBodyBytes   = 10 << 20 // 10MB, large exports are posted back as JSON

	DefaultMaxChunks      = 1000
	DefaultExportFilename = "export"
	DefaultSheetName      = "Sheet1"
	DefaultMaxExportRows  = 100000
)
