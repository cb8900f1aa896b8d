// Package app wires the chunkdash service together: configuration, logging,
// OpenTelemetry, the report catalog, the data source and its circuit breaker,
// the services and the chi router.
//
// # Initialization Flow
//
//  1. Load configuration (cmd/chunkdash)
//  2. Initialize logging and OpenTelemetry
//  3. Load the report catalog and open the data source
//  4. Initialize services with their dependencies
//  5. Set up HTTP handlers and middleware
//  6. Start the HTTP server
//
// NewServices is shared with the chunkreport CLI, which runs reports without
// the HTTP layer.
//
// # Graceful Shutdown
//
// Run stops on SIGINT or SIGTERM: in-flight requests finish within the
// configured shutdown timeout, then the database handle is closed and
// telemetry is flushed. The package never calls os.Exit.
package app
