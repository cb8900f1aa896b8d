// Package http implements the HTTP handlers of the chunkdash service. Handlers
// stay thin: they bind and validate the request, call a service and map
// service errors to API errors.
//
// # Routes
//
//	POST /api/query                 {queryName, params} → {rows}
//	GET  /api/reports               catalog listing
//	POST /api/reports/{name}        full report (JSON or form body)
//	POST /{report}-summary          dashboard form routes
//	POST /export/{csv|tsv|excel}    {filename, rows} → attachment
//	GET  /api/health[/ready|/live]  health checks
//	GET  /api/version               build information
//	GET  /metrics                   Prometheus exposition
//
// # Error Handling
//
// Every error goes through errors.ErrorHandler and is written as an RFC 7807
// problem document:
//
//	{
//	    "type": "/errors/report/unknown",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "Unknown queryName",
//	    "instance": "/api/query",
//	    "error_code": "UNKNOWN_QUERY",
//	    "trace_id": "6f1c..."
//	}
//
// Invalid parameters are 400, an unreachable data source or an open circuit
// breaker is 503.
package http
