// Package observability builds the structured loggers used by the API, the
// ingestion worker and the CLI, and carries loggers through contexts.
package observability
