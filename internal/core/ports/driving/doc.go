// Package driving defines the service interfaces the CLI adapter
// drives: indexing, querying, analytics, and batch processing.
package driving
