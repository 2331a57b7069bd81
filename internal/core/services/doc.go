// Package services implements the driving port interfaces: archive
// indexing, conversation queries, analytics, artifact handling, and
// batch query execution. Services hold the business logic and reach
// infrastructure only through the driven ports.
package services
