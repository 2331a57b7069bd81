// Package sqlite implements the schema store on an embedded SQLite
// database (modernc.org/sqlite, no cgo). All writes are full-record
// upserts keyed by primary key; re-ingesting the same archive
// overwrites rather than duplicates.
//
// A regexp(pattern, text) scalar function is registered on the driver
// to back the similarity search's regular-expression matching.
package sqlite
