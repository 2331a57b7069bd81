// Package file provides the TOML-backed configuration store.
// Nested tables are flattened to dot-notation keys on load, so
// [paths] exports_dir reads as "paths.exports_dir".
package file
