// Package driven defines the interfaces the core services require
// from infrastructure adapters: the schema store and the per-vendor
// export adapters.
package driven
