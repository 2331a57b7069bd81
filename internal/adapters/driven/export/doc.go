// Package export provides shared zip-archive scanning for vendor
// export adapters: the conversations.json manifest reader, artifact
// classification by extension, and optional artifact extraction.
// Vendor-specific parsing lives in the claude and openai subpackages.
package export
