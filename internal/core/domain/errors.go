package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedArchive indicates an export archive is unreadable or
	// is missing its conversations.json manifest. Fatal for that
	// archive; a multi-archive run reports it and continues.
	ErrMalformedArchive = errors.New("malformed export archive")

	// ErrUnsupportedSource indicates an export source no adapter handles.
	ErrUnsupportedSource = errors.New("unsupported export source")
)
