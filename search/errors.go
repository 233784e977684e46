package search

import "errors"

var (
	// ErrInvalidArgument is returned for malformed input: negative or
	// duplicate document ids, control characters in words, bad query syntax.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownDocument is returned when an operation names a document id
	// that is not present in the server.
	ErrUnknownDocument = errors.New("unknown document id")
)
