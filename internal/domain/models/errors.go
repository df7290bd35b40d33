package models

import "errors"

var (
	// ErrInvalidInput is returned when submitted content fails validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownContentType is returned for content types outside the supported set
	ErrUnknownContentType = errors.New("unknown content type")

	// ErrExampleNotFound is returned when feedback targets an unknown training example
	ErrExampleNotFound = errors.New("training example not found")

	ErrNotFound = errors.New("not found")
)
