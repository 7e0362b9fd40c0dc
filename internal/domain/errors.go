package domain

import "errors"

// ErrMissingCredential indicates a required API key is absent; detected
// before any network call is made.
var ErrMissingCredential = errors.New("missing credential")

// ErrNotFound indicates a referenced input file does not exist.
var ErrNotFound = errors.New("not found")

// ErrParse indicates a model response could not be interpreted as the
// expected JSON structure.
var ErrParse = errors.New("unparseable model response")

// ErrValidation indicates parsed JSON did not satisfy a schema's invariants.
var ErrValidation = errors.New("schema validation failed")
