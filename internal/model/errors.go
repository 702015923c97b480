package model

import "errors"

// ErrSourceUnavailable marks a network or parse failure on one source.
// Callers degrade to whatever other sources returned.
var ErrSourceUnavailable = errors.New("source unavailable")

// ErrNotFound means no identity resolved for a requested character.
// It is an expected outcome, not a failure.
var ErrNotFound = errors.New("character not found")

// ErrDegraded marks a source that loaded but is missing data for the request,
// e.g. no talent definitions for a class.
var ErrDegraded = errors.New("source degraded")
