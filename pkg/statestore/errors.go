package statestore

import "errors"

var (
	// ErrNotFound is returned when a state id is unknown, expired or already consumed.
	ErrNotFound = errors.New("statestore: state not found")

	// ErrEmptyConnectionURL is returned by OpenRedis when no URL is given.
	ErrEmptyConnectionURL = errors.New("statestore: empty redis connection URL")

	// ErrFailedToParseURL is returned by OpenRedis for a malformed URL.
	ErrFailedToParseURL = errors.New("statestore: failed to parse redis connection URL")

	// ErrConnectionFailed is returned by OpenRedis when Redis never answered PING.
	ErrConnectionFailed = errors.New("statestore: failed to establish redis connection")
)
