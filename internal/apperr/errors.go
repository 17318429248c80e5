package apperr

import "errors"

var (
	ErrMalformedLocation    = errors.New("malformed location")
	ErrInvalidTimestamp     = errors.New("invalid timestamp")
	ErrConfigurationInvalid = errors.New("configuration invalid")
	ErrDatabaseNotFound     = errors.New("database not found")
	ErrBooksRunning         = errors.New("apple books is running")
)
