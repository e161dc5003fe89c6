package mysql

import "errors"

// ErrInvalidDSN indicates the provided MySQL DSN could not be parsed.
var ErrInvalidDSN = errors.New("invalid MySQL DSN")

// ErrConnectionFailed indicates a connection to the database could not be established.
var ErrConnectionFailed = errors.New("database connection failed")
