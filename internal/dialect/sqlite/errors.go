package sqlite

import "errors"

// ErrConnectionFailed indicates the SQLite database could not be opened.
var ErrConnectionFailed = errors.New("connecting to database")
