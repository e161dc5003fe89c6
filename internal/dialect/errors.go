package dialect

import "errors"

// ErrUnknownDialect indicates no engine is registered under the requested name.
var ErrUnknownDialect = errors.New("unknown database dialect")
