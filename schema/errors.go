package schema

import "errors"

// ErrSchemaFile indicates the declared-schema file could not be read or parsed.
var ErrSchemaFile = errors.New("reading schema file")

// ErrIntrospection indicates the live database schema could not be read.
var ErrIntrospection = errors.New("introspecting database schema")
