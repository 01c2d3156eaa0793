package database

import "errors"

// ErrNotFound indicates a requested record does not exist.
var ErrNotFound = errors.New("database: not found")

// errNoContext is returned by repositories built without a database.
var errNoContext = errors.New("missing database context")
