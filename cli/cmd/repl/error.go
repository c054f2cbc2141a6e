package repl

import "github.com/ardnew/press/lang"

// Sentinel errors.
var (
	ErrOutOfBounds = lang.NewError("history index out of range")
	ErrUnknownCmd  = lang.NewError("unknown command")
)
