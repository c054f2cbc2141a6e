package tree

import "github.com/ardnew/press/lang"

// Predefined errors (sentinel values).
var (
	ErrReadInput     = lang.NewError("failed to read input")
	ErrDecode        = lang.NewError("failed to decode document")
	ErrEncode        = lang.NewError("failed to encode document")
	ErrInvalidNode   = lang.NewError("invalid node")
	ErrInvalidExpr   = lang.ErrInvalidExpression
	ErrInvalidFormat = lang.NewError("invalid output format")
	ErrMetadata      = lang.NewError("metadata document is not a mapping")
)
