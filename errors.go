package blockcodec

import "errors"

var (
	// ErrShapeMismatch is returned when a block or quantization matrix is not 8x8.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrDivideByZero is returned for a zero quantization entry.
	ErrDivideByZero = errors.New("zero quantization entry")
	// ErrTableLoad is returned when code or quantization tables are malformed or unreadable.
	ErrTableLoad = errors.New("table load failure")
	// ErrUnknownSymbol is returned when a code table has no entry for a required symbol.
	ErrUnknownSymbol = errors.New("unknown symbol")
)
