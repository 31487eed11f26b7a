package ihex

import "errors"

// Sentinel errors returned by this package. Callers should compare with
// errors.Is, since every returned error is wrapped with additional context
// via fmt.Errorf("...: %w", ...).
var (
	// ErrMalformed means a textual record could not be decoded: bad hex,
	// wrong length, or an unknown record kind.
	ErrMalformed = errors.New("malformed record")

	// ErrChecksumMismatch means a record parsed structurally but its stored
	// checksum disagrees with the computed one.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrOutOfRange means an absolute address falls outside the current
	// variant's or section's window, or a required size argument is zero.
	ErrOutOfRange = errors.New("address out of range")

	// ErrWrongKind means a typed accessor was invoked on a record or
	// section of a different kind.
	ErrWrongKind = errors.New("wrong record or section kind")

	// ErrUnsupported means an operation requires a variant that does not
	// apply, such as CS/IP access on an I32HEX group.
	ErrUnsupported = errors.New("unsupported for this variant")

	// ErrIntersect means a push was rejected because the pushed section or
	// record would overlap existing data.
	ErrIntersect = errors.New("address range intersects existing data")

	// ErrRuntime means an I16HEX segment base could not be aligned to
	// start exactly at the requested absolute address without its window
	// wrapping past the 20-bit end in a way the section cannot represent.
	ErrRuntime = errors.New("segment base alignment impossible")
)
