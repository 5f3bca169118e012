package ulog

import "errors"

var (
	// ErrBadMagic is returned when the file does not start with the ULog header magic.
	ErrBadMagic = errors.New("ulog: bad header magic")

	// ErrUnknownIncompatFlags is returned when the flag bits message carries
	// incompatibility bits this reader does not implement.
	ErrUnknownIncompatFlags = errors.New("ulog: unknown incompatible flag bits set")
)
