package factory

import (
	"errors"

	"github.com/warp/attendance-engine/extract"
)

var (
	// ErrInvalidProfile is returned when a profile fails to parse or validate.
	// Every error from ParseProfile and FromJSON matches it.
	ErrInvalidProfile = errors.New("invalid profile")

	// ErrUnknownLayout is returned when a profile names a layout the parser
	// does not know. It is the same value as extract.ErrUnknownLayout.
	ErrUnknownLayout = extract.ErrUnknownLayout
)
