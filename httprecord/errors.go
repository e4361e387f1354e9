package httprecord

import "errors"

var (
	// ErrInvalidArgument is returned when a source is nil or of an unsupported
	// type, or when a header policy is malformed.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMalformedHeader is returned by WireHeaderParser for a header line
	// without a colon.
	ErrMalformedHeader = errors.New("malformed header line")

	// ErrUnsupportedFormat is returned by SaveConfigToFile for an unknown format.
	ErrUnsupportedFormat = errors.New("unsupported format")
)
