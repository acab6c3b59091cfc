package progression

import "errors"

var (
	// ErrInvalidSnapshot reports a snapshot with duplicate or empty keys
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	// ErrInvalidMetadata reports missing required labels
	ErrInvalidMetadata = errors.New("invalid metadata")
	// ErrInvalidCount reports negative counts, completed > total, or an
	// out-of-range percentage
	ErrInvalidCount = errors.New("invalid count")
)
