package conv

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow reports a value that does not fit the target width.
var ErrOverflow = errors.New("integer overflow")

// IntToUint16 converts v, failing outside [0, 65535].
func IntToUint16(v int) (uint16, error) {
	if v < 0 || v > math.MaxUint16 {
		return 0, fmt.Errorf("%w: %d does not fit uint16", ErrOverflow, v)
	}
	return uint16(v), nil
}

// IntToUint32 converts v, failing outside [0, 2^32).
func IntToUint32(v int) (uint32, error) {
	if v < 0 || uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d does not fit uint32", ErrOverflow, v)
	}
	return uint32(v), nil
}
