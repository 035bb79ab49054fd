package protocol

import "errors"

// Depth limits for recursive structures. They complement the allocation
// limits in decoder.go.
const (
	// MaxNodeDepth limits the nesting depth of an encoded tree.
	MaxNodeDepth = 256

	// MaxPathDepth limits the number of indices in an encoded TreePath.
	MaxPathDepth = MaxNodeDepth
)

// ErrMaxDepthExceeded is returned when a payload nests deeper than allowed.
var ErrMaxDepthExceeded = errors.New("protocol: maximum depth exceeded")

// Limits configures decoding limits. The zero value means defaults.
type Limits struct {
	NodeDepth int
}

// DefaultLimits returns the default decoding limits.
func DefaultLimits() Limits {
	return Limits{NodeDepth: MaxNodeDepth}
}

func (l Limits) nodeDepth() int {
	if l.NodeDepth <= 0 || l.NodeDepth > MaxNodeDepth {
		return MaxNodeDepth
	}
	return l.NodeDepth
}

func checkDepth(current, max int) error {
	if current > max {
		return ErrMaxDepthExceeded
	}
	return nil
}
