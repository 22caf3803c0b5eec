package engine

import (
	"fmt"
	"math"
)

// DefaultTimescale is the fallback granularity used to build seek targets when
// no item duration is available yet: 1000 units per second.
const DefaultTimescale int32 = 1000

// Time is a rational media timestamp: Value ticks at Scale ticks per second.
// Engines seek in their native representation, so callers build Time values
// with the timescale of the current item's duration where one exists.
type Time struct {
	Value int64
	Scale int32
}

// ZeroTime is the start of the media timeline at the default timescale.
var ZeroTime = Time{Value: 0, Scale: DefaultTimescale}

// FromSeconds converts a duration in seconds into a Time at the given
// timescale. A non-positive scale falls back to DefaultTimescale.
func FromSeconds(seconds float64, scale int32) Time {
	if scale <= 0 {
		scale = DefaultTimescale
	}
	return Time{
		Value: int64(math.Round(seconds * float64(scale))),
		Scale: scale,
	}
}

// Seconds converts the timestamp back to seconds. An invalid scale yields 0.
func (t Time) Seconds() float64 {
	if t.Scale <= 0 {
		return 0
	}
	return float64(t.Value) / float64(t.Scale)
}

// IsZero reports whether the timestamp is at the start of the timeline.
func (t Time) IsZero() bool {
	return t.Value == 0
}

// String formats the timestamp as value/scale.
func (t Time) String() string {
	return fmt.Sprintf("%d/%d", t.Value, t.Scale)
}
