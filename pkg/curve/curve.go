// Package curve samples keyframed animation tracks.
package curve

import "fmt"

// Type is the interpolation discipline of a track.
type Type uint8

const (
	Constant Type = 0
	Step     Type = 1
	Hermite  Type = 2
)

// String returns a human-readable curve type name.
func (c Type) String() string {
	switch c {
	case Constant:
		return "Constant"
	case Step:
		return "Step"
	case Hermite:
		return "Hermite"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(c))
	}
}

// Keyframe is one key of a track. Tangent is zero for stepped tracks.
type Keyframe struct {
	Frame   float32
	Value   float32
	Tangent float32
}

// Sample evaluates frames at time t with the given discipline.
// Constant curves hold the first key.
func Sample(c Type, frames []Keyframe, t float32) float32 {
	switch c {
	case Step:
		return SampleStep(frames, t)
	case Hermite:
		return SampleHermite(frames, t)
	default:
		return frames[0].Value
	}
}

// SampleStep returns the value of the last key whose frame is <= t.
// Before the first key it returns the first key's value.
func SampleStep(frames []Keyframe, t float32) float32 {
	for i := len(frames) - 1; i >= 0; i-- {
		if t >= frames[i].Frame {
			return frames[i].Value
		}
	}
	return frames[0].Value
}

// SampleHermite interpolates frames at t with a cubic Hermite basis.
// Values are clamped to the first and last keys outside the keyed range.
func SampleHermite(frames []Keyframe, t float32) float32 {
	if len(frames) == 1 {
		return frames[0].Value
	}

	next := findKeyframe(frames, t)
	if next == 0 {
		return frames[0].Value
	}
	if next < 0 {
		return frames[len(frames)-1].Value
	}

	k0 := frames[next-1]
	k1 := frames[next]
	length := k1.Frame - k0.Frame
	u := (t - k0.Frame) / length
	return HermitePoint(k0.Value, k1.Value, k0.Tangent*length, k1.Tangent*length, u)
}

// HermitePoint evaluates the cubic Hermite basis for endpoints p0, p1 and
// tangents s0, s1 at parameter u in [0, 1].
func HermitePoint(p0, p1, s0, s1, u float32) float32 {
	u2 := u * u
	u3 := u2 * u
	cf0 := (p0 * 2) + (p1 * -2) + s0 + s1
	cf1 := (p0 * -3) + (p1 * 3) + (s0 * -2) - s1
	return cf0*u3 + cf1*u2 + s0*u + p0
}

// findKeyframe returns the index of the first key strictly after t, or -1.
func findKeyframe(frames []Keyframe, t float32) int {
	for i := range frames {
		if t < frames[i].Frame {
			return i
		}
	}
	return -1
}
