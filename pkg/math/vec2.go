// Package math provides vector and matrix types for layout transforms.
package math

// Vec2 is a 2D vector.
type Vec2 struct {
	X, Y float32
}
