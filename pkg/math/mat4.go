package math

import "github.com/chewxy/math32"

// Mat4 is a 4x4 matrix in column-major order (OpenGL compatible).
// Layout: [m0 m4 m8  m12]
//
//	[m1 m5 m9  m13]
//	[m2 m6 m10 m14]
//	[m3 m7 m11 m15]
type Mat4 [16]float32

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Ortho returns an orthographic projection matrix.
func Ortho(left, right, bottom, top, near, far float32) Mat4 {
	rl := 1.0 / (right - left)
	tb := 1.0 / (top - bottom)
	fn := 1.0 / (far - near)

	return Mat4{
		2 * rl, 0, 0, 0,
		0, 2 * tb, 0, 0,
		0, 0, -2 * fn, 0,
		-(right + left) * rl, -(top + bottom) * tb, -(far + near) * fn, 1,
	}
}

// Translate returns a translation matrix.
func Translate(x, y, z float32) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = x, y, z
	return m
}

// Scale returns a scale matrix.
func Scale(x, y, z float32) Mat4 {
	m := Identity()
	m[0], m[5], m[10] = x, y, z
	return m
}

// RotateX returns a rotation matrix around the X axis. angle is in radians.
func RotateX(angle float32) Mat4 {
	s, c := math32.Sincos(angle)
	m := Identity()
	m[5], m[6] = c, s
	m[9], m[10] = -s, c
	return m
}

// RotateY returns a rotation matrix around the Y axis. angle is in radians.
func RotateY(angle float32) Mat4 {
	s, c := math32.Sincos(angle)
	m := Identity()
	m[0], m[2] = c, -s
	m[8], m[10] = s, c
	return m
}

// RotateZ returns a rotation matrix around the Z axis. angle is in radians.
func RotateZ(angle float32) Mat4 {
	s, c := math32.Sincos(angle)
	m := Identity()
	m[0], m[1] = c, s
	m[4], m[5] = -s, c
	return m
}

// ModelMatrixSRT composes scale, then X, Y, Z rotation (radians), then translation.
func ModelMatrixSRT(sx, sy, sz, rx, ry, rz, tx, ty, tz float32) Mat4 {
	return Translate(tx, ty, tz).
		Mul(RotateZ(rz)).
		Mul(RotateY(ry)).
		Mul(RotateX(rx)).
		Mul(Scale(sx, sy, sz))
}

// TextureMatrix builds an S/T texture coordinate transform that scales and
// rotates around the texture center (0.5, 0.5). rotation is in degrees.
func TextureMatrix(scaleS, scaleT, rotation, translationS, translationT float32) Mat4 {
	sinR, cosR := math32.Sincos(DegToRad(rotation))

	m := Identity()
	m[0] = scaleS * cosR
	m[4] = scaleT * -sinR
	m[12] = translationS + 0.5 - (scaleS * cosR * 0.5) + (scaleS * sinR * 0.5)

	m[1] = scaleS * sinR
	m[5] = scaleT * cosR
	m[13] = translationT + 0.5 - (scaleS * sinR * 0.5) - (scaleS * cosR * 0.5)
	return m
}

// Mul multiplies this matrix by another (m * other).
func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			result[col*4+row] =
				m[0*4+row]*other[col*4+0] +
					m[1*4+row]*other[col*4+1] +
					m[2*4+row]*other[col*4+2] +
					m[3*4+row]*other[col*4+3]
		}
	}
	return result
}

// TransformPoint transforms a 3D point by this matrix (assumes w=1).
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	x := m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12]
	y := m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13]
	z := m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14]
	w := m[3]*p.X + m[7]*p.Y + m[11]*p.Z + m[15]
	if w != 0 && w != 1 {
		return Vec3{x / w, y / w, z / w}
	}
	return Vec3{x, y, z}
}

// DegToRad converts degrees to radians.
func DegToRad(deg float32) float32 {
	return deg * (math32.Pi / 180)
}

// Saturate clamps v to [0, 1].
func Saturate(v float32) float32 {
	return math32.Max(0, math32.Min(1, v))
}
