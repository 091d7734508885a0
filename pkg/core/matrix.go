package core

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Matrix is a 4x4 affine transform. Storage is column-major (mgl64 layout);
// all constructors and accessors here use row/column indices.
type Matrix struct {
	m mgl64.Mat4
}

// Identity returns the identity matrix
func Identity() Matrix {
	return Matrix{m: mgl64.Ident4()}
}

// NewMatrix builds a matrix from row-major values
func NewMatrix(rows [4][4]float64) Matrix {
	var m mgl64.Mat4
	for row := range 4 {
		for col := range 4 {
			m[col*4+row] = rows[row][col]
		}
	}
	return Matrix{m: m}
}

// NewMatrixColumnMajor builds a matrix from 16 column-major values, the
// layout glTF node matrices use
func NewMatrixColumnMajor(values [16]float64) Matrix {
	return Matrix{m: mgl64.Mat4(values)}
}

// RotationQuat returns the rotation of the quaternion (x, y, z, w). The
// quaternion is normalized first.
func RotationQuat(x, y, z, w float64) Matrix {
	q := mgl64.Quat{W: w, V: mgl64.Vec3{x, y, z}}
	return Matrix{m: q.Normalize().Mat4()}
}

// Translation returns a matrix that moves points by (x, y, z)
func Translation(x, y, z float64) Matrix {
	return Matrix{m: mgl64.Translate3D(x, y, z)}
}

// Scaling returns a matrix that scales by (x, y, z)
func Scaling(x, y, z float64) Matrix {
	return Matrix{m: mgl64.Scale3D(x, y, z)}
}

// RotationX rotates around the x axis by radians
func RotationX(radians float64) Matrix {
	c, s := math.Cos(radians), math.Sin(radians)
	return NewMatrix([4][4]float64{
		{1, 0, 0, 0},
		{0, c, -s, 0},
		{0, s, c, 0},
		{0, 0, 0, 1},
	})
}

// RotationY rotates around the y axis by radians
func RotationY(radians float64) Matrix {
	c, s := math.Cos(radians), math.Sin(radians)
	return NewMatrix([4][4]float64{
		{c, 0, s, 0},
		{0, 1, 0, 0},
		{-s, 0, c, 0},
		{0, 0, 0, 1},
	})
}

// RotationZ rotates around the z axis by radians
func RotationZ(radians float64) Matrix {
	c, s := math.Cos(radians), math.Sin(radians)
	return NewMatrix([4][4]float64{
		{c, -s, 0, 0},
		{s, c, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	})
}

// Shearing moves each component in proportion to the other two
func Shearing(xy, xz, yx, yz, zx, zy float64) Matrix {
	return NewMatrix([4][4]float64{
		{1, xy, xz, 0},
		{yx, 1, yz, 0},
		{zx, zy, 1, 0},
		{0, 0, 0, 1},
	})
}

// ViewTransform orients the world relative to an eye at from looking at to
func ViewTransform(from, to, up Tuple) Matrix {
	forward := to.Subtract(from).Normalize()
	left := forward.Cross(up.Normalize())
	trueUp := left.Cross(forward)
	orientation := NewMatrix([4][4]float64{
		{left.X, left.Y, left.Z, 0},
		{trueUp.X, trueUp.Y, trueUp.Z, 0},
		{-forward.X, -forward.Y, -forward.Z, 0},
		{0, 0, 0, 1},
	})
	return orientation.Multiply(Translation(-from.X, -from.Y, -from.Z))
}

// At returns the element at row, col
func (a Matrix) At(row, col int) float64 {
	return a.m[col*4+row]
}

// Multiply returns a * b
func (a Matrix) Multiply(b Matrix) Matrix {
	return Matrix{m: a.m.Mul4(b.m)}
}

// MultiplyTuple transforms a tuple. The W component is carried through,
// so points translate and vectors do not.
func (a Matrix) MultiplyTuple(t Tuple) Tuple {
	v := a.m.Mul4x1(mgl64.Vec4{t.X, t.Y, t.Z, t.W})
	return Tuple{X: v[0], Y: v[1], Z: v[2], W: v[3]}
}

// Then applies b after a. Identity().Then(RotationX(r)).Then(Translation(...))
// reads in application order.
func (a Matrix) Then(b Matrix) Matrix {
	return b.Multiply(a)
}

// Transpose returns the transposed matrix
func (a Matrix) Transpose() Matrix {
	return Matrix{m: a.m.Transpose()}
}

// Determinant returns the determinant
func (a Matrix) Determinant() float64 {
	return a.m.Det()
}

// Invertible reports whether the matrix has an inverse
func (a Matrix) Invertible() bool {
	return math.Abs(a.Determinant()) > 1e-12
}

// Inverse returns the inverse matrix. Inverting a singular matrix is a
// programming error.
func (a Matrix) Inverse() Matrix {
	if !a.Invertible() {
		panic(fmt.Sprintf("core: matrix is not invertible: %v", a))
	}
	return Matrix{m: a.m.Inv()}
}

// Equals compares two matrices element-wise within Epsilon
func (a Matrix) Equals(b Matrix) bool {
	for i := range a.m {
		if !Equal(a.m[i], b.m[i]) {
			return false
		}
	}
	return true
}

func (a Matrix) String() string {
	return fmt.Sprintf("[%g %g %g %g; %g %g %g %g; %g %g %g %g; %g %g %g %g]",
		a.At(0, 0), a.At(0, 1), a.At(0, 2), a.At(0, 3),
		a.At(1, 0), a.At(1, 1), a.At(1, 2), a.At(1, 3),
		a.At(2, 0), a.At(2, 1), a.At(2, 2), a.At(2, 3),
		a.At(3, 0), a.At(3, 1), a.At(3, 2), a.At(3, 3))
}
