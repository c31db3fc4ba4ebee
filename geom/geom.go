// Package geom holds the small geometry vocabulary shared by layout, hit testing and rendering.
package geom

import "math"

// Size is a width/height pair in physical pixels.
type Size struct {
	Width, Height float32
}

// Point is a position in physical pixels.
type Point struct {
	X, Y float32
}

// Area is an axis-aligned rectangle.
type Area struct {
	Origin Point
	Size   Size
}

// AreaFromSize returns an area anchored at (0, 0).
func AreaFromSize(s Size) Area {
	return Area{Size: s}
}

// MinX returns the left edge.
func (a Area) MinX() float32 { return a.Origin.X }

// MinY returns the top edge.
func (a Area) MinY() float32 { return a.Origin.Y }

// MaxX returns the right edge.
func (a Area) MaxX() float32 { return a.Origin.X + a.Size.Width }

// MaxY returns the bottom edge.
func (a Area) MaxY() float32 { return a.Origin.Y + a.Size.Height }

// Center returns the midpoint of the area.
func (a Area) Center() Point {
	return Point{X: a.Origin.X + a.Size.Width/2, Y: a.Origin.Y + a.Size.Height/2}
}

// Contains reports whether p lies inside the area (edges inclusive on the top-left).
func (a Area) Contains(p Point) bool {
	return p.X >= a.MinX() && p.X < a.MaxX() && p.Y >= a.MinY() && p.Y < a.MaxY()
}

// Intersects reports whether two areas overlap.
func (a Area) Intersects(other Area) bool {
	return a.MinX() < other.MaxX() && a.MaxX() > other.MinX() &&
		a.MinY() < other.MaxY() && a.MaxY() > other.MinY()
}

// Local converts a screen point into coordinates relative to the area origin.
func (a Area) Local(p Point) Point {
	return Point{X: p.X - a.Origin.X, Y: p.Y - a.Origin.Y}
}

// Matrix is a 2D affine transform:
//
//	| A C E |
//	| B D F |
//	| 0 0 1 |
type Matrix struct {
	A, B, C, D, E, F float32
}

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{A: 1, D: 1}
}

// Translate returns a translation.
func Translate(dx, dy float32) Matrix {
	return Matrix{A: 1, D: 1, E: dx, F: dy}
}

// Scale returns a scale about the origin.
func Scale(sx, sy float32) Matrix {
	return Matrix{A: sx, D: sy}
}

// Rotate returns a rotation of deg degrees about the origin.
func Rotate(deg float32) Matrix {
	rad := float64(deg) * math.Pi / 180
	sin, cos := float32(math.Sin(rad)), float32(math.Cos(rad))
	return Matrix{A: cos, B: sin, C: -sin, D: cos}
}

// RotateAbout returns a rotation of deg degrees about p.
func RotateAbout(deg float32, p Point) Matrix {
	return Translate(p.X, p.Y).Mul(Rotate(deg)).Mul(Translate(-p.X, -p.Y))
}

// Mul returns m × n, so n is applied first.
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

// Apply transforms p.
func (m Matrix) Apply(p Point) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// IsIdentity reports whether m leaves every point unchanged.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}
