// Package affine generates texture addresses for a rotated, tiled view of a
// square texture using 16.16 fixed point arithmetic.
//
// Each screen pixel costs two additions, two shifts and two masks; there is no
// per-pixel trigonometry. Addresses wrap around both texture axes, so the view
// is an infinite tiled canvas rather than a clamped image.
package affine

import (
	"fmt"
	"math"

	"periph.io/x/devices/v3/st7789/rgb565"
)

// FracBits is the number of fractional bits in a Fixed.
const FracBits = 16

// Unit is 1.0 in Fixed, one texel.
const Unit Fixed = 1 << FracBits

// Fixed is a signed 16.16 fixed point number. Arithmetic wraps on overflow.
type Fixed int32

// FromFloat converts f to Fixed, truncating toward zero.
func FromFloat(f float32) Fixed {
	return Fixed(int32(f * float32(Unit)))
}

// Float returns x as a float32.
func (x Fixed) Float() float32 {
	return float32(x) / float32(Unit)
}

func (x Fixed) String() string {
	return fmt.Sprintf("%.5f", x.Float())
}

// Matrix is a 2x2 matrix in Fixed:
//
//	| A B |
//	| C D |
//
// A and C step the texture coordinates per screen column, B and D per screen
// row.
type Matrix struct {
	A, B, C, D Fixed
}

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{A: Unit, D: Unit}
}

// Rotation returns the matrix rotating by theta radians.
func Rotation(theta float32) Matrix {
	s, c := math.Sincos(float64(theta))
	sin, cos := float32(s), float32(c)
	return Matrix{
		A: FromFloat(cos), B: FromFloat(-sin),
		C: FromFloat(sin), D: FromFloat(cos),
	}
}

// Axis generates one texture coordinate.
type Axis struct {
	Acc   Fixed // current coordinate
	XStep Fixed // added after every pixel
	YStep Fixed // row y starts at y*YStep
}

// row rewinds the accumulator to the start of screen row y.
func (a *Axis) row(y int) {
	a.Acc = Fixed(int32(y) * int32(a.YStep))
}

// lane extracts the texture index from the accumulator, already shifted to its
// bit position in the byte address.
type lane struct {
	shift uint
	mask  uint32
}

func (l lane) apply(acc Fixed) uint32 {
	return (uint32(acc) >> l.shift) & l.mask
}

// Sampler walks a texture under an affine transform, one screen pixel at a
// time, producing byte addresses into rgb565.Texture.Pix.
//
// U selects the texture column and V the texture row. With logSize L the
// address is
//
//	((U.Acc >> 15) & (size-1)<<1) + ((V.Acc >> (15-L)) & (size-1)<<(L+1))
//
// that is the integer part of each coordinate, masked to the texture side,
// scaled by 2 bytes per texel and by the row stride.
type Sampler struct {
	U, V Axis

	tex  *rgb565.Texture
	u, v lane
}

// NewSampler returns a Sampler over tex loaded with the identity matrix.
//
// It panics if tex is larger than rgb565.MaxLogSize allows.
func NewSampler(tex *rgb565.Texture) *Sampler {
	l := tex.LogSize
	if l > rgb565.MaxLogSize {
		panic(fmt.Sprintf("affine: texture log size %d exceeds %d", l, rgb565.MaxLogSize))
	}
	idx := uint32(1)<<l - 1
	s := &Sampler{
		tex: tex,
		// -1 because texels are 2 bytes wide.
		u: lane{shift: FracBits - 1, mask: idx << 1},
		v: lane{shift: FracBits - 1 - l, mask: idx << (l + 1)},
	}
	s.Load(Identity())
	return s
}

// Texture returns the texture being sampled.
func (s *Sampler) Texture() *rgb565.Texture {
	return s.tex
}

// Load sets the per-column and per-row steps from m and rewinds to row 0.
func (s *Sampler) Load(m Matrix) {
	s.U.XStep, s.U.YStep = m.A, m.B
	s.V.XStep, s.V.YStep = m.C, m.D
	s.Row(0)
}

// Row rewinds both accumulators to the start of screen row y.
func (s *Sampler) Row(y int) {
	s.U.row(y)
	s.V.row(y)
}

// Addr returns the byte offset in the texture of the current coordinate.
func (s *Sampler) Addr() int {
	return int(s.u.apply(s.U.Acc) + s.v.apply(s.V.Acc))
}

// Next returns the current texel in wire order and advances one column.
func (s *Sampler) Next() (hi, lo byte) {
	hi, lo = s.tex.Texel(s.Addr())
	s.U.Acc += s.U.XStep
	s.V.Acc += s.V.XStep
	return hi, lo
}

// Color returns the current texel without advancing.
func (s *Sampler) Color() rgb565.Color {
	hi, lo := s.tex.Texel(s.Addr())
	return rgb565.Color(hi)<<8 | rgb565.Color(lo)
}
