package rgb565

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// MaxLogSize is the largest supported texture side, as a power of two.
//
// The sampler packs both texture axes into one 32-bit address with one bit of
// per-texel byte offset, so 2*MaxLogSize+1 must fit in 32 bits.
const MaxLogSize = 15

// Color is a 16-bit RGB565 color.
type Color uint16

// New packs 8-bit red, green and blue channels into a Color, dropping the low
// bits of each channel.
func New(r, g, b uint8) Color {
	return Color(uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b)>>3)
}

// RGBA implements color.Color.
// Channels are expanded by replicating their high bits so that 0x1F and 0x3F
// map to 0xFFFF.
func (c Color) RGBA() (r, g, b, a uint32) {
	r5 := uint32(c>>11) & 0x1F
	g6 := uint32(c>>5) & 0x3F
	b5 := uint32(c) & 0x1F
	r8 := r5<<3 | r5>>2
	g8 := g6<<2 | g6>>4
	b8 := b5<<3 | b5>>2
	return r8 * 0x101, g8 * 0x101, b8 * 0x101, 0xFFFF
}

// Bytes returns the color in wire order: high byte first.
func (c Color) Bytes() (hi, lo byte) {
	return byte(c >> 8), byte(c)
}

// toRGB565 converts any color.Color to Color.
func toRGB565(c color.Color) color.Color {
	if v, ok := c.(Color); ok {
		return v
	}
	r, g, b, _ := c.RGBA()
	return New(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// Model converts colors to Color.
var Model = color.ModelFunc(toRGB565)

// Texture is a square RGB565 image with a power-of-two side.
//
// Pix holds two bytes per texel, high byte first, rows top to bottom. The
// layout matches the sampler's byte addressing: texel (u, v) starts at
// v<<(LogSize+1) + u<<1.
type Texture struct {
	Pix     []byte
	Stride  int
	LogSize uint
}

// NewTexture returns a black texture of side 1<<logSize.
func NewTexture(logSize uint) *Texture {
	if logSize > MaxLogSize {
		panic(fmt.Sprintf("rgb565: log size %d exceeds %d", logSize, MaxLogSize))
	}
	size := 1 << logSize
	return &Texture{
		Pix:     make([]byte, 2*size*size),
		Stride:  2 * size,
		LogSize: logSize,
	}
}

// FromImage converts img into a Texture.
// img must be square and its side a power of two.
func FromImage(img image.Image) (*Texture, error) {
	b := img.Bounds()
	if b.Dx() != b.Dy() {
		return nil, fmt.Errorf("rgb565: texture must be square, got %dx%d", b.Dx(), b.Dy())
	}
	logSize, ok := log2(b.Dx())
	if !ok {
		return nil, fmt.Errorf("rgb565: texture side %d is not a power of two", b.Dx())
	}
	if logSize > MaxLogSize {
		return nil, errors.New("rgb565: texture too large")
	}
	t := NewTexture(logSize)
	draw.Draw(t, t.Bounds(), img, b.Min, draw.Src)
	return t, nil
}

// log2 returns n's base-2 logarithm when n is a positive power of two.
func log2(n int) (uint, bool) {
	if n <= 0 || n&(n-1) != 0 {
		return 0, false
	}
	var l uint
	for n > 1 {
		n >>= 1
		l++
	}
	return l, true
}

// Size returns the side of the texture in texels.
func (t *Texture) Size() int {
	return 1 << t.LogSize
}

// ColorModel implements image.Image.
func (t *Texture) ColorModel() color.Model {
	return Model
}

// Bounds implements image.Image.
func (t *Texture) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.Size(), t.Size())
}

// At implements image.Image.
func (t *Texture) At(x, y int) color.Color {
	return t.RGB565At(x, y)
}

// RGB565At returns the texel at (x, y), or black outside the texture.
func (t *Texture) RGB565At(x, y int) Color {
	if !(image.Point{X: x, Y: y}.In(t.Bounds())) {
		return 0
	}
	i := t.PixOffset(x, y)
	return Color(t.Pix[i])<<8 | Color(t.Pix[i+1])
}

// Set implements draw.Image.
func (t *Texture) Set(x, y int, c color.Color) {
	t.SetRGB565(x, y, Model.Convert(c).(Color))
}

// SetRGB565 sets the texel at (x, y) without color conversion.
func (t *Texture) SetRGB565(x, y int, c Color) {
	if !(image.Point{X: x, Y: y}.In(t.Bounds())) {
		return
	}
	i := t.PixOffset(x, y)
	t.Pix[i], t.Pix[i+1] = c.Bytes()
}

// PixOffset returns the index of the first byte of texel (x, y) in Pix.
func (t *Texture) PixOffset(x, y int) int {
	return y*t.Stride + x*2
}

// Texel returns the two bytes starting at byte offset off, as produced by the
// affine sampler.
func (t *Texture) Texel(off int) (hi, lo byte) {
	return t.Pix[off], t.Pix[off+1]
}
