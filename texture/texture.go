// Package texture holds the bitmap streamed by the spinning demo.
//
// The bitmap is embedded at build time. Replacing asset.bmp with any square,
// power-of-two sized 24 or 32-bit BMP is enough: the sampler derives its
// shifts and masks from the texture size. Nothing is loaded at run time.
package texture

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sync"

	"golang.org/x/image/bmp"
	"periph.io/x/devices/v3/st7789/rgb565"
)

//go:embed asset.bmp
var asset []byte

// decode reads a BMP image and converts it to a texture.
func decode(r io.Reader) (*rgb565.Texture, error) {
	img, err := bmp.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("texture: %w", err)
	}
	tex, err := rgb565.FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("texture: %w", err)
	}
	return tex, nil
}

var embedded = sync.OnceValues(func() (*rgb565.Texture, error) {
	return decode(bytes.NewReader(asset))
})

// Default returns the embedded texture. It is decoded once and shared; callers
// must not modify it.
func Default() (*rgb565.Texture, error) {
	return embedded()
}
