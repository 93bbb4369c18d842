// Package rgb565 provides the 16-bit RGB565 pixel format used by the ST7789
// display controller, and a square texture image stored in the controller's
// wire order.
//
// Each pixel is 5 bits of red, 6 bits of green and 5 bits of blue packed into a
// uint16. On the wire, and in Texture.Pix, the high byte is sent first:
//
//	Color:  0xF800 (pure red)
//	Bytes:  0xF8 0x00
//
// This package provides:
//
// - Color: a color.Color holding one RGB565 value
// - Model: a color.Model converting standard Go colors to Color
// - Texture: a square, power-of-two sized image.Image whose side is 1<<LogSize
//
// Example usage:
//
//	// Create a 256x256 texture
//	tex := rgb565.NewTexture(8)
//
//	// Paint a texel
//	tex.SetRGB565(3, 4, rgb565.New(0xFF, 0x80, 0x00))
//
//	// Convert any square power-of-two image
//	tex, err := rgb565.FromImage(img)
package rgb565
