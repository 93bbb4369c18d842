// Package st7789 controls a Sitronix ST7789 RGB565 LCD controller.
//
// The ST7789 is a 262K color TFT controller with 240×320 pixels of internal
// RAM, commonly sold as 240×240, 240×135 and 320×240 SPI modules. This driver
// implements the display.Drawer interface from periph.io, but its main purpose
// is streaming: pixels are computed on the fly and sent without a frame buffer.
//
// # Display Characteristics
//
// - 16 bits per pixel, RGB565, sent high byte first
// - Write-only use: the protocol is open loop, nothing is read back
// - MADCTL selects the physical orientation (see Opts.Rotation)
// - Offsets place smaller panels inside the 240×320 RAM (see Opts.OffsetX)
//
// # Hardware Connection
//
//	Display Pin → System Pin
//	GND         → GND
//	VCC         → 3.3V
//	SCL/CLK     → SPI Clock (SCLK)
//	SDA/DIN     → SPI Data (MOSI)
//	DC          → GPIO (any available pin)
//	CS          → SPI Chip Select, or a GPIO passed as Opts.CS
//	RST         → Optional: GPIO for hardware reset
//	BL          → Optional: GPIO for the backlight
//
// # Protocol
//
// The controller samples two signals besides the data line: DC (low for a
// command byte, high for parameters and pixels) and CS (active low). Changing
// either while a byte is still being shifted out corrupts the transfer, so the
// driver drains its Channel before every change and waits Opts.Settle around
// it.
//
// A command is sent as:
//
//	drain; DC=0 CS=0; opcode; [drain; DC=1 CS=0; parameters]; drain; DC=1 CS=1
//
// # Init Sequence
//
// Power-on configuration is a byte table of records
//
//	[1+len(params), delay, opcode, params...]
//
// terminated by a single 0. The delay is in units of 5ms. Use Encode to build
// one and DefaultInitSequence for the stock configuration.
//
// # Streaming Pixels
//
// BeginPixelStream issues a memory write and leaves the controller selected in
// data mode. Pixel bytes are then put on the Channel directly:
//
//	if err := dev.BeginPixelStream(); err != nil {
//		return err
//	}
//	ch := dev.Channel()
//	for i := 0; i < 240*240; i++ {
//		hi, lo := next()
//		ch.Put(hi)
//		ch.Put(lo)
//	}
//
// The next command closes the memory write.
//
// # Backpressure
//
// BufferedChannel queues up to conn.Limits.MaxTxSize() bytes and transmits the
// queue synchronously when it is full, so Put blocks while the bus is busy.
// Any type with a Tx(w, r []byte) error method can be used as the bus, which
// includes periph's spi.Conn and TinyGo's drivers.SPI.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"image"
//
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/conn/v3/spi/spireg"
//		"periph.io/x/devices/v3/st7789"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		host.Init()
//		b, _ := spireg.Open("")
//		dev, _ := st7789.NewSPI(b, gpioreg.ByName("GPIO25"), nil)
//		defer dev.Halt()
//		dev.Draw(dev.Bounds(), img, image.Point{})
//	}
//
// # Datasheet
//
// https://www.rhydolabz.com/documents/33/ST7789.pdf
package st7789
