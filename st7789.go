// Package st7789 controls a Sitronix ST7789 RGB565 LCD controller over a
// synchronous serial bus.
//
// The driver keeps no frame buffer. Pixels are streamed to the controller as
// they are produced, two bytes per pixel, high byte first.
//
// See the examples for how to use this package.
package st7789

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/st7789/rgb565"
	"tinygo.org/x/drivers"
)

// ErrHalted is returned by every operation after Halt.
var ErrHalted = errors.New("st7789: halted")

// Opts is the configuration for the ST7789 display.
type Opts struct {
	// Display dimensions in pixels
	W int // Width (default: 240, ≤320)
	H int // Height (default: 240, ≤320)

	// Physical orientation of the panel, written to MADCTL by the default
	// init sequence.
	Rotation drivers.Rotation

	// Offset of the visible area in controller RAM, used by SetWindow.
	OffsetX, OffsetY int

	// SPI clock (default: 62.5MHz)
	Hz physic.Frequency

	// Settle time before and after every DC/CS change.
	Settle time.Duration

	// Optional pins
	CS  gpio.PinOut // Chip select, active low (nil if the bus drives it)
	RST gpio.PinOut // Hardware reset, active low
	BL  gpio.PinOut // Backlight

	// Init overrides the power-on command table.
	Init InitSequence
}

// DefaultOpts is used when nil options are passed to NewSPI or New.
//
// It matches a 240x240 panel mounted at 90°.
var DefaultOpts = Opts{
	W:        240,
	H:        240,
	Rotation: drivers.Rotation90,
	Hz:       62500 * physic.KiloHertz,
	Settle:   time.Microsecond,
}

// Dev is the device handle for the ST7789 display.
type Dev struct {
	// Communication
	ch Channel
	dc gpio.PinOut // Data/Command pin, low for commands
	cs gpio.PinOut // Chip select pin (optional)

	rect   image.Rectangle
	offset image.Point
	settle time.Duration

	// sleep is time.Sleep; tests replace it.
	sleep func(time.Duration)

	halted bool
}

var _ display.Drawer = (*Dev)(nil)

// NewSPI creates a new ST7789 device connected via SPI.
//
// The SPI port is configured in Mode0, 8-bit transfers. When opts.CS is set
// the port is connected with spi.NoCS and the driver handles chip select
// itself, so that a pixel stream can span many bus transactions.
//
// opts can be nil to use DefaultOpts.
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		o := DefaultOpts
		opts = &o
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	hz := opts.Hz
	if hz == 0 {
		hz = DefaultOpts.Hz
	}
	mode := spi.Mode0
	if opts.CS != nil {
		mode |= spi.NoCS
	}
	c, err := p.Connect(hz, mode, 8)
	if err != nil {
		return nil, fmt.Errorf("st7789: %w", err)
	}
	return New(NewBufferedChannel(c), dc, opts.CS, opts)
}

// New creates a new ST7789 device writing to ch.
//
// opts.CS is ignored: chip select is passed as cs, which can be nil when the
// bus handles it.
func New(ch Channel, dc, cs gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		o := DefaultOpts
		opts = &o
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if dc == nil {
		return nil, errors.New("st7789: dc pin is required")
	}
	d := &Dev{
		ch:     ch,
		dc:     dc,
		cs:     cs,
		rect:   image.Rect(0, 0, opts.W, opts.H),
		offset: image.Pt(opts.OffsetX, opts.OffsetY),
		settle: opts.Settle,
		sleep:  time.Sleep,
	}
	if err := d.init(opts); err != nil {
		return nil, err
	}
	return d, nil
}

func (o *Opts) validate() error {
	if o.W <= 0 || o.W > 320 {
		return errors.New("st7789: width must be between 1 and 320")
	}
	if o.H <= 0 || o.H > 320 {
		return errors.New("st7789: height must be between 1 and 320")
	}
	if o.OffsetX < 0 || o.OffsetY < 0 {
		return errors.New("st7789: offsets must not be negative")
	}
	if o.Init != nil {
		if err := o.Init.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// init resets the controller and sends the initialization sequence.
func (d *Dev) init(opts *Opts) error {
	// Idle state: data mode, deselected.
	if err := d.signal(gpio.High, gpio.High); err != nil {
		return err
	}

	if opts.RST != nil {
		if err := opts.RST.Out(gpio.Low); err != nil {
			return fmt.Errorf("st7789: failed to pull RST low: %w", err)
		}
		d.sleep(50 * time.Millisecond)
		if err := opts.RST.Out(gpio.High); err != nil {
			return fmt.Errorf("st7789: failed to pull RST high: %w", err)
		}
		d.sleep(120 * time.Millisecond)
	}

	seq := opts.Init
	if seq == nil {
		seq = DefaultInitSequence(opts.Rotation)
	}
	if err := d.RunInitSequence(seq); err != nil {
		return err
	}

	if opts.BL != nil {
		if err := opts.BL.Out(gpio.High); err != nil {
			return fmt.Errorf("st7789: failed to turn on backlight: %w", err)
		}
	}
	return nil
}

// Channel returns the byte stream to the controller.
//
// After BeginPixelStream, pixel bytes are written here directly.
func (d *Dev) Channel() Channel {
	return d.ch
}

// signal drains the channel, then drives DC and CS.
func (d *Dev) signal(dc, cs gpio.Level) error {
	if err := d.ch.WaitIdle(); err != nil {
		return err
	}
	d.wait(d.settle)
	if err := d.dc.Out(dc); err != nil {
		return fmt.Errorf("st7789: failed to set DC: %w", err)
	}
	if d.cs != nil {
		if err := d.cs.Out(cs); err != nil {
			return fmt.Errorf("st7789: failed to set CS: %w", err)
		}
	}
	d.wait(d.settle)
	return nil
}

func (d *Dev) wait(t time.Duration) {
	if t > 0 {
		d.sleep(t)
	}
}

// WriteCommand sends one command with its parameters and deselects the
// controller.
//
// The channel is drained before every DC/CS change, so it is idle when
// WriteCommand returns.
func (d *Dev) WriteCommand(op byte, payload ...byte) error {
	if d.halted {
		return ErrHalted
	}
	return d.writeCommand(op, payload)
}

func (d *Dev) writeCommand(op byte, payload []byte) error {
	if err := d.signal(gpio.Low, gpio.Low); err != nil {
		return err
	}
	if err := d.ch.Put(op); err != nil {
		return err
	}
	if len(payload) != 0 {
		if err := d.signal(gpio.High, gpio.Low); err != nil {
			return err
		}
		for _, b := range payload {
			if err := d.ch.Put(b); err != nil {
				return err
			}
		}
	}
	return d.signal(gpio.High, gpio.High)
}

// RunInitSequence sends every command of seq in order, waiting each record's
// delay after it.
//
// seq is validated before anything is sent. Nothing is read back from the
// controller.
func (d *Dev) RunInitSequence(seq InitSequence) error {
	if d.halted {
		return ErrHalted
	}
	if err := seq.Validate(); err != nil {
		return err
	}
	for i := 0; seq[i] != 0; i += 2 + int(seq[i]) {
		n := int(seq[i])
		if err := d.writeCommand(seq[i+2], seq[i+3:i+2+n]); err != nil {
			return err
		}
		d.wait(time.Duration(seq[i+1]) * DelayUnit)
	}
	return nil
}

// BeginPixelStream starts a memory write and leaves the controller selected
// in data mode.
//
// The caller then writes raw pixel bytes to Channel(). The transaction ends
// implicitly with the next command.
func (d *Dev) BeginPixelStream() error {
	if d.halted {
		return ErrHalted
	}
	if err := d.writeCommand(RAMWR, nil); err != nil {
		return err
	}
	return d.signal(gpio.High, gpio.Low)
}

// SetWindow restricts the following memory writes to r, in display
// coordinates.
func (d *Dev) SetWindow(r image.Rectangle) error {
	if d.halted {
		return ErrHalted
	}
	r = r.Intersect(d.rect)
	if r.Empty() {
		return errors.New("st7789: window outside of display")
	}
	r = r.Add(d.offset)
	x0, x1 := r.Min.X, r.Max.X-1
	y0, y1 := r.Min.Y, r.Max.Y-1
	if err := d.writeCommand(CASET, []byte{byte(x0 >> 8), byte(x0), byte(x1 >> 8), byte(x1)}); err != nil {
		return err
	}
	return d.writeCommand(RASET, []byte{byte(y0 >> 8), byte(y0), byte(y1 >> 8), byte(y1)})
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return rgb565.Model
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Draw streams src to the dst area of the display.
//
// There is no frame buffer: every call sends the whole clipped area.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return ErrHalted
	}
	r := dst.Intersect(d.rect)
	if r.Empty() {
		return nil
	}
	// Keep src aligned when dst was clipped.
	sp = sp.Add(r.Min.Sub(dst.Min))

	if err := d.SetWindow(r); err != nil {
		return err
	}
	if err := d.BeginPixelStream(); err != nil {
		return err
	}
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			c := rgb565.Model.Convert(src.At(sp.X+x, sp.Y+y)).(rgb565.Color)
			hi, lo := c.Bytes()
			if err := d.ch.Put(hi); err != nil {
				return err
			}
			if err := d.ch.Put(lo); err != nil {
				return err
			}
		}
	}
	return d.ch.WaitIdle()
}

// Invert inverts the display colors.
//
// The default init sequence turns inversion on, which is what most ST7789
// panels need to show RGB565 data as a positive image.
func (d *Dev) Invert(invert bool) error {
	if d.halted {
		return ErrHalted
	}
	op := byte(INVOFF)
	if invert {
		op = INVON
	}
	return d.writeCommand(op, nil)
}

// Halt turns the display off and puts the controller to sleep.
// After calling Halt, the display will not respond to further commands
// until the device is re-initialized.
func (d *Dev) Halt() error {
	if d.halted {
		return nil
	}
	if err := d.writeCommand(DISPOFF, nil); err != nil {
		return err
	}
	if err := d.writeCommand(SLPIN, nil); err != nil {
		return err
	}
	d.halted = true
	return nil
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("st7789.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}
