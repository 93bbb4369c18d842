package st7789

import (
	"errors"
	"fmt"
	"time"

	"tinygo.org/x/drivers"
)

// Sitronix ST7789 commands.
const (
	NOP     = 0x00 // No operation
	SWRESET = 0x01 // Software reset
	SLPIN   = 0x10 // Sleep in
	SLPOUT  = 0x11 // Sleep out
	NORON   = 0x13 // Normal display mode on
	INVOFF  = 0x20 // Display inversion off
	INVON   = 0x21 // Display inversion on
	DISPOFF = 0x28 // Display off
	DISPON  = 0x29 // Display on
	CASET   = 0x2A // Column address set
	RASET   = 0x2B // Row address set
	RAMWR   = 0x2C // Memory write
	MADCTL  = 0x36 // Memory data access control
	COLMOD  = 0x3A // Interface pixel format
)

// MADCTL bits.
const (
	madMY = 0x80 // Row address order
	madMX = 0x40 // Column address order
	madMV = 0x20 // Row/column exchange
	madML = 0x10 // Vertical refresh order
)

// colmod16 selects 65K colors, 16 bits per pixel.
const colmod16 = 0x55

// DelayUnit is the granularity of Command.Delay.
const DelayUnit = 5 * time.Millisecond

// ErrInitSequence is wrapped by every init table decoding error.
var ErrInitSequence = errors.New("st7789: malformed init sequence")

// Command is one controller command with its parameters.
type Command struct {
	Op    byte
	Data  []byte
	Delay uint8 // settle time after the command, in DelayUnit
}

// InitSequence is an encoded table of commands.
//
// Each record is [1+len(Data), Delay, Op, Data...]. A single 0 byte
// terminates the table.
type InitSequence []byte

// Encode builds an InitSequence from cmds. It panics if a command carries more
// than 254 parameter bytes.
func Encode(cmds ...Command) InitSequence {
	var s InitSequence
	for _, c := range cmds {
		if len(c.Data) > 254 {
			panic(fmt.Sprintf("st7789: command 0x%02X has %d parameter bytes", c.Op, len(c.Data)))
		}
		s = append(s, byte(1+len(c.Data)), c.Delay, c.Op)
		s = append(s, c.Data...)
	}
	return append(s, 0)
}

// Validate checks that every record is complete and that the table ends with
// exactly one terminator.
func (s InitSequence) Validate() error {
	_, err := s.Commands()
	return err
}

// Commands decodes the table.
func (s InitSequence) Commands() ([]Command, error) {
	var cmds []Command
	i := 0
	for {
		if i >= len(s) {
			return nil, fmt.Errorf("%w: missing terminator", ErrInitSequence)
		}
		n := int(s[i])
		if n == 0 {
			break
		}
		if i+2+n > len(s) {
			return nil, fmt.Errorf("%w: record at offset %d needs %d bytes, %d left", ErrInitSequence, i, 2+n, len(s)-i)
		}
		cmds = append(cmds, Command{
			Op:    s[i+2],
			Data:  s[i+3 : i+2+n],
			Delay: s[i+1],
		})
		i += 2 + n
	}
	if i != len(s)-1 {
		return nil, fmt.Errorf("%w: %d bytes after terminator", ErrInitSequence, len(s)-1-i)
	}
	return cmds, nil
}

// DefaultInitSequence returns the power-on initialization for a panel mounted
// with the given rotation.
//
// It relies on the controller's reset defaults, including the full column and
// row address window.
func DefaultInitSequence(r drivers.Rotation) InitSequence {
	return Encode(
		Command{Op: NOP, Delay: 2},     // power on delay
		Command{Op: SWRESET, Delay: 2}, // software reset
		Command{Op: SLPOUT, Delay: 2},  // exit sleep mode
		Command{Op: COLMOD, Data: []byte{colmod16}},
		Command{Op: MADCTL, Data: []byte{madctl(r)}},
		Command{Op: INVON}, // positive image with RGB565 data
		Command{Op: DISPON},
		Command{Op: NOP, Delay: 1}, // guard time
	)
}

// madctl returns the MADCTL value for r.
func madctl(r drivers.Rotation) byte {
	var v byte
	switch r & 3 {
	case drivers.Rotation0:
		v = 0
	case drivers.Rotation90:
		v = madMX | madMV | madML
	case drivers.Rotation180:
		v = madMX | madMY
	case drivers.Rotation270:
		v = madMY | madMV
	}
	if r&drivers.Rotation0Mirror != 0 {
		v ^= madMX
	}
	return v
}
