package spin

import (
	"fmt"
	"strings"

	"periph.io/x/conn/v3/gpio"
)

// Control is one physical control of the panel.
type Control uint8

// Controls of a 4 button, 5-way joystick panel.
const (
	Decrease Control = iota // KEY_A
	Increase                // KEY_B
	Reset                   // KEY_X
	Reverse                 // KEY_Y
	Up
	Down
	Left
	Right
	Centre
	numControls
)

var controlNames = [numControls]string{"decrease", "increase", "reset", "reverse", "up", "down", "left", "right", "centre"}

func (c Control) String() string {
	if c < numControls {
		return controlNames[c]
	}
	return fmt.Sprintf("Control(%d)", uint8(c))
}

// ParseControl returns the control named s, as returned by Control.String.
func ParseControl(s string) (Control, error) {
	for i, n := range controlNames {
		if strings.EqualFold(n, s) {
			return Control(i), nil
		}
	}
	return 0, fmt.Errorf("spin: unknown control %q", s)
}

// Input reports whether a control is held down.
type Input interface {
	Held(c Control) bool
}

// Levels is a snapshot of every control, one bit per Control.
type Levels uint16

// Held reports whether c was held when the snapshot was taken.
func (l Levels) Held(c Control) bool {
	return l&(1<<c) != 0
}

// With returns l with c held.
func (l Levels) With(c ...Control) Levels {
	for _, v := range c {
		l |= 1 << v
	}
	return l
}

// Sample reads every control of in once.
func Sample(in Input) Levels {
	var l Levels
	for c := Control(0); c < numControls; c++ {
		if in.Held(c) {
			l |= 1 << c
		}
	}
	return l
}

// PinInput reads controls from active-low GPIO pins.
// Controls without a pin are never held.
type PinInput map[Control]gpio.PinIn

// NewPinInput configures every pin as an input with pull-up.
func NewPinInput(pins map[Control]gpio.PinIn) (PinInput, error) {
	for c, p := range pins {
		if p == nil {
			return nil, fmt.Errorf("spin: no pin for %s", c)
		}
		if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("spin: failed to configure %s on %s: %w", c, p, err)
		}
	}
	return PinInput(pins), nil
}

// Held implements Input.
func (p PinInput) Held(c Control) bool {
	pin, ok := p[c]
	return ok && pin.Read() == gpio.Low
}
