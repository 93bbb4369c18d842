package spin

import (
	"testing"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestPinInput(t *testing.T) {
	a := &gpiotest.Pin{N: "KEY_A"}
	up := &gpiotest.Pin{N: "JOY_UP"}
	in, err := NewPinInput(map[Control]gpio.PinIn{Decrease: a, Up: up})
	if err != nil {
		t.Fatal(err)
	}
	if a.Pull() != gpio.PullUp || up.Pull() != gpio.PullUp {
		t.Error("pins should be configured with pull-up")
	}

	// Pulled up: released.
	if Sample(in) != 0 {
		t.Errorf("Sample() = %b, want nothing held", Sample(in))
	}

	// Active low.
	a.Out(gpio.Low)
	if got, want := Sample(in), Levels(0).With(Decrease); got != want {
		t.Errorf("Sample() = %b, want %b", got, want)
	}
	if in.Held(Centre) {
		t.Error("control without a pin should never be held")
	}
}

func TestNewPinInputMissingPin(t *testing.T) {
	if _, err := NewPinInput(map[Control]gpio.PinIn{Reset: nil}); err == nil {
		t.Error("NewPinInput should reject a nil pin")
	}
}
