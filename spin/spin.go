// Package spin turns panel controls into the rotation of the displayed
// texture.
//
// Once per frame, Controller.Update first updates the angular velocity, then
// the angle. Each is a priority list: the first matching rule wins, whatever
// happened in previous frames.
//
// Velocity:
//
//	Decrease held and v <= +1   v -= Step
//	Increase held and v >= -1   v += Step
//	Reset held                  v = 0
//	Reverse pressed             v = -v, once per press
//	Centre held                 v = SnapVelocity
//
// Angle:
//
//	angle >= AngleMax           angle -= AngleMax (angle < 0: += AngleMax)
//	Up, Left, Down, Right held  angle = 0, 1/4, 1/2, 3/4 of AngleMax
//	Centre held                 angle = AngleMax
//	otherwise                   angle += v
package spin

import (
	"math"
	"time"
)

// AngleMax is a full turn.
const AngleMax float32 = 2 * math.Pi

// State is the rotation of the texture.
type State struct {
	Angle    float32 // radians
	Velocity float32 // radians per frame
}

// ReverseMode selects how the Reverse control is debounced.
type ReverseMode uint8

const (
	// ReverseBlocking waits, inside Update, for Reverse to be released and then
	// negates the velocity. The frame loop stalls while the control is held.
	ReverseBlocking ReverseMode = iota
	// ReverseEdge negates the velocity once Reverse is seen released after
	// being held. Update never blocks. A release seen while Decrease, Increase
	// or Reset wins the frame is kept until a later frame can apply it.
	ReverseEdge
)

// Opts is the configuration of a Controller.
type Opts struct {
	Step         float32 // velocity change per frame
	SnapVelocity float32 // velocity set by Centre
	Reverse      ReverseMode
	Poll         time.Duration // ReverseBlocking polling interval
}

// DefaultOpts is used when nil options are passed to NewController.
var DefaultOpts = Opts{
	Step:         0.0002,
	SnapVelocity: -0.02,
	Reverse:      ReverseBlocking,
	Poll:         time.Millisecond,
}

// Controller updates a State from the controls, once per frame.
type Controller struct {
	in   Input
	opts Opts
	prev Levels
	// flip is a ReverseEdge release not applied yet.
	flip bool

	sleep func(time.Duration)
}

// NewController returns a Controller reading in.
func NewController(in Input, opts *Opts) *Controller {
	if opts == nil {
		opts = &DefaultOpts
	}
	return &Controller{in: in, opts: *opts, sleep: time.Sleep}
}

// Update samples the controls and advances s by one frame.
//
// With ReverseBlocking, Update does not return while Reverse is held (unless a
// higher priority velocity rule matches).
func (c *Controller) Update(s *State) {
	l := Sample(c.in)
	if c.opts.Reverse == ReverseEdge && c.prev.Held(Reverse) && !l.Held(Reverse) {
		c.flip = true
	}
	s.Velocity, l = c.velocity(s.Velocity, l)
	s.Angle = angle(s.Angle, s.Velocity, l)
	c.prev = l
}

// velocity applies the velocity rules. It returns the levels the angle rules
// must use, which are sampled again after a blocking wait.
func (c *Controller) velocity(v float32, l Levels) (float32, Levels) {
	switch {
	case l.Held(Decrease) && v <= 1:
		return v - c.opts.Step, l
	case l.Held(Increase) && v >= -1:
		return v + c.opts.Step, l
	case l.Held(Reset):
		return 0, l
	}

	switch c.opts.Reverse {
	case ReverseBlocking:
		if l.Held(Reverse) {
			for c.in.Held(Reverse) {
				c.sleep(c.opts.Poll)
			}
			return -v, Sample(c.in)
		}
	case ReverseEdge:
		if l.Held(Reverse) {
			return v, l
		}
		if c.flip {
			c.flip = false
			return -v, l
		}
	}

	if l.Held(Centre) {
		return c.opts.SnapVelocity, l
	}
	return v, l
}

// angle applies the angle rules.
func angle(a, v float32, l Levels) float32 {
	switch {
	case a >= AngleMax:
		return a - AngleMax
	case a < 0:
		return a + AngleMax
	case l.Held(Up):
		return AngleMax * 0.00
	case l.Held(Down):
		return AngleMax * 0.50
	case l.Held(Left):
		return AngleMax * 0.25
	case l.Held(Right):
		return AngleMax * 0.75
	case l.Held(Centre):
		return AngleMax * 1.00
	}
	return a + v
}
