package spin

import (
	"math"
	"testing"
	"time"
)

// scripted is an Input whose levels can change between reads.
type scripted struct {
	l Levels
	// releaseAfter releases Reverse after that many reads of it.
	releaseAfter int
	reads        int
}

func (s *scripted) Held(c Control) bool {
	if c == Reverse && s.l.Held(Reverse) {
		s.reads++
		if s.reads > s.releaseAfter {
			s.l &^= 1 << Reverse
		}
	}
	return s.l.Held(c)
}

func newController(in Input, mode ReverseMode) *Controller {
	o := DefaultOpts
	o.Reverse = mode
	c := NewController(in, &o)
	c.sleep = func(time.Duration) {}
	return c
}

func TestVelocityRules(t *testing.T) {
	step := DefaultOpts.Step
	tests := []struct {
		name string
		held Levels
		v    float32
		want float32
	}{
		{"nothing held", 0, 0.5, 0.5},
		{"decrease", Levels(0).With(Decrease), 0.5, 0.5 - step},
		{"decrease at upper bound", Levels(0).With(Decrease), 1, 1 - step},
		{"decrease above bound falls through", Levels(0).With(Decrease), 1.5, 1.5},
		{"increase", Levels(0).With(Increase), -0.5, -0.5 + step},
		{"increase below bound falls through", Levels(0).With(Increase), -1.5, -1.5},
		{"decrease beats increase", Levels(0).With(Decrease, Increase), 0, -step},
		{"reset", Levels(0).With(Reset), 0.7, 0},
		{"increase beats reset", Levels(0).With(Increase, Reset), 0, step},
		{"centre snaps", Levels(0).With(Centre), 0.3, -0.02},
		{"reset beats centre", Levels(0).With(Reset, Centre), 0.3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newController(tt.held, ReverseBlocking)
			s := State{Velocity: tt.v}
			c.Update(&s)
			if s.Velocity != tt.want {
				t.Errorf("Velocity = %v, want %v", s.Velocity, tt.want)
			}
		})
	}
}

func TestAngleRules(t *testing.T) {
	full := AngleMax
	over, under := full+0.5, float32(-0.5)
	tests := []struct {
		name  string
		held  Levels
		angle float32
		v     float32
		want  float32
	}{
		{"integrates", 0, 1, 0, 1},
		{"up", Levels(0).With(Up), 1, 0, 0},
		{"down", Levels(0).With(Down), 1, 0, AngleMax * 0.5},
		{"left", Levels(0).With(Left), 1, 0, AngleMax * 0.25},
		{"right", Levels(0).With(Right), 1, 0, AngleMax * 0.75},
		{"up beats down", Levels(0).With(Up, Down), 1, 0, 0},
		{"wrap", 0, over, 0, over - full},
		{"wrap at bound", 0, AngleMax, 0, 0},
		{"wrap beats preset", Levels(0).With(Down), over, 0, over - full},
		{"negative wraps up", 0, under, 0, under + full},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newController(tt.held, ReverseBlocking)
			s := State{Angle: tt.angle, Velocity: tt.v}
			c.Update(&s)
			if s.Angle != tt.want {
				t.Errorf("Angle = %v, want %v", s.Angle, tt.want)
			}
		})
	}
}

func TestAngleIntegratesNewVelocity(t *testing.T) {
	c := newController(Levels(0).With(Increase), ReverseBlocking)
	s := State{Angle: 1}
	c.Update(&s)
	one, step := float32(1), DefaultOpts.Step
	if want := one + step; s.Angle != want {
		t.Errorf("Angle = %v, want %v", s.Angle, want)
	}
}

func TestCentreSetsBothRules(t *testing.T) {
	c := newController(Levels(0).With(Centre), ReverseBlocking)
	s := State{Angle: 1, Velocity: 0.1}
	c.Update(&s)
	if s.Velocity != -0.02 || s.Angle != AngleMax {
		t.Errorf("State = %+v, want {Angle: %v, Velocity: -0.02}", s, AngleMax)
	}
	// Held again: the angle wraps before the preset applies.
	c.Update(&s)
	if s.Angle != 0 {
		t.Errorf("Angle = %v, want 0", s.Angle)
	}
}

func TestAngleWrapConverges(t *testing.T) {
	for _, start := range []float32{AngleMax, AngleMax * 1.5, AngleMax*3 + 0.1, 40} {
		c := newController(Levels(0), ReverseBlocking)
		s := State{Angle: start}
		bound := int(math.Ceil(float64(start / AngleMax)))
		n := 0
		for s.Angle >= AngleMax {
			want := s.Angle - AngleMax
			c.Update(&s)
			if s.Angle != want {
				t.Fatalf("start %v: Angle = %v, want %v", start, s.Angle, want)
			}
			n++
			if n > bound {
				t.Fatalf("start %v: not in range after %d updates", start, n)
			}
		}
		if s.Angle < 0 {
			t.Errorf("start %v: Angle = %v, want >= 0", start, s.Angle)
		}
	}
}

func TestReverseBlocking(t *testing.T) {
	in := &scripted{l: Levels(0).With(Reverse, Left), releaseAfter: 3}
	c := newController(in, ReverseBlocking)
	var polls int
	c.sleep = func(time.Duration) { polls++ }

	s := State{Angle: 1, Velocity: 0.25}
	c.Update(&s)
	if s.Velocity != -0.25 {
		t.Errorf("Velocity = %v, want -0.25", s.Velocity)
	}
	// One read is taken by Sample, the fourth sees the release.
	if polls != 2 {
		t.Errorf("polled %d times while held, want 2", polls)
	}
	if s.Angle != AngleMax*0.25 {
		t.Errorf("Angle = %v, want the Left preset", s.Angle)
	}

	// Released: a single toggle per press.
	c.Update(&s)
	if s.Velocity != -0.25 {
		t.Errorf("Velocity after release = %v, want -0.25", s.Velocity)
	}
}

func TestReverseEdge(t *testing.T) {
	in := &scripted{l: Levels(0).With(Reverse), releaseAfter: 1 << 30}
	c := newController(in, ReverseEdge)
	c.sleep = func(time.Duration) { t.Fatal("ReverseEdge must not block") }

	s := State{Velocity: 0.25}
	for i := 0; i < 3; i++ {
		c.Update(&s)
		if s.Velocity != 0.25 {
			t.Fatalf("frame %d: Velocity = %v while held, want 0.25", i, s.Velocity)
		}
	}
	in.l = 0
	c.Update(&s)
	if s.Velocity != -0.25 {
		t.Errorf("Velocity on release = %v, want -0.25", s.Velocity)
	}
	c.Update(&s)
	if s.Velocity != -0.25 {
		t.Errorf("Velocity after release = %v, want -0.25", s.Velocity)
	}
}

func TestReverseEdgeKeptBehindHigherRules(t *testing.T) {
	step := DefaultOpts.Step
	c := newController(Levels(0).With(Reverse), ReverseEdge)
	s := State{Velocity: 0.25}
	c.Update(&s)

	// Released while Increase wins the frame.
	c.in = Levels(0).With(Increase)
	c.Update(&s)
	v := float32(0.25) + step
	if s.Velocity != v {
		t.Fatalf("Velocity = %v, want %v", s.Velocity, v)
	}

	c.in = Levels(0)
	c.Update(&s)
	if s.Velocity != -v {
		t.Errorf("Velocity = %v, want the pending reversal to %v", s.Velocity, -v)
	}
	c.Update(&s)
	if s.Velocity != -v {
		t.Errorf("Velocity = %v, want a single reversal", s.Velocity)
	}
}

func TestReverseLosesToHigherRules(t *testing.T) {
	for _, mode := range []ReverseMode{ReverseBlocking, ReverseEdge} {
		c := newController(Levels(0).With(Reverse, Reset), mode)
		c.sleep = func(time.Duration) { t.Fatal("must not block when Reset is held") }
		s := State{Velocity: 0.5}
		c.Update(&s)
		if s.Velocity != 0 {
			t.Errorf("mode %d: Velocity = %v, want 0", mode, s.Velocity)
		}
	}
}

func TestLevels(t *testing.T) {
	l := Levels(0).With(Up, Reverse)
	for c := Control(0); c < numControls; c++ {
		want := c == Up || c == Reverse
		if l.Held(c) != want {
			t.Errorf("Held(%s) = %v, want %v", c, l.Held(c), want)
		}
	}
	if got := Sample(l); got != l {
		t.Errorf("Sample() = %b, want %b", got, l)
	}
}

func TestControlNames(t *testing.T) {
	for c := Control(0); c < numControls; c++ {
		got, err := ParseControl(c.String())
		if err != nil || got != c {
			t.Errorf("ParseControl(%q) = %v, %v", c.String(), got, err)
		}
	}
	if _, err := ParseControl("select"); err == nil {
		t.Error("ParseControl should reject unknown names")
	}
	if s := Control(42).String(); s != "Control(42)" {
		t.Errorf("String() = %q", s)
	}
}
