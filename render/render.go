// Package render streams a rotating texture to a display, one frame at a time.
//
// A frame is produced pixel by pixel while it is sent: there is no frame
// buffer on either side of the bus.
package render

import (
	"errors"
	"image"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"periph.io/x/devices/v3/st7789"
	"periph.io/x/devices/v3/st7789/affine"
	"periph.io/x/devices/v3/st7789/rgb565"
	"periph.io/x/devices/v3/st7789/spin"
)

// Display is the part of *st7789.Dev used to send frames.
type Display interface {
	Bounds() image.Rectangle
	BeginPixelStream() error
	Channel() st7789.Channel
}

var _ Display = (*st7789.Dev)(nil)

// Opts is the configuration of a Scheduler.
type Opts struct {
	// Log receives the frame rate at debug level. Nil disables it.
	Log logrus.FieldLogger
	// StatsEvery is the number of frames between two frame rate reports.
	StatsEvery int
	// Clock defaults to the real clock.
	Clock clockwork.Clock
}

// Scheduler renders frames back to back.
type Scheduler struct {
	disp  Display
	ctrl  *spin.Controller
	smp   *affine.Sampler
	state spin.State
	size  image.Point

	log    logrus.FieldLogger
	every  int
	clock  clockwork.Clock
	frames uint64
	since  time.Time
}

// New returns a Scheduler drawing tex on disp, rotated by ctrl.
//
// opts can be nil.
func New(disp Display, ctrl *spin.Controller, tex *rgb565.Texture, opts *Opts) (*Scheduler, error) {
	if disp == nil || ctrl == nil || tex == nil {
		return nil, errors.New("render: display, controller and texture are required")
	}
	if opts == nil {
		opts = &Opts{}
	}
	if opts.StatsEvery < 0 {
		return nil, errors.New("render: StatsEvery must not be negative")
	}
	s := &Scheduler{
		disp:  disp,
		ctrl:  ctrl,
		smp:   affine.NewSampler(tex),
		size:  disp.Bounds().Size(),
		log:   opts.Log,
		every: opts.StatsEvery,
		clock: opts.Clock,
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	s.since = s.clock.Now()
	return s, nil
}

// State returns the rotation of the last frame.
func (s *Scheduler) State() spin.State {
	return s.state
}

// Frames returns the number of frames sent.
func (s *Scheduler) Frames() uint64 {
	return s.frames
}

// Frame polls the controls and sends one full frame, row by row.
//
// The last pixels are drained before Frame returns, so the panel shows the
// whole frame while the next one waits on the controls. The pixel stream is
// left open: the next command sent to the display ends it.
func (s *Scheduler) Frame() error {
	s.ctrl.Update(&s.state)
	s.smp.Load(affine.Rotation(s.state.Angle))

	if err := s.disp.BeginPixelStream(); err != nil {
		return err
	}
	ch := s.disp.Channel()
	for y := 0; y < s.size.Y; y++ {
		s.smp.Row(y)
		for x := 0; x < s.size.X; x++ {
			hi, lo := s.smp.Next()
			if err := ch.Put(hi); err != nil {
				return err
			}
			if err := ch.Put(lo); err != nil {
				return err
			}
		}
	}
	if err := ch.WaitIdle(); err != nil {
		return err
	}
	s.frames++
	s.stats()
	return nil
}

func (s *Scheduler) stats() {
	if s.log == nil || s.every == 0 || s.frames%uint64(s.every) != 0 {
		return
	}
	now := s.clock.Now()
	d := now.Sub(s.since)
	s.since = now
	f := logrus.Fields{
		"frames":   s.frames,
		"angle":    s.state.Angle,
		"velocity": s.state.Velocity,
	}
	if d > 0 {
		f["fps"] = float64(s.every) / d.Seconds()
	}
	s.log.WithFields(f).Debug("frame rate")
}

// Run sends frames until one fails, and returns that error.
func (s *Scheduler) Run() error {
	for {
		if err := s.Frame(); err != nil {
			return err
		}
	}
}
