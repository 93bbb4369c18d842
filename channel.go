package st7789

import (
	"fmt"

	"periph.io/x/conn/v3"
	"tinygo.org/x/drivers"
)

// Channel is the byte stream to the display controller.
//
// Bytes reach the controller in exactly the order they were put. The DC and
// CS lines are sampled relative to byte boundaries, so they must only change
// after WaitIdle returned.
type Channel interface {
	// Put enqueues one byte. It blocks while the transmit queue is full.
	Put(b byte) error
	// WaitIdle blocks until every enqueued byte has been transmitted.
	WaitIdle() error
}

// Bus is a write capable serial bus.
//
// It is implemented by periph's conn.Conn (and so spi.Conn) and by TinyGo's
// drivers.SPI, which wraps machine.SPI.
type Bus interface {
	Tx(w, r []byte) error
}

var (
	_ Bus = conn.Conn(nil)
	_ Bus = drivers.SPI(nil)

	_ Channel = (*BufferedChannel)(nil)
)

// defaultTxSize is the queue size used when the bus does not report a limit.
const defaultTxSize = 4096

// BufferedChannel is a Channel backed by a bounded queue in front of a Bus.
//
// When the queue is full, Put transmits it synchronously before accepting the
// byte; this is the only backpressure in the pipeline. Transmission errors are
// not recoverable: the queued bytes are dropped and the error returned.
type BufferedChannel struct {
	bus Bus
	buf []byte
}

// NewBufferedChannel returns a BufferedChannel over bus.
//
// The queue holds conn.Limits.MaxTxSize() bytes when bus implements
// conn.Limits, 4096 otherwise.
func NewBufferedChannel(bus Bus) *BufferedChannel {
	size := 0
	if l, ok := bus.(conn.Limits); ok {
		size = l.MaxTxSize()
	}
	if size <= 0 {
		size = defaultTxSize
	}
	return &BufferedChannel{bus: bus, buf: make([]byte, 0, size)}
}

// Put implements Channel.
func (c *BufferedChannel) Put(b byte) error {
	if len(c.buf) == cap(c.buf) {
		if err := c.flush(); err != nil {
			return err
		}
	}
	c.buf = append(c.buf, b)
	return nil
}

// Write enqueues p, transmitting full queues as it goes.
func (c *BufferedChannel) Write(p []byte) (int, error) {
	n := 0
	for len(p) != 0 {
		if len(c.buf) == cap(c.buf) {
			if err := c.flush(); err != nil {
				return n, err
			}
		}
		m := copy(c.buf[len(c.buf):cap(c.buf)], p)
		c.buf = c.buf[:len(c.buf)+m]
		p = p[m:]
		n += m
	}
	return n, nil
}

// WaitIdle implements Channel.
func (c *BufferedChannel) WaitIdle() error {
	return c.flush()
}

// Pending returns the number of queued, not yet transmitted bytes.
func (c *BufferedChannel) Pending() int {
	return len(c.buf)
}

func (c *BufferedChannel) flush() error {
	if len(c.buf) == 0 {
		return nil
	}
	err := c.bus.Tx(c.buf, nil)
	c.buf = c.buf[:0]
	if err != nil {
		return fmt.Errorf("st7789: transmit failed: %w", err)
	}
	return nil
}
