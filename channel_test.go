package st7789

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/conntest"
)

// limitedConn is a conntest.Record reporting a transaction size limit.
type limitedConn struct {
	conntest.Record
	max int
}

func (c *limitedConn) MaxTxSize() int {
	return c.max
}

var _ conn.Limits = (*limitedConn)(nil)

// failingBus fails every transaction.
type failingBus struct {
	err error
}

func (b *failingBus) Tx(w, r []byte) error {
	return b.err
}

func TestBufferedChannelQueueSize(t *testing.T) {
	tests := []struct {
		name string
		bus  Bus
		want int
	}{
		{"no limit", &conntest.Record{}, defaultTxSize},
		{"limited", &limitedConn{max: 64}, 64},
		{"zero limit", &limitedConn{max: 0}, defaultTxSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewBufferedChannel(tt.bus)
			if got := cap(c.buf); got != tt.want {
				t.Errorf("queue size = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBufferedChannelBackpressure(t *testing.T) {
	bus := &limitedConn{max: 3}
	c := NewBufferedChannel(bus)

	for i := byte(0); i < 7; i++ {
		if err := c.Put(i); err != nil {
			t.Fatal(err)
		}
	}
	// Two full queues went out while putting, one byte is still queued.
	if len(bus.Ops) != 2 {
		t.Fatalf("transactions = %d, want 2", len(bus.Ops))
	}
	if c.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", c.Pending())
	}
	if err := c.WaitIdle(); err != nil {
		t.Fatal(err)
	}
	if c.Pending() != 0 {
		t.Errorf("Pending() after WaitIdle = %d, want 0", c.Pending())
	}

	var got []byte
	for _, op := range bus.Ops {
		got = append(got, op.W...)
	}
	if string(got) != "\x00\x01\x02\x03\x04\x05\x06" {
		t.Errorf("transmitted % x, want bytes 0..6 in order", got)
	}
}

func TestBufferedChannelWaitIdleEmpty(t *testing.T) {
	bus := &conntest.Record{}
	c := NewBufferedChannel(bus)
	if err := c.WaitIdle(); err != nil {
		t.Fatal(err)
	}
	if len(bus.Ops) != 0 {
		t.Errorf("idle channel transmitted %d times", len(bus.Ops))
	}
}

func TestBufferedChannelWrite(t *testing.T) {
	bus := &limitedConn{max: 4}
	c := NewBufferedChannel(bus)
	if err := c.Put(0xAA); err != nil {
		t.Fatal(err)
	}
	n, err := c.Write([]byte{1, 2, 3, 4, 5, 6})
	if err != nil || n != 6 {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	if err := c.WaitIdle(); err != nil {
		t.Fatal(err)
	}
	want := []string{"\xaa\x01\x02\x03", "\x04\x05\x06"}
	if len(bus.Ops) != len(want) {
		t.Fatalf("transactions = %d, want %d", len(bus.Ops), len(want))
	}
	for i, op := range bus.Ops {
		if string(op.W) != want[i] {
			t.Errorf("transaction %d = % x, want % x", i, op.W, want[i])
		}
	}
}

func TestBufferedChannelFault(t *testing.T) {
	fault := errors.New("no device")
	c := NewBufferedChannel(&failingBus{err: fault})
	if err := c.Put(1); err != nil {
		t.Fatal(err)
	}
	if err := c.WaitIdle(); !errors.Is(err, fault) {
		t.Errorf("WaitIdle() error = %v, want %v", err, fault)
	}
	if c.Pending() != 0 {
		t.Errorf("Pending() after fault = %d, want 0", c.Pending())
	}
}
