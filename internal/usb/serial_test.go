package usb

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

// fakeConn serves queued bytes one Read at a time.
type fakeConn struct {
	in      []byte
	out     bytes.Buffer
	readErr error
	dsr     bool
	closed  bool
}

func (c *fakeConn) Read(p []byte) (int, error) {
	if c.readErr != nil {
		return 0, c.readErr
	}
	if len(c.in) == 0 {
		return 0, nil
	}
	p[0] = c.in[0]
	c.in = c.in[1:]
	return 1, nil
}

func (c *fakeConn) Write(p []byte) (int, error) { return c.out.Write(p) }
func (c *fakeConn) Close() error                { c.closed = true; return nil }
func (c *fakeConn) GetModemStatusBits() (*serial.ModemStatusBits, error) {
	return &serial.ModemStatusBits{DSR: c.dsr}, nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestPort(o Options, conns ...*fakeConn) (*Port, *fakeClock, *int) {
	p := NewPort(zerolog.Nop(), o)
	clk := &fakeClock{t: time.Unix(1000, 0)}
	p.now = clk.now
	opens := 0
	p.open = func(name string, baud int) (conn, error) {
		opens++
		if len(conns) == 0 {
			return nil, errors.New("no such device")
		}
		c := conns[0]
		conns = conns[1:]
		return c, nil
	}
	return p, clk, &opens
}

func TestPortReadsBytes(t *testing.T) {
	c := &fakeConn{in: []byte("7#")}
	p, _, _ := newTestPort(Options{Name: "/dev/ttyGS0", RetryInterval: time.Second}, c)

	require.True(t, p.Connected())
	b, ok := p.TryReadByte()
	assert.True(t, ok)
	assert.Equal(t, byte('7'), b)
	b, ok = p.TryReadByte()
	assert.True(t, ok)
	assert.Equal(t, byte('#'), b)
	_, ok = p.TryReadByte()
	assert.False(t, ok)
	assert.True(t, p.Connected())
}

func TestPortReopenThrottled(t *testing.T) {
	c := &fakeConn{}
	p, clk, opens := newTestPort(Options{RetryInterval: time.Second})

	assert.False(t, p.Connected())
	assert.False(t, p.Connected())
	assert.Equal(t, 1, *opens)

	clk.t = clk.t.Add(time.Second)
	assert.False(t, p.Connected())
	assert.Equal(t, 2, *opens)

	p.open = func(string, int) (conn, error) { return c, nil }
	clk.t = clk.t.Add(time.Second)
	assert.True(t, p.Connected())
}

func TestPortReadErrorDisconnects(t *testing.T) {
	c := &fakeConn{in: []byte("1")}
	p, clk, _ := newTestPort(Options{RetryInterval: time.Second}, c)
	require.True(t, p.Connected())

	c.readErr = errors.New("port closed")
	_, ok := p.TryReadByte()
	assert.False(t, ok)
	assert.True(t, c.closed)

	// retry window still open from the first attempt
	clk.t = clk.t.Add(500 * time.Millisecond)
	assert.False(t, p.Connected())
}

func TestPortReadErrorAfterIdleStaysDown(t *testing.T) {
	first, second := &fakeConn{}, &fakeConn{}
	p, clk, opens := newTestPort(Options{RetryInterval: time.Second}, first, second)
	require.True(t, p.Connected())

	// well past the retry window of the first open
	clk.t = clk.t.Add(10 * time.Second)
	first.readErr = errors.New("port closed")
	_, ok := p.TryReadByte()
	assert.False(t, ok)

	clk.t = clk.t.Add(40 * time.Millisecond)
	assert.False(t, p.Connected())
	assert.Equal(t, 1, *opens)

	clk.t = clk.t.Add(time.Second)
	assert.True(t, p.Connected())
	assert.Equal(t, 2, *opens)
}

func TestPortRequireDSR(t *testing.T) {
	c := &fakeConn{}
	p, _, _ := newTestPort(Options{RequireDSR: true}, c)
	assert.False(t, p.Connected())
	c.dsr = true
	assert.True(t, p.Connected())
}

func TestPortWrite(t *testing.T) {
	c := &fakeConn{}
	p, _, _ := newTestPort(Options{}, c)

	n, err := p.Write([]byte("dropped\n"))
	assert.NoError(t, err)
	assert.Equal(t, 8, n)

	require.True(t, p.Connected())
	_, err = p.Write([]byte("hello\n"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", c.out.String())

	require.NoError(t, p.Close())
	assert.True(t, c.closed)
}
