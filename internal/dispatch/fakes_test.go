package dispatch

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// fakeClock never sleeps. onSleep runs after each recorded sleep. Once stop
// is set, After never fires.
type fakeClock struct {
	sleeps  []time.Duration
	onSleep func(n int, d time.Duration)
	afters  int
	stop    bool
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	if c.onSleep != nil {
		c.onSleep(len(c.sleeps), d)
	}
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.afters++
	if c.stop {
		return nil
	}
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

// fakeDisplay keeps every flushed frame as the text drawn on it.
type fakeDisplay struct {
	ops      []string
	pending  string
	flushed  []string
	flushErr error
}

func (d *fakeDisplay) Clear() {
	d.ops = append(d.ops, "clear")
	d.pending = ""
}

func (d *fakeDisplay) DrawText(text string, x, y int) {
	d.ops = append(d.ops, fmt.Sprintf("draw %q at %d,%d", text, x, y))
	d.pending += text
}

func (d *fakeDisplay) Flush() error {
	d.ops = append(d.ops, "flush")
	if d.flushErr != nil {
		return d.flushErr
	}
	d.flushed = append(d.flushed, d.pending)
	return nil
}

func (d *fakeDisplay) last() string {
	if len(d.flushed) == 0 {
		return ""
	}
	return d.flushed[len(d.flushed)-1]
}

type fakeMatrix struct {
	calls []string
	err   error
}

func (m *fakeMatrix) Render(d int) error {
	m.calls = append(m.calls, fmt.Sprintf("render %d", d))
	return m.err
}

func (m *fakeMatrix) Clear() error {
	m.calls = append(m.calls, "clear")
	return m.err
}

type fakeLink struct {
	connected bool
	in        []byte
	out       bytes.Buffer
}

func (l *fakeLink) Connected() bool { return l.connected }

func (l *fakeLink) TryReadByte() (byte, bool) {
	if len(l.in) == 0 {
		return 0, false
	}
	b := l.in[0]
	l.in = l.in[1:]
	return b, true
}

func (l *fakeLink) Write(p []byte) (int, error) { return l.out.Write(p) }

type brokenLED struct{}

func (brokenLED) Out(gpio.Level) error { return errors.New("gpio write failed") }

var testTiming = Timing{
	Loop:          40 * time.Millisecond,
	Debounce:      50 * time.Millisecond,
	ReleasePoll:   10 * time.Millisecond,
	DisplaySettle: 10 * time.Millisecond,
}

type rig struct {
	a, b, green, blue *gpiotest.Pin
	display           *fakeDisplay
	matrix            *fakeMatrix
	link              *fakeLink
	clock             *fakeClock
	loop              *Looper
}

func newRig(t Timing) *rig {
	r := &rig{
		a:       &gpiotest.Pin{N: "BTN_A", L: gpio.High},
		b:       &gpiotest.Pin{N: "BTN_B", L: gpio.High},
		green:   &gpiotest.Pin{N: "LED_G", L: gpio.Low},
		blue:    &gpiotest.Pin{N: "LED_B", L: gpio.Low},
		display: &fakeDisplay{},
		matrix:  &fakeMatrix{},
		link:    &fakeLink{},
		clock:   &fakeClock{},
	}
	r.loop = NewLooper(zerolog.Nop(), Hardware{
		ButtonA: r.a,
		ButtonB: r.b,
		Green:   r.green,
		Blue:    r.blue,
		Display: r.display,
		Matrix:  r.matrix,
		Link:    r.link,
	}, t, image.Pt(8, 10), r.clock)
	return r
}

// releaseAfterQuiet lets go of every button as soon as the debounce window
// has passed.
func (r *rig) releaseAfterQuiet() {
	r.clock.onSleep = func(_ int, d time.Duration) {
		if d == testTiming.Debounce {
			_ = r.a.Out(gpio.High)
			_ = r.b.Out(gpio.High)
		}
	}
}

// tap presses pin, runs the poll that sees the press, then one more poll so
// the release is sampled before the next tap.
func (r *rig) tap(pin *gpiotest.Pin) error {
	_ = pin.Out(gpio.Low)
	if err := r.loop.Buttons.Poll(&r.loop.State); err != nil {
		return err
	}
	return r.loop.Buttons.Poll(&r.loop.State)
}
