// Package dispatch polls the two buttons and the USB link and drives the
// LEDs, the OLED and the numeral matrix from what it sees.
//
// Everything here runs on the loop goroutine; nothing is locked. Moving edge
// detection to interrupts would need synchronisation around State.
package dispatch

import (
	"io"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Button is an active-low input with a pull-up.
type Button interface {
	Read() gpio.Level
}

// LED is an active-high output.
type LED interface {
	Out(l gpio.Level) error
}

// Display is a text surface that is redrawn whole on every update.
type Display interface {
	Clear()
	DrawText(text string, x, y int)
	Flush() error
}

type Matrix interface {
	Render(d int) error
	Clear() error
}

// Link is the USB character link. TryReadByte never blocks.
type Link interface {
	io.Writer
	Connected() bool
	TryReadByte() (byte, bool)
}

type Clock interface {
	Sleep(d time.Duration)
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Sleep(d time.Duration)                  { time.Sleep(d) }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RealClock sleeps for real.
var RealClock Clock = realClock{}

// State is all that survives between loop iterations. The zero value is not
// ready to use; NewState gives the power-on state.
type State struct {
	Green bool
	Blue  bool

	// Last sample of each button; High means released.
	PrevA gpio.Level
	PrevB gpio.Level

	USBConnected bool
}

func NewState() State {
	return State{
		PrevA: gpio.High,
		PrevB: gpio.High,
	}
}

func level(on bool) gpio.Level {
	if on {
		return gpio.High
	}
	return gpio.Low
}
