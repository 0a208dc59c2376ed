package dispatch

import (
	"errors"
	"time"
)

// ErrStuckButton is returned by Settle when a timeout is set and the pin is
// still low when it runs out.
var ErrStuckButton = errors.New("dispatch: button still pressed")

// Guard absorbs contact bounce after a falling edge and holds the loop until
// the button is let go, so one press is one event however long it is held.
type Guard struct {
	Quiet   time.Duration
	Poll    time.Duration
	Timeout time.Duration // 0 waits for release forever
	Clock   Clock
}

// Settle must be called right after a high-to-low sample on pin.
func (g *Guard) Settle(pin Button) error {
	g.Clock.Sleep(g.Quiet)
	waited := time.Duration(0)
	for !pin.Read() {
		if g.Timeout > 0 && waited >= g.Timeout {
			return ErrStuckButton
		}
		g.Clock.Sleep(g.Poll)
		waited += g.Poll
	}
	return nil
}
