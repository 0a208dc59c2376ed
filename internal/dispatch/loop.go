package dispatch

import (
	"context"
	"image"
	"time"

	"github.com/rs/zerolog"
)

type Hardware struct {
	ButtonA, ButtonB Button
	Green, Blue      LED
	Display          Display
	Matrix           Matrix
	Link             Link
}

type Timing struct {
	Loop            time.Duration
	Debounce        time.Duration
	ReleasePoll     time.Duration
	DisplaySettle   time.Duration
	DebounceTimeout time.Duration
}

// Looper runs the buttons, then the USB link, then waits, forever.
type Looper struct {
	State   State
	Buttons *Buttons
	USB     *USBInput
	delay   time.Duration
	clock   Clock
	logger  zerolog.Logger
}

func NewLooper(logger zerolog.Logger, hw Hardware, t Timing, textOrigin image.Point, clk Clock) *Looper {
	if clk == nil {
		clk = RealClock
	}
	screen := &Screen{
		Display: hw.Display,
		Origin:  textOrigin,
		Settle:  t.DisplaySettle,
		Clock:   clk,
	}
	guard := &Guard{
		Quiet:   t.Debounce,
		Poll:    t.ReleasePoll,
		Timeout: t.DebounceTimeout,
		Clock:   clk,
	}
	return &Looper{
		State:   NewState(),
		Buttons: NewButtons(logger, hw.ButtonA, hw.ButtonB, hw.Green, hw.Blue, guard, screen),
		USB:     NewUSBInput(logger, hw.Link, screen, hw.Matrix),
		delay:   t.Loop,
		clock:   clk,
		logger:  logger.With().Str("module", "loop").Logger(),
	}
}

// Step runs one iteration without the trailing delay.
func (l *Looper) Step() error {
	if err := l.Buttons.Poll(&l.State); err != nil {
		return err
	}
	return l.USB.Poll(&l.State)
}

// Run returns the first driver error, or ctx.Err() once ctx is done. ctx is
// only checked between iterations; a held button is never interrupted.
func (l *Looper) Run(ctx context.Context) error {
	l.logger.Info().Dur("delay", l.delay).Msg("loop starting")
	for {
		if err := l.Step(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			l.logger.Info().Msg("loop done")
			return ctx.Err()
		case <-l.clock.After(l.delay):
		}
	}
}
