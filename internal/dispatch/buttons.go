package dispatch

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
)

const (
	labelGreen = "LED Verde"
	labelBlue  = "LED Azul"
	stateOn    = "Ligado"
	stateOff   = "Desligado"
)

// Buttons toggles the green LED on A and the blue LED on B. Lighting one
// always puts the other out first.
type Buttons struct {
	A, B  Button
	Green LED
	Blue  LED

	Guard  *Guard
	Screen *Screen
	logger zerolog.Logger
}

func NewButtons(logger zerolog.Logger, a, b Button, green, blue LED, guard *Guard, screen *Screen) *Buttons {
	return &Buttons{
		A:      a,
		B:      b,
		Green:  green,
		Blue:   blue,
		Guard:  guard,
		Screen: screen,
		logger: logger.With().Str("module", "buttons").Logger(),
	}
}

// Poll samples both buttons once and handles any press that began since the
// previous poll.
func (b *Buttons) Poll(st *State) error {
	curA := b.A.Read()
	curB := b.B.Read()

	if pressed(st.PrevA, curA) {
		if err := b.press("A", b.A, &st.Green, b.Green, &st.Blue, b.Blue, labelGreen); err != nil {
			return err
		}
	}
	if pressed(st.PrevB, curB) {
		if err := b.press("B", b.B, &st.Blue, b.Blue, &st.Green, b.Green, labelBlue); err != nil {
			return err
		}
	}

	st.PrevA = curA
	st.PrevB = curB
	return nil
}

func pressed(prev, cur gpio.Level) bool {
	return prev == gpio.High && cur == gpio.Low
}

func (b *Buttons) press(name string, pin Button, mine *bool, myLED LED, other *bool, otherLED LED, label string) error {
	if err := b.Guard.Settle(pin); err != nil {
		if !errors.Is(err, ErrStuckButton) {
			return err
		}
		b.logger.Warn().Str("button", name).Dur("timeout", b.Guard.Timeout).Msg("button not released, handling press anyway")
	}

	if *other {
		if err := otherLED.Out(gpio.Low); err != nil {
			return fmt.Errorf("button %s: %w", name, err)
		}
		*other = false
	}
	*mine = !*mine
	if err := myLED.Out(level(*mine)); err != nil {
		return fmt.Errorf("button %s: %w", name, err)
	}

	status := stateOff
	if *mine {
		status = stateOn
	}
	b.logger.Info().Str("button", name).Str("led", label).Str("state", status).Msg("button pressed")
	return b.Screen.Show(fmt.Sprintf("%s: %s", label, status))
}
