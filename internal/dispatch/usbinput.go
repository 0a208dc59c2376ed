package dispatch

import (
	"fmt"

	"github.com/rs/zerolog"
)

const Prompt = "Digite um caractere para exibir no display:"

// USBInput shows each received character on the OLED and renders digits on
// the matrix. Anything that is not a digit blanks the matrix.
type USBInput struct {
	Link   Link
	Screen *Screen
	Matrix Matrix
	logger zerolog.Logger
}

func NewUSBInput(logger zerolog.Logger, link Link, screen *Screen, m Matrix) *USBInput {
	return &USBInput{
		Link:   link,
		Screen: screen,
		Matrix: m,
		logger: logger.With().Str("module", "usb-input").Logger(),
	}
}

func (u *USBInput) Poll(st *State) error {
	if !u.Link.Connected() {
		if st.USBConnected {
			u.logger.Info().Msg("usb disconnected")
		}
		st.USBConnected = false
		return nil
	}
	if !st.USBConnected {
		st.USBConnected = true
		u.logger.Info().Str("prompt", Prompt).Msg("usb connected")
		// best effort, the prompt is only a hint for the user
		_, _ = fmt.Fprintln(u.Link, Prompt)
	}

	c, ok := u.Link.TryReadByte()
	if !ok {
		return nil
	}
	u.logger.Info().Str("char", string(rune(c))).Uint8("byte", c).Msg("character received")
	if err := u.Screen.Show(string([]byte{c})); err != nil {
		return err
	}

	if c >= '0' && c <= '9' {
		return u.Matrix.Render(int(c - '0'))
	}
	u.logger.Info().Msg("clearing matrix")
	return u.Matrix.Clear()
}
