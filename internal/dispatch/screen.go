package dispatch

import (
	"fmt"
	"image"
	"time"
)

// Screen performs the one update the OLED supports: wipe, draw the message at
// the text origin, push the frame, let the panel settle.
type Screen struct {
	Display Display
	Origin  image.Point
	Settle  time.Duration
	Clock   Clock
}

func (s *Screen) Show(msg string) error {
	s.Display.Clear()
	s.Display.DrawText(msg, s.Origin.X, s.Origin.Y)
	if err := s.Display.Flush(); err != nil {
		return fmt.Errorf("display %q: %w", msg, err)
	}
	s.Clock.Sleep(s.Settle)
	return nil
}
