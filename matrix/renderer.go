// Package matrix turns numerals into the pixel stream of the 5x5 LED matrix.
package matrix

import (
	"fmt"

	"github.com/coreman2200/funtimes-numerals/model"
)

// PixelSink accepts one pixel per call, in physical chain order. It blocks
// until the pixel is accepted.
type PixelSink interface {
	SendPixel(c model.ColorVal) error
}

type Renderer struct {
	sink       PixelSink
	brightness float32
}

func NewRenderer(sink PixelSink, brightness float32) *Renderer {
	return &Renderer{
		sink:       sink,
		brightness: brightness,
	}
}

func (r *Renderer) Brightness() float32 {
	return r.brightness
}

// Frame computes the pixels for digit d in transmission order. The chain is
// wired from the last logical pixel back to the first, so index i of the
// frame carries logical pixel 24-i.
func (r *Renderer) Frame(d int) [model.MatrixPixels]model.ColorVal {
	n := model.Pattern(d)
	lit := n.Dimmed(r.brightness)

	var out [model.MatrixPixels]model.ColorVal
	for i := 0; i < model.MatrixPixels; i++ {
		if n.Lit(model.MatrixPixels - 1 - i) {
			out[i] = lit
		} else {
			out[i] = model.Black
		}
	}
	return out
}

// Render sends the frame for digit d to the sink.
func (r *Renderer) Render(d int) error {
	frame := r.Frame(d)
	for i, c := range frame {
		if err := r.sink.SendPixel(c); err != nil {
			return fmt.Errorf("matrix: digit %d pixel %d: %w", d, i, err)
		}
	}
	return nil
}

// Clear sends a frame of black pixels.
func (r *Renderer) Clear() error {
	for i := 0; i < model.MatrixPixels; i++ {
		if err := r.sink.SendPixel(model.Black); err != nil {
			return fmt.Errorf("matrix: clear pixel %d: %w", i, err)
		}
	}
	return nil
}
