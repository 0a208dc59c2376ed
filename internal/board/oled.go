package board

import (
	"image"

	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// OLED keeps a 1-bit frame in memory and pushes it to the panel on Flush.
type OLED struct {
	dev   display.Drawer
	frame *image1bit.VerticalLSB
	face  font.Face
}

func NewOLED(dev display.Drawer) *OLED {
	return &OLED{
		dev:   dev,
		frame: image1bit.NewVerticalLSB(dev.Bounds()),
		face:  basicfont.Face7x13,
	}
}

func (o *OLED) Clear() {
	for i := range o.frame.Pix {
		o.frame.Pix[i] = 0
	}
}

// DrawText places the top-left corner of the first glyph at (x, y).
func (o *OLED) DrawText(text string, x, y int) {
	d := font.Drawer{
		Dst:  o.frame,
		Src:  &image.Uniform{C: image1bit.On},
		Face: o.face,
		Dot:  fixed.P(x, y+o.face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

func (o *OLED) Flush() error {
	return o.dev.Draw(o.dev.Bounds(), o.frame, image.Point{})
}

func (o *OLED) Frame() *image1bit.VerticalLSB {
	return o.frame
}

// LogDisplay stands in for the panel when there is no I2C bus; every flush
// becomes a log line.
type LogDisplay struct {
	logger  zerolog.Logger
	pending string
	last    string
}

func NewLogDisplay(logger zerolog.Logger) *LogDisplay {
	return &LogDisplay{logger: logger.With().Str("module", "display").Logger()}
}

func (d *LogDisplay) Clear() {
	d.pending = ""
}

func (d *LogDisplay) DrawText(text string, x, y int) {
	d.pending += text
}

func (d *LogDisplay) Flush() error {
	d.last = d.pending
	d.logger.Info().Str("text", d.last).Msg("display")
	return nil
}

func (d *LogDisplay) Last() string {
	return d.last
}
