package spi

import (
	"fmt"
	"image"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"

	"github.com/coreman2200/funtimes-numerals/model"
)

const DFLT_FREQ = 2500 * physic.KiloHertz

// Strip buffers pixels sent one at a time and draws the whole chain once the
// last pixel of a frame arrives.
type Strip struct {
	drawer display.Drawer
	port   spi.PortCloser
	frame  *image.NRGBA
	next   int
	Spi    bool
}

func NewStrip(drawer display.Drawer, pixels int) *Strip {
	return &Strip{
		drawer: drawer,
		frame:  image.NewNRGBA(image.Rect(0, 0, pixels, 1)),
	}
}

// Open drives the chain through nrzled on the named SPI port. When no port is
// found it falls back to printing the chain on the console, like the cube
// renderer does.
func Open(name string, pixels int, freq physic.Frequency) (*Strip, error) {
	if pixels <= 0 {
		return nil, fmt.Errorf("spi: invalid pixel count %d", pixels)
	}
	if freq == 0 {
		freq = DFLT_FREQ
	}
	p, err := spireg.Open(name)
	if err != nil {
		return NewStrip(screen.New(pixels), pixels), nil
	}

	d, err := nrzled.NewSPI(p, &nrzled.Opts{
		NumPixels: pixels,
		Channels:  3,
		Freq:      freq,
	})
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("spi: nrzled on %q: %w", name, err)
	}
	s := NewStrip(d, pixels)
	s.port = p
	s.Spi = true
	return s, nil
}

func (s *Strip) Pixels() int {
	return s.frame.Rect.Dx()
}

// Pending is the number of pixels buffered for the current frame.
func (s *Strip) Pending() int {
	return s.next
}

func (s *Strip) SendPixel(c model.ColorVal) error {
	s.frame.SetNRGBA(s.next, 0, c.ToRGB())
	s.next++
	if s.next < s.Pixels() {
		return nil
	}
	s.next = 0
	if err := s.drawer.Draw(s.drawer.Bounds(), s.frame, image.Point{}); err != nil {
		return fmt.Errorf("spi: draw frame: %w", err)
	}
	return nil
}

func (s *Strip) String() string {
	return fmt.Sprintf("strip{%s}", s.drawer)
}

// Close blanks the chain and releases the port.
func (s *Strip) Close() error {
	s.next = 0
	err := s.drawer.Halt()
	if s.port != nil {
		if cerr := s.port.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
