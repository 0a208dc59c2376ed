package board

import (
	"fmt"
	"strconv"

	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/coreman2200/funtimes-numerals/internal/config"
)

type pins struct {
	buttonA, buttonB pinIn
	green, blue      pinOut
	closers          []func() error
}

type pinIn interface {
	Read() gpio.Level
}

type pinOut interface {
	Out(l gpio.Level) error
}

func openPins(cfg config.GPIO) (*pins, error) {
	switch cfg.Backend {
	case "periph":
		return openPeriphPins(cfg)
	case "gpiocdev":
		return openCdevPins(cfg)
	case "sim":
		return simPins(cfg), nil
	}
	return nil, fmt.Errorf("board: unknown gpio backend %q", cfg.Backend)
}

func openPeriphPins(cfg config.GPIO) (*pins, error) {
	lookup := func(n int) (gpio.PinIO, error) {
		p := gpioreg.ByName(strconv.Itoa(n))
		if p == nil {
			return nil, fmt.Errorf("board: gpio %d not found", n)
		}
		return p, nil
	}
	in := func(n int) (gpio.PinIO, error) {
		p, err := lookup(n)
		if err != nil {
			return nil, err
		}
		if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("board: gpio %d as input: %w", n, err)
		}
		return p, nil
	}
	out := func(n int) (gpio.PinIO, error) {
		p, err := lookup(n)
		if err != nil {
			return nil, err
		}
		if err := p.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("board: gpio %d as output: %w", n, err)
		}
		return p, nil
	}

	var ps pins
	var err error
	if ps.buttonA, err = in(cfg.ButtonA); err != nil {
		return nil, err
	}
	if ps.buttonB, err = in(cfg.ButtonB); err != nil {
		return nil, err
	}
	if ps.green, err = out(cfg.LEDGreen); err != nil {
		return nil, err
	}
	if ps.blue, err = out(cfg.LEDBlue); err != nil {
		return nil, err
	}
	return &ps, nil
}

// cdevLine adapts a character-device line to the periph level API.
type cdevLine struct {
	line *gpiocdev.Line
}

// Read reports a failed read as released, the idle level of a pulled-up
// button.
func (c cdevLine) Read() gpio.Level {
	v, err := c.line.Value()
	if err != nil {
		return gpio.High
	}
	return v != 0
}

func (c cdevLine) Out(l gpio.Level) error {
	v := 0
	if l {
		v = 1
	}
	return c.line.SetValue(v)
}

func openCdevPins(cfg config.GPIO) (*pins, error) {
	ps := &pins{}
	req := func(n int, opts ...gpiocdev.LineReqOption) (cdevLine, error) {
		l, err := gpiocdev.RequestLine(cfg.Chip, n, opts...)
		if err != nil {
			return cdevLine{}, fmt.Errorf("board: %s line %d: %w", cfg.Chip, n, err)
		}
		ps.closers = append(ps.closers, l.Close)
		return cdevLine{line: l}, nil
	}
	fail := func(err error) (*pins, error) {
		ps.close()
		return nil, err
	}

	a, err := req(cfg.ButtonA, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		return fail(err)
	}
	b, err := req(cfg.ButtonB, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		return fail(err)
	}
	g, err := req(cfg.LEDGreen, gpiocdev.AsOutput(0))
	if err != nil {
		return fail(err)
	}
	bl, err := req(cfg.LEDBlue, gpiocdev.AsOutput(0))
	if err != nil {
		return fail(err)
	}
	ps.buttonA, ps.buttonB, ps.green, ps.blue = a, b, g, bl
	return ps, nil
}

// simPins are test pins: buttons idle high, LEDs start off.
func simPins(cfg config.GPIO) *pins {
	pin := func(name string, n int, l gpio.Level) *gpiotest.Pin {
		return &gpiotest.Pin{N: name, Num: n, L: l}
	}
	return &pins{
		buttonA: pin("BUTTON_A", cfg.ButtonA, gpio.High),
		buttonB: pin("BUTTON_B", cfg.ButtonB, gpio.High),
		green:   pin("LED_GREEN", cfg.LEDGreen, gpio.Low),
		blue:    pin("LED_BLUE", cfg.LEDBlue, gpio.Low),
	}
}

func (p *pins) close() error {
	var first error
	for _, c := range p.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	p.closers = nil
	return first
}
