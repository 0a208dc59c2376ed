// Package board brings up the peripherals once and hands the dispatcher
// nothing but narrow interfaces to them.
package board

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-numerals/internal/config"
	"github.com/coreman2200/funtimes-numerals/internal/dispatch"
	"github.com/coreman2200/funtimes-numerals/internal/usb"
	"github.com/coreman2200/funtimes-numerals/matrix"
	"github.com/coreman2200/funtimes-numerals/spi"
)

const i2cSpeed = 400 * physic.KiloHertz

// Env is where the stdin link reads and writes.
type Env struct {
	Stdin  io.Reader
	Stdout io.Writer
}

type Board struct {
	ButtonA, ButtonB dispatch.Button
	Green, Blue      dispatch.LED
	Display          dispatch.Display
	Matrix           *matrix.Renderer
	Link             dispatch.Link

	cfg    *config.Config
	pins   *pins
	strip  *spi.Strip
	port   *usb.Port
	bus    i2c.BusCloser
	logger zerolog.Logger
}

func Open(logger zerolog.Logger, cfg *config.Config) (*Board, error) {
	return OpenWith(logger, cfg, Env{Stdin: os.Stdin, Stdout: os.Stdout})
}

// OpenWith brings up every peripheral named in cfg. GPIO failures are
// fatal. A missing I2C bus or SPI port falls back to log and console output.
func OpenWith(logger zerolog.Logger, cfg *config.Config, env Env) (*Board, error) {
	b := &Board{
		cfg:    cfg,
		logger: logger.With().Str("module", "board").Logger(),
	}

	if needsHost(cfg) {
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("board: host init: %w", err)
		}
	}

	ps, err := openPins(cfg.GPIO)
	if err != nil {
		return nil, err
	}
	b.pins = ps
	b.ButtonA, b.ButtonB = ps.buttonA, ps.buttonB
	b.Green, b.Blue = ps.green, ps.blue

	b.Display = b.openDisplay(cfg.Display)
	b.Display.Clear()
	if err := b.Display.Flush(); err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("board: blank display: %w", err)
	}

	strip, err := b.openStrip(cfg.Matrix)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	b.strip = strip
	b.Matrix = matrix.NewRenderer(strip, cfg.Matrix.Brightness)

	switch cfg.USB.Driver {
	case "stdin":
		b.Link = usb.NewStream(env.Stdin, env.Stdout)
	default:
		b.port = usb.NewPort(logger, usb.Options{
			Name:          cfg.USB.Port,
			Baud:          cfg.USB.Baud,
			RetryInterval: cfg.USB.RetryInterval,
			RequireDSR:    cfg.USB.RequireDSR,
		})
		b.Link = b.port
	}

	b.logger.Info().
		Str("gpio", cfg.GPIO.Backend).
		Str("display", fmt.Sprintf("%T", b.Display)).
		Bool("spi", strip.Spi).
		Str("usb", cfg.USB.Driver).
		Msg("board ready")
	return b, nil
}

func needsHost(cfg *config.Config) bool {
	return cfg.GPIO.Backend == "periph" || cfg.Display.Driver == "i2c" || cfg.Matrix.Driver == "spi"
}

func (b *Board) openDisplay(cfg config.Display) dispatch.Display {
	if cfg.Driver != "i2c" {
		return NewLogDisplay(b.logger)
	}
	bus, err := i2creg.Open(cfg.Bus)
	if err != nil {
		b.logger.Warn().Err(err).Str("bus", cfg.Bus).Msg("no I2C bus; display goes to the log")
		return NewLogDisplay(b.logger)
	}
	if err := bus.SetSpeed(i2cSpeed); err != nil {
		b.logger.Warn().Err(err).Msg("could not set I2C speed")
	}
	opts := ssd1306.DefaultOpts
	opts.W, opts.H = cfg.Width, cfg.Height
	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		_ = bus.Close()
		b.logger.Warn().Err(err).Msg("ssd1306 init failed; display goes to the log")
		return NewLogDisplay(b.logger)
	}
	b.bus = bus
	return NewOLED(dev)
}

func (b *Board) openStrip(cfg config.Matrix) (*spi.Strip, error) {
	if cfg.Driver == "console" {
		return spi.NewStrip(screen.New(cfg.Pixels), cfg.Pixels), nil
	}
	s, err := spi.Open(cfg.Port, cfg.Pixels, physic.Frequency(cfg.FreqKHz)*physic.KiloHertz)
	if err != nil {
		return nil, err
	}
	if !s.Spi {
		b.logger.Warn().Str("port", cfg.Port).Msg("no SPI port; matrix goes to the console")
	}
	return s, nil
}

func (b *Board) Hardware() dispatch.Hardware {
	return dispatch.Hardware{
		ButtonA: b.ButtonA,
		ButtonB: b.ButtonB,
		Green:   b.Green,
		Blue:    b.Blue,
		Display: b.Display,
		Matrix:  b.Matrix,
		Link:    b.Link,
	}
}

func (b *Board) TextOrigin() image.Point {
	return image.Pt(b.cfg.Display.TextX, b.cfg.Display.TextY)
}

// Close leaves every output dark and releases the buses.
func (b *Board) Close() error {
	var errs []error
	if b.Green != nil {
		errs = append(errs, b.Green.Out(gpio.Low))
	}
	if b.Blue != nil {
		errs = append(errs, b.Blue.Out(gpio.Low))
	}
	if b.Matrix != nil {
		errs = append(errs, b.Matrix.Clear())
	}
	if b.strip != nil {
		errs = append(errs, b.strip.Close())
	}
	if b.Display != nil {
		b.Display.Clear()
		errs = append(errs, b.Display.Flush())
	}
	if b.port != nil {
		errs = append(errs, b.port.Close())
	}
	if b.bus != nil {
		errs = append(errs, b.bus.Close())
	}
	if b.pins != nil {
		errs = append(errs, b.pins.close())
	}
	return errors.Join(errs...)
}
