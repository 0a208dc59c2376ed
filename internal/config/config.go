package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid config")

type GPIO struct {
	Backend  string `yaml:"backend"` // "periph" | "gpiocdev" | "sim"
	Chip     string `yaml:"chip"`    // gpiocdev only, e.g. gpiochip0
	ButtonA  int    `yaml:"button_a"`
	ButtonB  int    `yaml:"button_b"`
	LEDGreen int    `yaml:"led_green"`
	LEDBlue  int    `yaml:"led_blue"`
}

type Display struct {
	Driver string `yaml:"driver"` // "i2c" | "log"
	Bus    string `yaml:"bus"`    // i2creg name, "" picks the first bus
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	TextX  int    `yaml:"text_x"`
	TextY  int    `yaml:"text_y"`
}

type Matrix struct {
	Driver     string  `yaml:"driver"` // "spi" | "console"
	Port       string  `yaml:"port"`   // spireg name, "" picks the first port
	Pixels     int     `yaml:"pixels"`
	Brightness float32 `yaml:"brightness"`
	FreqKHz    int     `yaml:"freq_khz"`
}

type USB struct {
	Driver        string        `yaml:"driver"` // "serial" | "stdin"
	Port          string        `yaml:"port"`   // device path or "auto"
	Baud          int           `yaml:"baud"`
	RetryInterval time.Duration `yaml:"retry_interval"`
	RequireDSR    bool          `yaml:"require_dsr"`
}

type Timing struct {
	Loop            time.Duration `yaml:"loop"`
	Debounce        time.Duration `yaml:"debounce"`
	ReleasePoll     time.Duration `yaml:"release_poll"`
	DisplaySettle   time.Duration `yaml:"display_settle"`
	DebounceTimeout time.Duration `yaml:"debounce_timeout"` // 0 waits forever
}

type Log struct {
	Level     string `yaml:"level"`
	MirrorUSB bool   `yaml:"mirror_usb"`
}

type Config struct {
	GPIO    GPIO    `yaml:"gpio"`
	Display Display `yaml:"display"`
	Matrix  Matrix  `yaml:"matrix"`
	USB     USB     `yaml:"usb"`
	Timing  Timing  `yaml:"timing"`
	Log     Log     `yaml:"log"`
}

// Default matches the board wiring: buttons on 5 and 6, green LED on 11,
// blue on 12, OLED at 0x3C on the first I2C bus.
func Default() *Config {
	return &Config{
		GPIO: GPIO{
			Backend:  "periph",
			Chip:     "gpiochip0",
			ButtonA:  5,
			ButtonB:  6,
			LEDGreen: 11,
			LEDBlue:  12,
		},
		Display: Display{
			Driver: "i2c",
			Width:  128,
			Height: 64,
			TextX:  8,
			TextY:  10,
		},
		Matrix: Matrix{
			Driver:     "spi",
			Pixels:     25,
			Brightness: 0.1,
			FreqKHz:    2500,
		},
		USB: USB{
			Driver:        "serial",
			Port:          "/dev/ttyGS0",
			Baud:          115200,
			RetryInterval: time.Second,
		},
		Timing: Timing{
			Loop:          40 * time.Millisecond,
			Debounce:      50 * time.Millisecond,
			ReleasePoll:   10 * time.Millisecond,
			DisplaySettle: 10 * time.Millisecond,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads path over the defaults, so a file only needs the keys it changes.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) Validate() error {
	if c.Matrix.Brightness <= 0 || c.Matrix.Brightness > 1 {
		return fmt.Errorf("%w: matrix.brightness %v not in (0,1]", ErrInvalid, c.Matrix.Brightness)
	}
	if c.Matrix.Pixels != 25 {
		return fmt.Errorf("%w: matrix.pixels must be 25, got %d", ErrInvalid, c.Matrix.Pixels)
	}

	pins := map[int]string{}
	for name, p := range map[string]int{
		"button_a":  c.GPIO.ButtonA,
		"button_b":  c.GPIO.ButtonB,
		"led_green": c.GPIO.LEDGreen,
		"led_blue":  c.GPIO.LEDBlue,
	} {
		if p < 0 {
			return fmt.Errorf("%w: gpio.%s is negative", ErrInvalid, name)
		}
		if other, ok := pins[p]; ok {
			return fmt.Errorf("%w: gpio.%s and gpio.%s share pin %d", ErrInvalid, name, other, p)
		}
		pins[p] = name
	}

	for name, d := range map[string]time.Duration{
		"loop":             c.Timing.Loop,
		"debounce":         c.Timing.Debounce,
		"release_poll":     c.Timing.ReleasePoll,
		"display_settle":   c.Timing.DisplaySettle,
		"debounce_timeout": c.Timing.DebounceTimeout,
		"usb.retry":        c.USB.RetryInterval,
	} {
		if d < 0 {
			return fmt.Errorf("%w: timing %s is negative", ErrInvalid, name)
		}
	}

	if c.Timing.ReleasePoll == 0 {
		return fmt.Errorf("%w: timing release_poll must be positive", ErrInvalid)
	}

	switch c.GPIO.Backend {
	case "periph", "gpiocdev", "sim":
	default:
		return fmt.Errorf("%w: unknown gpio.backend %q", ErrInvalid, c.GPIO.Backend)
	}
	switch c.Display.Driver {
	case "i2c", "log":
	default:
		return fmt.Errorf("%w: unknown display.driver %q", ErrInvalid, c.Display.Driver)
	}
	switch c.Matrix.Driver {
	case "spi", "console":
	default:
		return fmt.Errorf("%w: unknown matrix.driver %q", ErrInvalid, c.Matrix.Driver)
	}
	switch c.USB.Driver {
	case "serial", "stdin":
	default:
		return fmt.Errorf("%w: unknown usb.driver %q", ErrInvalid, c.USB.Driver)
	}
	return nil
}
