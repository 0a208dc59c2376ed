// Package usb provides the character link the board reads input from: a
// serial port (the USB gadget or a CDC adapter) or, for simulation, a plain
// stream such as stdin.
package usb

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// AutoPort selects the first USB serial port found on the host.
const AutoPort = "auto"

var ErrNoPort = errors.New("usb: no USB serial port found")

type conn interface {
	io.ReadWriteCloser
	GetModemStatusBits() (*serial.ModemStatusBits, error)
}

type opener func(name string, baud int) (conn, error)

// Port keeps a serial port open across polls. A closed or failed port is
// reopened on the next Connected call, at most once per retry interval.
type Port struct {
	logger     zerolog.Logger
	name       string
	baud       int
	retry      time.Duration
	requireDSR bool

	open opener
	now  func() time.Time

	port       conn
	lastTry    time.Time
	errorShown bool
	buf        [1]byte
}

type Options struct {
	Name          string
	Baud          int
	RetryInterval time.Duration
	RequireDSR    bool
}

func NewPort(logger zerolog.Logger, o Options) *Port {
	return &Port{
		logger:     logger.With().Str("module", "usb").Str("port", o.Name).Logger(),
		name:       o.Name,
		baud:       o.Baud,
		retry:      o.RetryInterval,
		requireDSR: o.RequireDSR,
		open:       openSerial,
		now:        time.Now,
	}
}

func openSerial(name string, baud int) (conn, error) {
	if name == AutoPort {
		n, err := findUSBPort()
		if err != nil {
			return nil, err
		}
		name = n
	}
	p, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, err
	}
	// Zero timeout: Read returns at once with n == 0 when nothing is waiting.
	if err := p.SetReadTimeout(0); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}
	return p, nil
}

func findUSBPort() (string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", err
	}
	for _, p := range ports {
		if p.IsUSB {
			return p.Name, nil
		}
	}
	return "", ErrNoPort
}

// Connected reports whether a session is active, opening the port if needed.
func (p *Port) Connected() bool {
	if p.port == nil && !p.reopen() {
		return false
	}
	if !p.requireDSR {
		return true
	}
	bits, err := p.port.GetModemStatusBits()
	if err != nil {
		p.drop(err)
		return false
	}
	return bits.DSR
}

func (p *Port) reopen() bool {
	now := p.now()
	if !p.lastTry.IsZero() && now.Sub(p.lastTry) < p.retry {
		return false
	}
	p.lastTry = now

	c, err := p.open(p.name, p.baud)
	if err != nil {
		if !p.errorShown {
			p.logger.Warn().Err(err).Msg("failed opening port")
			p.errorShown = true
		}
		return false
	}
	p.errorShown = false
	p.port = c
	p.logger.Info().Msg("opened port")
	return true
}

// drop closes a failed port. The retry window restarts here so at least one
// poll sees the link as disconnected before it is reopened.
func (p *Port) drop(err error) {
	p.logger.Warn().Err(err).Msg("port lost")
	_ = p.port.Close()
	p.port = nil
	p.lastTry = p.now()
}

// TryReadByte returns the next byte if one is already waiting.
func (p *Port) TryReadByte() (byte, bool) {
	if p.port == nil {
		return 0, false
	}
	n, err := p.port.Read(p.buf[:])
	if err != nil {
		p.drop(err)
		return 0, false
	}
	if n == 0 {
		return 0, false
	}
	return p.buf[0], true
}

// Write sends b when the port is open and drops it otherwise, so the port can
// back a best-effort log sink.
func (p *Port) Write(b []byte) (int, error) {
	if p.port == nil {
		return len(b), nil
	}
	n, err := p.port.Write(b)
	if err != nil {
		p.drop(err)
		return len(b), nil
	}
	return n, nil
}

func (p *Port) Close() error {
	if p.port == nil {
		return nil
	}
	err := p.port.Close()
	p.port = nil
	return err
}
