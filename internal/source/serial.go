package source

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/sensormon/internal/config"
	"github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/rileyhilliard/sensormon/internal/logger"
	"go.bug.st/serial"
)

// Port is the part of serial.Port the reader needs.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

// Opener opens a port. Tests replace it with an in-memory fake.
type Opener func(name string, mode *serial.Mode) (Port, error)

// OpenSerialPort opens a real device through go.bug.st/serial.
func OpenSerialPort(name string, mode *serial.Mode) (Port, error) {
	return serial.Open(name, mode)
}

// ListPorts returns the serial ports the OS knows about.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}

const maxLineLen = 4096

// Serial reads newline-terminated text from a serial device.
type Serial struct {
	cfg   config.SerialConfig
	open  Opener
	log   logger.Logger
	sleep func(context.Context, time.Duration) error

	mu   sync.Mutex
	port Port

	// Only the reading goroutine touches these, under readMu, so Send and
	// Close never wait behind a blocking Read.
	readMu  sync.Mutex
	partial []byte
	lines   []string
	buf     []byte
}

// NewSerial creates a serial source. A nil opener uses OpenSerialPort.
func NewSerial(cfg config.SerialConfig, open Opener, log logger.Logger) *Serial {
	if open == nil {
		open = OpenSerialPort
	}
	if log == nil {
		log = logger.Noop()
	}
	return &Serial{
		cfg:   cfg,
		open:  open,
		log:   log,
		sleep: sleepCtx,
		buf:   make([]byte, 256),
	}
}

func (s *Serial) Name() string { return s.cfg.Port }
func (s *Serial) Mode() Mode   { return Push }

func (s *Serial) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port != nil
}

// Open opens the port, waits for the board to settle and drains warm-up lines.
func (s *Serial) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.port != nil {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	mode := &serial.Mode{
		BaudRate: s.cfg.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	s.log.Debug("opening %s at %d baud", s.cfg.Port, s.cfg.Baud)
	p, err := s.open(s.cfg.Port, mode)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConnect,
			"Cannot open serial port "+s.cfg.Port,
			"Check the device is plugged in, or run 'sensormon ports' to list ports")
	}

	if err := p.SetReadTimeout(s.cfg.ReadTimeout); err != nil {
		p.Close()
		return errors.WrapWithCode(err, errors.ErrConnect,
			"Cannot set read timeout on "+s.cfg.Port,
			"Try a different read_timeout")
	}

	if err := s.sleep(ctx, s.cfg.Settle); err != nil {
		p.Close()
		return err
	}

	s.readMu.Lock()
	s.partial = s.partial[:0]
	s.lines = nil
	s.readMu.Unlock()

	s.mu.Lock()
	s.port = p
	s.mu.Unlock()

	for i := 0; i < s.cfg.WarmupLines; i++ {
		line, err := s.ReadLine(ctx)
		if err == ErrTimeout {
			break
		}
		if err != nil {
			s.Close()
			return errors.WrapWithCode(err, errors.ErrConnect,
				"Serial port "+s.cfg.Port+" failed during warm-up",
				"Check the device is sending data")
		}
		s.log.Debug("warm-up discard: %q", line)
	}

	s.log.Info("opened %s", s.cfg.Port)
	return nil
}

// ReadLine returns the next complete line without its terminator.
func (s *Serial) ReadLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.readMu.Lock()
	defer s.readMu.Unlock()

	if line, ok := s.nextLine(); ok {
		return line, nil
	}

	s.mu.Lock()
	p := s.port
	s.mu.Unlock()
	if p == nil {
		return "", ErrClosed
	}

	n, err := p.Read(s.buf)
	if n > 0 {
		s.partial = append(s.partial, s.buf[:n]...)
		s.splitLines()
	}
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrLink,
			"Serial link to "+s.cfg.Port+" lost",
			"Check the cable and restart the session")
	}

	if line, ok := s.nextLine(); ok {
		return line, nil
	}
	// go.bug.st/serial reports a timeout as a zero-length read.
	return "", ErrTimeout
}

// splitLines moves complete lines from partial into the queue.
// Must be called with s.readMu held.
func (s *Serial) splitLines() {
	for {
		idx := bytes.IndexByte(s.partial, '\n')
		if idx < 0 {
			break
		}
		line := strings.TrimRight(string(s.partial[:idx]), "\r")
		s.partial = s.partial[idx+1:]
		s.lines = append(s.lines, strings.ToValidUTF8(line, ""))
	}
	// A device that never sends a newline shouldn't grow the buffer forever.
	if len(s.partial) > maxLineLen {
		s.log.Warn("dropping %d bytes without a newline", len(s.partial))
		s.partial = s.partial[:0]
	}
}

// Must be called with s.readMu held.
func (s *Serial) nextLine() (string, bool) {
	if len(s.lines) == 0 {
		return "", false
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, true
}

// Send writes token plus a newline.
func (s *Serial) Send(token string) error {
	s.mu.Lock()
	p := s.port
	s.mu.Unlock()
	if p == nil {
		return ErrClosed
	}
	if _, err := p.Write([]byte(token + "\n")); err != nil {
		return errors.WrapWithCode(err, errors.ErrLink,
			"Failed to send "+token+" to "+s.cfg.Port,
			"Check the device is still connected")
	}
	s.log.Debug("sent %s", token)
	return nil
}

// Close releases the port. Closing an already-closed source is a no-op.
func (s *Serial) Close() error {
	s.mu.Lock()
	p := s.port
	s.port = nil
	s.mu.Unlock()

	if p == nil {
		return nil
	}
	s.log.Info("closing %s", s.cfg.Port)
	return p.Close()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
