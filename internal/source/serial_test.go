package source

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rileyhilliard/sensormon/internal/config"
	smerrors "github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

// fakePort hands out scripted chunks; an empty queue behaves like a read
// timeout.
type fakePort struct {
	mu      sync.Mutex
	chunks  [][]byte
	written []string
	closed  bool
	timeout time.Duration
	readErr error
}

func (p *fakePort) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, errors.New("port has been closed")
	}
	if p.readErr != nil {
		return 0, p.readErr
	}
	if len(p.chunks) == 0 {
		return 0, nil
	}
	n := copy(b, p.chunks[0])
	if n < len(p.chunks[0]) {
		p.chunks[0] = p.chunks[0][n:]
	} else {
		p.chunks = p.chunks[1:]
	}
	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, errors.New("port has been closed")
	}
	p.written = append(p.written, string(b))
	return len(b), nil
}

func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *fakePort) SetReadTimeout(t time.Duration) error {
	p.timeout = t
	return nil
}

func (p *fakePort) ResetInputBuffer() error { return nil }

func (p *fakePort) feed(chunks ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range chunks {
		p.chunks = append(p.chunks, []byte(c))
	}
}

func newTestSerial(t *testing.T, port *fakePort, cfg config.SerialConfig) (*Serial, *serial.Mode) {
	t.Helper()
	var gotMode *serial.Mode
	s := NewSerial(cfg, func(name string, mode *serial.Mode) (Port, error) {
		gotMode = mode
		return port, nil
	}, nil)
	s.sleep = func(context.Context, time.Duration) error { return nil }
	require.NoError(t, s.Open(context.Background()))
	return s, gotMode
}

// readLine retries through timeouts while buffered chunks remain.
func readLine(t *testing.T, s *Serial) string {
	t.Helper()
	for i := 0; i < 10; i++ {
		line, err := s.ReadLine(context.Background())
		if err == ErrTimeout {
			continue
		}
		require.NoError(t, err)
		return line
	}
	t.Fatal("no line after 10 reads")
	return ""
}

func testSerialConfig() config.SerialConfig {
	return config.SerialConfig{
		Port:        "/dev/ttyTEST",
		Baud:        115200,
		ReadTimeout: 100 * time.Millisecond,
	}
}

func TestSerial_OpenConfiguresPort(t *testing.T) {
	port := &fakePort{}
	s, mode := newTestSerial(t, port, testSerialConfig())
	defer s.Close()

	require.NotNil(t, mode)
	assert.Equal(t, 115200, mode.BaudRate)
	assert.Equal(t, 8, mode.DataBits)
	assert.Equal(t, 100*time.Millisecond, port.timeout)
	assert.True(t, s.IsOpen())
	assert.Equal(t, "/dev/ttyTEST", s.Name())
	assert.Equal(t, Push, s.Mode())

	require.NoError(t, s.Open(context.Background()), "reopen is a no-op")
}

func TestSerial_OpenFailure(t *testing.T) {
	s := NewSerial(testSerialConfig(), func(string, *serial.Mode) (Port, error) {
		return nil, errors.New("no such file or directory")
	}, nil)

	err := s.Open(context.Background())
	require.Error(t, err)
	assert.True(t, smerrors.IsCode(err, smerrors.ErrConnect))
	assert.Contains(t, err.Error(), "/dev/ttyTEST")
	assert.False(t, s.IsOpen())
}

func TestSerial_SettleHonoursContext(t *testing.T) {
	port := &fakePort{}
	cfg := testSerialConfig()
	cfg.Settle = time.Hour
	s := NewSerial(cfg, func(string, *serial.Mode) (Port, error) { return port, nil }, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Open(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, port.closed, "port released when open is abandoned")
	assert.False(t, s.IsOpen())
}

func TestSerial_ReadLineSplitsChunks(t *testing.T) {
	port := &fakePort{}
	s, _ := newTestSerial(t, port, testSerialConfig())
	defer s.Close()

	port.feed("23.5,4", "8.1\r\n24.0,49.0\n25")

	assert.Equal(t, "23.5,48.1", readLine(t, s))
	assert.Equal(t, "24.0,49.0", readLine(t, s))

	_, err := s.ReadLine(context.Background())
	assert.ErrorIs(t, err, ErrTimeout, "partial line stays buffered")

	port.feed(".5,50\n")
	assert.Equal(t, "25.5,50", readLine(t, s))
}

func TestSerial_ReadTimeout(t *testing.T) {
	port := &fakePort{}
	s, _ := newTestSerial(t, port, testSerialConfig())
	defer s.Close()

	_, err := s.ReadLine(context.Background())
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestSerial_ReadErrorIsLinkError(t *testing.T) {
	port := &fakePort{}
	s, _ := newTestSerial(t, port, testSerialConfig())
	defer s.Close()

	port.readErr = errors.New("input/output error")
	_, err := s.ReadLine(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.True(t, smerrors.IsCode(err, smerrors.ErrLink))
}

func TestSerial_ReadLineCancelled(t *testing.T) {
	port := &fakePort{}
	s, _ := newTestSerial(t, port, testSerialConfig())
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.ReadLine(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSerial_WarmupDrainsLines(t *testing.T) {
	port := &fakePort{}
	port.feed("boot\n", "INFO ready\n", "1,2,3\n", "4,5,6\n")
	cfg := testSerialConfig()
	cfg.WarmupLines = 2

	s, _ := newTestSerial(t, port, cfg)
	defer s.Close()

	assert.Equal(t, "1,2,3", readLine(t, s))
}

func TestSerial_WarmupStopsOnTimeout(t *testing.T) {
	port := &fakePort{}
	cfg := testSerialConfig()
	cfg.WarmupLines = 5

	s, _ := newTestSerial(t, port, cfg)
	defer s.Close()
	assert.True(t, s.IsOpen())
}

func TestSerial_SendAndClose(t *testing.T) {
	port := &fakePort{}
	s, _ := newTestSerial(t, port, testSerialConfig())

	require.NoError(t, s.Send("START"))
	assert.Equal(t, []string{"START\n"}, port.written)

	require.NoError(t, s.Close())
	assert.True(t, port.closed)
	assert.False(t, s.IsOpen())
	require.NoError(t, s.Close(), "double close is fine")

	assert.ErrorIs(t, s.Send("STOP"), ErrClosed)
	_, err := s.ReadLine(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSerial_DropsRunawayLine(t *testing.T) {
	port := &fakePort{}
	s, _ := newTestSerial(t, port, testSerialConfig())
	defer s.Close()

	junk := make([]byte, maxLineLen+10)
	for i := range junk {
		junk[i] = 'x'
	}
	port.feed(string(junk))
	for i := 0; i < 40; i++ {
		_, _ = s.ReadLine(context.Background())
	}
	port.feed("\n1,2\n")

	var got []string
	for i := 0; i < 3; i++ {
		if line, err := s.ReadLine(context.Background()); err == nil {
			got = append(got, line)
		}
	}
	assert.Contains(t, got, "1,2")
}
