// Package slcan implements framed byte I/O to a serial port speaking the
// SLCAN ASCII CAN-over-serial protocol: T<8-hex-id><1-hex-len><2N-hex
// data>\r lines in both directions.
package slcan

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"go.bug.st/serial"

	"github.com/zdt-robotics/zdtcan"
)

// Port is the subset of go.bug.st/serial.Port this package actually
// uses, narrowed for testability the way the teacher's
// SerialPortInterface narrowed its own OS-specific port type.
type Port interface {
	io.Reader
	io.Writer
	io.Closer
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

// pollInterval is the granularity at which RecvFrame accumulates bytes
// while waiting for a terminating \r, per spec.md §4.1's "polls at 10ms
// granularity" requirement.
const pollInterval = 10 * time.Millisecond

// Transport owns one open SLCAN serial connection.
type Transport struct {
	port   Port
	logger *slog.Logger
	buf    bytes.Buffer
}

// Open opens portName at baud, puts the SLCAN adapter through its
// init sequence (C\r, S6\r, O\r, each followed by a 100ms settle), and
// returns a ready Transport.
func Open(portName string, baud int, logger *slog.Logger) (*Transport, error) {
	if logger == nil {
		logger = slog.Default()
	}

	mode := &serial.Mode{BaudRate: baud, DataBits: 8, Parity: serial.NoParity, StopBits: serial.OneStopBit}
	p, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", zdtcan.ErrTransportOpen, err)
	}
	if err := p.SetReadTimeout(pollInterval); err != nil {
		p.Close()
		return nil, fmt.Errorf("%w: %v", zdtcan.ErrTransportOpen, err)
	}

	t := &Transport{port: p, logger: logger}
	if err := t.init(); err != nil {
		p.Close()
		return nil, err
	}
	return t, nil
}

// OpenWithPort wraps an already-open Port, skipping serial.Open — used by
// tests and by callers that manage the underlying port themselves.
func OpenWithPort(p Port, logger *slog.Logger) (*Transport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Transport{port: p, logger: logger}
	if err := t.init(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Transport) init() error {
	for _, cmd := range []string{"C\r", "S6\r", "O\r"} {
		if _, err := t.port.Write([]byte(cmd)); err != nil {
			return fmt.Errorf("%w: init command %q: %v", zdtcan.ErrTransportOpen, cmd, err)
		}
		time.Sleep(zdtcan.PostInitSettle)
	}
	t.logger.Info("slcan: channel opened")
	return nil
}

// SendFrame formats and writes a single SLCAN frame: T<8-hex
// id><1-hex-len><2N-hex data>\r. data must be at most 8 bytes.
//
// It flushes the port's input buffer and discards any partial line this
// transport had already accumulated before writing, matching
// can_interface.py's flushInput() on every send. RecvFrame returns the
// instant it matches, so bytes trailing a prior response are never
// consumed; without the flush they could be mistaken for the next
// command's response if they land on the same frame ID.
func (t *Transport) SendFrame(frameID uint32, data []byte) error {
	if len(data) > 8 {
		return fmt.Errorf("%w: frame data exceeds 8 bytes (%d)", zdtcan.ErrMalformedFrame, len(data))
	}

	if err := t.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("%w: %v", zdtcan.ErrTransportIO, err)
	}
	t.buf.Reset()

	line := fmt.Sprintf("T%08X%X%s\r", frameID, len(data), hexEncode(data))
	t.logger.Debug("slcan: send frame", "id", frameID, "data", hexEncode(data))

	if _, err := t.port.Write([]byte(line)); err != nil {
		return fmt.Errorf("%w: %v", zdtcan.ErrTransportIO, err)
	}
	return nil
}

// RecvFrame reads until a \r-terminated T-line carrying the expected
// frame ID arrives, or timeout elapses. Frames for other IDs are parsed
// and discarded; they are never buffered for a later call.
func (t *Transport) RecvFrame(expectedFrameID uint32, timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	tmp := make([]byte, 256)

	for time.Now().Before(deadline) {
		n, err := t.port.Read(tmp)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", zdtcan.ErrTransportIO, err)
		}
		if n > 0 {
			t.buf.Write(tmp[:n])
		}

		for {
			line, ok := t.nextLine()
			if !ok {
				break
			}
			id, data, ok := parseLine(line)
			if !ok {
				continue
			}
			t.logger.Debug("slcan: recv frame", "id", id, "data", hexEncode(data))
			if id == expectedFrameID {
				return data, nil
			}
		}

		if n == 0 {
			time.Sleep(pollInterval)
		}
	}

	t.buf.Reset()
	return nil, zdtcan.ErrTimeout
}

// nextLine extracts and removes one \r-terminated line from the internal
// accumulation buffer, if one is complete.
func (t *Transport) nextLine() (string, bool) {
	b := t.buf.Bytes()
	idx := bytes.IndexByte(b, '\r')
	if idx < 0 {
		return "", false
	}
	line := string(b[:idx])
	t.buf.Next(idx + 1)
	return line, true
}

// parseLine parses a SLCAN T-line into frame ID and data bytes.
func parseLine(line string) (id uint32, data []byte, ok bool) {
	if len(line) < 10 || line[0] != 'T' {
		return 0, nil, false
	}
	idVal, err := strconv.ParseUint(line[1:9], 16, 32)
	if err != nil {
		return 0, nil, false
	}
	length, err := strconv.ParseUint(line[9:10], 16, 8)
	if err != nil {
		return 0, nil, false
	}
	want := 10 + int(length)*2
	if len(line) < want {
		return 0, nil, false
	}
	raw := line[10:want]
	data = make([]byte, length)
	for i := range data {
		v, err := strconv.ParseUint(raw[i*2:i*2+2], 16, 8)
		if err != nil {
			return 0, nil, false
		}
		data[i] = byte(v)
	}
	return uint32(idVal), data, true
}

func hexEncode(data []byte) string {
	const hexDigits = "0123456789ABCDEF"
	out := make([]byte, len(data)*2)
	for i, b := range data {
		out[i*2] = hexDigits[b>>4]
		out[i*2+1] = hexDigits[b&0x0F]
	}
	return string(out)
}

// Close sends the teardown command and releases the OS handle.
func (t *Transport) Close() error {
	t.port.Write([]byte("C\r"))
	t.logger.Info("slcan: channel closed")
	return t.port.Close()
}
