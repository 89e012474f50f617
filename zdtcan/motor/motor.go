// Package motor implements the per-axis session on top of a shared bus
// handle: build command, fragment if needed, send, await the matching
// response, parse it, and surface typed errors — one file per concern,
// matching the original's control_actions / homing_commands /
// trigger_actions / read_parameters / modify_parameters split.
package motor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zdt-robotics/zdtcan"
	"github.com/zdt-robotics/zdtcan/bus"
	"github.com/zdt-robotics/zdtcan/codec"
)

// busHandle is the subset of *bus.Handle a Motor needs, narrowed for
// testability.
type busHandle interface {
	Lock()
	Unlock()
	SendFrame(frameID uint32, data []byte) error
	RecvFrame(expectedFrameID uint32, timeout time.Duration) ([]byte, error)
}

// Motor is a single axis's session: identity, a shared bus handle, and
// the last observed status snapshots. It is not safe to use a Motor from
// multiple goroutines without external synchronization beyond what the
// shared bus handle itself serializes — spec.md §3's "single-reader"
// cache rule.
type Motor struct {
	ID      byte
	bus     busHandle
	logger  *slog.Logger
	Timeout time.Duration

	lastMotorStatus  *zdtcan.MotorStatus
	lastHomingStatus *zdtcan.HomingStatus
}

// New creates a Motor session bound to an already-acquired bus handle.
// Connecting/disconnecting the underlying transport is the caller's
// responsibility via the bus.Coordinator; a Motor never opens or closes
// the transport itself.
func New(id byte, h *bus.Handle, logger *slog.Logger) *Motor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Motor{ID: id, bus: h, logger: logger, Timeout: zdtcan.DefaultResponseWait}
}

func (m *Motor) baseFrameID() uint32 {
	return uint32(m.ID) << 8
}

// sendCommand is the canonical send/receive protocol shared by every
// public operation: motor_id==0 short-circuits to a synthetic success
// (broadcast isolation, spec.md testable property 5); otherwise the
// command is fragmented if it exceeds 8 bytes, every frame is sent with
// the documented inter-fragment delay, and the response is awaited on
// the base frame-ID and parsed against expectedFC.
//
// noRequery suppresses the ConditionNotMet refinement re-query. Every
// caller in this package passes false; the refinement itself reads status
// through readMotorStatusLocked/readHomingStatusLocked, which never call
// back into sendCommand, so refinement cannot recurse and the bus lock —
// already held for the outer call — is never re-acquired.
func (m *Motor) sendCommand(ctx context.Context, cmd []byte, expectedFC byte, noRequery bool) ([]byte, error) {
	if m.ID == 0 {
		return []byte{zdtcan.StatusSuccess}, nil
	}

	frames := codec.Fragment(cmd)
	baseID := m.baseFrameID()

	m.bus.Lock()
	defer m.bus.Unlock()

	for i, frame := range frames {
		if err := m.bus.SendFrame(baseID+uint32(i), frame); err != nil {
			return nil, fmt.Errorf("%w: motor %d: %v", zdtcan.ErrTransportIO, m.ID, err)
		}
		if i < len(frames)-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(zdtcan.InterFragmentDelay):
			}
		}
	}

	if m.ID == 0 {
		return []byte{zdtcan.StatusSuccess}, nil
	}

	data, err := m.bus.RecvFrame(baseID, m.Timeout)
	if err != nil {
		return nil, err
	}

	payload, err := codec.ParseResponse(data, expectedFC)
	if err != nil {
		var cnm *zdtcan.ConditionNotMetError
		if !noRequery && errors.As(err, &cnm) {
			return nil, m.refineConditionNotMet(ctx)
		}
		return nil, err
	}

	return payload, nil
}

// refineConditionNotMet performs the single internal status re-query the
// original's _send_command makes to distinguish why the device rejected
// a command, without acquiring the bus lock again (the caller already
// holds it) and without itself being able to trigger another refinement.
func (m *Motor) refineConditionNotMet(ctx context.Context) error {
	status, err := m.readMotorStatusLocked(ctx)
	if err != nil {
		return &zdtcan.ConditionNotMetError{Kind: zdtcan.ConditionGeneric}
	}

	switch {
	case !status.Enabled:
		return &zdtcan.ConditionNotMetError{Kind: zdtcan.ConditionNotEnabled}
	case status.StallProtection:
		return &zdtcan.ConditionNotMetError{Kind: zdtcan.ConditionStallProtection}
	default:
		if homing, herr := m.readHomingStatusLocked(ctx); herr == nil && homing.HomingInProgress {
			return &zdtcan.ConditionNotMetError{Kind: zdtcan.ConditionHomingInProgress}
		}
		return &zdtcan.ConditionNotMetError{Kind: zdtcan.ConditionGeneric}
	}
}

// readMotorStatusLocked and readHomingStatusLocked are lock-aware: they
// assume the caller (sendCommand, via refineConditionNotMet) already
// holds m.bus's lock, so they talk to the transport directly instead of
// going back through sendCommand (which would try to re-lock).
func (m *Motor) readMotorStatusLocked(ctx context.Context) (zdtcan.MotorStatus, error) {
	cmd := codec.ReadMotorStatus()
	baseID := m.baseFrameID()
	if err := m.bus.SendFrame(baseID, cmd); err != nil {
		return zdtcan.MotorStatus{}, fmt.Errorf("%w: %v", zdtcan.ErrTransportIO, err)
	}
	data, err := m.bus.RecvFrame(baseID, m.Timeout)
	if err != nil {
		return zdtcan.MotorStatus{}, err
	}
	payload, err := codec.ParseResponse(data, zdtcan.FCReadMotorStatus)
	if err != nil {
		return zdtcan.MotorStatus{}, err
	}
	status, err := codec.ParseMotorStatus(payload)
	if err != nil {
		return zdtcan.MotorStatus{}, err
	}
	m.lastMotorStatus = &status
	return status, nil
}

func (m *Motor) readHomingStatusLocked(ctx context.Context) (zdtcan.HomingStatus, error) {
	cmd := codec.ReadHomingStatus()
	baseID := m.baseFrameID()
	if err := m.bus.SendFrame(baseID, cmd); err != nil {
		return zdtcan.HomingStatus{}, fmt.Errorf("%w: %v", zdtcan.ErrTransportIO, err)
	}
	data, err := m.bus.RecvFrame(baseID, m.Timeout)
	if err != nil {
		return zdtcan.HomingStatus{}, err
	}
	payload, err := codec.ParseResponse(data, zdtcan.FCReadHomingStatus)
	if err != nil {
		return zdtcan.HomingStatus{}, err
	}
	status, err := codec.ParseHomingStatus(payload)
	if err != nil {
		return zdtcan.HomingStatus{}, err
	}
	m.lastHomingStatus = &status
	return status, nil
}

// Disconnect releases the motor's reference on the shared bus. It does
// not close the bus if other motors still hold it.
func (m *Motor) Disconnect() error {
	if h, ok := m.bus.(*bus.Handle); ok {
		return h.Release()
	}
	return nil
}
