package motor

import (
	"context"
	"fmt"
	"time"

	"github.com/zdt-robotics/zdtcan"
	"github.com/zdt-robotics/zdtcan/codec"
)

// TriggerHoming starts a homing cycle in the given mode.
func (m *Motor) TriggerHoming(ctx context.Context, mode byte, multiSync bool) error {
	_, err := m.sendCommand(ctx, codec.TriggerHoming(mode, multiSync), zdtcan.FCTriggerHoming, false)
	return err
}

// ForceStopHoming aborts an in-progress homing cycle.
func (m *Motor) ForceStopHoming(ctx context.Context) error {
	_, err := m.sendCommand(ctx, codec.ForceStopHoming(), zdtcan.FCForceStopHoming, false)
	return err
}

// SetZeroPosition sets the current position as the single-turn zero
// point, optionally persisting it to flash.
func (m *Motor) SetZeroPosition(ctx context.Context, save bool) error {
	_, err := m.sendCommand(ctx, codec.SetZero(save), zdtcan.FCSetZeroPosition, false)
	return err
}

// ReadHomingStatus reads the five homing status flags.
func (m *Motor) ReadHomingStatus(ctx context.Context) (zdtcan.HomingStatus, error) {
	payload, err := m.sendCommand(ctx, codec.ReadHomingStatus(), zdtcan.FCReadHomingStatus, false)
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

// ReadHomingParameters reads the 15-byte homing parameter block.
func (m *Motor) ReadHomingParameters(ctx context.Context) (zdtcan.HomingParameters, error) {
	payload, err := m.sendCommand(ctx, codec.ReadHomingParameters(), zdtcan.FCReadHomingParams, false)
	if err != nil {
		return zdtcan.HomingParameters{}, err
	}
	return codec.ParseHomingParameters(payload)
}

// ModifyHomingParameters writes a new homing parameter block.
func (m *Motor) ModifyHomingParameters(ctx context.Context, p zdtcan.HomingParameters, save bool) error {
	_, err := m.sendCommand(ctx, codec.ModifyHomingParams(p, save), zdtcan.FCModifyHomingParams, false)
	return err
}

// IsHomingInProgress and IsHomingFailed are read-through convenience
// checks over ReadHomingStatus.
func (m *Motor) IsHomingInProgress(ctx context.Context) bool {
	s, err := m.ReadHomingStatus(ctx)
	return err == nil && s.HomingInProgress
}

func (m *Motor) IsHomingFailed(ctx context.Context) bool {
	s, err := m.ReadHomingStatus(ctx)
	return err == nil && s.HomingFailed
}

func (m *Motor) IsEncoderReady(ctx context.Context) bool {
	s, err := m.ReadHomingStatus(ctx)
	return err == nil && s.EncoderReady
}

// WaitForHomingComplete polls ReadHomingStatus until homing is no longer
// in progress, ctx is done, or timeout elapses. This is a supplemented
// convenience (homing_commands.py's wait_for_homing_complete) built
// entirely out of the primitives above — context.Context replaces the
// original's blocking time.sleep polling loop.
func (m *Motor) WaitForHomingComplete(ctx context.Context, timeout, pollInterval time.Duration) (zdtcan.HomingStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		status, err := m.ReadHomingStatus(ctx)
		if err != nil {
			return zdtcan.HomingStatus{}, err
		}
		if !status.HomingInProgress {
			return status, nil
		}

		select {
		case <-ctx.Done():
			return status, fmt.Errorf("zdtcan: homing did not complete within %s: %w", timeout, ctx.Err())
		case <-ticker.C:
		}
	}
}
