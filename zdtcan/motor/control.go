package motor

import (
	"context"

	"github.com/zdt-robotics/zdtcan"
	"github.com/zdt-robotics/zdtcan/codec"
)

// Enable engages the motor's drive. multiSync defers execution to a
// broadcast trigger (spec.md §4.6 two-phase sync) instead of taking
// effect immediately.
func (m *Motor) Enable(ctx context.Context, multiSync bool) error {
	_, err := m.sendCommand(ctx, codec.MotorEnable(true, multiSync), zdtcan.FCMotorEnable, false)
	return err
}

// Disable releases the motor's drive.
func (m *Motor) Disable(ctx context.Context) error {
	_, err := m.sendCommand(ctx, codec.MotorEnable(false, false), zdtcan.FCMotorEnable, false)
	return err
}

// Stop issues an immediate stop, halting whatever motion is in progress.
func (m *Motor) Stop(ctx context.Context, multiSync bool) error {
	_, err := m.sendCommand(ctx, codec.ImmediateStop(multiSync), zdtcan.FCImmediateStop, false)
	return err
}

// SetTorque switches to torque (current) control mode.
func (m *Motor) SetTorque(ctx context.Context, currentMA float64, currentSlope uint16, multiSync bool) error {
	cmd, err := codec.TorqueMode(currentMA, currentSlope, multiSync)
	if err != nil {
		return err
	}
	_, err = m.sendCommand(ctx, cmd, zdtcan.FCTorqueMode, false)
	return err
}

// SetSpeed switches to speed control mode.
func (m *Motor) SetSpeed(ctx context.Context, speedRPM float64, accelRPMps uint16, multiSync bool) error {
	cmd, err := codec.SpeedMode(speedRPM, accelRPMps, multiSync)
	if err != nil {
		return err
	}
	_, err = m.sendCommand(ctx, cmd, zdtcan.FCSpeedMode, false)
	return err
}

// MoveToPositionDirect commands a direct limited-speed move to
// positionDeg, absolute or relative to the current position.
func (m *Motor) MoveToPositionDirect(ctx context.Context, positionDeg, speedRPM float64, absolute, multiSync bool) error {
	cmd, err := codec.PositionDirect(positionDeg, speedRPM, absolute, multiSync)
	if err != nil {
		return err
	}
	_, err = m.sendCommand(ctx, cmd, zdtcan.FCPositionDirect, false)
	return err
}

// MoveToPositionTrapezoid commands a trapezoidal-profile move to
// positionDeg with explicit accel/decel ramps.
func (m *Motor) MoveToPositionTrapezoid(ctx context.Context, positionDeg, speedRPM float64, accelRPMps, decelRPMps uint16, absolute, multiSync bool) error {
	cmd, err := codec.PositionTrapezoid(positionDeg, speedRPM, accelRPMps, decelRPMps, absolute, multiSync)
	if err != nil {
		return err
	}
	_, err = m.sendCommand(ctx, cmd, zdtcan.FCPositionTrapezoid, false)
	return err
}

// IsEnabled, IsInPosition and IsStalled are read-through convenience
// checks over ReadMotorStatus — not cached state transitions, matching
// control_actions.py's is_enabled/is_in_position/is_stalled.
func (m *Motor) IsEnabled(ctx context.Context) bool {
	s, err := m.ReadMotorStatus(ctx)
	return err == nil && s.Enabled
}

func (m *Motor) IsInPosition(ctx context.Context) bool {
	s, err := m.ReadMotorStatus(ctx)
	return err == nil && s.InPosition
}

func (m *Motor) IsStalled(ctx context.Context) bool {
	s, err := m.ReadMotorStatus(ctx)
	return err == nil && s.Stalled
}
