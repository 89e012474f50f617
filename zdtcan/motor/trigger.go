package motor

import (
	"context"

	"github.com/zdt-robotics/zdtcan"
	"github.com/zdt-robotics/zdtcan/codec"
)

// ClearPosition zeroes the accumulated position counter without touching
// the encoder zero point.
func (m *Motor) ClearPosition(ctx context.Context) error {
	_, err := m.sendCommand(ctx, codec.ClearPosition(), zdtcan.FCClearPosition, false)
	return err
}

// ReleaseStallProtection clears a latched stall-protection fault, letting
// the motor accept new motion commands again.
func (m *Motor) ReleaseStallProtection(ctx context.Context) error {
	_, err := m.sendCommand(ctx, codec.ReleaseStallProtection(), zdtcan.FCReleaseStallProtection, false)
	return err
}

// TriggerEncoderCalibration starts the encoder self-calibration routine.
func (m *Motor) TriggerEncoderCalibration(ctx context.Context) error {
	_, err := m.sendCommand(ctx, codec.TriggerEncoderCalibration(), zdtcan.FCTriggerEncoderCalib, false)
	return err
}

// FactoryReset restores the drive's flash-stored configuration to
// firmware defaults.
func (m *Motor) FactoryReset(ctx context.Context) error {
	_, err := m.sendCommand(ctx, codec.FactoryReset(), zdtcan.FCFactoryReset, false)
	return err
}

// EmergencyStop issues an immediate stop and, if the motor is currently
// enabled, disables it. This is a supplemented convenience combining two
// trigger_actions.py primitives into the single operator-facing action a
// panic button would invoke.
func (m *Motor) EmergencyStop(ctx context.Context) error {
	if err := m.Stop(ctx, false); err != nil {
		return err
	}
	if m.IsEnabled(ctx) {
		return m.Disable(ctx)
	}
	return nil
}
