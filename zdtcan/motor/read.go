package motor

import (
	"context"

	"github.com/zdt-robotics/zdtcan"
	"github.com/zdt-robotics/zdtcan/codec"
)

// ReadMotorStatus reads the four-flag motor status byte.
func (m *Motor) ReadMotorStatus(ctx context.Context) (zdtcan.MotorStatus, error) {
	payload, err := m.sendCommand(ctx, codec.ReadMotorStatus(), zdtcan.FCReadMotorStatus, false)
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

// ReadPosition reads the realtime shaft position in degrees.
func (m *Motor) ReadPosition(ctx context.Context) (float64, error) {
	payload, err := m.sendCommand(ctx, codec.ReadRealtimePosition(), zdtcan.FCReadRealtimePosition, false)
	if err != nil {
		return 0, err
	}
	dir, mag, err := codec.ParseSignedU32(payload)
	if err != nil {
		return 0, err
	}
	return zdtcan.UnscalePosition(dir, mag), nil
}

// ReadTargetPosition reads the commanded (not yet reached) target position.
func (m *Motor) ReadTargetPosition(ctx context.Context) (float64, error) {
	payload, err := m.sendCommand(ctx, codec.ReadTargetPosition(), zdtcan.FCReadTargetPosition, false)
	if err != nil {
		return 0, err
	}
	dir, mag, err := codec.ParseSignedU32(payload)
	if err != nil {
		return 0, err
	}
	return zdtcan.UnscalePosition(dir, mag), nil
}

// ReadRealtimeTargetPosition reads the trapezoid profile's live setpoint.
func (m *Motor) ReadRealtimeTargetPosition(ctx context.Context) (float64, error) {
	payload, err := m.sendCommand(ctx, codec.ReadRealtimeTargetPosition(), zdtcan.FCReadRealtimeTarget, false)
	if err != nil {
		return 0, err
	}
	dir, mag, err := codec.ParseSignedU32(payload)
	if err != nil {
		return 0, err
	}
	return zdtcan.UnscalePosition(dir, mag), nil
}

// ReadSpeed reads the realtime shaft speed in RPM.
func (m *Motor) ReadSpeed(ctx context.Context) (float64, error) {
	payload, err := m.sendCommand(ctx, codec.ReadRealtimeSpeed(), zdtcan.FCReadRealtimeSpeed, false)
	if err != nil {
		return 0, err
	}
	dir, mag, err := codec.ParseSignedU16(payload)
	if err != nil {
		return 0, err
	}
	return zdtcan.UnscaleSpeed(dir, mag), nil
}

// ReadPositionError reads the closed-loop tracking error in degrees.
func (m *Motor) ReadPositionError(ctx context.Context) (float64, error) {
	payload, err := m.sendCommand(ctx, codec.ReadPositionError(), zdtcan.FCReadPositionError, false)
	if err != nil {
		return 0, err
	}
	dir, mag, err := codec.ParseSignedU32(payload)
	if err != nil {
		return 0, err
	}
	return zdtcan.UnscalePositionError(dir, mag), nil
}

// ReadTemperature reads the driver board temperature in degrees Celsius.
func (m *Motor) ReadTemperature(ctx context.Context) (float64, error) {
	payload, err := m.sendCommand(ctx, codec.ReadTemperature(), zdtcan.FCReadTemperature, false)
	if err != nil {
		return 0, err
	}
	if len(payload) < 2 {
		return 0, &zdtcan.InvalidResponseLengthError{Expected: 2, Actual: len(payload)}
	}
	return zdtcan.UnscaleTemperature(payload[0], payload[1]), nil
}

// ReadBusVoltage reads the bus supply voltage in volts.
func (m *Motor) ReadBusVoltage(ctx context.Context) (float64, error) {
	payload, err := m.sendCommand(ctx, codec.ReadBusVoltage(), zdtcan.FCReadBusVoltage, false)
	if err != nil {
		return 0, err
	}
	raw, err := codec.ParseUnsignedU16(payload)
	if err != nil {
		return 0, err
	}
	return float64(raw) / 1000.0, nil
}

// ReadBusCurrent reads the bus supply current in amps.
func (m *Motor) ReadBusCurrent(ctx context.Context) (float64, error) {
	payload, err := m.sendCommand(ctx, codec.ReadBusCurrent(), zdtcan.FCReadBusCurrent, false)
	if err != nil {
		return 0, err
	}
	raw, err := codec.ParseUnsignedU16(payload)
	if err != nil {
		return 0, err
	}
	return float64(raw) / 1000.0, nil
}

// ReadPhaseCurrent reads the motor phase current in amps.
func (m *Motor) ReadPhaseCurrent(ctx context.Context) (float64, error) {
	payload, err := m.sendCommand(ctx, codec.ReadPhaseCurrent(), zdtcan.FCReadPhaseCurrent, false)
	if err != nil {
		return 0, err
	}
	raw, err := codec.ParseUnsignedU16(payload)
	if err != nil {
		return 0, err
	}
	return float64(raw) / 1000.0, nil
}

// ReadVersion reads the firmware/hardware version string pair.
func (m *Motor) ReadVersion(ctx context.Context) (firmware, hardware string, err error) {
	payload, err := m.sendCommand(ctx, codec.ReadVersion(), zdtcan.FCReadVersion, false)
	if err != nil {
		return "", "", err
	}
	return codec.ParseVersion(payload)
}

// ReadResistanceInductance reads the measured phase resistance (ohms) and
// inductance (millihenries).
func (m *Motor) ReadResistanceInductance(ctx context.Context) (resistanceOhm, inductanceMH float64, err error) {
	payload, err := m.sendCommand(ctx, codec.ReadResistanceInductance(), zdtcan.FCReadResistanceInduct, false)
	if err != nil {
		return 0, 0, err
	}
	return codec.ParseResistanceInductance(payload)
}

// ReadPIDParameters reads the closed-loop PID gains, tolerating a
// truncated response by progressively filling the fields present.
func (m *Motor) ReadPIDParameters(ctx context.Context) (zdtcan.PIDParameters, error) {
	payload, err := m.sendCommand(ctx, codec.ReadPIDParameters(), zdtcan.FCReadPIDParams, false)
	if err != nil {
		return zdtcan.PIDParameters{}, err
	}
	return codec.ParsePIDParameters(payload), nil
}

// ReadEncoderRaw reads the raw 14-bit encoder angle in degrees.
func (m *Motor) ReadEncoderRaw(ctx context.Context) (float64, error) {
	payload, err := m.sendCommand(ctx, codec.ReadEncoderRaw(), zdtcan.FCReadEncoderRaw, false)
	if err != nil {
		return 0, err
	}
	raw, err := codec.ParseUnsignedU16(payload)
	if err != nil {
		return 0, err
	}
	return zdtcan.EncoderRawToDegrees(raw), nil
}

// ReadEncoderCalibrated reads the calibrated 16-bit encoder angle in degrees.
func (m *Motor) ReadEncoderCalibrated(ctx context.Context) (float64, error) {
	payload, err := m.sendCommand(ctx, codec.ReadEncoderCalibrated(), zdtcan.FCReadEncoderCalibrated, false)
	if err != nil {
		return 0, err
	}
	raw, err := codec.ParseUnsignedU16(payload)
	if err != nil {
		return 0, err
	}
	return zdtcan.EncoderCalibratedToDegrees(raw), nil
}

// ReadPulseCount reads the accumulated input pulse count.
func (m *Motor) ReadPulseCount(ctx context.Context) (int32, error) {
	payload, err := m.sendCommand(ctx, codec.ReadPulseCount(), zdtcan.FCReadPulseCount, false)
	if err != nil {
		return 0, err
	}
	dir, mag, err := codec.ParseSignedU32(payload)
	if err != nil {
		return 0, err
	}
	n := int32(mag)
	if dir == zdtcan.DirectionNegative {
		n = -n
	}
	return n, nil
}

// ReadInputPulse reads the live pulse/direction input state.
func (m *Motor) ReadInputPulse(ctx context.Context) (int32, error) {
	payload, err := m.sendCommand(ctx, codec.ReadInputPulse(), zdtcan.FCReadInputPulse, false)
	if err != nil {
		return 0, err
	}
	dir, mag, err := codec.ParseSignedU32(payload)
	if err != nil {
		return 0, err
	}
	n := int32(mag)
	if dir == zdtcan.DirectionNegative {
		n = -n
	}
	return n, nil
}

// ReadDriveParameters reads the driver configuration block, tolerating
// the several truncated response lengths the device is known to return.
func (m *Motor) ReadDriveParameters(ctx context.Context) (zdtcan.DriveParameters, error) {
	payload, err := m.sendCommand(ctx, codec.ReadDriveParameters(), zdtcan.FCReadDriveParameters, false)
	if err != nil {
		return zdtcan.DriveParameters{}, err
	}
	return codec.ParseDriveParameters(payload)
}

// ReadSystemStatus reads the aggregate system telemetry frame
// (read_parameters.py's read_system_status).
func (m *Motor) ReadSystemStatus(ctx context.Context) (zdtcan.SystemStatus, error) {
	payload, err := m.sendCommand(ctx, codec.ReadSystemStatus(), zdtcan.FCReadSystemStatus, false)
	if err != nil {
		return zdtcan.SystemStatus{}, err
	}
	return codec.ParseSystemStatus(payload), nil
}
