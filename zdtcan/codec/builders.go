// Package codec builds and parses ZDT command byte sequences: the
// function-code table from constants.go, big-endian multi-byte fields,
// and sign-magnitude signed quantities.
package codec

import (
	"github.com/zdt-robotics/zdtcan"
)

// readOnlyQuery returns the trivial [fc, checksum] frame shared by every
// read-only query builder (spec.md §4.2's 20-entry query list is all the
// same two-byte shape).
func readOnlyQuery(fc byte) []byte {
	return []byte{fc, zdtcan.Checksum}
}

func ReadVersion() []byte              { return readOnlyQuery(zdtcan.FCReadVersion) }
func ReadResistanceInductance() []byte { return readOnlyQuery(zdtcan.FCReadResistanceInduct) }
func ReadPIDParameters() []byte        { return readOnlyQuery(zdtcan.FCReadPIDParams) }
func ReadBusVoltage() []byte           { return readOnlyQuery(zdtcan.FCReadBusVoltage) }
func ReadBusCurrent() []byte           { return readOnlyQuery(zdtcan.FCReadBusCurrent) }
func ReadPhaseCurrent() []byte         { return readOnlyQuery(zdtcan.FCReadPhaseCurrent) }
func ReadEncoderRaw() []byte           { return readOnlyQuery(zdtcan.FCReadEncoderRaw) }
func ReadPulseCount() []byte           { return readOnlyQuery(zdtcan.FCReadPulseCount) }
func ReadEncoderCalibrated() []byte    { return readOnlyQuery(zdtcan.FCReadEncoderCalibrated) }
func ReadInputPulse() []byte           { return readOnlyQuery(zdtcan.FCReadInputPulse) }
func ReadTargetPosition() []byte       { return readOnlyQuery(zdtcan.FCReadTargetPosition) }
func ReadRealtimeTargetPosition() []byte {
	return readOnlyQuery(zdtcan.FCReadRealtimeTarget)
}
func ReadRealtimeSpeed() []byte    { return readOnlyQuery(zdtcan.FCReadRealtimeSpeed) }
func ReadRealtimePosition() []byte { return readOnlyQuery(zdtcan.FCReadRealtimePosition) }
func ReadPositionError() []byte    { return readOnlyQuery(zdtcan.FCReadPositionError) }
func ReadTemperature() []byte      { return readOnlyQuery(zdtcan.FCReadTemperature) }
func ReadMotorStatus() []byte      { return readOnlyQuery(zdtcan.FCReadMotorStatus) }
func ReadHomingStatus() []byte     { return readOnlyQuery(zdtcan.FCReadHomingStatus) }
func ReadHomingParameters() []byte { return readOnlyQuery(zdtcan.FCReadHomingParams) }
func ReadDriveParameters() []byte  { return readOnlyQuery(zdtcan.FCReadDriveParameters) }
func ReadSystemStatus() []byte     { return readOnlyQuery(zdtcan.FCReadSystemStatus) }

// MotorEnable builds FC 0xF3: aux 0xAB, enable(1B), multi_sync(1B).
func MotorEnable(enable bool, multiSync bool) []byte {
	return []byte{
		zdtcan.FCMotorEnable, zdtcan.AuxMotorEnable,
		boolByte(enable), boolByte(multiSync),
		zdtcan.Checksum,
	}
}

// TorqueMode builds FC 0xF5: dir(1B), current_slope(u16 BE),
// target_current(u16 BE), multi_sync(1B).
func TorqueMode(currentMA float64, currentSlope uint16, multiSync bool) ([]byte, error) {
	if err := zdtcan.ValidateCurrentMA(currentMA); err != nil {
		return nil, err
	}
	buf := make([]byte, 0, 7)
	buf = append(buf, zdtcan.FCTorqueMode, zdtcan.EncodeDirection(currentMA))
	buf = zdtcan.PutUint16BE(buf, currentSlope)
	mag := uint16(absFloat(currentMA))
	buf = zdtcan.PutUint16BE(buf, mag)
	buf = append(buf, boolByte(multiSync), zdtcan.Checksum)
	return buf, nil
}

// SpeedMode builds FC 0xF6: dir(1B), accel(u16 BE), speed(u16 BE),
// multi_sync(1B).
func SpeedMode(speedRPM float64, accelRPMps uint16, multiSync bool) ([]byte, error) {
	speed, err := zdtcan.ScaleSpeed(speedRPM)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, 7)
	buf = append(buf, zdtcan.FCSpeedMode, zdtcan.EncodeDirection(speedRPM))
	buf = zdtcan.PutUint16BE(buf, accelRPMps)
	buf = zdtcan.PutUint16BE(buf, speed)
	buf = append(buf, boolByte(multiSync), zdtcan.Checksum)
	return buf, nil
}

// PositionDirect builds FC 0xFB: dir(1B), speed(u16 BE), position(u32 BE),
// absolute(1B), multi_sync(1B).
func PositionDirect(positionDeg float64, speedRPM float64, absolute bool, multiSync bool) ([]byte, error) {
	speed, err := zdtcan.ScaleSpeed(speedRPM)
	if err != nil {
		return nil, err
	}
	position, err := zdtcan.ScalePosition(positionDeg)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, 11)
	buf = append(buf, zdtcan.FCPositionDirect, zdtcan.EncodeDirection(positionDeg))
	buf = zdtcan.PutUint16BE(buf, speed)
	buf = zdtcan.PutUint32BE(buf, position)
	buf = append(buf, posModeByte(absolute), boolByte(multiSync), zdtcan.Checksum)
	return buf, nil
}

// PositionTrapezoid builds FC 0xFD: dir(1B), accel(u16 BE), decel(u16 BE),
// speed(u16 BE), position(u32 BE), absolute(1B), multi_sync(1B).
func PositionTrapezoid(positionDeg float64, speedRPM float64, accelRPMps, decelRPMps uint16, absolute bool, multiSync bool) ([]byte, error) {
	speed, err := zdtcan.ScaleSpeed(speedRPM)
	if err != nil {
		return nil, err
	}
	position, err := zdtcan.ScalePosition(positionDeg)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, 15)
	buf = append(buf, zdtcan.FCPositionTrapezoid, zdtcan.EncodeDirection(positionDeg))
	buf = zdtcan.PutUint16BE(buf, accelRPMps)
	buf = zdtcan.PutUint16BE(buf, decelRPMps)
	buf = zdtcan.PutUint16BE(buf, speed)
	buf = zdtcan.PutUint32BE(buf, position)
	buf = append(buf, posModeByte(absolute), boolByte(multiSync), zdtcan.Checksum)
	return buf, nil
}

// ImmediateStop builds FC 0xFE: aux 0x98, multi_sync(1B).
func ImmediateStop(multiSync bool) []byte {
	return []byte{zdtcan.FCImmediateStop, zdtcan.AuxImmediateStop, boolByte(multiSync), zdtcan.Checksum}
}

// SyncTrigger builds FC 0xFF: aux 0x66. This is the broadcast trigger
// frame sent on CAN ID 0x0000 to launch every pre-loaded motor.
func SyncTrigger() []byte {
	return []byte{zdtcan.FCMultiSyncMotion, zdtcan.AuxMultiSyncMotion, zdtcan.Checksum}
}

// SetZero builds FC 0x93: aux 0x88, save(1B).
func SetZero(save bool) []byte {
	return []byte{zdtcan.FCSetZeroPosition, zdtcan.AuxSetZeroPosition, saveByte(save), zdtcan.Checksum}
}

// TriggerHoming builds FC 0x9A: homing_mode(1B), multi_sync(1B).
func TriggerHoming(mode byte, multiSync bool) []byte {
	return []byte{zdtcan.FCTriggerHoming, mode, boolByte(multiSync), zdtcan.Checksum}
}

// ForceStopHoming builds FC 0x9C: aux 0x48.
func ForceStopHoming() []byte {
	return []byte{zdtcan.FCForceStopHoming, zdtcan.AuxForceStopHoming, zdtcan.Checksum}
}

// TriggerEncoderCalibration builds FC 0x06: aux 0x45.
func TriggerEncoderCalibration() []byte {
	return []byte{zdtcan.FCTriggerEncoderCalib, zdtcan.AuxTriggerEncoderCalib, zdtcan.Checksum}
}

// ClearPosition builds FC 0x0A: aux 0x6D.
func ClearPosition() []byte {
	return []byte{zdtcan.FCClearPosition, zdtcan.AuxClearPosition, zdtcan.Checksum}
}

// ReleaseStallProtection builds FC 0x0E: aux 0x52.
func ReleaseStallProtection() []byte {
	return []byte{zdtcan.FCReleaseStallProtection, zdtcan.AuxReleaseStallProtection, zdtcan.Checksum}
}

// FactoryReset builds FC 0x0F: aux 0x5F.
func FactoryReset() []byte {
	return []byte{zdtcan.FCFactoryReset, zdtcan.AuxFactoryReset, zdtcan.Checksum}
}

// ModifyMotorID builds FC 0xAE: aux 0x4B, save(1B), new_id(1B). newID must
// not be the reserved broadcast address 0 (commands.py:436-437).
func ModifyMotorID(newID byte, save bool) ([]byte, error) {
	if err := zdtcan.ValidateMotorID(newID); err != nil {
		return nil, err
	}
	return []byte{zdtcan.FCModifyMotorID, zdtcan.AuxModifyMotorID, saveByte(save), newID, zdtcan.Checksum}, nil
}

// ModifyHomingParams builds FC 0x4C: aux 0xAE, save(1B), 15-byte param
// block in the order mode, direction, speed(u16 BE), timeout(u32 BE),
// collision_speed(u16 BE), collision_current(u16 BE), collision_time(u16
// BE), auto_homing(1B).
func ModifyHomingParams(p zdtcan.HomingParameters, save bool) []byte {
	buf := make([]byte, 0, 19)
	buf = append(buf, zdtcan.FCModifyHomingParams, zdtcan.AuxModifyHomingParams, saveByte(save))
	buf = append(buf, p.Mode, p.Direction)
	buf = zdtcan.PutUint16BE(buf, p.Speed)
	buf = zdtcan.PutUint32BE(buf, p.Timeout)
	buf = zdtcan.PutUint16BE(buf, p.CollisionDetectionSpeed)
	buf = zdtcan.PutUint16BE(buf, p.CollisionDetectionCurrent)
	buf = zdtcan.PutUint16BE(buf, p.CollisionDetectionTime)
	buf = append(buf, boolByte(p.AutoHomingEnabled), zdtcan.Checksum)
	return buf
}

// ModifyDriveParams builds FC 0x48: aux 0xD1, save(1B), 32-byte param
// block in the field order documented by zdtcan.DriveParameters. Returns
// *zdtcan.InvalidParameterError if any enum/port/subdivision/baudrate
// field is out of the range commands.py's modify_drive_parameters
// enforces before building the frame.
func ModifyDriveParams(p zdtcan.DriveParameters, save bool) ([]byte, error) {
	if err := zdtcan.ValidateDriveParameters(p); err != nil {
		return nil, err
	}

	buf := make([]byte, 0, 37)
	buf = append(buf, zdtcan.FCModifyDriveParameters, zdtcan.AuxModifyDriveParameters, saveByte(save))

	subdivision := byte(p.Subdivision)
	if p.Subdivision == 256 {
		subdivision = 0
	}

	buf = append(buf,
		boolByte(p.LockEnabled),
		p.ControlMode,
		p.PulsePortFunction,
		p.SerialPortFunction,
		p.EnablePinMode,
		p.MotorDirection,
		subdivision,
		boolByte(p.SubdivisionInterpolation),
		boolByte(p.AutoScreenOff),
		p.LPFIntensity,
	)
	buf = zdtcan.PutUint16BE(buf, p.OpenLoopCurrent)
	buf = zdtcan.PutUint16BE(buf, p.ClosedLoopMaxCurrent)
	buf = zdtcan.PutUint16BE(buf, p.MaxSpeedLimit)
	buf = zdtcan.PutUint16BE(buf, p.CurrentLoopBandwidth)

	buf = append(buf,
		p.UARTBaudrate,
		p.CANBaudrate,
		p.ChecksumMode,
		p.ResponseMode,
		boolByte(p.PositionPrecision),
		boolByte(p.StallProtectionEnabled),
	)
	buf = zdtcan.PutUint16BE(buf, p.StallProtectionSpeed)
	buf = zdtcan.PutUint16BE(buf, p.StallProtectionCurrent)
	buf = zdtcan.PutUint16BE(buf, p.StallProtectionTime)
	buf = zdtcan.PutUint16BE(buf, p.PositionArrivalWindow)

	buf = append(buf, zdtcan.Checksum)
	return buf, nil
}

// BuildY42Frame assembles the Y-board aggregate envelope: 0xAA, len_hi,
// len_lo, concatenated sub-commands, 0x6B. Each subCommand is expected to
// already be [motor_id, function_code, params…, 0x6B]. The length field
// counts the concatenated sub-command bytes plus the trailing checksum.
func BuildY42Frame(subCommands [][]byte) []byte {
	total := 0
	for _, c := range subCommands {
		total += len(c)
	}
	length := total + 1

	buf := make([]byte, 0, 3+total+1)
	buf = append(buf, zdtcan.FCY42MultiMotor, byte(length>>8), byte(length))
	for _, c := range subCommands {
		buf = append(buf, c...)
	}
	buf = append(buf, zdtcan.Checksum)
	return buf
}

func boolByte(b bool) byte {
	if b {
		return zdtcan.SyncEnabled
	}
	return zdtcan.SyncDisabled
}

func saveByte(b bool) byte {
	if b {
		return zdtcan.Save
	}
	return zdtcan.NoSave
}

func posModeByte(absolute bool) byte {
	if absolute {
		return zdtcan.PositionAbsolute
	}
	return zdtcan.PositionRelative
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
