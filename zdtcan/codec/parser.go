package codec

import (
	"encoding/binary"

	"github.com/zdt-robotics/zdtcan"
)

// ParseResponse inspects byte 0 as a function code. If it matches
// expectedFC, the payload slice is returned with any trailing checksum
// byte stripped (some firmware variants omit it; parsers must accept
// both). A leading 0x00 followed by 0xEE is the device's explicit error
// form. Any other leading byte is a function-code mismatch.
func ParseResponse(data []byte, expectedFC byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, &zdtcan.InvalidResponseLengthError{Expected: 1, Actual: 0}
	}

	if data[0] == zdtcan.StatusDataResponse && len(data) >= 2 && data[1] == zdtcan.StatusCommandError {
		return nil, zdtcan.ErrCommandError
	}

	if data[0] != expectedFC {
		if data[0] == zdtcan.StatusConditionNotMet {
			return nil, &zdtcan.ConditionNotMetError{Kind: zdtcan.ConditionGeneric}
		}
		return nil, &zdtcan.FunctionCodeMismatchError{Expected: expectedFC, Actual: data[0]}
	}

	payload := data[1:]
	if n := len(payload); n > 0 && payload[n-1] == zdtcan.Checksum {
		payload = payload[:n-1]
	}
	return payload, nil
}

// ParseMotorStatus decodes a single status byte (response to FC 0x3A).
func ParseMotorStatus(payload []byte) (zdtcan.MotorStatus, error) {
	if len(payload) < 1 {
		return zdtcan.MotorStatus{}, &zdtcan.InvalidResponseLengthError{Expected: 1, Actual: len(payload)}
	}
	return zdtcan.DecodeMotorStatus(payload[0]), nil
}

// ParseHomingStatus decodes a single status byte (response to FC 0x3B).
func ParseHomingStatus(payload []byte) (zdtcan.HomingStatus, error) {
	if len(payload) < 1 {
		return zdtcan.HomingStatus{}, &zdtcan.InvalidResponseLengthError{Expected: 1, Actual: len(payload)}
	}
	return zdtcan.DecodeHomingStatus(payload[0]), nil
}

// ParseHomingParameters decodes the 15-byte homing parameter block.
// Unlike the other tolerant decoders in this file, this one is a strict
// length gate: any payload whose length isn't exactly 15 bytes is
// rejected outright, per spec.md testable property 8.
func ParseHomingParameters(payload []byte) (zdtcan.HomingParameters, error) {
	if len(payload) != 15 {
		return zdtcan.HomingParameters{}, &zdtcan.InvalidResponseLengthError{Expected: 15, Actual: len(payload)}
	}
	return zdtcan.HomingParameters{
		Mode:                      payload[0],
		Direction:                 payload[1],
		Speed:                     binary.BigEndian.Uint16(payload[2:4]),
		Timeout:                   binary.BigEndian.Uint32(payload[4:8]),
		CollisionDetectionSpeed:   binary.BigEndian.Uint16(payload[8:10]),
		CollisionDetectionCurrent: binary.BigEndian.Uint16(payload[10:12]),
		CollisionDetectionTime:    binary.BigEndian.Uint16(payload[12:14]),
		AutoHomingEnabled:         payload[14] != 0,
	}, nil
}

// ParsePIDParameters decodes the PID gain block. Firmware may truncate
// the response progressively; this is a tolerant decoder that never
// errors, per read_parameters.py's get_pid_parameters. Unreceived speed
// gains fall back to DefaultSpeedKp/DefaultSpeedKi; unreceived position
// gains are left at zero.
func ParsePIDParameters(payload []byte) zdtcan.PIDParameters {
	p := zdtcan.PIDParameters{SpeedKp: zdtcan.DefaultSpeedKp, SpeedKi: zdtcan.DefaultSpeedKi}
	if len(payload) >= 4 {
		p.TrapezoidPositionKp = binary.BigEndian.Uint32(payload[0:4])
	}
	if len(payload) >= 8 {
		p.DirectPositionKp = binary.BigEndian.Uint32(payload[4:8])
	}
	if len(payload) >= 12 {
		p.SpeedKp = binary.BigEndian.Uint32(payload[8:12])
	}
	if len(payload) >= 16 {
		p.SpeedKi = binary.BigEndian.Uint32(payload[12:16])
	}
	return p
}

// ParseSignedU16 decodes a direction byte followed by a u16 BE magnitude.
func ParseSignedU16(payload []byte) (dir byte, mag uint16, err error) {
	if len(payload) < 3 {
		return 0, 0, &zdtcan.InvalidResponseLengthError{Expected: 3, Actual: len(payload)}
	}
	return payload[0], binary.BigEndian.Uint16(payload[1:3]), nil
}

// ParseSignedU32 decodes a direction byte followed by a u32 BE magnitude,
// as used by read_position (scale ÷10) and read_position_error
// (scale ÷100).
func ParseSignedU32(payload []byte) (dir byte, mag uint32, err error) {
	if len(payload) < 5 {
		return 0, 0, &zdtcan.InvalidResponseLengthError{Expected: 5, Actual: len(payload)}
	}
	return payload[0], binary.BigEndian.Uint32(payload[1:5]), nil
}

// ParseUnsignedU16 decodes a plain u16 BE value (bus voltage, currents).
func ParseUnsignedU16(payload []byte) (uint16, error) {
	if len(payload) < 2 {
		return 0, &zdtcan.InvalidResponseLengthError{Expected: 2, Actual: len(payload)}
	}
	return binary.BigEndian.Uint16(payload[0:2]), nil
}

// ParseVersion decodes two u16 BE words into firmware and hardware
// version strings, matching read_parameters.py's get_version layout:
// fw_major.fw_minor.fw_patch packed into the first word's three nibbles'
// worth of bytes, hw_major.hw_minor in the second.
func ParseVersion(payload []byte) (firmware, hardware string, err error) {
	if len(payload) < 4 {
		return "", "", &zdtcan.InvalidResponseLengthError{Expected: 4, Actual: len(payload)}
	}
	fw := binary.BigEndian.Uint16(payload[0:2])
	hw := binary.BigEndian.Uint16(payload[2:4])
	firmware = formatVersion3(fw)
	hardware = formatVersion2(hw)
	return firmware, hardware, nil
}

func formatVersion3(v uint16) string {
	major := byte(v >> 8)
	minorPatch := byte(v)
	minor := minorPatch >> 4
	patch := minorPatch & 0x0F
	return itoa(int(major)) + "." + itoa(int(minor)) + "." + itoa(int(patch))
}

func formatVersion2(v uint16) string {
	major := byte(v >> 8)
	minor := byte(v)
	return itoa(int(major)) + "." + itoa(int(minor))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// ParseResistanceInductance decodes two u16 BE words, each scaled ÷1000.
func ParseResistanceInductance(payload []byte) (resistanceOhm, inductanceMH float64, err error) {
	if len(payload) < 4 {
		return 0, 0, &zdtcan.InvalidResponseLengthError{Expected: 4, Actual: len(payload)}
	}
	r := binary.BigEndian.Uint16(payload[0:2])
	l := binary.BigEndian.Uint16(payload[2:4])
	return float64(r) / 1000.0, float64(l) / 1000.0, nil
}

// ParseDriveParameters is the tolerant, dispatch-on-length decoder for FC
// 0x42/0x48 responses. Firmware has been observed to return 37-byte
// framed, 33-byte save-flag-prefixed, 24-byte bare, and a 7-byte
// simplified form; all four map onto one DriveParameters struct.
func ParseDriveParameters(payload []byte) (zdtcan.DriveParameters, error) {
	switch {
	case len(payload) >= 35:
		return parseDriveParameters24(payload[len(payload)-32 : len(payload)-8])
	case len(payload) >= 33:
		return parseDriveParameters24(payload[1:33])
	case len(payload) >= 24:
		return parseDriveParameters24(payload[:24])
	case len(payload) >= 7:
		return parseDriveParameters7(payload), nil
	default:
		return zdtcan.DriveParameters{}, &zdtcan.InvalidResponseLengthError{Expected: 7, Actual: len(payload)}
	}
}

// parseDriveParameters24 decodes the 24-field layout: 10 single-byte
// fields, 4 big-endian u16 fields, 6 single-byte fields, 4 big-endian u16
// fields — grounded on commands.py's
// _parse_drive_parameters_24_bytes.
func parseDriveParameters24(d []byte) (zdtcan.DriveParameters, error) {
	if len(d) < 24 {
		return zdtcan.DriveParameters{}, &zdtcan.InvalidResponseLengthError{Expected: 24, Actual: len(d)}
	}

	subdivision := int(d[6])
	if subdivision == 0 {
		subdivision = 256
	}

	p := zdtcan.DriveParameters{
		LockEnabled:              d[0] != 0,
		ControlMode:              d[1],
		PulsePortFunction:        d[2],
		SerialPortFunction:       d[3],
		EnablePinMode:            d[4],
		MotorDirection:           d[5],
		Subdivision:              subdivision,
		SubdivisionInterpolation: d[7] != 0,
		AutoScreenOff:            d[8] != 0,
		LPFIntensity:             d[9],
		OpenLoopCurrent:          binary.BigEndian.Uint16(d[10:12]),
		ClosedLoopMaxCurrent:     binary.BigEndian.Uint16(d[12:14]),
		MaxSpeedLimit:            binary.BigEndian.Uint16(d[14:16]),
		CurrentLoopBandwidth:     binary.BigEndian.Uint16(d[16:18]),
		UARTBaudrate:             d[18],
		CANBaudrate:              d[19],
		ChecksumMode:             d[20],
		ResponseMode:             d[21],
		PositionPrecision:        d[22] != 0,
		StallProtectionEnabled:   d[23] != 0,
	}

	if len(d) >= 32 {
		p.StallProtectionSpeed = binary.BigEndian.Uint16(d[24:26])
		p.StallProtectionCurrent = binary.BigEndian.Uint16(d[26:28])
		p.StallProtectionTime = binary.BigEndian.Uint16(d[28:30])
		p.PositionArrivalWindow = binary.BigEndian.Uint16(d[30:32])
	} else {
		if p.StallProtectionEnabled {
			p.StallProtectionSpeed = 8
			p.StallProtectionCurrent = uint16(float64(p.ClosedLoopMaxCurrent) * 0.9)
		} else {
			p.StallProtectionSpeed = 5
			p.StallProtectionCurrent = 1000
		}
		p.StallProtectionTime = 2000
		p.PositionArrivalWindow = 3
	}

	return p, nil
}

// parseDriveParameters7 reconstructs the five fields the firmware's
// 7-byte simplified form actually carries. Per spec.md §9's open
// question, the remaining 19 fields are left at their zero value rather
// than synthesized — the original's heuristics for them were flagged as
// potentially buggy.
func parseDriveParameters7(d []byte) zdtcan.DriveParameters {
	return zdtcan.DriveParameters{
		LockEnabled:        d[2] != 0,
		ControlMode:        d[3],
		PulsePortFunction:  d[4],
		SerialPortFunction: d[5],
		EnablePinMode:      d[6],
	}
}

// ParseSystemStatus decodes FC 0x43 using the 7-byte simplified layout
// that firmware observed in the field returns: temperature, a coarse
// encoder/position reading, bus voltage, phase current, and the two
// status-flag bytes. Everything else is left at its zero value rather
// than invented. Bytes beyond the seventh are not decoded, and a payload
// shorter than 7 bytes yields a zero SystemStatus.
func ParseSystemStatus(payload []byte) zdtcan.SystemStatus {
	if len(payload) < 7 {
		return zdtcan.SystemStatus{}
	}

	encoderRaw := int(payload[3])
	position := float64(encoderRaw) / 16384.0 * 360.0
	busVoltage := float64(payload[0]) / 10.0
	phaseCurrent := float64(payload[2]) / 100.0

	var motorStatusByte, homingStatusByte byte
	if len(payload) > 4 {
		motorStatusByte = payload[4]
	}
	if len(payload) > 5 {
		homingStatusByte = payload[5]
	}

	ms := zdtcan.DecodeMotorStatus(motorStatusByte)
	hs := zdtcan.DecodeHomingStatus(homingStatusByte)

	return zdtcan.SystemStatus{
		BusVoltage:               busVoltage,
		PhaseCurrent:             phaseCurrent,
		EncoderRawValue:          encoderRaw,
		RealtimePosition:         position,
		Temperature:              float64(payload[1]),
		HomingStatusFlags:        homingStatusByte,
		MotorStatusFlags:         motorStatusByte,
		EncoderReady:             hs.EncoderReady,
		CalibrationTableReady:    hs.CalibrationTableReady,
		HomingInProgress:         hs.HomingInProgress,
		HomingFailed:             hs.HomingFailed,
		PositionPrecisionHigh:    hs.PositionPrecisionHigh,
		MotorEnabled:             ms.Enabled,
		MotorInPosition:          ms.InPosition,
		MotorStalled:             ms.Stalled,
		StallProtectionTriggered: ms.StallProtection,
	}
}
