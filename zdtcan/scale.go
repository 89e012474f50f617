package zdtcan

// Sign-magnitude encoding helpers. Every multi-byte signed quantity on
// this wire is a direction byte (0x00 positive, 0x01 negative) followed
// by an unsigned magnitude, never two's complement.

// EncodeDirection returns the sign-magnitude direction byte for v.
func EncodeDirection(v float64) byte {
	if v < 0 {
		return DirectionNegative
	}
	return DirectionPositive
}

// MaxSpeedRPM is the largest magnitude ScaleSpeed accepts: the wire's u16
// ×10 magnitude tops out at 65535, i.e. ±6553.5 RPM (spec.md §6.2).
const MaxSpeedRPM = 6553.5

// MaxPositionDegrees is the largest magnitude ScalePosition accepts: the
// wire's u32 ×10 magnitude tops out at 4294967295, i.e. ±429496729.5°
// (spec.md §6.2).
const MaxPositionDegrees = 429496729.5

// ScaleSpeed converts RPM to the wire's ×10 u16 magnitude. It returns
// *InvalidParameterError if rpm falls outside ±6553.5 RPM.
func ScaleSpeed(rpm float64) (uint16, error) {
	mag := rpm * SpeedScale
	if mag < 0 {
		mag = -mag
	}
	if mag > 65535 {
		return 0, &InvalidParameterError{Field: "speed_rpm", Value: rpm}
	}
	return uint16(mag), nil
}

// UnscaleSpeed converts a wire ×10 magnitude plus direction byte back to
// signed RPM.
func UnscaleSpeed(dir byte, mag uint16) float64 {
	v := float64(mag) / SpeedScale
	if dir == DirectionNegative {
		v = -v
	}
	return v
}

// ScalePosition converts degrees to the wire's ×10 u32 magnitude. It
// returns *InvalidParameterError if degrees falls outside
// ±429496729.5°.
func ScalePosition(degrees float64) (uint32, error) {
	mag := degrees * PositionScale
	if mag < 0 {
		mag = -mag
	}
	if mag > 4294967295 {
		return 0, &InvalidParameterError{Field: "position_deg", Value: degrees}
	}
	return uint32(mag), nil
}

// UnscalePosition converts a wire ×10 magnitude plus direction byte back
// to signed degrees.
func UnscalePosition(dir byte, mag uint32) float64 {
	v := float64(mag) / PositionScale
	if dir == DirectionNegative {
		v = -v
	}
	return v
}

// UnscalePositionError converts a wire ×100 magnitude plus direction byte
// back to signed degrees.
func UnscalePositionError(dir byte, mag uint32) float64 {
	v := float64(mag) / PositionErrorScale
	if dir == DirectionNegative {
		v = -v
	}
	return v
}

// UnscaleTemperature converts a wire sign byte plus raw magnitude byte to
// signed degrees Celsius.
func UnscaleTemperature(dir byte, raw byte) float64 {
	v := float64(raw)
	if dir == DirectionNegative {
		v = -v
	}
	return v
}

// EncoderRawToDegrees maps a raw encoder reading in [0, 16383] onto
// [0, 360).
func EncoderRawToDegrees(raw uint16) float64 {
	return float64(raw) / float64(EncoderRawMax+1) * 360.0
}

// EncoderCalibratedToDegrees maps a calibrated encoder reading in
// [0, 65535] onto [0, 360).
func EncoderCalibratedToDegrees(raw uint16) float64 {
	return float64(raw) / float64(EncoderCalibMax+1) * 360.0
}

// PutUint16BE appends the big-endian encoding of v to dst.
func PutUint16BE(dst []byte, v uint16) []byte {
	return append(dst, byte(v>>8), byte(v))
}

// PutUint32BE appends the big-endian encoding of v to dst.
func PutUint32BE(dst []byte, v uint32) []byte {
	return append(dst, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
