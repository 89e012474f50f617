package zdtcan

// Parameter validation mirroring commands.py's CommandBuilder range checks
// (set_motor_id raising on motor_id outside [1,255]; modify_drive_parameters
// raising on control_mode/port/enable-pin/subdivision/baudrate enums and
// 0-65535 current/speed/time fields). Python raises ValueError before
// building the frame; here each check returns an *InvalidParameterError the
// caller can test with errors.As.

// validSubdivisions is the set of microstep subdivisions the firmware
// accepts, per commands.py's modify_drive_parameters (0 on the wire means
// 256 full steps, so 256 is included here and re-mapped at encode time).
var validSubdivisions = map[int]bool{
	0: true, 1: true, 2: true, 4: true, 5: true, 8: true, 10: true,
	16: true, 20: true, 25: true, 32: true, 40: true, 50: true, 64: true,
	80: true, 100: true, 125: true, 128: true, 160: true, 200: true,
	250: true, 256: true,
}

// ValidateMotorID rejects the reserved broadcast address 0 and anything
// outside the protocol's 1-255 addressable range (commands.py:436-437).
func ValidateMotorID(id byte) error {
	if id < 1 {
		return &InvalidParameterError{Field: "motor_id", Value: id}
	}
	return nil
}

// ValidateCurrentMA rejects a current magnitude outside the wire's 0-65535
// mA range (commands.py:632-677).
func ValidateCurrentMA(ma float64) error {
	mag := ma
	if mag < 0 {
		mag = -mag
	}
	if mag > 65535 {
		return &InvalidParameterError{Field: "current_ma", Value: ma}
	}
	return nil
}

// ValidateDriveParameters checks the enum and range fields
// modify_drive_parameters (commands.py:632-677) validates before building
// the 0x48 wire frame: control_mode, the two port-function fields,
// enable_pin_mode, motor_direction, subdivision, and both baudrate option
// indices. The uint16 current/speed/bandwidth/time fields are already
// range-limited by their Go type, matching the Python 0-65535 bound
// tautologically.
func ValidateDriveParameters(p DriveParameters) error {
	if p.ControlMode > 1 {
		return &InvalidParameterError{Field: "control_mode", Value: p.ControlMode}
	}
	if p.PulsePortFunction > 3 {
		return &InvalidParameterError{Field: "pulse_port_function", Value: p.PulsePortFunction}
	}
	if p.SerialPortFunction > 3 {
		return &InvalidParameterError{Field: "serial_port_function", Value: p.SerialPortFunction}
	}
	if p.EnablePinMode > 2 {
		return &InvalidParameterError{Field: "enable_pin_mode", Value: p.EnablePinMode}
	}
	if p.MotorDirection > 1 {
		return &InvalidParameterError{Field: "motor_direction", Value: p.MotorDirection}
	}
	if !validSubdivisions[p.Subdivision] {
		return &InvalidParameterError{Field: "subdivision", Value: p.Subdivision}
	}
	if p.UARTBaudrate > 7 {
		return &InvalidParameterError{Field: "uart_baudrate", Value: p.UARTBaudrate}
	}
	if p.CANBaudrate > 7 {
		return &InvalidParameterError{Field: "can_baudrate", Value: p.CANBaudrate}
	}
	return nil
}
