package motor

import (
	"context"

	"github.com/zdt-robotics/zdtcan"
	"github.com/zdt-robotics/zdtcan/codec"
)

// ModifyMotorID reassigns the CAN motor ID used for framing. The caller
// must update its own Motor.ID/bookkeeping after a successful call; the
// device starts responding on the new ID immediately.
func (m *Motor) ModifyMotorID(ctx context.Context, newID byte, save bool) error {
	cmd, err := codec.ModifyMotorID(newID, save)
	if err != nil {
		return err
	}
	_, err = m.sendCommand(ctx, cmd, zdtcan.FCModifyMotorID, false)
	return err
}

// ModifyDriveParameters writes the full driver configuration block.
func (m *Motor) ModifyDriveParameters(ctx context.Context, p zdtcan.DriveParameters, save bool) error {
	cmd, err := codec.ModifyDriveParams(p, save)
	if err != nil {
		return err
	}
	_, err = m.sendCommand(ctx, cmd, zdtcan.FCModifyDriveParameters, false)
	return err
}

// DefaultDriveParameters returns the manufacturer's closed-loop FOC
// default configuration, matching
// modify_parameters.py's create_default_drive_parameters.
func DefaultDriveParameters() zdtcan.DriveParameters {
	return zdtcan.DriveParameters{
		LockEnabled:              false,
		ControlMode:              1,
		PulsePortFunction:        1,
		SerialPortFunction:       2,
		EnablePinMode:            2,
		MotorDirection:           0,
		Subdivision:              16,
		SubdivisionInterpolation: true,
		AutoScreenOff:            false,
		LPFIntensity:             0,
		OpenLoopCurrent:          1200,
		ClosedLoopMaxCurrent:     2200,
		MaxSpeedLimit:            3000,
		CurrentLoopBandwidth:     1000,
		UARTBaudrate:             5,
		CANBaudrate:              7,
		ChecksumMode:             0,
		ResponseMode:             1,
		PositionPrecision:        false,
		StallProtectionEnabled:   true,
		StallProtectionSpeed:     8,
		StallProtectionCurrent:   2000,
		StallProtectionTime:      2000,
		PositionArrivalWindow:    3,
	}
}

// OpenLoopDriveParameters returns a configuration tuned for open-loop
// operation (higher drive current, no stall protection), matching
// modify_parameters.py's create_open_loop_drive_parameters.
func OpenLoopDriveParameters() zdtcan.DriveParameters {
	return zdtcan.DriveParameters{
		LockEnabled:              false,
		ControlMode:              0,
		PulsePortFunction:        1,
		SerialPortFunction:       2,
		EnablePinMode:            2,
		MotorDirection:           0,
		Subdivision:              16,
		SubdivisionInterpolation: false,
		AutoScreenOff:            false,
		LPFIntensity:             0,
		OpenLoopCurrent:          1500,
		ClosedLoopMaxCurrent:     2000,
		MaxSpeedLimit:            1500,
		CurrentLoopBandwidth:     500,
		UARTBaudrate:             5,
		CANBaudrate:              7,
		ChecksumMode:             0,
		ResponseMode:             1,
		PositionPrecision:        false,
		StallProtectionEnabled:   false,
		StallProtectionSpeed:     5,
		StallProtectionCurrent:   1200,
		StallProtectionTime:      2000,
		PositionArrivalWindow:    10,
	}
}

// HighPrecisionDriveParameters returns a configuration tuned for maximum
// position accuracy (256 microsteps, tighter arrival window), matching
// modify_parameters.py's create_high_precision_drive_parameters.
func HighPrecisionDriveParameters() zdtcan.DriveParameters {
	return zdtcan.DriveParameters{
		LockEnabled:              false,
		ControlMode:              1,
		PulsePortFunction:        1,
		SerialPortFunction:       2,
		EnablePinMode:            2,
		MotorDirection:           0,
		Subdivision:              256,
		SubdivisionInterpolation: true,
		AutoScreenOff:            false,
		LPFIntensity:             2,
		OpenLoopCurrent:          1000,
		ClosedLoopMaxCurrent:     1800,
		MaxSpeedLimit:            2000,
		CurrentLoopBandwidth:     1500,
		UARTBaudrate:             5,
		CANBaudrate:              7,
		ChecksumMode:             0,
		ResponseMode:             1,
		PositionPrecision:        true,
		StallProtectionEnabled:   true,
		StallProtectionSpeed:     5,
		StallProtectionCurrent:   1600,
		StallProtectionTime:      1500,
		PositionArrivalWindow:    1,
	}
}
