// Package zdtcan implements the wire protocol and data model for ZDT
// closed-loop stepper drive boards addressed over a CAN bus through an
// SLCAN serial gateway.
package zdtcan

import "time"

// Checksum is the protocol-fixed trailing byte. It is not a computed
// checksum in any observed firmware revision.
const Checksum = 0x6B

// Default bus and timing parameters.
const (
	DefaultCANBaud      = 500000
	DefaultResponseWait = 1 * time.Second
	InterFragmentDelay  = 50 * time.Millisecond
	PostInitSettle      = 100 * time.Millisecond
)

// Function codes identify a ZDT command family.
const (
	FCMotorEnable            byte = 0xF3
	FCTorqueMode             byte = 0xF5
	FCSpeedMode              byte = 0xF6
	FCPositionDirect         byte = 0xFB
	FCPositionTrapezoid      byte = 0xFD
	FCImmediateStop          byte = 0xFE
	FCMultiSyncMotion        byte = 0xFF
	FCY42MultiMotor          byte = 0xAA
	FCSetZeroPosition        byte = 0x93
	FCTriggerHoming          byte = 0x9A
	FCForceStopHoming        byte = 0x9C
	FCReadHomingParams       byte = 0x22
	FCModifyHomingParams     byte = 0x4C
	FCReadHomingStatus       byte = 0x3B
	FCTriggerEncoderCalib    byte = 0x06
	FCClearPosition          byte = 0x0A
	FCReleaseStallProtection byte = 0x0E
	FCFactoryReset           byte = 0x0F
	FCReadVersion            byte = 0x1F
	FCReadResistanceInduct   byte = 0x20
	FCReadPIDParams          byte = 0x21
	FCReadBusVoltage         byte = 0x24
	FCReadBusCurrent         byte = 0x26
	FCReadPhaseCurrent       byte = 0x27
	FCReadEncoderRaw         byte = 0x29
	FCReadPulseCount         byte = 0x30
	FCReadEncoderCalibrated  byte = 0x31
	FCReadInputPulse         byte = 0x32
	FCReadTargetPosition     byte = 0x33
	FCReadRealtimeTarget     byte = 0x34
	FCReadRealtimeSpeed      byte = 0x35
	FCReadRealtimePosition   byte = 0x36
	FCReadPositionError      byte = 0x37
	FCReadTemperature        byte = 0x39
	FCReadMotorStatus        byte = 0x3A
	FCReadDriveParameters    byte = 0x42
	FCReadSystemStatus       byte = 0x43
	FCModifyDriveParameters  byte = 0x48
	FCModifyMotorID          byte = 0xAE
)

// Auxiliary codes disambiguate command variants that share a function code.
const (
	AuxMotorEnable            byte = 0xAB
	AuxSetZeroPosition        byte = 0x88
	AuxForceStopHoming        byte = 0x48
	AuxImmediateStop          byte = 0x98
	AuxMultiSyncMotion        byte = 0x66
	AuxTriggerEncoderCalib    byte = 0x45
	AuxClearPosition          byte = 0x6D
	AuxReleaseStallProtection byte = 0x52
	AuxFactoryReset           byte = 0x5F
	AuxModifyHomingParams     byte = 0xAE
	AuxModifyMotorID          byte = 0x4B
	AuxModifyDriveParameters  byte = 0xD1
)

// StatusCode values seen as the first byte of an error or state response.
const (
	StatusDataResponse   byte = 0x00
	StatusSuccess        byte = 0x02
	StatusConditionNotMet byte = 0xE2
	StatusCommandError   byte = 0xEE
)

// MotorStatusFlags is the bitmask layout of the single motor-status byte.
const (
	MotorFlagEnabled          byte = 0x01
	MotorFlagInPosition       byte = 0x02
	MotorFlagStalled          byte = 0x04
	MotorFlagStallProtection  byte = 0x08
)

// HomingStatusFlags is the bitmask layout of the single homing-status byte.
const (
	HomingFlagEncoderReady         byte = 0x01
	HomingFlagCalibrationReady     byte = 0x02
	HomingFlagInProgress           byte = 0x04
	HomingFlagFailed               byte = 0x08
	HomingFlagPositionPrecisionHi  byte = 0x80
)

// Direction byte values for sign-magnitude encoding.
const (
	DirectionPositive byte = 0x00
	DirectionNegative byte = 0x01
)

// Position mode flags.
const (
	PositionRelative byte = 0x00
	PositionAbsolute byte = 0x01
)

// Multi-sync flag values.
const (
	SyncDisabled byte = 0x00
	SyncEnabled  byte = 0x01
)

// Save-to-flash flag values.
const (
	NoSave byte = 0x00
	Save   byte = 0x01
)

// Homing modes.
const (
	HomingModeNearest           byte = 0x00
	HomingModeDirectional       byte = 0x01
	HomingModeInfiniteCollision byte = 0x02
	HomingModeLimitSwitch       byte = 0x03
	HomingModeAbsoluteZero      byte = 0x04
	HomingModeLastPowerDown     byte = 0x05
)

// Homing directions.
const (
	HomingDirCW  byte = 0x00
	HomingDirCCW byte = 0x01
)

// Scale factors applied before encoding onto the wire.
const (
	SpeedScale         = 10
	PositionScale      = 10
	PositionErrorScale = 100
	EncoderRawMax      = 16383
	EncoderCalibMax    = 65535
)

// Y-board aggregate validation sets (spec.md §4.6).
var controlFunctionCodes = map[byte]bool{
	FCTorqueMode:        true,
	FCSpeedMode:         true,
	FCPositionDirect:    true,
	FCPositionTrapezoid: true,
}

var readFunctionCodes = map[byte]bool{
	FCReadRealtimePosition: true,
}

// IsControlFunctionCode reports whether fc belongs to the Y-board
// aggregate's control set.
func IsControlFunctionCode(fc byte) bool { return controlFunctionCodes[fc] }

// IsReadFunctionCode reports whether fc belongs to the Y-board
// aggregate's read set.
func IsReadFunctionCode(fc byte) bool { return readFunctionCodes[fc] }
