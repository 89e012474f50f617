package zdtcan

// MotorStatus decodes the single motor-status byte (FC 0x3A).
type MotorStatus struct {
	Enabled          bool
	InPosition       bool
	Stalled          bool
	StallProtection  bool
}

func DecodeMotorStatus(b byte) MotorStatus {
	return MotorStatus{
		Enabled:         b&MotorFlagEnabled != 0,
		InPosition:      b&MotorFlagInPosition != 0,
		Stalled:         b&MotorFlagStalled != 0,
		StallProtection: b&MotorFlagStallProtection != 0,
	}
}

// HomingStatus decodes the single homing-status byte (FC 0x3B).
type HomingStatus struct {
	EncoderReady           bool
	CalibrationTableReady  bool
	HomingInProgress       bool
	HomingFailed           bool
	PositionPrecisionHigh  bool
}

func DecodeHomingStatus(b byte) HomingStatus {
	return HomingStatus{
		EncoderReady:          b&HomingFlagEncoderReady != 0,
		CalibrationTableReady: b&HomingFlagCalibrationReady != 0,
		HomingInProgress:      b&HomingFlagInProgress != 0,
		HomingFailed:          b&HomingFlagFailed != 0,
		PositionPrecisionHigh: b&HomingFlagPositionPrecisionHi != 0,
	}
}

// HomingParameters is the 15-byte parameter block for FC 0x4C/0x22.
type HomingParameters struct {
	Mode                      byte
	Direction                 byte
	Speed                     uint16 // RPM
	Timeout                   uint32 // ms
	CollisionDetectionSpeed   uint16 // RPM
	CollisionDetectionCurrent uint16 // mA
	CollisionDetectionTime    uint16 // ms
	AutoHomingEnabled         bool
}

// PIDParameters holds the four loop gains. Firmware may truncate the
// response to as few as 7 bytes; callers get this struct either way, with
// untransmitted speed gains set to DefaultSpeedKp/DefaultSpeedKi and
// untransmitted position gains left at zero.
type PIDParameters struct {
	TrapezoidPositionKp uint32
	DirectPositionKp    uint32
	SpeedKp             uint32
	SpeedKi             uint32
}

// Fallback defaults used by the tolerant PID decoder when the firmware
// truncates its response before reaching speed_kp/speed_ki.
const (
	DefaultSpeedKp = 15600
	DefaultSpeedKi = 26
)

// DriveParameters mirrors the 24 configurable fields of FC 0x42/0x48.
type DriveParameters struct {
	LockEnabled              bool
	ControlMode              byte // 0 = open-loop, 1 = closed-loop FOC
	PulsePortFunction        byte
	SerialPortFunction       byte
	EnablePinMode            byte
	MotorDirection           byte // 0 = CW, 1 = CCW
	Subdivision              int  // 0 on the wire means 256
	SubdivisionInterpolation bool
	AutoScreenOff            bool
	LPFIntensity             byte
	OpenLoopCurrent          uint16 // mA
	ClosedLoopMaxCurrent     uint16 // mA
	MaxSpeedLimit            uint16 // RPM
	CurrentLoopBandwidth     uint16 // rad/s
	UARTBaudrate             byte   // option index, see BaudrateOptionsUART
	CANBaudrate              byte   // option index, see BaudrateOptionsCAN
	ChecksumMode             byte
	ResponseMode             byte
	PositionPrecision        bool
	StallProtectionEnabled   bool
	StallProtectionSpeed     uint16 // RPM
	StallProtectionCurrent   uint16 // mA
	StallProtectionTime      uint16 // ms
	PositionArrivalWindow    uint16 // 0.1 degree units
}

// SystemStatus is the aggregate single-shot read of FC 0x43, combining
// values that are otherwise obtained through individual reader calls.
type SystemStatus struct {
	BusVoltage               float64
	BusCurrent               float64
	PhaseCurrent             float64
	EncoderRawValue          int
	EncoderCalibratedValue   int
	TargetPosition           float64
	RealtimeSpeed            float64
	RealtimePosition         float64
	PositionError            float64
	Temperature              float64
	HomingStatusFlags        byte
	MotorStatusFlags         byte
	EncoderReady             bool
	CalibrationTableReady    bool
	HomingInProgress         bool
	HomingFailed             bool
	PositionPrecisionHigh    bool
	MotorEnabled             bool
	MotorInPosition          bool
	MotorStalled             bool
	StallProtectionTriggered bool
}

// BaudrateOptionsUART maps the on-wire UART baud-rate option index (0-7)
// to the corresponding rate in bits/sec.
var BaudrateOptionsUART = map[byte]int{
	0: 4800, 1: 9600, 2: 19200, 3: 38400,
	4: 57600, 5: 115200, 6: 230400, 7: 460800,
}

// BaudrateOptionsCAN maps the on-wire CAN baud-rate option index (0-7) to
// the corresponding rate in bits/sec.
var BaudrateOptionsCAN = map[byte]int{
	0: 125000, 1: 250000, 2: 500000, 3: 1000000,
	4: 2000000, 5: 4000000, 6: 5000000, 7: 8000000,
}
