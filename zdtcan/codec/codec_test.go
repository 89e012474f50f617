package codec

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/zdt-robotics/zdtcan"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex literal %q: %v", s, err)
	}
	return b
}

// TestMotorEnableWireFormat verifies the S1 scenario: enabling the motor
// with no sync produces F3 AB 01 00 6B.
func TestMotorEnableWireFormat(t *testing.T) {
	got := MotorEnable(true, false)
	want := mustHex(t, "F3AB01006B")
	if !bytes.Equal(got, want) {
		t.Errorf("MotorEnable(true,false) = % X, want % X", got, want)
	}
}

// TestPositionTrapezoidWireFormat verifies the S2 scenario: a move to
// +90 degrees at 500 RPM with accel/decel 1000 RPM/s, absolute, no sync.
func TestPositionTrapezoidWireFormat(t *testing.T) {
	got, err := PositionTrapezoid(90.0, 500, 1000, 1000, true, false)
	if err != nil {
		t.Fatalf("PositionTrapezoid(...) returned error: %v", err)
	}
	want := mustHex(t, "FD00"+"03E8"+"03E8"+"1388"+"00000384"+"01"+"00"+"6B")
	if !bytes.Equal(got, want) {
		t.Errorf("PositionTrapezoid(...) = % X, want % X", got, want)
	}
}

func TestFragmentSingleFrame(t *testing.T) {
	cmd := []byte{0xF3, 0xAB, 0x01, 0x00, 0x6B}
	frames := Fragment(cmd)
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame for an 5-byte command, got %d", len(frames))
	}
	if !bytes.Equal(frames[0], cmd) {
		t.Errorf("frame 0 = % X, want % X", frames[0], cmd)
	}
}

// TestFragmentCount verifies testable property 3: frame count is
// ceil((L-8)/7) + 1 for commands longer than 8 bytes.
func TestFragmentCount(t *testing.T) {
	cmd, err := ModifyDriveParams(zdtcan.DriveParameters{}, true) // 3 + 32 + 1 = 36 bytes
	if err != nil {
		t.Fatalf("ModifyDriveParams(...) returned error: %v", err)
	}
	frames := Fragment(cmd)

	l := len(cmd)
	want := (l-8+6)/7 + 1
	if len(frames) != want {
		t.Errorf("Fragment produced %d frames for %d-byte command, want %d", len(frames), l, want)
	}
	if len(frames[0]) != 8 {
		t.Errorf("frame 0 length = %d, want 8", len(frames[0]))
	}
	for i, f := range frames[1:] {
		if len(f) > 8 {
			t.Errorf("frame %d length = %d, want <= 8", i+1, len(f))
		}
		if f[0] != cmd[0] {
			t.Errorf("frame %d function code = %#02x, want %#02x", i+1, f[0], cmd[0])
		}
	}
}

func TestParseResponseStripsChecksum(t *testing.T) {
	data := mustHex(t, "3A0100" + "6B")
	payload, err := ParseResponse(data, zdtcan.FCReadMotorStatus)
	if err != nil {
		t.Fatalf("ParseResponse failed: %v", err)
	}
	if !bytes.Equal(payload, mustHex(t, "0100")) {
		t.Errorf("payload = % X, want 01 00", payload)
	}
}

func TestParseResponseFunctionCodeMismatch(t *testing.T) {
	data := mustHex(t, "3A01006B")
	_, err := ParseResponse(data, zdtcan.FCReadHomingStatus)
	var mismatch *zdtcan.FunctionCodeMismatchError
	if err == nil {
		t.Fatal("expected a function code mismatch error")
	}
	if e, ok := err.(*zdtcan.FunctionCodeMismatchError); !ok {
		t.Errorf("got error of type %T, want *FunctionCodeMismatchError", err)
	} else {
		mismatch = e
		if mismatch.Actual != 0x3A {
			t.Errorf("Actual = %#02x, want 0x3A", mismatch.Actual)
		}
	}
}

func TestParseResponseConditionNotMet(t *testing.T) {
	data := mustHex(t, "E26B")
	_, err := ParseResponse(data, zdtcan.FCMotorEnable)
	var cnm *zdtcan.ConditionNotMetError
	if err == nil {
		t.Fatal("expected a condition-not-met error")
	}
	if _, ok := err.(*zdtcan.ConditionNotMetError); !ok {
		t.Errorf("got error of type %T, want *ConditionNotMetError", err)
	}
	_ = cnm
}

// TestParseSignedU32ReadPosition verifies the S4 scenario: a response
// payload decoding to -719.3 degrees.
func TestParseSignedU32ReadPosition(t *testing.T) {
	payload := mustHex(t, "01" + "00001C19") // dir=negative, mag=7193
	dir, mag, err := ParseSignedU32(payload)
	if err != nil {
		t.Fatalf("ParseSignedU32 failed: %v", err)
	}
	got := zdtcan.UnscalePosition(dir, mag)
	if got != -719.3 {
		t.Errorf("UnscalePosition(%d, %d) = %v, want -719.3", dir, mag, got)
	}
}

func TestParseHomingParametersStrictLength(t *testing.T) {
	short := make([]byte, 14)
	if _, err := ParseHomingParameters(short); err == nil {
		t.Error("expected an error for a 14-byte homing parameter payload")
	}

	exact := make([]byte, 15)
	exact[0] = 0x01
	exact[14] = 0x01
	p, err := ParseHomingParameters(exact)
	if err != nil {
		t.Fatalf("ParseHomingParameters(15 bytes) failed: %v", err)
	}
	if p.Mode != 0x01 || !p.AutoHomingEnabled {
		t.Errorf("unexpected decode: %+v", p)
	}
}

func TestParsePIDParametersTolerantFallback(t *testing.T) {
	p := ParsePIDParameters(mustHex(t, "0000000F"))
	if p.TrapezoidPositionKp != 15 {
		t.Errorf("TrapezoidPositionKp = %d, want 15", p.TrapezoidPositionKp)
	}
	if p.SpeedKp != zdtcan.DefaultSpeedKp || p.SpeedKi != zdtcan.DefaultSpeedKi {
		t.Errorf("expected fallback speed gains, got Kp=%d Ki=%d", p.SpeedKp, p.SpeedKi)
	}
}

func TestParseDriveParameters7ByteFallbackLeavesRestZero(t *testing.T) {
	payload := mustHex(t, "0000AA03040506")
	p, err := ParseDriveParameters(payload)
	if err != nil {
		t.Fatalf("ParseDriveParameters(7 bytes) failed: %v", err)
	}
	if p.ControlMode != 0x03 || p.PulsePortFunction != 0x04 {
		t.Errorf("unexpected 7-byte decode: %+v", p)
	}
	if p.MaxSpeedLimit != 0 || p.StallProtectionEnabled {
		t.Errorf("expected untransmitted fields to stay zero, got %+v", p)
	}
}

func TestSpeedModeRejectsOutOfRangeRPM(t *testing.T) {
	_, err := SpeedMode(7000, 500, false)
	var invalid *zdtcan.InvalidParameterError
	if err == nil {
		t.Fatal("expected an error for 7000 RPM, which exceeds ±6553.5 RPM")
	}
	if e, ok := err.(*zdtcan.InvalidParameterError); !ok {
		t.Errorf("got error of type %T, want *InvalidParameterError", err)
	} else {
		invalid = e
		if invalid.Field != "speed_rpm" {
			t.Errorf("Field = %q, want speed_rpm", invalid.Field)
		}
	}
}

func TestModifyMotorIDRejectsBroadcastAddress(t *testing.T) {
	_, err := ModifyMotorID(0, true)
	if _, ok := err.(*zdtcan.InvalidParameterError); !ok {
		t.Errorf("got error of type %T, want *InvalidParameterError for newID=0", err)
	}
}

func TestModifyDriveParamsRejectsOutOfRangeEnum(t *testing.T) {
	p := zdtcan.DriveParameters{ControlMode: 2}
	_, err := ModifyDriveParams(p, true)
	if _, ok := err.(*zdtcan.InvalidParameterError); !ok {
		t.Errorf("got error of type %T, want *InvalidParameterError for ControlMode=2", err)
	}
}

func TestModifyDriveParamsRejectsInvalidSubdivision(t *testing.T) {
	p := zdtcan.DriveParameters{Subdivision: 7}
	_, err := ModifyDriveParams(p, true)
	if _, ok := err.(*zdtcan.InvalidParameterError); !ok {
		t.Errorf("got error of type %T, want *InvalidParameterError for Subdivision=7", err)
	}
}
