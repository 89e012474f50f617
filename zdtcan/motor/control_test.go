package motor

import (
	"bytes"
	"context"
	"testing"

	"github.com/zdt-robotics/zdtcan"
)

func TestSetSpeedWireFormat(t *testing.T) {
	mb := &mockBus{responses: [][]byte{{zdtcan.FCSpeedMode, zdtcan.StatusSuccess, zdtcan.Checksum}}}
	m := newTestMotor(3, mb)

	if err := m.SetSpeed(context.Background(), -250, 800, false); err != nil {
		t.Fatalf("SetSpeed failed: %v", err)
	}

	want := []byte{zdtcan.FCSpeedMode, zdtcan.DirectionNegative, 0x03, 0x20, 0x09, 0xC4, zdtcan.SyncDisabled, zdtcan.Checksum}
	if !bytes.Equal(mb.sent[0], want) {
		t.Errorf("SetSpeed frame = % X, want % X", mb.sent[0], want)
	}
}

func TestMoveToPositionDirectWireFormat(t *testing.T) {
	mb := &mockBus{responses: [][]byte{{zdtcan.FCPositionDirect, zdtcan.StatusSuccess, zdtcan.Checksum}}}
	m := newTestMotor(1, mb)

	if err := m.MoveToPositionDirect(context.Background(), 45.0, 200, true, false); err != nil {
		t.Fatalf("MoveToPositionDirect failed: %v", err)
	}

	frame := mb.sent[0]
	if frame[0] != zdtcan.FCPositionDirect {
		t.Fatalf("function code = %#02x, want %#02x", frame[0], zdtcan.FCPositionDirect)
	}
	if frame[1] != zdtcan.DirectionPositive {
		t.Errorf("direction = %#02x, want positive", frame[1])
	}
	last := mb.sent[len(mb.sent)-1]
	if last[len(last)-3] != zdtcan.PositionAbsolute {
		t.Errorf("absolute flag = %#02x, want PositionAbsolute", last[len(last)-3])
	}
}

func TestIsEnabledReadsThroughMotorStatus(t *testing.T) {
	mb := &mockBus{responses: [][]byte{
		{zdtcan.FCReadMotorStatus, zdtcan.MotorFlagEnabled | zdtcan.MotorFlagInPosition, zdtcan.Checksum},
	}}
	m := newTestMotor(1, mb)

	if !m.IsEnabled(context.Background()) {
		t.Error("expected IsEnabled to report true")
	}
}
