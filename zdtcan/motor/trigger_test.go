package motor

import (
	"context"
	"testing"

	"github.com/zdt-robotics/zdtcan"
)

func TestEmergencyStopDisablesWhenEnabled(t *testing.T) {
	mb := &mockBus{responses: [][]byte{
		{zdtcan.FCImmediateStop, zdtcan.StatusSuccess, zdtcan.Checksum},
		{zdtcan.FCReadMotorStatus, zdtcan.MotorFlagEnabled, zdtcan.Checksum},
		{zdtcan.FCMotorEnable, zdtcan.StatusSuccess, zdtcan.Checksum},
	}}
	m := newTestMotor(1, mb)

	if err := m.EmergencyStop(context.Background()); err != nil {
		t.Fatalf("EmergencyStop failed: %v", err)
	}
	if len(mb.sent) != 3 {
		t.Fatalf("expected stop + status read + disable (3 frames), got %d", len(mb.sent))
	}
	if mb.sent[2][0] != zdtcan.FCMotorEnable || mb.sent[2][2] != zdtcan.SyncDisabled {
		t.Errorf("expected a disable frame last, got % X", mb.sent[2])
	}
}

func TestEmergencyStopSkipsDisableWhenAlreadyDisabled(t *testing.T) {
	mb := &mockBus{responses: [][]byte{
		{zdtcan.FCImmediateStop, zdtcan.StatusSuccess, zdtcan.Checksum},
		{zdtcan.FCReadMotorStatus, 0x00, zdtcan.Checksum},
	}}
	m := newTestMotor(1, mb)

	if err := m.EmergencyStop(context.Background()); err != nil {
		t.Fatalf("EmergencyStop failed: %v", err)
	}
	if len(mb.sent) != 2 {
		t.Errorf("expected stop + status read only (2 frames), got %d", len(mb.sent))
	}
}
