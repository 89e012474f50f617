package motor

import (
	"context"
	"testing"
	"time"

	"github.com/zdt-robotics/zdtcan"
)

func TestWaitForHomingCompleteReturnsOnceDone(t *testing.T) {
	mb := &mockBus{responses: [][]byte{
		{zdtcan.FCReadHomingStatus, zdtcan.HomingFlagInProgress, zdtcan.Checksum},
		{zdtcan.FCReadHomingStatus, zdtcan.HomingFlagEncoderReady, zdtcan.Checksum},
	}}
	m := newTestMotor(1, mb)

	status, err := m.WaitForHomingComplete(context.Background(), time.Second, 5*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitForHomingComplete failed: %v", err)
	}
	if status.HomingInProgress {
		t.Error("expected homing to have completed")
	}
	if !status.EncoderReady {
		t.Error("expected final status to report encoder ready")
	}
}

func TestWaitForHomingCompleteTimesOut(t *testing.T) {
	mb := &mockBus{responses: [][]byte{
		{zdtcan.FCReadHomingStatus, zdtcan.HomingFlagInProgress, zdtcan.Checksum},
		{zdtcan.FCReadHomingStatus, zdtcan.HomingFlagInProgress, zdtcan.Checksum},
		{zdtcan.FCReadHomingStatus, zdtcan.HomingFlagInProgress, zdtcan.Checksum},
	}}
	m := newTestMotor(1, mb)

	_, err := m.WaitForHomingComplete(context.Background(), 20*time.Millisecond, 5*time.Millisecond)
	if err == nil {
		t.Fatal("expected a timeout error")
	}
}

func TestTriggerHomingWireFormat(t *testing.T) {
	mb := &mockBus{responses: [][]byte{{zdtcan.FCTriggerHoming, zdtcan.StatusSuccess, zdtcan.Checksum}}}
	m := newTestMotor(1, mb)

	if err := m.TriggerHoming(context.Background(), zdtcan.HomingModeNearest, false); err != nil {
		t.Fatalf("TriggerHoming failed: %v", err)
	}
	want := []byte{zdtcan.FCTriggerHoming, zdtcan.HomingModeNearest, zdtcan.SyncDisabled, zdtcan.Checksum}
	if len(mb.sent) != 1 {
		t.Fatalf("expected 1 frame sent, got %d", len(mb.sent))
	}
	for i, b := range want {
		if mb.sent[0][i] != b {
			t.Errorf("byte %d = %#02x, want %#02x", i, mb.sent[0][i], b)
		}
	}
}
