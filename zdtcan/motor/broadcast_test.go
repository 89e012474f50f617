package motor

import (
	"context"
	"testing"
	"time"

	"github.com/zdt-robotics/zdtcan"
	"github.com/zdt-robotics/zdtcan/codec"
)

func TestSendBroadcastUsesFrameIDZero(t *testing.T) {
	mb := &mockBus{}
	if err := SendBroadcast(context.Background(), mb, codec.SyncTrigger()); err != nil {
		t.Fatalf("SendBroadcast failed: %v", err)
	}
	if len(mb.sent) != 1 || mb.sentIDs[0] != 0 {
		t.Errorf("expected a single frame on ID 0, got IDs %v", mb.sentIDs)
	}
	if mb.recvCalls != 0 {
		t.Error("SendBroadcast must never call RecvFrame")
	}
}

func TestMultiMotorCommandRejectsMixedBatch(t *testing.T) {
	mb := &mockBus{}
	subs := [][]byte{
		{1, zdtcan.FCSpeedMode, 0x00, 0x00, 0x00, 0x00, 0x64, 0x00, zdtcan.Checksum},
		{2, zdtcan.FCReadRealtimePosition, zdtcan.Checksum},
	}
	_, err := MultiMotorCommand(context.Background(), mb, subs, 0, false, time.Second)
	var batchErr *zdtcan.InvalidBatchError
	if err == nil {
		t.Fatal("expected an InvalidBatchError for a mixed control/read batch")
	}
	if e, ok := err.(*zdtcan.InvalidBatchError); !ok {
		t.Errorf("got error of type %T, want *InvalidBatchError", err)
	} else {
		batchErr = e
	}
	_ = batchErr
}

func TestMultiMotorCommandFireAndForgetControlBatch(t *testing.T) {
	mb := &mockBus{}
	subs := [][]byte{
		{1, zdtcan.FCSpeedMode, 0x00, 0x00, 0x00, 0x00, 0x64, 0x00, zdtcan.Checksum},
		{2, zdtcan.FCSpeedMode, 0x01, 0x00, 0x00, 0x00, 0x64, 0x00, zdtcan.Checksum},
	}
	_, err := MultiMotorCommand(context.Background(), mb, subs, 0, false, time.Second)
	if err != nil {
		t.Fatalf("MultiMotorCommand failed: %v", err)
	}
	if mb.recvCalls != 0 {
		t.Error("fire-and-forget batch must never call RecvFrame")
	}
	if len(mb.sent) == 0 {
		t.Error("expected at least one frame sent for the aggregate")
	}
}

func TestMultiMotorCommandWaitsAckForReadBatch(t *testing.T) {
	mb := &mockBus{responses: [][]byte{
		{zdtcan.FCY42MultiMotor, 0x01, 0x02, 0x03, zdtcan.Checksum},
	}}
	subs := [][]byte{
		{1, zdtcan.FCReadRealtimePosition, zdtcan.Checksum},
	}
	payload, err := MultiMotorCommand(context.Background(), mb, subs, 9, true, time.Second)
	if err != nil {
		t.Fatalf("MultiMotorCommand failed: %v", err)
	}
	if mb.recvCalls != 1 {
		t.Errorf("expected exactly one RecvFrame call, got %d", mb.recvCalls)
	}
	if mb.sentIDs[0] != uint32(9)<<8 {
		t.Errorf("sent frame ID = %#x, want ack motor's base ID", mb.sentIDs[0])
	}
	if len(payload) != 3 {
		t.Errorf("payload = % X, want 3 bytes", payload)
	}
}
