package motor

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zdt-robotics/zdtcan"
)

// mockBus is an in-memory busHandle: every SendFrame is recorded, and
// RecvFrame replays from a queue of canned responses keyed by call order.
type mockBus struct {
	mu sync.Mutex

	sent      [][]byte
	sentIDs   []uint32
	responses [][]byte
	recvCalls int
}

func (b *mockBus) Lock()   {}
func (b *mockBus) Unlock() {}

func (b *mockBus) SendFrame(frameID uint32, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := append([]byte(nil), data...)
	b.sent = append(b.sent, cp)
	b.sentIDs = append(b.sentIDs, frameID)
	return nil
}

func (b *mockBus) RecvFrame(expectedFrameID uint32, timeout time.Duration) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.recvCalls >= len(b.responses) {
		return nil, zdtcan.ErrTimeout
	}
	resp := b.responses[b.recvCalls]
	b.recvCalls++
	return resp, nil
}

func newTestMotor(id byte, mb *mockBus) *Motor {
	return &Motor{ID: id, bus: mb, Timeout: time.Second}
}

// TestEnableSendsWireFormat verifies the S1 scenario end-to-end through
// the Motor API: Enable(ctx, false) sends F3 AB 01 00 6B and accepts the
// device's success response.
func TestEnableSendsWireFormat(t *testing.T) {
	mb := &mockBus{responses: [][]byte{{zdtcan.FCMotorEnable, zdtcan.StatusSuccess, zdtcan.Checksum}}}
	m := newTestMotor(1, mb)

	if err := m.Enable(context.Background(), false); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}

	want := []byte{0xF3, 0xAB, 0x01, 0x00, 0x6B}
	if len(mb.sent) != 1 || !bytes.Equal(mb.sent[0], want) {
		t.Errorf("sent frame = % X, want % X", mb.sent, want)
	}
	if mb.sentIDs[0] != 0x0100 {
		t.Errorf("frame ID = %#x, want 0x0100", mb.sentIDs[0])
	}
}

// TestBroadcastMotorNeverCallsRecvFrame covers testable property 5: a
// command addressed to motor ID 0 is fire-and-forget.
func TestBroadcastMotorNeverCallsRecvFrame(t *testing.T) {
	mb := &mockBus{}
	m := newTestMotor(0, mb)

	if err := m.Enable(context.Background(), false); err != nil {
		t.Fatalf("Enable on broadcast motor failed: %v", err)
	}
	if len(mb.sent) != 0 {
		t.Errorf("expected no frames sent for motor ID 0, got %d", len(mb.sent))
	}
	if mb.recvCalls != 0 {
		t.Errorf("expected RecvFrame never called for motor ID 0, got %d calls", mb.recvCalls)
	}
}

// TestConditionNotMetRefinesToNotEnabled exercises the re-query path: a
// command that comes back 0xE2 triggers one status read, which reports
// the motor disabled.
func TestConditionNotMetRefinesToNotEnabled(t *testing.T) {
	mb := &mockBus{responses: [][]byte{
		{zdtcan.StatusConditionNotMet, zdtcan.Checksum},
		{zdtcan.FCReadMotorStatus, 0x00, zdtcan.Checksum}, // status byte 0 = disabled
	}}
	m := newTestMotor(1, mb)

	err := m.Stop(context.Background(), false)
	if err == nil {
		t.Fatal("expected a ConditionNotMetError")
	}
	var cnm *zdtcan.ConditionNotMetError
	if !errors.As(err, &cnm) {
		t.Fatalf("got error %v, want *ConditionNotMetError", err)
	}
	if cnm.Kind != zdtcan.ConditionNotEnabled {
		t.Errorf("Kind = %v, want ConditionNotEnabled", cnm.Kind)
	}
	if mb.recvCalls != 2 {
		t.Errorf("expected exactly one internal re-query (2 RecvFrame calls total), got %d", mb.recvCalls)
	}
}

// TestReadPositionUnscalesNegative verifies the S4 scenario: a
// dir=negative, mag=7193 payload decodes to -719.3 degrees.
func TestReadPositionUnscalesNegative(t *testing.T) {
	mb := &mockBus{responses: [][]byte{
		{zdtcan.FCReadRealtimePosition, 0x01, 0x00, 0x00, 0x1C, 0x19, zdtcan.Checksum},
	}}
	m := newTestMotor(1, mb)

	got, err := m.ReadPosition(context.Background())
	if err != nil {
		t.Fatalf("ReadPosition failed: %v", err)
	}
	if got != -719.3 {
		t.Errorf("ReadPosition = %v, want -719.3", got)
	}
}

func TestFunctionCodeMismatchPropagates(t *testing.T) {
	mb := &mockBus{responses: [][]byte{
		{zdtcan.FCReadHomingStatus, 0x00, zdtcan.Checksum},
	}}
	m := newTestMotor(1, mb)

	_, err := m.ReadMotorStatus(context.Background())
	var mismatch *zdtcan.FunctionCodeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("got error %v, want *FunctionCodeMismatchError", err)
	}
}
