package motor

import (
	"context"
	"fmt"
	"time"

	"github.com/zdt-robotics/zdtcan"
	"github.com/zdt-robotics/zdtcan/codec"
)

// SendBroadcast fires cmd on CAN frame ID 0 without waiting for a
// response — the device never replies to broadcast frames, so unlike
// Motor.sendCommand this never calls RecvFrame (spec.md testable
// property 5).
func SendBroadcast(ctx context.Context, h busHandle, cmd []byte) error {
	h.Lock()
	defer h.Unlock()

	for i, frame := range codec.Fragment(cmd) {
		if err := h.SendFrame(uint32(i), frame); err != nil {
			return fmt.Errorf("%w: broadcast: %v", zdtcan.ErrTransportIO, err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

// MultiMotorCommand builds and sends a Y-board aggregate frame (FC
// 0xAA): a batch of sub-commands, each already framed as
// [motor_id, function_code, params…, 0x6B], bundled under one envelope.
// Every sub-command's function code must belong entirely to the control
// set ({0xF5, 0xF6, 0xFB, 0xFD}) or entirely to the read set ({0x36});
// mixing the two is rejected with InvalidBatchError before anything is
// sent, matching the original's build_y42_multi_motor_frame validation.
//
// If waitAck is true, the aggregate frame is sent as an ordinary command
// addressed to ackMotorID and its response is awaited and parsed; this
// is the read-batch path, which gets one reply for the whole batch. If
// waitAck is false, the aggregate is sent fire-and-forget on the
// broadcast frame ID, matching the control-batch path where individual
// motors apply their slice of the batch without an aggregate ack.
func MultiMotorCommand(ctx context.Context, h busHandle, subCommands [][]byte, ackMotorID byte, waitAck bool, timeout time.Duration) ([]byte, error) {
	if len(subCommands) == 0 {
		return nil, &zdtcan.InvalidBatchError{Reason: "no sub-commands"}
	}

	isControl := false
	isRead := false
	for _, sub := range subCommands {
		if len(sub) < 2 {
			return nil, &zdtcan.InvalidBatchError{Reason: "sub-command shorter than [motor_id, function_code]"}
		}
		fc := sub[1]
		switch {
		case zdtcan.IsControlFunctionCode(fc):
			isControl = true
		case zdtcan.IsReadFunctionCode(fc):
			isRead = true
		default:
			return nil, &zdtcan.InvalidBatchError{Reason: fmt.Sprintf("function code 0x%02X is neither control nor read", fc)}
		}
	}
	if isControl && isRead {
		return nil, &zdtcan.InvalidBatchError{Reason: "batch mixes control and read function codes"}
	}

	frame := codec.BuildY42Frame(subCommands)

	if !waitAck {
		if err := SendBroadcast(ctx, h, frame); err != nil {
			return nil, err
		}
		return nil, nil
	}

	h.Lock()
	defer h.Unlock()

	baseID := uint32(ackMotorID) << 8
	for i, f := range codec.Fragment(frame) {
		if err := h.SendFrame(baseID+uint32(i), f); err != nil {
			return nil, fmt.Errorf("%w: multi-motor batch: %v", zdtcan.ErrTransportIO, err)
		}
	}

	data, err := h.RecvFrame(baseID, timeout)
	if err != nil {
		return nil, err
	}
	return codec.ParseResponse(data, zdtcan.FCY42MultiMotor)
}
