// Package sync implements the two-phase broadcast motion trigger, one of
// the two ways this protocol coordinates multiple axes from a single
// command (spec.md §4.6). The other, the Y-board aggregate batch, is
// motor.MultiMotorCommand built on codec.BuildY42Frame.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/zdt-robotics/zdtcan"
	"github.com/zdt-robotics/zdtcan/codec"
)

// busHandle is the subset of *bus.Handle this package needs, narrowed for
// testability (mirrors motor.busHandle).
type busHandle interface {
	Lock()
	Unlock()
	SendFrame(frameID uint32, data []byte) error
	RecvFrame(expectedFrameID uint32, timeout time.Duration) ([]byte, error)
}

// Preload is one axis's pre-staged command, sent with its multi_sync bit
// set so the device latches it without moving.
type Preload struct {
	MotorID byte
	Command []byte
}

// BroadcastSync stages every Preload command on its own axis, then fires
// a single broadcast trigger (FC 0xFF, aux 0x66) on CAN ID 0 that
// launches all of them simultaneously. Every preload is sent and
// acknowledged before the trigger goes out — testable property 7's
// ordering guarantee — all serialized on one bus handle so no other
// traffic can interleave between the last preload and the trigger.
func BroadcastSync(ctx context.Context, h busHandle, logger *slog.Logger, preloads []Preload) error {
	if logger == nil {
		logger = slog.Default()
	}

	h.Lock()
	defer h.Unlock()

	for _, p := range preloads {
		baseID := uint32(p.MotorID) << 8
		frames := codec.Fragment(p.Command)
		for i, frame := range frames {
			if err := h.SendFrame(baseID+uint32(i), frame); err != nil {
				return fmt.Errorf("%w: preload motor %d: %v", zdtcan.ErrTransportIO, p.MotorID, err)
			}
			if i < len(frames)-1 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(zdtcan.InterFragmentDelay):
				}
			}
		}

		data, err := h.RecvFrame(baseID, zdtcan.DefaultResponseWait)
		if err != nil {
			return fmt.Errorf("preload motor %d: %w", p.MotorID, err)
		}
		if _, err := codec.ParseResponse(data, p.Command[0]); err != nil {
			return fmt.Errorf("preload motor %d: %w", p.MotorID, err)
		}
		logger.Debug("sync: preload acknowledged", "motor_id", p.MotorID)
	}

	trigger := codec.SyncTrigger()
	if err := h.SendFrame(0, trigger); err != nil {
		return fmt.Errorf("%w: sync trigger: %v", zdtcan.ErrTransportIO, err)
	}
	logger.Info("sync: broadcast trigger sent", "axis_count", len(preloads))
	return nil
}
