// Command zdtcan-jog is a manual bring-up harness: it jogs a single ZDT
// axis back and forth between two angles so a bench operator can confirm
// wiring and direction before running anything more elaborate.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/zdt-robotics/zdtcan/bus"
	"github.com/zdt-robotics/zdtcan/motor"
)

func main() {
	portVal := flag.String("port", "/dev/ttyUSB0", "Serial port name")
	baudVal := flag.Int("baud", 500000, "Serial baud rate to the SLCAN adapter")
	motorIDVal := flag.Int("motor-id", 1, "Motor ID to jog")
	speedVal := flag.Float64("speed", 300, "Jog speed (RPM)")
	spanVal := flag.Float64("span", 90, "Jog half-span (degrees)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	logger.Info("starting jog", "port", *portVal, "baud", *baudVal, "motor_id", *motorIDVal)

	coord := bus.New(logger)
	handle, err := coord.Acquire(bus.Key{Port: *portVal, Baud: *baudVal})
	if err != nil {
		logger.Error("failed to open bus", "error", err)
		os.Exit(1)
	}
	defer coord.CloseAll()

	m := motor.New(byte(*motorIDVal), handle, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		logger.Info("interrupt received, stopping")
		cancel()
	}()

	if err := m.Enable(ctx, false); err != nil {
		logger.Error("enable failed", "error", err)
		os.Exit(1)
	}
	defer m.Disable(context.Background())

	targets := []float64{*spanVal, -*spanVal}
	idx := 0

Loop:
	for {
		target := targets[idx%len(targets)]
		logger.Info("moving", "target_deg", target)
		if err := m.MoveToPositionDirect(ctx, target, *speedVal, true, false); err != nil {
			logger.Error("move failed", "error", err)
			break
		}

		for {
			select {
			case <-ctx.Done():
				break Loop
			default:
			}
			if m.IsInPosition(ctx) {
				break
			}
			time.Sleep(100 * time.Millisecond)
		}

		idx++
		time.Sleep(500 * time.Millisecond)
	}

	logger.Info("jog stopped")
}
