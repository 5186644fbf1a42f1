package deauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/iyow2233/capstone/internal/adapters/process"
	"github.com/iyow2233/capstone/internal/core/domain"
	"github.com/iyow2233/capstone/internal/core/ports"
)

// Tool is the injection binary.
const Tool = "aireplay-ng"

// ErrEarlyExit is returned when a continuous injection ends before its
// window, which usually means the interface rejected injection.
var ErrEarlyExit = errors.New("deauth process exited early")

// Engine sends deauthentication frames with aireplay-ng.
type Engine struct {
	spawner process.Spawner
	logger  *slog.Logger
	runs    atomic.Int64
}

var _ ports.Deauther = (*Engine)(nil)

// NewEngine creates a deauth engine.
func NewEngine(spawner process.Spawner, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{spawner: spawner, logger: logger}
}

// Runs returns the number of injection runs started.
func (e *Engine) Runs() int64 {
	return e.runs.Load()
}

// Args builds the aireplay-ng argument list for req.
func Args(req domain.DeauthRequest) []string {
	args := []string{"--deauth", strconv.Itoa(req.PacketCount), "-a", req.BSSID}
	if !req.IsBroadcast() {
		args = append(args, "-c", req.ClientMAC)
	}
	return append(args, req.Interface)
}

func validate(req domain.DeauthRequest) error {
	if !domain.IsValidInterface(req.Interface) {
		return fmt.Errorf("invalid interface %q", req.Interface)
	}
	if !domain.IsValidMAC(req.BSSID) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidBSSID, req.BSSID)
	}
	if !req.IsBroadcast() && !domain.IsValidMAC(req.ClientMAC) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidMAC, req.ClientMAC)
	}
	if req.PacketCount < 0 {
		return fmt.Errorf("packet count must not be negative: %d", req.PacketCount)
	}
	return nil
}

// Deauth runs one injection for up to req.Duration. A packet count of zero
// injects until the window closes; otherwise the run also ends when
// aireplay-ng has sent its burst.
func (e *Engine) Deauth(ctx context.Context, req domain.DeauthRequest) error {
	if err := validate(req); err != nil {
		return err
	}

	target := "broadcast"
	if !req.IsBroadcast() {
		target = req.ClientMAC
	}
	count := strconv.Itoa(req.PacketCount)
	if req.PacketCount == 0 {
		count = "continuous"
	}
	e.logger.Info("Starting deauthentication", "bssid", req.BSSID, "target", target, "packets", count, "duration", req.Duration)

	h, err := e.spawner.Spawn(ctx, process.Spec{Name: Tool, Args: Args(req), Silent: true})
	if err != nil {
		return fmt.Errorf("start %s: %w", Tool, err)
	}
	e.runs.Add(1)

	waitErr := e.spawner.Wait(ctx, h, req.Duration, "Deauth in progress")
	exited := h != nil && h.Exited()
	var exitErr error
	if exited {
		exitErr = h.Err()
	}
	if err := e.spawner.Terminate(h); err != nil {
		e.logger.Warn("Failed to stop deauth process", "error", err)
	}
	if waitErr != nil {
		return waitErr
	}

	switch {
	case exited && exitErr != nil:
		return fmt.Errorf("%s: %w", Tool, exitErr)
	case exited && req.PacketCount == 0:
		return ErrEarlyExit
	}
	return nil
}
