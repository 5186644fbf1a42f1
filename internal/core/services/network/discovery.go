package network

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/iyow2233/capstone/internal/core/domain"
	"github.com/iyow2233/capstone/internal/core/ports"
	"github.com/iyow2233/capstone/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultRetryDuration is the scan length of the second discovery pass.
const DefaultRetryDuration = 45 * time.Second

// Result is the outcome of discovery.
type Result struct {
	All     []domain.NetworkRecord
	Matched []domain.NetworkRecord
	Retried bool
}

// Discovery scans for networks and selects the ones matching the target
// prefixes.
type Discovery struct {
	scanner       ports.NetworkScanner
	logger        *slog.Logger
	verbose       bool
	retryDuration time.Duration
}

// NewDiscovery creates a discovery service. In verbose mode the longer
// retry pass is skipped.
func NewDiscovery(scanner ports.NetworkScanner, verbose bool, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{
		scanner:       scanner,
		logger:        logger,
		verbose:       verbose,
		retryDuration: DefaultRetryDuration,
	}
}

// SetRetryDuration overrides the second pass duration.
func (d *Discovery) SetRetryDuration(dur time.Duration) {
	d.retryDuration = dur
}

// Discover scans iface for duration and filters by prefixes. When nothing
// matches and verbose mode is off, it scans once more for the retry
// duration.
func (d *Discovery) Discover(ctx context.Context, iface string, duration time.Duration, prefixes []string) (Result, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "discovery")
	defer span.End()

	res, err := d.pass(ctx, iface, duration, prefixes)
	if err != nil {
		return res, err
	}
	if len(res.Matched) == 0 && !d.verbose {
		d.logger.Warn("No target networks found. Trying with a longer scan time", "duration", d.retryDuration)
		res, err = d.pass(ctx, iface, d.retryDuration, prefixes)
		res.Retried = true
		if err != nil {
			return res, err
		}
	}

	span.SetAttributes(
		attribute.Int("networks.discovered", len(res.All)),
		attribute.Int("networks.matched", len(res.Matched)),
		attribute.Bool("retried", res.Retried),
	)
	if len(res.Matched) == 0 {
		d.logger.Error("No target networks found", "prefixes", strings.Join(prefixes, ", "))
	}
	return res, nil
}

func (d *Discovery) pass(ctx context.Context, iface string, duration time.Duration, prefixes []string) (Result, error) {
	all, err := d.scanner.Scan(ctx, iface, duration)
	if err != nil {
		return Result{}, err
	}
	d.logger.Info("Scan complete", "networks", len(all))

	matched := FilterByPrefix(all, prefixes)
	for _, n := range matched {
		d.logger.Info("Found target network", "essid", n.ESSID, "bssid", n.BSSID, "channel", n.Channel, "power", n.Power)
	}
	return Result{All: all, Matched: matched}, nil
}
