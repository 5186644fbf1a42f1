package airodump

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/iyow2233/capstone/internal/adapters/process"
	"github.com/iyow2233/capstone/internal/core/domain"
	"github.com/iyow2233/capstone/internal/core/ports"
	"github.com/iyow2233/capstone/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Tool is the capture binary.
const Tool = "airodump-ng"

// Strategy produces network records from one kind of captured output.
type Strategy interface {
	Name() string
	Scan(ctx context.Context, iface string, duration time.Duration) ([]domain.NetworkRecord, error)
}

// StructuredStrategy captures to airodump-ng's CSV artifact.
type StructuredStrategy struct {
	spawner process.Spawner
	workDir string
	opts    ParseOptions
	logger  *slog.Logger
}

// NewStructuredStrategy creates the CSV scan strategy.
func NewStructuredStrategy(spawner process.Spawner, workDir string, opts ParseOptions, logger *slog.Logger) *StructuredStrategy {
	return &StructuredStrategy{spawner: spawner, workDir: workDir, opts: opts, logger: logger}
}

func (s *StructuredStrategy) Name() string { return "structured" }

func (s *StructuredStrategy) Scan(ctx context.Context, iface string, duration time.Duration) ([]domain.NetworkRecord, error) {
	if n, err := RemoveArtifacts(s.workDir, ArtifactPrefix); err != nil {
		s.logger.Warn("Could not remove old scan artifacts", "error", err)
	} else if n > 0 {
		s.logger.Debug("Removed old scan artifacts", "count", n)
	}

	s.logger.Info("Scanning for wireless networks", "interface", iface, "duration", duration)
	h, err := s.spawner.Spawn(ctx, process.Spec{
		Name:   Tool,
		Args:   []string{"--output-format", "csv", "--write", filepath.Join(s.workDir, ArtifactPrefix), iface},
		Silent: true,
	})
	if err != nil {
		return nil, err
	}
	waitErr := s.spawner.Wait(ctx, h, duration, "Scanning")
	if err := s.spawner.Terminate(h); err != nil {
		s.logger.Warn("Failed to stop scan", "error", err)
	}
	if waitErr != nil {
		return nil, waitErr
	}

	path, err := FindArtifact(s.workDir, ArtifactPrefix, ".csv")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNoArtifact, err)
	}

	records, stats, err := ParseNetworkCSV(data, s.opts)
	telemetry.RowsSkipped.Add(float64(stats.Skipped))
	s.logger.Debug("Parsed scan artifact",
		"file", path, "encoding", stats.Encoding, "rows", stats.Rows,
		"skipped", stats.Skipped, "rejected", stats.Rejected, "hidden", stats.Hidden)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// DirectStrategy reads airodump-ng's screen output from a plain file.
type DirectStrategy struct {
	spawner  process.Spawner
	workDir  string
	duration time.Duration
	opts     ParseOptions
	logger   *slog.Logger
}

// DefaultDirectDuration is the direct scan's fixed capture window.
const DefaultDirectDuration = 10 * time.Second

// NewDirectStrategy creates the tabular scan strategy. It always captures
// for duration, independent of the requested scan time.
func NewDirectStrategy(spawner process.Spawner, workDir string, duration time.Duration, opts ParseOptions, logger *slog.Logger) *DirectStrategy {
	if duration <= 0 {
		duration = DefaultDirectDuration
	}
	return &DirectStrategy{spawner: spawner, workDir: workDir, duration: duration, opts: opts, logger: logger}
}

func (s *DirectStrategy) Name() string { return "direct" }

func (s *DirectStrategy) Scan(ctx context.Context, iface string, _ time.Duration) ([]domain.NetworkRecord, error) {
	out := filepath.Join(s.workDir, "direct_scan.txt")
	s.logger.Info("Performing direct network scan", "interface", iface, "duration", s.duration)

	h, err := s.spawner.Spawn(ctx, process.Spec{Name: Tool, Args: []string{iface}, OutputPath: out})
	if err != nil {
		return nil, err
	}
	waitErr := s.spawner.Wait(ctx, h, s.duration, "Direct scanning")
	if err := s.spawner.Terminate(h); err != nil {
		s.logger.Warn("Failed to stop direct scan", "error", err)
	}
	if waitErr != nil {
		return nil, waitErr
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNoArtifact, err)
	}
	records, stats, err := ParseNetworkTable(data, s.opts)
	telemetry.RowsSkipped.Add(float64(stats.Skipped))
	s.logger.Debug("Parsed direct scan output",
		"rows", stats.Rows, "skipped", stats.Skipped, "rejected", stats.Rejected, "hidden", stats.Hidden)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// FallbackChain tries strategies in order and returns the first non-empty
// result. Strategy failures are logged and never returned; only
// cancellation of ctx is.
type FallbackChain struct {
	strategies []Strategy
	logger     *slog.Logger
}

var _ ports.NetworkScanner = (*FallbackChain)(nil)

// NewFallbackChain combines strategies, tried in argument order.
func NewFallbackChain(logger *slog.Logger, strategies ...Strategy) *FallbackChain {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackChain{strategies: strategies, logger: logger}
}

// Scan runs the strategies until one yields records.
func (c *FallbackChain) Scan(ctx context.Context, iface string, duration time.Duration) ([]domain.NetworkRecord, error) {
	for i, s := range c.strategies {
		records, err := c.run(ctx, s, iface, duration)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err == nil && len(records) > 0 {
			telemetry.NetworksDiscovered.WithLabelValues(s.Name()).Add(float64(len(records)))
			c.logger.Info("Scan found networks", "strategy", s.Name(), "count", len(records))
			return records, nil
		}

		telemetry.ScanFallbacks.WithLabelValues(s.Name()).Inc()
		reason := "no networks parsed"
		if err != nil {
			reason = err.Error()
		}
		if i < len(c.strategies)-1 {
			c.logger.Warn("Scan strategy produced nothing, falling back",
				"strategy", s.Name(), "next", c.strategies[i+1].Name(), "reason", reason)
		} else {
			c.logger.Warn("Scan strategy produced nothing", "strategy", s.Name(), "reason", reason)
		}
	}
	return []domain.NetworkRecord{}, nil
}

func (c *FallbackChain) run(ctx context.Context, s Strategy, iface string, duration time.Duration) ([]domain.NetworkRecord, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "scan."+s.Name())
	defer span.End()
	span.SetAttributes(attribute.String("interface", iface))

	records, err := s.Scan(ctx, iface, duration)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.Int("networks", len(records)))
	return records, err
}
