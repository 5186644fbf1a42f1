package airodump

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/iyow2233/capstone/internal/adapters/process"
	"github.com/iyow2233/capstone/internal/core/domain"
	"github.com/iyow2233/capstone/internal/core/ports"
)

// ChannelSetter tunes the capture interface.
type ChannelSetter interface {
	SetChannel(ctx context.Context, iface string, channel int) error
}

// ClientScanner runs a focused capture on one access point and lists its
// associated stations.
type ClientScanner struct {
	spawner  process.Spawner
	channels ChannelSetter
	workDir  string
	settle   time.Duration
	logger   *slog.Logger
}

var _ ports.ClientScanner = (*ClientScanner)(nil)

// NewClientScanner creates a client scanner writing its capture under workDir.
func NewClientScanner(spawner process.Spawner, channels ChannelSetter, workDir string, logger *slog.Logger) *ClientScanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientScanner{
		spawner:  spawner,
		channels: channels,
		workDir:  workDir,
		settle:   time.Second,
		logger:   logger,
	}
}

// SetSettle changes the pause between tuning the channel and capturing.
func (s *ClientScanner) SetSettle(d time.Duration) {
	s.settle = d
}

// Scan returns clients associated with network. An empty map means none
// were seen; errors are only returned when the capture could not run.
func (s *ClientScanner) Scan(ctx context.Context, iface string, network domain.NetworkRecord, duration time.Duration) (map[string]domain.ClientRecord, error) {
	s.logger.Info("Scanning for clients", "bssid", network.BSSID, "channel", network.Channel)

	if network.Channel > 0 && s.channels != nil {
		if err := s.channels.SetChannel(ctx, iface, network.Channel); err != nil {
			s.logger.Warn("Failed to set channel", "channel", network.Channel, "error", err)
		}
		if err := sleep(ctx, s.settle); err != nil {
			return nil, err
		}
	}

	args := []string{"--bssid", network.BSSID}
	if network.Channel > 0 {
		args = append(args, "--channel", strconv.Itoa(network.Channel))
	}
	args = append(args, iface)

	out := filepath.Join(s.workDir, "client_scan.txt")
	h, err := s.spawner.Spawn(ctx, process.Spec{Name: Tool, Args: args, OutputPath: out})
	if err != nil {
		return nil, err
	}
	waitErr := s.spawner.Wait(ctx, h, duration, "Scanning clients")
	if err := s.spawner.Terminate(h); err != nil {
		s.logger.Warn("Failed to stop client scan", "error", err)
	}
	if waitErr != nil {
		return nil, waitErr
	}

	clients := make(map[string]domain.ClientRecord)
	data, err := os.ReadFile(out)
	if err != nil {
		s.logger.Error("Error reading client scan output", "error", err)
		return clients, nil
	}

	clients, stats := ParseStationTable(data, network.BSSID)
	s.logger.Debug("Parsed station table", "rows", stats.Rows, "skipped", stats.Skipped, "foreign", stats.Foreign)
	for mac := range clients {
		s.logger.Info("Found client", "mac", mac, "bssid", network.BSSID)
	}
	if len(clients) == 0 {
		s.logger.Warn("No clients found connected to the network")
	}
	return clients, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
