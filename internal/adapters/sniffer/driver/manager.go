package driver

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/iyow2233/capstone/internal/core/domain"
	"github.com/iyow2233/capstone/internal/core/ports"
	"github.com/iyow2233/capstone/internal/logging"
)

// InterfaceState tracks monitor interface setup.
type InterfaceState string

const (
	StateUnknown            InterfaceState = "unknown"
	StateAlreadyMonitor     InterfaceState = "already_monitor"
	StateWirelessNonMonitor InterfaceState = "wireless_non_monitor"
	StateMonitorEnabled     InterfaceState = "monitor_enabled"
	StateFailed             InterfaceState = "failed"
)

// Manager discovers or creates a monitor-mode interface with the
// aircrack-ng toolchain and restores the system afterwards.
type Manager struct {
	runner        ports.CommandRunner
	logger        *slog.Logger
	resolveTimeout  time.Duration
	resolveInterval time.Duration
	state         InterfaceState
}

var _ ports.InterfaceManager = (*Manager)(nil)

// NewManager creates a Manager issuing commands through runner.
func NewManager(runner ports.CommandRunner, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		runner:        runner,
		logger:        logger,
		resolveTimeout:  5 * time.Second,
		resolveInterval: 500 * time.Millisecond,
		state:         StateUnknown,
	}
}

// SetResolveTiming bounds the interface-name resolution retry loop.
func (m *Manager) SetResolveTiming(timeout, interval time.Duration) {
	m.resolveTimeout = timeout
	m.resolveInterval = interval
}

// State returns the last reached setup state.
func (m *Manager) State() InterfaceState {
	return m.state
}

// Setup returns a monitor-mode interface. With an override, that interface
// is used directly when already in monitor mode and converted otherwise.
func (m *Manager) Setup(ctx context.Context, override string) (string, error) {
	m.state = StateUnknown

	if override != "" {
		if !domain.IsValidInterface(override) {
			m.state = StateFailed
			return "", fmt.Errorf("%w: invalid interface name %q", domain.ErrInterfaceSetup, override)
		}
		out, err := m.runner.Run(ctx, "iwconfig", override)
		if err != nil {
			m.state = StateFailed
			return "", fmt.Errorf("%w: %s: %v", domain.ErrInterfaceSetup, override, err)
		}
		if FirstMonitor(ParseIWConfig(out)) != "" {
			m.state = StateAlreadyMonitor
			m.logger.Info("Specified interface already in monitor mode", "interface", override)
			return override, nil
		}
		m.logger.Warn("Specified interface is not in monitor mode, enabling it", "interface", override)
		return m.enable(ctx, override)
	}

	entries := m.query(ctx)
	if mon := FirstMonitor(entries); mon != "" {
		m.state = StateAlreadyMonitor
		logging.Success(m.logger, "Found existing monitor interface", "interface", mon)
		return mon, nil
	}

	wireless := WirelessInterfaces(entries)
	if len(wireless) == 0 {
		m.state = StateFailed
		return "", fmt.Errorf("%w: no wireless interfaces found", domain.ErrInterfaceSetup)
	}
	for _, w := range wireless {
		m.logger.Debug("Found wireless interface", "interface", w)
	}

	m.logger.Info("Using wireless interface", "interface", wireless[0])
	return m.enable(ctx, wireless[0])
}

func (m *Manager) enable(ctx context.Context, iface string) (string, error) {
	m.state = StateWirelessNonMonitor

	m.logger.Info("Killing processes that could interfere with monitor mode")
	if err := m.KillConflictingProcesses(ctx); err != nil {
		m.logger.Warn("airmon-ng check kill failed", "error", err)
	}

	m.logger.Info("Enabling monitor mode", "interface", iface)
	out, err := m.runner.Run(ctx, "airmon-ng", "start", iface)
	if err != nil {
		// airmon-ng exits non-zero on some drivers even when the vif exists
		m.logger.Warn("airmon-ng start reported an error", "interface", iface, "error", err)
	}
	m.logger.Debug("airmon-ng output", "output", out)

	candidates := MonitorCandidates(iface)
	if reported := ParseAirmonStart(out); reported != "" {
		candidates = append([]string{reported}, candidates...)
	}

	name, err := m.resolve(ctx, candidates)
	if err != nil {
		m.state = StateFailed
		return "", fmt.Errorf("%w: %v", domain.ErrInterfaceSetup, err)
	}
	if name == "" {
		m.logger.Warn("Could not determine monitor interface name, using original interface", "interface", iface)
		name = iface
	}

	m.state = StateMonitorEnabled
	logging.Success(m.logger, "Monitor mode enabled", "interface", name)
	return name, nil
}

// resolve checks candidates, then any interface in monitor mode, until the
// resolve timeout. It returns "" when nothing resolved in time.
func (m *Manager) resolve(ctx context.Context, candidates []string) (string, error) {
	deadline := time.Now().Add(m.resolveTimeout)
	for {
		for _, name := range candidates {
			if m.isMonitor(ctx, name) {
				return name, nil
			}
		}
		if mon := FirstMonitor(m.query(ctx)); mon != "" {
			return mon, nil
		}
		if !time.Now().Before(deadline) {
			return "", nil
		}

		timer := time.NewTimer(m.resolveInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
}

func (m *Manager) isMonitor(ctx context.Context, name string) bool {
	out, err := m.runner.Run(ctx, "iwconfig", name)
	if err != nil {
		return false
	}
	for _, e := range ParseIWConfig(out) {
		if e.Name == name && e.Monitor {
			return true
		}
	}
	return false
}

func (m *Manager) query(ctx context.Context) []IWConfigEntry {
	out, err := m.runner.Run(ctx, "iwconfig")
	if err != nil {
		m.logger.Debug("iwconfig failed", "error", err)
	}
	// iwconfig exits non-zero when some interfaces lack wireless extensions;
	// the output is still usable.
	return ParseIWConfig(out)
}

// SetChannel sets the WiFi channel for a given interface.
func (m *Manager) SetChannel(ctx context.Context, iface string, channel int) error {
	if channel <= 0 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidChannel, channel)
	}
	ch := strconv.Itoa(channel)
	if _, err := m.runner.Run(ctx, "iw", "dev", iface, "set", "channel", ch); err == nil {
		return nil
	}
	if out, err := m.runner.Run(ctx, "iwconfig", iface, "channel", ch); err != nil {
		return fmt.Errorf("failed to set channel %d on %s: %v (%s)", channel, iface, err, out)
	}
	return nil
}

// KillConflictingProcesses stops NetworkManager and wpa_supplicant to prevent interference.
func (m *Manager) KillConflictingProcesses(ctx context.Context) error {
	_, err := m.runner.Run(ctx, "airmon-ng", "check", "kill")
	return err
}

// Restore stops monitor mode on iface.
func (m *Manager) Restore(ctx context.Context, iface string) error {
	if iface == "" {
		return nil
	}
	m.logger.Info("Stopping monitor mode", "interface", iface)
	_, err := m.runner.Run(ctx, "airmon-ng", "stop", iface)
	return err
}

// RestoreNetworkServices restarts NetworkManager, trying systemd first and
// the SysV service names after.
func (m *Manager) RestoreNetworkServices(ctx context.Context) error {
	commands := [][]string{
		{"systemctl", "restart", "NetworkManager"},
		{"service", "NetworkManager", "restart"},
		{"service", "network-manager", "restart"},
	}

	var lastErr error
	for _, cmdParts := range commands {
		_, err := m.runner.Run(ctx, cmdParts[0], cmdParts[1:]...)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("could not restart network services: %w", lastErr)
}
