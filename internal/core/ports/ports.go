package ports

import (
	"context"
	"time"

	"github.com/iyow2233/capstone/internal/core/domain"
)

// CommandRunner runs short utility commands (iwconfig, airmon-ng, systemctl)
// to completion and returns their combined output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// InterfaceManager establishes and tears down the monitor interface.
type InterfaceManager interface {
	// Setup returns a monitor-mode interface name, honouring an explicit
	// override when given. It never returns an empty name with a nil error.
	Setup(ctx context.Context, override string) (string, error)

	// SetChannel tunes the interface. Callers treat failures as best-effort.
	SetChannel(ctx context.Context, iface string, channel int) error

	// Restore stops monitor mode on iface.
	Restore(ctx context.Context, iface string) error

	// RestoreNetworkServices restarts the connectivity service.
	RestoreNetworkServices(ctx context.Context) error
}

// NetworkScanner produces the networks visible on a monitor interface.
type NetworkScanner interface {
	Scan(ctx context.Context, iface string, duration time.Duration) ([]domain.NetworkRecord, error)
}

// ClientScanner lists clients associated with one network. An empty map is
// a valid result.
type ClientScanner interface {
	Scan(ctx context.Context, iface string, network domain.NetworkRecord, duration time.Duration) (map[string]domain.ClientRecord, error)
}
