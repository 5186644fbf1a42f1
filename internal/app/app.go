package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/iyow2233/capstone/internal/adapters/airodump"
	"github.com/iyow2233/capstone/internal/adapters/attack/deauth"
	"github.com/iyow2233/capstone/internal/adapters/process"
	"github.com/iyow2233/capstone/internal/adapters/reporting"
	"github.com/iyow2233/capstone/internal/adapters/sniffer/driver"
	"github.com/iyow2233/capstone/internal/adapters/storage"
	"github.com/iyow2233/capstone/internal/config"
	"github.com/iyow2233/capstone/internal/core/domain"
	"github.com/iyow2233/capstone/internal/core/ports"
	"github.com/iyow2233/capstone/internal/core/services/attack"
	"github.com/iyow2233/capstone/internal/core/services/network"
	"github.com/iyow2233/capstone/internal/logging"
	"github.com/iyow2233/capstone/internal/telemetry"
	"github.com/iyow2233/capstone/internal/ui"
)

// cleanupTimeout bounds interface and service restoration.
const cleanupTimeout = 30 * time.Second

type processTerminator interface {
	TerminateAll()
}

type networkDiscoverer interface {
	Discover(ctx context.Context, iface string, duration time.Duration, prefixes []string) (network.Result, error)
}

type attackRunner interface {
	Run(ctx context.Context, sessionID, iface string, matched []domain.NetworkRecord) *domain.RunSummary
}

type summaryExporter interface {
	ExportRunSummary(summary *domain.RunSummary) ([]byte, error)
}

// Application holds the components of one run and guarantees cleanup.
type Application struct {
	Config *config.Config
	Logger *slog.Logger

	session    *Session
	processes  processTerminator
	interfaces ports.InterfaceManager
	discovery  networkDiscoverer
	driver     attackRunner
	store      ports.SessionStore
	exporter   summaryExporter
	out        io.Writer

	sessionLog     *logging.SessionLog
	traceFile      *os.File
	shutdownTracer func(context.Context) error

	summary     *domain.RunSummary
	cleanupOnce sync.Once
}

// New creates a new Application instance and bootstraps its components.
// The session stops when parent is cancelled.
func New(parent context.Context, cfg *config.Config) (*Application, error) {
	app := &Application{Config: cfg, out: os.Stdout}

	if err := app.bootstrap(parent); err != nil {
		app.Cleanup()
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}
	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap(parent context.Context) error {
	cfg := app.Config

	// 1. Foundation
	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		return fmt.Errorf("create working directory: %w", err)
	}
	sessionLog, err := logging.Open(cfg.WorkDir, os.Stdout, cfg.Debug)
	if err != nil {
		return err
	}
	app.sessionLog = sessionLog
	app.Logger = sessionLog.Logger
	slog.SetDefault(app.Logger)

	telemetry.InitMetrics()
	app.initTracing()
	app.initStorage()

	attackSession := domain.NewAttackSession(cfg.Targets, cfg.MaxNetworks)
	attackSession.ScanDuration = cfg.ScanTime
	attackSession.ClientScanDuration = cfg.ClientScanTime
	attackSession.DeauthDuration = cfg.DeauthTime
	attackSession.ClientDeauthTime = cfg.ClientDeauthTime
	attackSession.PacketCount = cfg.Packets
	attackSession.Policy = cfg.Policy
	app.session = NewSession(parent, attackSession)

	// 2. Process supervision and the interface driver
	supervisor := process.NewSupervisor(cfg.WorkDir, ui.NewProgress(os.Stdout), app.Logger)
	manager := driver.NewManager(supervisor, app.Logger)
	app.processes = supervisor
	app.interfaces = manager

	// 3. Scanners and attack engine
	opts := airodump.ParseOptions{Verbose: cfg.Debug}
	chain := airodump.NewFallbackChain(app.Logger,
		airodump.NewStructuredStrategy(supervisor, cfg.WorkDir, opts, app.Logger),
		airodump.NewDirectStrategy(supervisor, cfg.WorkDir, airodump.DefaultDirectDuration, opts, app.Logger),
	)
	app.discovery = network.NewDiscovery(chain, cfg.Debug, app.Logger)

	clients := airodump.NewClientScanner(supervisor, manager, cfg.WorkDir, app.Logger)
	engine := deauth.NewEngine(supervisor, app.Logger)
	drv := attack.NewDriver(clients, engine, attack.Config{
		Cap:                cfg.MaxNetworks,
		ClientScanDuration: cfg.ClientScanTime,
		DeauthDuration:     cfg.DeauthTime,
		ClientDeauthTime:   cfg.ClientDeauthTime,
		PacketCount:        cfg.Packets,
		Policy:             cfg.Policy,
	}, app.Logger)
	if app.store != nil {
		drv.SetStore(app.store)
	}
	app.driver = drv

	if cfg.ReportPath != "" {
		app.exporter = reporting.NewPDFExporter()
	}

	// 4. Metrics endpoint
	if cfg.MetricsAddr != "" {
		go telemetry.ServeMetrics(app.session.Context(), cfg.MetricsAddr)
	}
	return nil
}

func (app *Application) initTracing() {
	f, err := os.Create(filepath.Join(app.Config.WorkDir, "traces.json"))
	if err != nil {
		app.Logger.Warn("Tracing disabled", "error", err)
		return
	}
	shutdown, err := telemetry.InitTracer(f)
	if err != nil {
		f.Close()
		app.Logger.Warn("Failed to init tracer", "error", err)
		return
	}
	app.traceFile = f
	app.shutdownTracer = shutdown
}

func (app *Application) initStorage() {
	store, err := storage.NewSQLiteAdapter(filepath.Join(app.Config.WorkDir, "sessions.db"))
	if err != nil {
		app.Logger.Warn("Session history disabled", "error", err)
		return
	}
	app.store = store
}

// Session returns the run state.
func (app *Application) Session() *Session {
	return app.session
}

// Summary returns the result of the last Run, or nil.
func (app *Application) Summary() *domain.RunSummary {
	return app.summary
}

// Run executes the full sequence: interface setup, discovery, and the
// attack loop. A stop request ends it early with a nil error; only fatal
// setup failures are returned.
func (app *Application) Run() error {
	ctx := app.session.Context()
	cfg := app.Config

	app.Logger.Info("Starting drone WiFi deauthentication tool", "session", app.session.ID)
	app.Logger.Warn("This tool should only be used on networks you own or have permission to test")
	app.Logger.Info("Target network prefixes: " + strings.Join(cfg.Targets, ", "))
	app.saveSession()

	if cfg.Interface != "" {
		app.Logger.Info("Using specified interface", "interface", cfg.Interface)
	}
	iface, err := app.interfaces.Setup(ctx, cfg.Interface)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		app.Logger.Error("Failed to set up monitor interface", "error", err)
		if !errors.Is(err, domain.ErrInterfaceSetup) {
			err = fmt.Errorf("%w: %v", domain.ErrInterfaceSetup, err)
		}
		return err
	}
	app.session.SetInterface(iface)
	app.saveSession()

	res, err := app.discovery.Discover(ctx, iface, cfg.ScanTime, cfg.Targets)
	if err != nil {
		if ctx.Err() == nil {
			app.Logger.Error("Network discovery failed", "error", err)
		}
		return nil
	}
	if app.store != nil {
		if err := app.store.SaveNetworks(app.session.ID, res.All); err != nil {
			app.Logger.Warn("Failed to save scan results", "error", err)
		}
	}
	if len(res.Matched) == 0 {
		app.Logger.Error("No target networks found. Make sure networks with prefixes " + strings.Join(cfg.Targets, ", ") + " are active")
		if !cfg.Debug {
			app.Logger.Warn("Try running with -debug for more detailed information")
		}
		return nil
	}
	ui.PrintNetworks(app.out, res.Matched)

	summary := app.driver.Run(ctx, app.session.ID, iface, res.Matched)
	summary.Discovered = len(res.All)
	app.summary = summary

	app.report(summary)
	return nil
}

func (app *Application) report(summary *domain.RunSummary) {
	if len(summary.Attacks) > 0 {
		ui.PrintSummary(app.out, summary)
	}
	app.Logger.Info("Run summary",
		"discovered", summary.Discovered,
		"matched", summary.Matched,
		"attacked", len(summary.Attacks),
		"completed", summary.Completed(),
		"failed", summary.Failed(),
		"dropped", len(summary.Dropped),
	)

	if app.exporter == nil {
		return
	}
	data, err := app.exporter.ExportRunSummary(summary)
	if err != nil {
		app.Logger.Error("Failed to generate report", "error", err)
		return
	}
	if err := os.WriteFile(app.Config.ReportPath, data, 0o644); err != nil {
		app.Logger.Error("Failed to write report", "path", app.Config.ReportPath, "error", err)
		return
	}
	logging.Success(app.Logger, "Report written", "path", app.Config.ReportPath)
}

func (app *Application) saveSession() {
	if app.store == nil || app.session == nil {
		return
	}
	if err := app.store.SaveSession(app.session.AttackSession); err != nil {
		app.Logger.Warn("Failed to save session", "error", err)
	}
}

// Cleanup stops the session, terminates every external process and puts
// the wireless stack back. It runs once; later calls return immediately.
// Safe from any state, including a partially bootstrapped Application.
func (app *Application) Cleanup() {
	app.cleanupOnce.Do(app.cleanup)
}

func (app *Application) cleanup() {
	logger := app.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if app.session != nil {
		app.session.Stop()
	}
	logger.Warn("Cleaning up...")

	if app.processes != nil {
		app.processes.TerminateAll()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	if app.interfaces != nil {
		if app.session != nil {
			if iface := app.session.MonitorInterface(); iface != "" {
				logger.Warn("Stopping monitor mode", "interface", iface)
				if err := app.interfaces.Restore(ctx, iface); err != nil {
					logger.Error("Failed to stop monitor mode", "interface", iface, "error", err)
				}
			}
		}
		logger.Warn("Restarting network services...")
		if err := app.interfaces.RestoreNetworkServices(ctx); err != nil {
			logger.Error("Could not restart network services. You may need to restart them manually", "error", err)
		}
	}

	if app.store != nil {
		app.saveSession()
		if err := app.store.Close(); err != nil {
			logger.Warn("Failed to close session store", "error", err)
		}
	}

	if app.shutdownTracer != nil {
		if err := app.shutdownTracer(ctx); err != nil {
			logger.Error("Failed to shutdown tracer", "error", err)
		}
	}
	if app.traceFile != nil {
		app.traceFile.Close()
	}

	logging.Success(logger, "Done. Exiting.")
	if app.sessionLog != nil {
		app.sessionLog.Close()
	}
}
