package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/iyow2233/capstone/internal/core/domain"
)

// DefaultTargets are the drone access point name prefixes attacked when
// none are given.
var DefaultTargets = []string{"Bebop2", "Mavic", "Phantom3", "Spark"}

// Config holds all application configuration.
type Config struct {
	Targets          []string
	ScanTime         time.Duration
	ClientScanTime   time.Duration
	DeauthTime       time.Duration
	ClientDeauthTime time.Duration
	Packets          int
	Debug            bool
	Interface        string
	Policy           domain.DeauthPolicy
	MaxNetworks      int
	WorkDir          string
	MetricsAddr      string
	ReportPath       string
}

// Load parses command line flags and environment variables to populate Config.
// Flags take precedence over environment variables. Invalid values print
// usage and exit with status 2, like flag.Parse.
func Load() *Config {
	cfg, err := Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
			flag.Usage()
		}
		os.Exit(2)
	}
	return cfg
}

// Parse registers the flags on fs and parses args.
func Parse(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}

	// Defaults and Environment Variables
	targets := getEnv("DRONEDEAUTH_TARGETS", strings.Join(DefaultTargets, ","))
	scan := getEnvInt("DRONEDEAUTH_SCAN_TIME", 10)
	clientScan := getEnvInt("DRONEDEAUTH_CLIENT_SCAN_TIME", 15)
	deauth := getEnvInt("DRONEDEAUTH_DEAUTH_TIME", 30)
	clientDeauth := getEnvInt("DRONEDEAUTH_CLIENT_DEAUTH_TIME", 5)
	cfg.Packets = getEnvInt("DRONEDEAUTH_PACKETS", 0)
	cfg.Debug = getEnvBool("DRONEDEAUTH_DEBUG", false)
	cfg.Interface = getEnv("DRONEDEAUTH_INTERFACE", "")
	policy := getEnv("DRONEDEAUTH_POLICY", string(domain.PolicyBroadcast))
	cfg.MaxNetworks = getEnvInt("DRONEDEAUTH_MAX_NETWORKS", domain.MaxAttackNetworks)
	cfg.WorkDir = getEnv("DRONEDEAUTH_WORKDIR", "/tmp/wifi_deauth_tool")
	cfg.MetricsAddr = getEnv("DRONEDEAUTH_METRICS_ADDR", "")
	cfg.ReportPath = getEnv("DRONEDEAUTH_REPORT", "")

	// Command Line Flags (Override Env)
	stringVar(fs, &targets, targets, "Target network name prefixes, comma separated (e.g. 'Bebop2' matches 'Bebop2-12345')", "t", "targets")
	intVar(fs, &scan, scan, "Time to scan for networks in seconds", "s", "scan-time")
	intVar(fs, &clientScan, clientScan, "Time to scan for clients in seconds", "c", "client-scan-time")
	intVar(fs, &deauth, deauth, "Duration of deauth attack in seconds", "d", "deauth-time")
	intVar(fs, &cfg.Packets, cfg.Packets, "Number of deauth packets to send (0 for continuous)", "p", "packets")
	stringVar(fs, &cfg.Interface, cfg.Interface, "Specific wireless interface to use", "i", "interface")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable debug mode with verbose output")
	fs.StringVar(&policy, "policy", policy, "Deauth policy: broadcast or per-client")
	fs.IntVar(&clientDeauth, "client-deauth-time", clientDeauth, "Seconds per client for continuous per-client deauth")
	fs.IntVar(&cfg.MaxNetworks, "max-networks", cfg.MaxNetworks, fmt.Sprintf("Maximum networks to attack (at most %d)", domain.MaxAttackNetworks))
	fs.StringVar(&cfg.WorkDir, "workdir", cfg.WorkDir, "Directory for scan artifacts, logs and session history")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Address to serve Prometheus metrics on (empty to disable)")
	fs.StringVar(&cfg.ReportPath, "report", cfg.ReportPath, "Path to write a PDF run report (empty to disable)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.Targets = parseList(targets)
	cfg.ScanTime = seconds(scan)
	cfg.ClientScanTime = seconds(clientScan)
	cfg.DeauthTime = seconds(deauth)
	cfg.ClientDeauthTime = seconds(clientDeauth)

	p, err := domain.ParseDeauthPolicy(policy)
	if err != nil {
		return nil, err
	}
	cfg.Policy = p

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the attack sequence cannot run with. MaxNetworks
// above the hard cap is clamped rather than rejected.
func (c *Config) Validate() error {
	switch {
	case c.ScanTime <= 0:
		return fmt.Errorf("scan time must be positive")
	case c.ClientScanTime <= 0:
		return fmt.Errorf("client scan time must be positive")
	case c.DeauthTime <= 0:
		return fmt.Errorf("deauth time must be positive")
	case c.ClientDeauthTime <= 0:
		return fmt.Errorf("client deauth time must be positive")
	case c.Packets < 0:
		return fmt.Errorf("packet count must not be negative")
	case c.Interface != "" && !domain.IsValidInterface(c.Interface):
		return fmt.Errorf("invalid interface name %q", c.Interface)
	case c.WorkDir == "":
		return fmt.Errorf("workdir must not be empty")
	}
	if c.MaxNetworks <= 0 || c.MaxNetworks > domain.MaxAttackNetworks {
		c.MaxNetworks = domain.MaxAttackNetworks
	}
	return nil
}

func stringVar(fs *flag.FlagSet, p *string, value, usage string, names ...string) {
	for _, name := range names {
		fs.StringVar(p, name, value, usage)
	}
}

func intVar(fs *flag.FlagSet, p *int, value int, usage string, names ...string) {
	for _, name := range names {
		fs.IntVar(p, name, value, usage)
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func parseList(s string) []string {
	var items []string
	if s == "" {
		return items
	}
	parts := strings.Split(s, ",")
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
