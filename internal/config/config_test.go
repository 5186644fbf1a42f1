package config

import (
	"flag"
	"io"
	"testing"
	"time"

	"github.com/iyow2233/capstone/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	fs := flag.NewFlagSet("dronedeauth", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return Parse(fs, args)
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := parse(t)
	require.NoError(t, err)

	assert.Equal(t, DefaultTargets, cfg.Targets)
	assert.Equal(t, 10*time.Second, cfg.ScanTime)
	assert.Equal(t, 15*time.Second, cfg.ClientScanTime)
	assert.Equal(t, 30*time.Second, cfg.DeauthTime)
	assert.Equal(t, 5*time.Second, cfg.ClientDeauthTime)
	assert.Zero(t, cfg.Packets)
	assert.False(t, cfg.Debug)
	assert.Empty(t, cfg.Interface)
	assert.Equal(t, domain.PolicyBroadcast, cfg.Policy)
	assert.Equal(t, domain.MaxAttackNetworks, cfg.MaxNetworks)
	assert.Equal(t, "/tmp/wifi_deauth_tool", cfg.WorkDir)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Empty(t, cfg.ReportPath)
}

func TestParse_ShortAndLongFlags(t *testing.T) {
	cfg, err := parse(t,
		"-t", "Mavic, Spark ,,",
		"-s", "20",
		"-client-scan-time", "8",
		"-d", "60",
		"-p", "100",
		"-i", "wlan1",
		"-debug",
		"-policy", "per-client",
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"Mavic", "Spark"}, cfg.Targets)
	assert.Equal(t, 20*time.Second, cfg.ScanTime)
	assert.Equal(t, 8*time.Second, cfg.ClientScanTime)
	assert.Equal(t, time.Minute, cfg.DeauthTime)
	assert.Equal(t, 100, cfg.Packets)
	assert.Equal(t, "wlan1", cfg.Interface)
	assert.True(t, cfg.Debug)
	assert.Equal(t, domain.PolicyPerClient, cfg.Policy)
}

func TestParse_EnvironmentFallback(t *testing.T) {
	t.Setenv("DRONEDEAUTH_TARGETS", "Anafi")
	t.Setenv("DRONEDEAUTH_SCAN_TIME", "25")
	t.Setenv("DRONEDEAUTH_PACKETS", "not-a-number")
	t.Setenv("DRONEDEAUTH_DEBUG", "true")

	cfg, err := parse(t)
	require.NoError(t, err)
	assert.Equal(t, []string{"Anafi"}, cfg.Targets)
	assert.Equal(t, 25*time.Second, cfg.ScanTime)
	assert.Zero(t, cfg.Packets)
	assert.True(t, cfg.Debug)

	// Flags override env.
	cfg, err = parse(t, "-scan-time", "5")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.ScanTime)
}

func TestParse_MaxNetworksClamped(t *testing.T) {
	cfg, err := parse(t, "-max-networks", "50")
	require.NoError(t, err)
	assert.Equal(t, domain.MaxAttackNetworks, cfg.MaxNetworks)

	cfg, err = parse(t, "-max-networks", "2")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.MaxNetworks)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero scan time", []string{"-s", "0"}},
		{"negative packets", []string{"-p", "-1"}},
		{"unknown policy", []string{"-policy", "everyone"}},
		{"bad interface", []string{"-i", "wlan0;reboot"}},
		{"unknown flag", []string{"-x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.args...)
			assert.Error(t, err)
		})
	}
}
