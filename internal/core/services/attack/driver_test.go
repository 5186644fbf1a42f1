package attack

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/iyow2233/capstone/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockClientScanner struct {
	mock.Mock
}

func (m *mockClientScanner) Scan(ctx context.Context, iface string, network domain.NetworkRecord, duration time.Duration) (map[string]domain.ClientRecord, error) {
	args := m.Called(ctx, iface, network, duration)
	clients, _ := args.Get(0).(map[string]domain.ClientRecord)
	return clients, args.Error(1)
}

// recordingDeauther records requests; errFor makes chosen BSSIDs fail.
type recordingDeauther struct {
	mu       sync.Mutex
	requests []domain.DeauthRequest
	errFor   map[string]error
	onDeauth func(req domain.DeauthRequest)
}

func (r *recordingDeauther) Deauth(ctx context.Context, req domain.DeauthRequest) error {
	r.mu.Lock()
	r.requests = append(r.requests, req)
	r.mu.Unlock()
	if r.onDeauth != nil {
		r.onDeauth(req)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.errFor[req.BSSID]
}

type memStore struct {
	attacks []*domain.NetworkAttack
}

func (m *memStore) SaveSession(*domain.AttackSession) error { return nil }
func (m *memStore) SaveNetworks(string, []domain.NetworkRecord) error { return nil }
func (m *memStore) Close() error { return nil }
func (m *memStore) SaveAttack(_ string, a *domain.NetworkAttack) error {
	m.attacks = append(m.attacks, a)
	return nil
}

func networks(n int) []domain.NetworkRecord {
	out := make([]domain.NetworkRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.NetworkRecord{
			BSSID:   fmt.Sprintf("90:3A:E6:00:00:%02X", i+1),
			Channel: 6,
			ESSID:   fmt.Sprintf("Bebop2-%d", i+1),
			Power:   -40,
		})
	}
	return out
}

var (
	clientA = domain.ClientRecord{MAC: "3C:A3:08:00:00:0A", Power: -50}
	clientB = domain.ClientRecord{MAC: "3C:A3:08:00:00:0B", Power: -55}
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ClientScanDuration = 15 * time.Second
	cfg.DeauthDuration = 30 * time.Second
	return cfg
}

func TestDriver_RunAppliesSafetyCap(t *testing.T) {
	matched := networks(8)
	scanner := new(mockClientScanner)
	scanner.On("Scan", mock.Anything, "wlan0mon", mock.Anything, 15*time.Second).
		Return(map[string]domain.ClientRecord{}, nil)
	deauther := &recordingDeauther{}
	store := &memStore{}

	d := NewDriver(scanner, deauther, testConfig(), nil)
	d.SetStore(store)
	summary := d.Run(context.Background(), "session-1", "wlan0mon", matched)

	require.Len(t, summary.Attacks, 5)
	for i, a := range summary.Attacks {
		assert.Equal(t, matched[i], a.Network)
		assert.Equal(t, domain.AttackCompleted, a.State)
	}
	assert.Equal(t, matched[5:], summary.Dropped)
	assert.Equal(t, 8, summary.Matched)
	assert.Equal(t, 5, summary.Completed())
	assert.Len(t, deauther.requests, 5)
	assert.Len(t, store.attacks, 5)
	scanner.AssertNumberOfCalls(t, "Scan", 5)
}

func TestDriver_CapClampedToMaximum(t *testing.T) {
	cfg := testConfig()
	cfg.Cap = 50
	assert.Equal(t, domain.MaxAttackNetworks, NewDriver(nil, nil, cfg, nil).Config().Cap)

	cfg.Cap = 2
	assert.Equal(t, 2, NewDriver(nil, nil, cfg, nil).Config().Cap)
}

func TestDriver_ErrorOnOneNetworkContinues(t *testing.T) {
	matched := networks(3)
	scanner := new(mockClientScanner)
	scanner.On("Scan", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(map[string]domain.ClientRecord{}, nil)
	deauther := &recordingDeauther{errFor: map[string]error{
		matched[1].BSSID: errors.New("injection failed"),
	}}

	summary := NewDriver(scanner, deauther, testConfig(), nil).Run(context.Background(), "s", "wlan0mon", matched)

	require.Len(t, summary.Attacks, 3)
	assert.Equal(t, domain.AttackCompleted, summary.Attacks[0].State)
	assert.Equal(t, domain.AttackFailed, summary.Attacks[1].State)
	assert.Contains(t, summary.Attacks[1].Error, "injection failed")
	assert.Equal(t, domain.AttackCompleted, summary.Attacks[2].State)
	assert.Equal(t, 1, summary.Failed())
}

func TestDriver_BroadcastPolicyIgnoresClients(t *testing.T) {
	network := networks(1)[0]
	scanner := new(mockClientScanner)
	scanner.On("Scan", mock.Anything, "wlan0mon", network, 15*time.Second).
		Return(map[string]domain.ClientRecord{clientA.MAC: clientA}, nil)
	deauther := &recordingDeauther{}

	attack := NewDriver(scanner, deauther, testConfig(), nil).Attack(context.Background(), "wlan0mon", network)

	assert.Equal(t, domain.AttackCompleted, attack.State)
	assert.True(t, attack.Broadcast)
	assert.Len(t, attack.Clients, 1)
	require.Len(t, deauther.requests, 1)
	assert.Equal(t, domain.DeauthRequest{
		Interface: "wlan0mon", BSSID: network.BSSID, Duration: 30 * time.Second,
	}, deauther.requests[0])
}

func TestDriver_PerClientPolicy(t *testing.T) {
	network := networks(1)[0]
	scanner := new(mockClientScanner)
	scanner.On("Scan", mock.Anything, "wlan0mon", network, 15*time.Second).
		Return(map[string]domain.ClientRecord{clientB.MAC: clientB, clientA.MAC: clientA}, nil)
	deauther := &recordingDeauther{}

	cfg := testConfig()
	cfg.Policy = domain.PolicyPerClient
	attack := NewDriver(scanner, deauther, cfg, nil).Attack(context.Background(), "wlan0mon", network)

	assert.Equal(t, domain.AttackCompleted, attack.State)
	assert.False(t, attack.Broadcast)
	require.Len(t, deauther.requests, 2)
	assert.Equal(t, clientA.MAC, deauther.requests[0].ClientMAC)
	assert.Equal(t, clientB.MAC, deauther.requests[1].ClientMAC)
	assert.Equal(t, 5*time.Second, deauther.requests[0].Duration)
}

func TestDriver_PerClientBurstUsesDeauthDuration(t *testing.T) {
	network := networks(1)[0]
	scanner := new(mockClientScanner)
	scanner.On("Scan", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(map[string]domain.ClientRecord{clientA.MAC: clientA}, nil)
	deauther := &recordingDeauther{}

	cfg := testConfig()
	cfg.Policy = domain.PolicyPerClient
	cfg.PacketCount = 64
	NewDriver(scanner, deauther, cfg, nil).Attack(context.Background(), "wlan0mon", network)

	require.Len(t, deauther.requests, 1)
	assert.Equal(t, 64, deauther.requests[0].PacketCount)
	assert.Equal(t, 30*time.Second, deauther.requests[0].Duration)
}

func TestDriver_PerClientWithoutClientsBroadcasts(t *testing.T) {
	network := networks(1)[0]
	scanner := new(mockClientScanner)
	scanner.On("Scan", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(map[string]domain.ClientRecord{}, nil)
	deauther := &recordingDeauther{}

	cfg := testConfig()
	cfg.Policy = domain.PolicyPerClient
	attack := NewDriver(scanner, deauther, cfg, nil).Attack(context.Background(), "wlan0mon", network)

	assert.Equal(t, domain.AttackCompleted, attack.State)
	assert.True(t, attack.Broadcast)
	require.Len(t, deauther.requests, 1)
	assert.True(t, deauther.requests[0].IsBroadcast())
}

func TestDriver_ClientScanFailureStillDeauths(t *testing.T) {
	network := networks(1)[0]
	scanner := new(mockClientScanner)
	scanner.On("Scan", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("exec: airodump-ng not found"))
	deauther := &recordingDeauther{}

	attack := NewDriver(scanner, deauther, testConfig(), nil).Attack(context.Background(), "wlan0mon", network)

	assert.Equal(t, domain.AttackCompleted, attack.State)
	assert.Len(t, deauther.requests, 1)
}

func TestDriver_PanicIsRecovered(t *testing.T) {
	network := networks(1)[0]
	scanner := new(mockClientScanner)
	scanner.On("Scan", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(map[string]domain.ClientRecord{}, nil)
	deauther := &recordingDeauther{onDeauth: func(domain.DeauthRequest) { panic("boom") }}

	attack := NewDriver(scanner, deauther, testConfig(), nil).Attack(context.Background(), "wlan0mon", network)

	assert.Equal(t, domain.AttackFailed, attack.State)
	assert.Contains(t, attack.Error, "boom")
}

func TestDriver_StopDuringRun(t *testing.T) {
	matched := networks(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scanner := new(mockClientScanner)
	scanner.On("Scan", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(map[string]domain.ClientRecord{}, nil)
	// The signal arrives while the second network is being deauthed.
	deauther := &recordingDeauther{onDeauth: func(req domain.DeauthRequest) {
		if req.BSSID == matched[1].BSSID {
			cancel()
		}
	}}

	summary := NewDriver(scanner, deauther, testConfig(), nil).Run(ctx, "s", "wlan0mon", matched)

	require.Len(t, summary.Attacks, 2)
	assert.Equal(t, domain.AttackCompleted, summary.Attacks[0].State)
	assert.Equal(t, domain.AttackFailed, summary.Attacks[1].State)
	assert.Len(t, deauther.requests, 2)
}
