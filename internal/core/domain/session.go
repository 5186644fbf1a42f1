package domain

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// MaxAttackNetworks is the hard safety cap on networks attacked per run.
const MaxAttackNetworks = 5

// DeauthPolicy selects how the attack driver addresses a network's clients.
type DeauthPolicy string

const (
	// PolicyBroadcast always deauthenticates the broadcast address of the
	// access point, ignoring discovered clients.
	PolicyBroadcast DeauthPolicy = "broadcast"
	// PolicyPerClient deauthenticates each discovered client in turn and
	// falls back to broadcast when none were found.
	PolicyPerClient DeauthPolicy = "per-client"
)

// ParseDeauthPolicy maps a CLI value onto a DeauthPolicy.
func ParseDeauthPolicy(s string) (DeauthPolicy, error) {
	switch DeauthPolicy(s) {
	case PolicyBroadcast, PolicyPerClient:
		return DeauthPolicy(s), nil
	case "":
		return PolicyBroadcast, nil
	}
	return "", fmt.Errorf("unknown deauth policy %q (want %q or %q)", s, PolicyBroadcast, PolicyPerClient)
}

// DeauthRequest describes one aireplay-ng run.
type DeauthRequest struct {
	Interface   string
	BSSID       string
	ClientMAC   string // empty for broadcast
	PacketCount int    // 0 is continuous
	Duration    time.Duration
}

// IsBroadcast reports whether the request targets every client of the AP.
func (r DeauthRequest) IsBroadcast() bool {
	return r.ClientMAC == ""
}

// AttackSession holds the parameters and running state of one invocation.
type AttackSession struct {
	ID                 string
	Interface          string
	Targets            []string
	Cap                int
	ScanDuration       time.Duration
	ClientScanDuration time.Duration
	DeauthDuration     time.Duration
	ClientDeauthTime   time.Duration
	PacketCount        int
	Policy             DeauthPolicy
	StartedAt          time.Time

	running atomic.Bool
}

// NewAttackSession creates a session in the running state. A cap outside
// 1..MaxAttackNetworks is clamped to MaxAttackNetworks.
func NewAttackSession(targets []string, limit int) *AttackSession {
	if limit <= 0 || limit > MaxAttackNetworks {
		limit = MaxAttackNetworks
	}
	s := &AttackSession{
		ID:        uuid.New().String(),
		Targets:   targets,
		Cap:       limit,
		Policy:    PolicyBroadcast,
		StartedAt: time.Now(),
	}
	s.running.Store(true)
	return s
}

// IsRunning reports whether the session has not been stopped.
func (s *AttackSession) IsRunning() bool {
	return s.running.Load()
}

// MarkStopped flips the running state. It returns true on the first call.
func (s *AttackSession) MarkStopped() bool {
	return s.running.CompareAndSwap(true, false)
}
