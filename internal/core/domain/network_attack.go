package domain

import (
	"fmt"
	"time"
)

// AttackState is the lifecycle state of an attack against one network.
type AttackState string

const (
	AttackIdle            AttackState = "idle"
	AttackScanningClients AttackState = "scanning_clients"
	AttackDeauthing       AttackState = "deauthing"
	AttackCompleted       AttackState = "completed"
	AttackFailed          AttackState = "failed"
)

var attackTransitions = map[AttackState]AttackState{
	AttackIdle:            AttackScanningClients,
	AttackScanningClients: AttackDeauthing,
	AttackDeauthing:       AttackCompleted,
}

// NetworkAttack tracks one network through the attack sequence.
type NetworkAttack struct {
	Network   NetworkRecord           `json:"network"`
	State     AttackState             `json:"state"`
	Clients   map[string]ClientRecord `json:"clients,omitempty"`
	Broadcast bool                    `json:"broadcast"`
	Error     string                  `json:"error,omitempty"`
	StartTime time.Time               `json:"start_time"`
	EndTime   *time.Time              `json:"end_time,omitempty"`
}

// NewNetworkAttack returns an attack in the Idle state.
func NewNetworkAttack(network NetworkRecord) *NetworkAttack {
	return &NetworkAttack{Network: network, State: AttackIdle}
}

// Advance moves the attack to the next state. Only the forward chain
// Idle → ScanningClients → Deauthing → Completed is allowed.
func (a *NetworkAttack) Advance(to AttackState) error {
	if next, ok := attackTransitions[a.State]; !ok || next != to {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.State, to)
	}
	if a.State == AttackIdle {
		a.StartTime = time.Now()
	}
	a.State = to
	if to == AttackCompleted {
		now := time.Now()
		a.EndTime = &now
	}
	return nil
}

// Fail terminates the attack from any non-terminal state.
func (a *NetworkAttack) Fail(err error) {
	if a.IsTerminal() {
		return
	}
	now := time.Now()
	if a.StartTime.IsZero() {
		a.StartTime = now
	}
	a.State = AttackFailed
	if err != nil {
		a.Error = err.Error()
	}
	a.EndTime = &now
}

// IsTerminal reports whether the attack has completed or failed.
func (a *NetworkAttack) IsTerminal() bool {
	return a.State == AttackCompleted || a.State == AttackFailed
}

// Duration is the wall-clock time spent on the network.
func (a *NetworkAttack) Duration() time.Duration {
	if a.StartTime.IsZero() {
		return 0
	}
	if a.EndTime != nil {
		return a.EndTime.Sub(a.StartTime)
	}
	return time.Since(a.StartTime)
}

// RunSummary is the outcome of one invocation of the attack driver.
type RunSummary struct {
	SessionID  string           `json:"session_id"`
	Discovered int              `json:"discovered"`
	Matched    int              `json:"matched"`
	Dropped    []NetworkRecord  `json:"dropped,omitempty"`
	Attacks    []*NetworkAttack `json:"attacks"`
	StartTime  time.Time        `json:"start_time"`
	EndTime    time.Time        `json:"end_time"`
}

// Completed counts attacks that reached the Completed state.
func (s *RunSummary) Completed() int {
	return s.count(AttackCompleted)
}

// Failed counts attacks that ended in the Failed state.
func (s *RunSummary) Failed() int {
	return s.count(AttackFailed)
}

func (s *RunSummary) count(state AttackState) int {
	n := 0
	for _, a := range s.Attacks {
		if a.State == state {
			n++
		}
	}
	return n
}
