package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkAttack_Lifecycle(t *testing.T) {
	a := NewNetworkAttack(NetworkRecord{BSSID: "AA:BB:CC:DD:EE:FF", ESSID: "Bebop2-x"})
	assert.Equal(t, AttackIdle, a.State)

	require.NoError(t, a.Advance(AttackScanningClients))
	require.NoError(t, a.Advance(AttackDeauthing))
	require.NoError(t, a.Advance(AttackCompleted))

	assert.True(t, a.IsTerminal())
	assert.NotNil(t, a.EndTime)
	assert.GreaterOrEqual(t, a.Duration().Nanoseconds(), int64(0))
}

func TestNetworkAttack_RejectsSkippedState(t *testing.T) {
	a := NewNetworkAttack(NetworkRecord{})
	err := a.Advance(AttackDeauthing)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, AttackIdle, a.State)
}

func TestNetworkAttack_FailFromAnyState(t *testing.T) {
	a := NewNetworkAttack(NetworkRecord{})
	require.NoError(t, a.Advance(AttackScanningClients))

	a.Fail(errors.New("airodump-ng died"))
	assert.Equal(t, AttackFailed, a.State)
	assert.Equal(t, "airodump-ng died", a.Error)

	// Terminal states stay put.
	a.Fail(errors.New("second"))
	assert.Equal(t, "airodump-ng died", a.Error)
	assert.ErrorIs(t, a.Advance(AttackDeauthing), ErrInvalidTransition)
}

func TestRunSummary_Counts(t *testing.T) {
	done := NewNetworkAttack(NetworkRecord{})
	done.State = AttackCompleted
	failed := NewNetworkAttack(NetworkRecord{})
	failed.State = AttackFailed

	s := RunSummary{Attacks: []*NetworkAttack{done, failed, done}}
	assert.Equal(t, 2, s.Completed())
	assert.Equal(t, 1, s.Failed())
}

func TestParseDeauthPolicy(t *testing.T) {
	p, err := ParseDeauthPolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyBroadcast, p)

	p, err = ParseDeauthPolicy("per-client")
	require.NoError(t, err)
	assert.Equal(t, PolicyPerClient, p)

	_, err = ParseDeauthPolicy("unicast")
	assert.Error(t, err)
}

func TestNewAttackSession_ClampsCap(t *testing.T) {
	assert.Equal(t, MaxAttackNetworks, NewAttackSession(nil, 0).Cap)
	assert.Equal(t, MaxAttackNetworks, NewAttackSession(nil, 50).Cap)
	assert.Equal(t, 3, NewAttackSession(nil, 3).Cap)

	s := NewAttackSession([]string{"Mavic"}, 2)
	assert.True(t, s.IsRunning())
	assert.True(t, s.MarkStopped())
	assert.False(t, s.MarkStopped())
	assert.False(t, s.IsRunning())
}
