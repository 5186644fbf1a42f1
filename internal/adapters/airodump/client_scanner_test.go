package airodump

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iyow2233/capstone/internal/adapters/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTuner struct {
	iface   string
	channel int
	err     error
}

func (r *recordingTuner) SetChannel(_ context.Context, iface string, channel int) error {
	r.iface, r.channel = iface, channel
	return r.err
}

func TestClientScanner_Scan(t *testing.T) {
	sp := &fakeSpawner{onSpawn: func(spec process.Spec) error {
		copyFixture(t, "screen.txt", spec.OutputPath)
		return nil
	}}
	tuner := &recordingTuner{}

	s := NewClientScanner(sp, tuner, t.TempDir(), discard)
	s.SetSettle(0)

	clients, err := s.Scan(context.Background(), "wlan0mon", bebop, 15*time.Second)
	require.NoError(t, err)

	assert.Len(t, clients, 2)
	assert.Equal(t, 6, tuner.channel)
	assert.Equal(t, []string{"--bssid", bebop.BSSID, "--channel", "6", "wlan0mon"}, sp.specs[0].Args)
	assert.Equal(t, []time.Duration{15 * time.Second}, sp.waits)
	assert.Equal(t, 1, sp.terminated)
}

func TestClientScanner_ChannelFailureStillScans(t *testing.T) {
	sp := &fakeSpawner{}
	s := NewClientScanner(sp, &recordingTuner{err: errors.New("device busy")}, t.TempDir(), discard)
	s.SetSettle(0)

	clients, err := s.Scan(context.Background(), "wlan0mon", bebop, time.Second)
	require.NoError(t, err)
	assert.Empty(t, clients)
	assert.Len(t, sp.specs, 1)
}

func TestClientScanner_NoChannel(t *testing.T) {
	sp := &fakeSpawner{}
	tuner := &recordingTuner{}
	s := NewClientScanner(sp, tuner, t.TempDir(), discard)

	network := bebop
	network.Channel = -1
	_, err := s.Scan(context.Background(), "wlan0mon", network, time.Second)
	require.NoError(t, err)

	assert.Zero(t, tuner.channel)
	assert.Equal(t, []string{"--bssid", bebop.BSSID, "wlan0mon"}, sp.specs[0].Args)
}

func TestClientScanner_SpawnError(t *testing.T) {
	sp := &fakeSpawner{onSpawn: func(process.Spec) error { return errors.New("exec: airodump-ng not found") }}
	s := NewClientScanner(sp, nil, t.TempDir(), discard)

	clients, err := s.Scan(context.Background(), "wlan0mon", bebop, time.Second)
	assert.Error(t, err)
	assert.Nil(t, clients)
}
