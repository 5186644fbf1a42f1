package network

import (
	"testing"

	"github.com/iyow2233/capstone/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func rec(bssid, essid string) domain.NetworkRecord {
	return domain.NetworkRecord{BSSID: bssid, Channel: 6, ESSID: essid, Power: -50}
}

var scanned = []domain.NetworkRecord{
	rec("90:3A:E6:00:00:01", "Bebop2-123456"),
	rec("C4:6E:1F:00:00:02", "HomeRouter"),
	rec("60:60:1F:00:00:03", "MAVIC-AIR-2"),
	rec("90:3A:E6:00:00:04", "bebop2_guest"),
	rec("60:60:1F:00:00:05", "Spark-77"),
}

func TestFilterByPrefix(t *testing.T) {
	tests := []struct {
		name     string
		prefixes []string
		want     []domain.NetworkRecord
	}{
		{
			name:     "case insensitive in discovery order",
			prefixes: []string{"mavic", "BEBOP2"},
			want:     []domain.NetworkRecord{scanned[0], scanned[2], scanned[3]},
		},
		{
			name:     "overlapping prefixes yield one match",
			prefixes: []string{"Bebop", "Bebop2"},
			want:     []domain.NetworkRecord{scanned[0], scanned[3]},
		},
		{
			name:     "no match",
			prefixes: []string{"Phantom3"},
			want:     []domain.NetworkRecord{},
		},
		{
			name:     "prefix longer than name",
			prefixes: []string{"Spark-77-extended"},
			want:     []domain.NetworkRecord{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterByPrefix(scanned, tt.prefixes))
		})
	}
}

func TestFilterByPrefix_EmptyPrefixesIsIdentity(t *testing.T) {
	assert.Equal(t, scanned, FilterByPrefix(scanned, nil))
	assert.Equal(t, scanned, FilterByPrefix(scanned, []string{}))
}

func TestFilterByPrefix_EmptyInput(t *testing.T) {
	got := FilterByPrefix([]domain.NetworkRecord{}, []string{"Bebop2"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterByPrefix_Idempotent(t *testing.T) {
	prefixes := []string{"Bebop2", "Mavic", "Phantom3", "Spark"}
	once := FilterByPrefix(scanned, prefixes)
	assert.Equal(t, once, FilterByPrefix(once, prefixes))
}

func TestMatchPrefix_FirstWins(t *testing.T) {
	p, ok := MatchPrefix("Bebop2-123", []string{"bebop", "bebop2"})
	assert.True(t, ok)
	assert.Equal(t, "bebop", p)
}
