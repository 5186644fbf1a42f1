package network

import (
	"strings"

	"github.com/iyow2233/capstone/internal/core/domain"
)

// FilterByPrefix returns the networks whose ESSID starts with one of
// prefixes, compared case-insensitively. Discovery order is preserved and
// each network appears at most once. An empty prefix list matches every
// network.
func FilterByPrefix(networks []domain.NetworkRecord, prefixes []string) []domain.NetworkRecord {
	if len(prefixes) == 0 {
		return networks
	}

	lowered := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		lowered = append(lowered, strings.ToLower(p))
	}

	matches := make([]domain.NetworkRecord, 0, len(networks))
	for _, n := range networks {
		if _, ok := MatchPrefix(n.ESSID, lowered); ok {
			matches = append(matches, n)
		}
	}
	return matches
}

// MatchPrefix returns the first of the lower-cased prefixes that essid
// starts with.
func MatchPrefix(essid string, lowered []string) (string, bool) {
	name := strings.ToLower(essid)
	for _, p := range lowered {
		if strings.HasPrefix(name, p) {
			return p, true
		}
	}
	return "", false
}
