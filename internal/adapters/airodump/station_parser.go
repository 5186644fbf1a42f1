package airodump

import (
	"strings"

	"github.com/iyow2233/capstone/internal/core/domain"
)

// StationStats describes a station section parse.
type StationStats struct {
	Rows    int
	Skipped int
	Foreign int // rows belonging to another access point
}

// stationHeader holds token positions of the station section header:
//
//	BSSID              STATION            PWR   Rate    Lost    Frames  Notes
type stationHeader struct {
	bssid, station, pwr int
}

func parseStationHeader(line string) (stationHeader, bool) {
	tokens := strings.Fields(line)
	h := stationHeader{
		bssid:   tokenIndex(tokens, domain.HeaderToken),
		station: tokenIndex(tokens, "STATION"),
		pwr:     tokenIndex(tokens, "PWR"),
	}
	return h, h.bssid >= 0 && h.station >= 0 && h.pwr >= 0
}

// ParseStationTable extracts clients of bssid from the station sections of
// airodump-ng screen output. Clients of neighbouring cells are discarded.
func ParseStationTable(data []byte, bssid string) (map[string]domain.ClientRecord, StationStats) {
	var (
		stats     StationStats
		header    stationHeader
		inSection bool
	)
	target := domain.NormalizeMAC(bssid)
	clients := make(map[string]domain.ClientRecord)

	for _, line := range screenLines(data) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if h, ok := parseStationHeader(line); ok {
			header, inSection = h, true
			continue
		}
		if _, ok := parseTableHeader(line); ok {
			// next redraw starts with the access point table
			inSection = false
			continue
		}
		if !inSection {
			continue
		}
		stats.Rows++

		tokens := strings.Fields(line)
		if len(tokens) <= max(header.bssid, header.station, header.pwr) {
			stats.Skipped++
			continue
		}
		if domain.NormalizeMAC(tokens[header.bssid]) != target {
			stats.Foreign++
			continue
		}

		client, err := domain.NewClientRecord(tokens[header.station], atoiOr(tokens[header.pwr], -1), tokens[header.bssid])
		if err != nil {
			stats.Skipped++
			continue
		}
		clients[client.MAC] = client
	}
	return clients, stats
}
