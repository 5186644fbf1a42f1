package airodump

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/iyow2233/capstone/internal/core/domain"
)

// Column layout of the access point section of an airodump-ng CSV artifact:
// BSSID, First time seen, Last time seen, channel, Speed, Privacy, Cipher,
// Authentication, Power, # beacons, # IV, LAN IP, ID-length, ESSID, Key
const (
	colBSSID   = 0
	colChannel = 3
	colPower   = 8
	colESSID   = 13
	colsFull   = 15

	// MinNetworkColumns is the fewest columns a network row may have.
	MinNetworkColumns = 14
)

// ParseOptions tunes network parsing.
type ParseOptions struct {
	// Verbose keeps hidden networks under domain.HiddenPlaceholder.
	Verbose bool
}

// ParseStats describes what a parse pass kept and dropped.
type ParseStats struct {
	Encoding string
	Rows     int // candidate rows after the header
	Skipped  int // rows with too few columns
	Rejected int // rows failing record validation
	Hidden   int // hidden networks dropped
}

// ParseNetworkCSV parses the access point section of an airodump-ng CSV
// artifact. Records keep artifact order and are not deduplicated.
func ParseNetworkCSV(data []byte, opts ParseOptions) ([]domain.NetworkRecord, ParseStats, error) {
	var stats ParseStats

	content, enc, err := DecodeArtifact(data)
	if err != nil {
		return nil, stats, err
	}
	stats.Encoding = enc

	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines, ok := networkSection(strings.Split(content, "\n\n"))
	if !ok {
		return nil, stats, fmt.Errorf("%w: %w", domain.ErrScanParse, domain.ErrHeaderNotFound)
	}

	records := make([]domain.NetworkRecord, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		stats.Rows++

		fields, err := splitRow(line)
		if err != nil || len(fields) < MinNetworkColumns {
			stats.Skipped++
			continue
		}

		essid := rowESSID(fields, line)
		if domain.IsHiddenESSID(essid) {
			if !opts.Verbose {
				stats.Hidden++
				continue
			}
			essid = domain.HiddenPlaceholder
		}

		rec, err := domain.NewNetworkRecord(
			fields[colBSSID],
			atoiOr(fields[colChannel], -1),
			essid,
			atoiOr(fields[colPower], -1),
		)
		if err != nil {
			stats.Rejected++
			continue
		}
		records = append(records, rec)
	}
	return records, stats, nil
}

// networkSection finds the blank-line separated section holding the access
// point header and returns the lines after that header.
func networkSection(sections []string) ([]string, bool) {
	for _, section := range sections {
		if !strings.Contains(section, domain.HeaderToken) {
			continue
		}
		lines := strings.Split(section, "\n")
		for i, line := range lines {
			fields, err := splitRow(line)
			if err == nil && len(fields) > 0 && fields[0] == domain.HeaderToken {
				return lines[i+1:], true
			}
		}
	}
	return nil, false
}

func splitRow(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	fields, err := r.Read()
	if err != nil {
		return nil, err
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields, nil
}

// rowESSID reads the ESSID column. An ESSID containing commas spills over
// into extra columns before the trailing Key column, so those are rejoined
// from the raw line.
func rowESSID(fields []string, line string) string {
	essid := fields[colESSID]
	if len(fields) > colsFull {
		if raw := strings.Split(line, ","); len(raw) == len(fields) {
			essid = strings.Join(raw[colESSID:len(raw)-1], ",")
		}
	}
	essid = strings.TrimSpace(essid)
	if len(essid) >= 2 && strings.HasPrefix(essid, `"`) && strings.HasSuffix(essid, `"`) {
		essid = essid[1 : len(essid)-1]
	}
	return essid
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}
