package airodump

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/iyow2233/capstone/internal/core/domain"
)

// airodump-ng redraws its screen with cursor and erase sequences.
var ansiRe = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)

// StripANSI removes terminal control sequences.
func StripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

// screenLines splits captured terminal output into lines.
func screenLines(data []byte) []string {
	text := StripANSI(string(data))
	return strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' })
}

func tokenIndex(tokens []string, name string) int {
	for i, t := range tokens {
		if t == name {
			return i
		}
	}
	return -1
}

// tableHeader holds column positions taken from an access point header row:
//
//	BSSID              PWR  Beacons    #Data, #/s  CH   MB   ENC CIPHER  AUTH ESSID
type tableHeader struct {
	pwr, ch  int // token indexes
	essidCol int // byte offset of the ESSID column
}

func parseTableHeader(line string) (tableHeader, bool) {
	tokens := strings.Fields(line)
	if tokenIndex(tokens, domain.HeaderToken) != 0 {
		return tableHeader{}, false
	}
	h := tableHeader{
		pwr:      tokenIndex(tokens, "PWR"),
		ch:       tokenIndex(tokens, "CH"),
		essidCol: strings.Index(line, "ESSID"),
	}
	if h.pwr < 0 || h.ch < 0 || h.essidCol < 0 {
		return tableHeader{}, false
	}
	return h, true
}

// ParseNetworkTable parses airodump-ng's default screen output. Every
// access point block of every redraw is read, so records may repeat.
func ParseNetworkTable(data []byte, opts ParseOptions) ([]domain.NetworkRecord, ParseStats, error) {
	var (
		stats   ParseStats
		records []domain.NetworkRecord
		header  tableHeader
		found   bool
		inTable bool
	)

	for _, line := range screenLines(data) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Contains(line, "STATION") {
			inTable = false
			continue
		}
		if h, ok := parseTableHeader(line); ok {
			header, found, inTable = h, true, true
			continue
		}
		if !inTable {
			continue
		}
		stats.Rows++

		tokens := strings.Fields(line)
		if len(tokens) <= max(header.pwr, header.ch) {
			stats.Skipped++
			continue
		}

		essid := ""
		if len(line) > header.essidCol {
			essid = strings.TrimSpace(line[header.essidCol:])
		}
		if domain.IsHiddenESSID(essid) {
			if !opts.Verbose {
				stats.Hidden++
				continue
			}
			essid = domain.HiddenPlaceholder
		}

		rec, err := domain.NewNetworkRecord(tokens[0], atoiOr(tokens[header.ch], -1), essid, atoiOr(tokens[header.pwr], -1))
		if err != nil {
			stats.Rejected++
			continue
		}
		records = append(records, rec)
	}

	if !found {
		return nil, stats, fmt.Errorf("%w: %w", domain.ErrScanParse, domain.ErrHeaderNotFound)
	}
	return records, stats, nil
}
