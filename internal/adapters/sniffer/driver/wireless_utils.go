package driver

import (
	"bufio"
	"regexp"
	"strings"
)

// IWConfigEntry is one interface block of iwconfig output.
type IWConfigEntry struct {
	Name     string
	Wireless bool
	Monitor  bool
}

// ParseIWConfig splits iwconfig output into per-interface entries.
//
// Output format:
//
//	wlan0mon  IEEE 802.11  Mode:Monitor  Frequency:2.457 GHz  Tx-Power=20 dBm
//	          Retry short limit:7   RTS thr:off   Fragment thr:off
//
//	lo        no wireless extensions.
//
// A line starting in column 0 opens a new block; indented lines continue it.
func ParseIWConfig(out string) []IWConfigEntry {
	var entries []IWConfigEntry
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if line[0] != ' ' && line[0] != '\t' {
			fields := strings.Fields(line)
			entries = append(entries, IWConfigEntry{Name: fields[0]})
		}
		if len(entries) == 0 {
			continue
		}
		cur := &entries[len(entries)-1]
		if strings.Contains(line, "IEEE 802.11") {
			cur.Wireless = true
		}
		if strings.Contains(line, "Mode:Monitor") {
			cur.Monitor = true
		}
	}
	return entries
}

// FirstMonitor returns the first interface reporting monitor mode.
func FirstMonitor(entries []IWConfigEntry) string {
	for _, e := range entries {
		if e.Monitor {
			return e.Name
		}
	}
	return ""
}

// WirelessInterfaces returns wireless-capable interface names in output order.
func WirelessInterfaces(entries []IWConfigEntry) []string {
	var names []string
	for _, e := range entries {
		if e.Wireless {
			names = append(names, e.Name)
		}
	}
	return names
}

// airmon-ng reports e.g. "(mac80211 monitor mode vif enabled for [phy0]wlan0 on [phy0]wlan0mon)"
var monIfaceRe = regexp.MustCompile(`\(.*monitor mode (?:vif )?enabled (?:for \S+ )?on (?:\[\w+\])?(\S+?)\)`)

// ParseAirmonStart extracts the monitor interface name from airmon-ng start
// output, or "" when it is not reported.
func ParseAirmonStart(out string) string {
	if m := monIfaceRe.FindStringSubmatch(out); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// MonitorCandidates is the ordered list of names a monitor interface created
// from iface may take: suffix convention, legacy fixed name, unchanged name,
// then vendor defaults.
func MonitorCandidates(iface string) []string {
	candidates := []string{iface + "mon", "mon0", iface, "wlan0mon", "wlan1mon"}
	seen := make(map[string]bool, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
