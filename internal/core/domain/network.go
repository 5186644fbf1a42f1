package domain

import (
	"fmt"
	"strings"
)

const (
	// HeaderToken is the column name airodump-ng uses for access points.
	HeaderToken = "BSSID"
	// MinBSSIDLength rejects truncated rows before MAC validation.
	MinBSSIDLength = 10
	// HiddenPlaceholder replaces the name of a hidden network in verbose mode.
	HiddenPlaceholder = "<hidden>"
)

// NetworkRecord is an access point seen during a network scan.
// BSSID is the unique key; ESSID is a display name and may repeat.
type NetworkRecord struct {
	BSSID   string `json:"bssid"`
	Channel int    `json:"channel"`
	ESSID   string `json:"essid"`
	Power   int    `json:"power"`
	Hidden  bool   `json:"hidden,omitempty"`
}

// NewNetworkRecord validates and builds a NetworkRecord.
func NewNetworkRecord(bssid string, channel int, essid string, power int) (NetworkRecord, error) {
	bssid = strings.TrimSpace(bssid)
	switch {
	case bssid == "", bssid == HeaderToken, len(bssid) < MinBSSIDLength:
		return NetworkRecord{}, fmt.Errorf("%w: %q", ErrInvalidBSSID, bssid)
	case !IsValidMAC(bssid):
		return NetworkRecord{}, fmt.Errorf("%w: %q", ErrInvalidBSSID, bssid)
	}
	if strings.TrimSpace(essid) == "" {
		return NetworkRecord{}, fmt.Errorf("%w: empty name for %s", ErrInvalidESSID, bssid)
	}
	return NetworkRecord{
		BSSID:   NormalizeMAC(bssid),
		Channel: channel,
		ESSID:   essid,
		Power:   power,
		Hidden:  essid == HiddenPlaceholder,
	}, nil
}

// IsHiddenESSID reports whether an ESSID as printed by airodump-ng denotes a
// hidden network: empty, a "<length: N>" marker, or NUL bytes.
func IsHiddenESSID(essid string) bool {
	essid = strings.TrimSpace(essid)
	if essid == "" {
		return true
	}
	if strings.HasPrefix(essid, "<") {
		return true
	}
	return strings.HasPrefix(essid, `\x00`) || strings.Trim(essid, "\x00") == ""
}

func (n NetworkRecord) String() string {
	return fmt.Sprintf("%s (BSSID: %s, Channel: %d)", n.ESSID, n.BSSID, n.Channel)
}
