package domain

import "fmt"

// ClientRecord is a station associated with the access point under a
// focused scan.
type ClientRecord struct {
	MAC   string `json:"mac"`
	Power int    `json:"power"`
	BSSID string `json:"bssid"`
}

// NewClientRecord validates and builds a ClientRecord.
func NewClientRecord(mac string, power int, bssid string) (ClientRecord, error) {
	if !IsValidMAC(mac) {
		return ClientRecord{}, fmt.Errorf("%w: %q", ErrInvalidMAC, mac)
	}
	if !IsValidMAC(bssid) {
		return ClientRecord{}, fmt.Errorf("%w: %q", ErrInvalidBSSID, bssid)
	}
	return ClientRecord{
		MAC:   NormalizeMAC(mac),
		Power: power,
		BSSID: NormalizeMAC(bssid),
	}, nil
}
