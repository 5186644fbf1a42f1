package airodump

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/iyow2233/capstone/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeArtifact renders records the way airodump-ng lays out its CSV file.
func writeArtifact(records []domain.NetworkRecord) []byte {
	var b strings.Builder
	b.WriteString("\r\nBSSID, First time seen, Last time seen, channel, Speed, Privacy, Cipher, Authentication, Power, # beacons, # IV, LAN IP, ID-length, ESSID, Key\r\n")
	for _, r := range records {
		fmt.Fprintf(&b, "%s, 2024-03-01 10:00:01, 2024-03-01 10:00:09, %2d,  54, WPA2, CCMP, PSK, %d,       10,        0,   0.  0.  0.   0, %3d, %s, \r\n",
			r.BSSID, r.Channel, r.Power, len(r.ESSID), r.ESSID)
	}
	b.WriteString("\r\nStation MAC, First time seen, Last time seen, Power, # packets, BSSID\r\n\r\n")
	return []byte(b.String())
}

func TestParseNetworkCSV_Artifact(t *testing.T) {
	data, err := os.ReadFile("testdata/network_scan-01.csv")
	require.NoError(t, err)

	records, stats, err := ParseNetworkCSV(data, ParseOptions{})
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, domain.NetworkRecord{BSSID: "90:3A:E6:5B:C8:A8", Channel: 6, ESSID: "Bebop2-123456", Power: -42}, records[0])
	assert.Equal(t, "Mavic-Pro-0001", records[1].ESSID)
	assert.Equal(t, 149, records[1].Channel)
	assert.Equal(t, "HomeRouter", records[2].ESSID)

	assert.Equal(t, "utf-8", stats.Encoding)
	assert.Equal(t, 4, stats.Rows)
	assert.Equal(t, 1, stats.Hidden)
	assert.Zero(t, stats.Skipped)
}

func TestParseNetworkCSV_VerboseKeepsHidden(t *testing.T) {
	data, err := os.ReadFile("testdata/network_scan-01.csv")
	require.NoError(t, err)

	records, stats, err := ParseNetworkCSV(data, ParseOptions{Verbose: true})
	require.NoError(t, err)

	require.Len(t, records, 4)
	assert.Equal(t, domain.HiddenPlaceholder, records[2].ESSID)
	assert.True(t, records[2].Hidden)
	assert.Zero(t, stats.Hidden)
}

func TestParseNetworkCSV_MissingHeader(t *testing.T) {
	data := []byte("Station MAC, First time seen, Last time seen, Power, # packets, BSSID\n" +
		"3C:A3:08:01:02:03, 2024-03-01 10:00:02, 2024-03-01 10:00:09, -50, 40, 90:3A:E6:5B:C8:A8,\n")

	records, _, err := ParseNetworkCSV(data, ParseOptions{})
	assert.Empty(t, records)
	assert.ErrorIs(t, err, domain.ErrScanParse)
	assert.ErrorIs(t, err, domain.ErrHeaderNotFound)
}

func TestParseNetworkCSV_ShortRowsSkipped(t *testing.T) {
	data := []byte("BSSID, First time seen, Last time seen, channel, Speed, Privacy, Cipher, Authentication, Power, # beacons, # IV, LAN IP, ID-length, ESSID, Key\n" +
		"90:3A:E6:5B:C8:A8, 2024-03-01 10:00:01, 2024-03-01 10:00:09, 6, 54\n" +
		"60:60:1F:AA:BB:CC, 2024-03-01 10:00:02, 2024-03-01 10:00:09, 11, 54, WPA2, CCMP, PSK, -58, 12, 3, 0.0.0.0, 5, Spark, \n" +
		"garbage\n")

	records, stats, err := ParseNetworkCSV(data, ParseOptions{})
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "Spark", records[0].ESSID)
	assert.Equal(t, 3, stats.Rows)
	assert.Equal(t, 2, stats.Skipped)
}

func TestParseNetworkCSV_RejectsInvalidBSSID(t *testing.T) {
	data := writeArtifact([]domain.NetworkRecord{
		{BSSID: "90:3A:E6:5B:C8:A8", Channel: 6, ESSID: "Bebop2", Power: -40},
		{BSSID: "ZZ:ZZ:ZZ:ZZ:ZZ:ZZ", Channel: 6, ESSID: "Phantom3", Power: -40},
		{BSSID: "1:2:3", Channel: 6, ESSID: "Spark", Power: -40},
	})

	records, stats, err := ParseNetworkCSV(data, ParseOptions{})
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, 2, stats.Rejected)
}

func TestParseNetworkCSV_RoundTrip(t *testing.T) {
	want := []domain.NetworkRecord{
		{BSSID: "90:3A:E6:5B:C8:A8", Channel: 6, ESSID: "Bebop2-123456", Power: -42},
		{BSSID: "60:60:1F:AA:BB:CC", Channel: 149, ESSID: "Mavic Air 2", Power: -58},
		{BSSID: "C4:6E:1F:44:55:66", Channel: 1, ESSID: "Lab, 2nd floor", Power: -63},
		{BSSID: "90:3A:E6:5B:C8:A8", Channel: 6, ESSID: "Bebop2-123456", Power: -40},
	}

	got, _, err := ParseNetworkCSV(writeArtifact(want), ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParseNetworkCSV_Latin1(t *testing.T) {
	// "Café" in ISO-8859-1 is not valid UTF-8.
	data := writeArtifact([]domain.NetworkRecord{
		{BSSID: "C4:6E:1F:44:55:66", Channel: 1, ESSID: "Caf\xe9", Power: -63},
	})

	records, stats, err := ParseNetworkCSV(data, ParseOptions{})
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "Café", records[0].ESSID)
	assert.NotEqual(t, "utf-8", stats.Encoding)
}

func TestDecodeArtifact_StripsBOM(t *testing.T) {
	text, enc, err := DecodeArtifact([]byte("\xef\xbb\xbfBSSID"))
	require.NoError(t, err)
	assert.Equal(t, "BSSID", text)
	assert.Equal(t, "utf-8", enc)
}
