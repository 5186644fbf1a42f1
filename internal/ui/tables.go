package ui

import (
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/iyow2233/capstone/internal/core/domain"
	"github.com/rodaine/table"
)

// PrintNetworks writes the networks as an aligned table.
func PrintNetworks(w io.Writer, networks []domain.NetworkRecord) {
	tbl := table.New("BSSID", "CH", "PWR", "ESSID").WithWriter(w)
	tbl.WithHeaderFormatter(color.New(color.BgHiBlue, color.FgHiWhite).SprintfFunc())
	for _, n := range networks {
		tbl.AddRow(n.BSSID, n.Channel, n.Power, n.ESSID)
	}
	tbl.Print()
}

// PrintSummary writes one row per attacked network.
func PrintSummary(w io.Writer, summary *domain.RunSummary) {
	tbl := table.New("BSSID", "ESSID", "CLIENTS", "MODE", "RESULT", "TIME").WithWriter(w)
	tbl.WithHeaderFormatter(color.New(color.BgHiCyan, color.FgHiWhite).SprintfFunc())
	for _, a := range summary.Attacks {
		mode := "per-client"
		if a.Broadcast {
			mode = "broadcast"
		}
		result := string(a.State)
		if a.State == domain.AttackFailed {
			result = color.RedString(result)
		} else if a.State == domain.AttackCompleted {
			result = color.GreenString(result)
		}
		tbl.AddRow(a.Network.BSSID, a.Network.ESSID, len(a.Clients), mode, result, a.Duration().Round(time.Second))
	}
	tbl.Print()
}
