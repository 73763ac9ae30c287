package board

import (
	"fmt"

	"github.com/kylerisse/dadboard/pkg/status"
)

// Placeholder is shown for values that are absent or unknown.
const Placeholder = "-"

// Headers are the column titles of the per-PC table, in Row order.
var Headers = []string{"PC", "Online", "Steam", "Game", "LaunchResult", "InviteResult", "LastUpdate", "Ready"}

// Row is the rendered form of a single machine's Record.
type Row struct {
	PC           string `json:"pc"`
	Online       string `json:"online"`
	Steam        string `json:"steam"`
	Game         string `json:"game"`
	LaunchResult string `json:"launchResult"`
	InviteResult string `json:"inviteResult"`
	LastUpdate   string `json:"lastUpdate"`
	Ready        string `json:"ready"`
}

// Cells returns the row values in Headers order.
func (r Row) Cells() []string {
	return []string{r.PC, r.Online, r.Steam, r.Game, r.LaunchResult, r.InviteResult, r.LastUpdate, r.Ready}
}

// PendingRow is shown for a machine before its first poll.
func PendingRow(pc string) Row {
	return Row{
		PC:           pc,
		Online:       Placeholder,
		Steam:        Placeholder,
		Game:         Placeholder,
		LaunchResult: Placeholder,
		InviteResult: Placeholder,
		LastUpdate:   Placeholder,
		Ready:        Placeholder,
	}
}

// NewRow renders a Record for display.
func NewRow(rec status.Record) Row {
	if !rec.Online {
		return Row{
			PC:           rec.PC,
			Online:       "OFFLINE",
			Steam:        Placeholder,
			Game:         Placeholder,
			LaunchResult: Placeholder,
			InviteResult: Placeholder,
			LastUpdate:   Placeholder,
			Ready:        "NO",
		}
	}

	age := FormatAge(rec.AgeSeconds)
	if rec.Stale {
		age = fmt.Sprintf("STALE (%s)", age)
	}

	return Row{
		PC:           rec.PC,
		Online:       "ONLINE",
		Steam:        YesNo(rec.SteamRunning),
		Game:         fmt.Sprintf("%s (%s)", YesNo(rec.GameRunning), orPlaceholder(rec.GameName)),
		LaunchResult: orPlaceholder(rec.LaunchResult),
		InviteResult: orPlaceholder(rec.InviteResult),
		LastUpdate:   age,
		Ready:        YesNo(rec.Ready),
	}
}

// FormatAge renders an age in seconds as 45s, 2m5s or 1h6m. Fractions of
// a unit are dropped. A nil age renders as UNKNOWN.
func FormatAge(seconds *float64) string {
	if seconds == nil {
		return "UNKNOWN"
	}
	s := *seconds
	switch {
	case s < 60:
		return fmt.Sprintf("%ds", int64(s))
	case s < 3600:
		whole := int64(s)
		return fmt.Sprintf("%dm%ds", whole/60, whole%60)
	default:
		whole := int64(s)
		return fmt.Sprintf("%dh%dm", whole/3600, (whole%3600)/60)
	}
}

// YesNo renders a flag the way the table shows it.
func YesNo(v bool) string {
	if v {
		return "YES"
	}
	return "NO"
}

func orPlaceholder(s *string) string {
	if s == nil || *s == "" {
		return Placeholder
	}
	return *s
}
