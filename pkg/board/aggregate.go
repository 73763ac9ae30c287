package board

import (
	"github.com/kylerisse/dadboard/pkg/status"
)

// AllReady reports whether every record is ready. An empty set is
// vacuously ready.
func AllReady(records []status.Record) bool {
	for _, rec := range records {
		if !rec.Ready {
			return false
		}
	}
	return true
}

// Headline renders the aggregate indicator shown above the table.
func Headline(allReady bool) string {
	return "All PCs Ready: " + YesNo(allReady)
}

// Summary counts records by state. It backs the summary endpoint and the
// metrics collector.
type Summary struct {
	Total    int  `json:"total"`
	Online   int  `json:"online"`
	Ready    int  `json:"ready"`
	Stale    int  `json:"stale"`
	AllReady bool `json:"allReady"`
}

// Summarize computes a Summary over records.
func Summarize(records []status.Record) Summary {
	s := Summary{Total: len(records), AllReady: AllReady(records)}
	for _, rec := range records {
		if rec.Online {
			s.Online++
		}
		if rec.Ready {
			s.Ready++
		}
		if rec.Stale {
			s.Stale++
		}
	}
	return s
}
