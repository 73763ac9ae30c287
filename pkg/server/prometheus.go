package server

import (
	"net/http"

	"github.com/kylerisse/dadboard/pkg/board"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	machineOnlineDesc = prometheus.NewDesc(
		"dadboard_machine_online",
		"Whether the PC's status file could be read (1=online, 0=offline).",
		[]string{"pc"}, nil,
	)
	machineReadyDesc = prometheus.NewDesc(
		"dadboard_machine_ready",
		"Whether the PC is ready to play (1=ready, 0=not ready).",
		[]string{"pc"}, nil,
	)
	machineStaleDesc = prometheus.NewDesc(
		"dadboard_machine_stale",
		"Whether the PC's last update is older than the staleness threshold.",
		[]string{"pc"}, nil,
	)
	machineAgeDesc = prometheus.NewDesc(
		"dadboard_machine_age_seconds",
		"Seconds since the PC's last status update.",
		[]string{"pc"}, nil,
	)
	allReadyDesc = prometheus.NewDesc(
		"dadboard_all_ready",
		"Whether every configured PC is ready (1=yes, 0=no).",
		nil, nil,
	)
	machinesDesc = prometheus.NewDesc(
		"dadboard_machines",
		"Number of configured PCs.",
		nil, nil,
	)
)

// boardCollector exports the latest board snapshot at scrape time.
type boardCollector struct {
	board *board.Board
}

func (c *boardCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- machineOnlineDesc
	ch <- machineReadyDesc
	ch <- machineStaleDesc
	ch <- machineAgeDesc
	ch <- allReadyDesc
	ch <- machinesDesc
}

func (c *boardCollector) Collect(ch chan<- prometheus.Metric) {
	snap := c.board.Snapshot()
	for _, rec := range snap.Records {
		ch <- prometheus.MustNewConstMetric(machineOnlineDesc, prometheus.GaugeValue, gauge(rec.Online), rec.PC)
		ch <- prometheus.MustNewConstMetric(machineReadyDesc, prometheus.GaugeValue, gauge(rec.Ready), rec.PC)
		ch <- prometheus.MustNewConstMetric(machineStaleDesc, prometheus.GaugeValue, gauge(rec.Stale), rec.PC)
		if rec.AgeSeconds != nil {
			ch <- prometheus.MustNewConstMetric(machineAgeDesc, prometheus.GaugeValue, *rec.AgeSeconds, rec.PC)
		}
	}
	ch <- prometheus.MustNewConstMetric(allReadyDesc, prometheus.GaugeValue, gauge(snap.AllReady))
	ch <- prometheus.MustNewConstMetric(machinesDesc, prometheus.GaugeValue, float64(len(c.board.Machines())))
}

func gauge(v bool) float64 {
	if v {
		return 1
	}
	return 0
}

// metricsHandler serves the board metrics from a dedicated registry.
func (s *Server) metricsHandler() http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(&boardCollector{board: s.board})
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
