package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DoyleJ11/hots-draft-backend/internal/engine"
)

var (
	decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotsdraft_decisions_total",
		Help: "Committed draft decisions by kind",
	}, []string{"kind"})

	draftsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hotsdraft_drafts_started_total",
		Help: "Draft rooms started",
	})

	draftsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotsdraft_drafts_finished_total",
		Help: "Draft rooms finished by outcome",
	}, []string{"outcome"})

	activeRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hotsdraft_active_rooms",
		Help: "Draft rooms currently registered in the hub",
	})

	draftDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hotsdraft_draft_duration_seconds",
		Help:    "Wall time from draft start to completion",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
	})
)

func Decision(r engine.DecisionRecord) { decisions.WithLabelValues(string(r.Kind)).Inc() }

func DraftStarted() { draftsStarted.Inc() }

// DraftFinished records the outcome of one draft: "completed", "no_candidate",
// "cancelled" or "failed".
func DraftFinished(outcome string, elapsed time.Duration) {
	draftsFinished.WithLabelValues(outcome).Inc()
	draftDuration.Observe(elapsed.Seconds())
}

func RoomOpened() { activeRooms.Inc() }
func RoomClosed() { activeRooms.Dec() }

func Handler() http.Handler { return promhttp.Handler() }
