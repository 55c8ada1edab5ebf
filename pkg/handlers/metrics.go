package handlers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricLoginsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ftb_logins_started_total",
		Help: "OAuth login redirects issued, by provider.",
	}, []string{"provider"})

	metricLoginsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ftb_logins_completed_total",
		Help: "OAuth callbacks that produced a session, by provider.",
	}, []string{"provider"})

	metricLoginsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ftb_logins_failed_total",
		Help: "OAuth callbacks that failed, by provider and reason.",
	}, []string{"provider", "reason"})

	metricProvisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ftb_playlist_provisions_total",
		Help: "Playlist provisioning attempts, by provider and outcome.",
	}, []string{"provider", "outcome"})

	metricTracksResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ftb_tracks_resolved_total",
		Help: "Songs matched to provider tracks during provisioning.",
	}, []string{"provider"})

	metricTracksUnresolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ftb_tracks_unresolved_total",
		Help: "Songs with no provider match during provisioning.",
	}, []string{"provider"})
)
