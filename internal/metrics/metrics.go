package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HackathonsProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "formation_hackathons_total", Help: "Hackathons whose teams were formed"},
	)
	FormationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "formation_failures_total", Help: "Hackathon formation attempts that failed"},
	)
	TeamsFormed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "formation_teams_total", Help: "Teams created by the formation worker"},
	)
	ParticipantsUnallocated = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "formation_unallocated_total", Help: "Participants left without a team after partitioning"},
	)
	NotifyDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "notify_delivered_total", Help: "Formation notifications delivered"},
	)
	NotifyFailed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "notify_failed_total", Help: "Formation notifications that failed delivery"},
	)
	SyncProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "sync_processed_total", Help: "Total processed outbox events"},
	)
	SyncFailed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "sync_failed_total", Help: "Total failed outbox events"},
	)
	SyncDLQEvents = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "sync_dlq_total", Help: "Total events inserted into the sync DLQ"},
	)
)

func Register() {
	prometheus.MustRegister(
		HackathonsProcessed, FormationFailures, TeamsFormed, ParticipantsUnallocated,
		NotifyDelivered, NotifyFailed,
		SyncProcessed, SyncFailed, SyncDLQEvents,
	)
}
