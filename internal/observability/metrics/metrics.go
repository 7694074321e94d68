package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "roastlog_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	sessionsStarted prometheus.Counter
	sessionResets   prometheus.Counter
	activeSession   prometheus.Gauge

	boundaryCrossings prometheus.Counter
	readingsRecorded  *prometheus.CounterVec
	readingsRemoved   prometheus.Counter

	roastsArchived *prometheus.CounterVec

	reportExportTotal   *prometheus.CounterVec
	reportExportLatency *prometheus.HistogramVec

	alarmTrips *prometheus.CounterVec
)

// Init registers the service metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		sessionsStarted = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "sessions_started_total",
				Help: "Total roast sessions started",
			},
		)
		sessionResets = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "session_resets_total",
				Help: "Total roast session resets",
			},
		)
		activeSession = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "session_running",
				Help: "Whether a roast session is currently running",
			},
		)

		boundaryCrossings = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "boundary_crossings_total",
				Help: "Total sampling boundary crossings notified",
			},
		)
		readingsRecorded = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "readings_recorded_total",
				Help: "Total temperature readings recorded by kind",
			},
			[]string{"kind"},
		)
		readingsRemoved = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "readings_removed_total",
				Help: "Total temperature readings removed",
			},
		)

		roastsArchived = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "roasts_archived_total",
				Help: "Total finished roasts archived by result",
			},
			[]string{"result"},
		)

		reportExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_export_total",
				Help: "Total roast report exports by format and result",
			},
			[]string{"format", "result"},
		)
		reportExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_export_latency_seconds",
				Help:    "Roast report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		alarmTrips = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alarm_trips_total",
				Help: "Total temperature alarm trips by severity",
			},
			[]string{"severity"},
		)

		prometheus.MustRegister(
			sessionsStarted,
			sessionResets,
			activeSession,
			boundaryCrossings,
			readingsRecorded,
			readingsRemoved,
			roastsArchived,
			reportExportTotal,
			reportExportLatency,
			alarmTrips,
		)
	})
}

// ObserveSessionStarted counts a session start.
func ObserveSessionStarted() {
	if sessionsStarted == nil {
		return
	}
	sessionsStarted.Inc()
	activeSession.Set(1)
}

// ObserveSessionStopped marks the session gauge idle.
func ObserveSessionStopped() {
	if activeSession == nil {
		return
	}
	activeSession.Set(0)
}

// ObserveSessionReset counts a session reset.
func ObserveSessionReset() {
	if sessionResets == nil {
		return
	}
	sessionResets.Inc()
	activeSession.Set(0)
}

// ObserveBoundaryCrossing counts a notified sampling boundary.
func ObserveBoundaryCrossing() {
	if boundaryCrossings == nil {
		return
	}
	boundaryCrossings.Inc()
}

// ObserveReadingRecorded counts a recorded reading or correction.
func ObserveReadingRecorded(correction bool) {
	if readingsRecorded == nil {
		return
	}
	kind := "reading"
	if correction {
		kind = "correction"
	}
	readingsRecorded.WithLabelValues(kind).Inc()
}

// ObserveReadingRemoved counts a removed reading.
func ObserveReadingRemoved() {
	if readingsRemoved == nil {
		return
	}
	readingsRemoved.Inc()
}

// ObserveRoastArchived counts an archive attempt.
func ObserveRoastArchived(result string) {
	if roastsArchived == nil {
		return
	}
	roastsArchived.WithLabelValues(result).Inc()
}

// ObserveReportExport records one report export with latency.
func ObserveReportExport(format, result string, seconds float64) {
	if reportExportTotal == nil {
		return
	}
	reportExportTotal.WithLabelValues(format, result).Inc()
	reportExportLatency.WithLabelValues(format, result).Observe(seconds)
}

// ObserveAlarmTrip counts an alarm trip.
func ObserveAlarmTrip(severity string) {
	if alarmTrips == nil {
		return
	}
	alarmTrips.WithLabelValues(severity).Inc()
}
