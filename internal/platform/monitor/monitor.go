// Package monitor runs the periodic classification loop: on a fixed cadence
// it fetches the newest reading per patient, classifies it, and publishes a
// status-change event whenever a patient's overall severity moves between
// levels.
package monitor

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/vitalwatch/vitalwatch/internal/domain/readings"
	"github.com/vitalwatch/vitalwatch/internal/domain/vitals"
	"github.com/vitalwatch/vitalwatch/internal/platform/webhook"
)

// StatusChange is the event published on a severity transition. It is the
// payload for the Redis status channel, the websocket feed, and webhook
// alert bodies.
type StatusChange struct {
	PatientID      uuid.UUID `json:"patient_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Message        string    `json:"message"`
	RecordedAt     time.Time `json:"recorded_at"`
	ObservedAt     time.Time `json:"observed_at"`
}

// ReadingSource is the subset of the readings repository the monitor needs.
type ReadingSource interface {
	LatestPerPatient(ctx context.Context) ([]*readings.Reading, error)
}

// Monitor polls the latest reading per patient and tracks each patient's
// severity across cycles. Transitions are published to Redis; Warning and
// Danger transitions additionally fan out to webhook endpoints.
type Monitor struct {
	source   ReadingSource
	analyzer *vitals.Analyzer
	redis    *redis.Client
	channel  string
	alerts   *webhook.Dispatcher
	logger   zerolog.Logger

	// Interval controls the polling cadence.
	Interval time.Duration

	mu   sync.Mutex
	last map[uuid.UUID]vitals.Severity
}

// New creates a monitor with the default 10s interval. alerts may be nil
// when no webhook endpoints are configured.
func New(source ReadingSource, analyzer *vitals.Analyzer, rdb *redis.Client, channel string, alerts *webhook.Dispatcher, logger zerolog.Logger) *Monitor {
	return &Monitor{
		source:   source,
		analyzer: analyzer,
		redis:    rdb,
		channel:  channel,
		alerts:   alerts,
		logger:   logger,
		Interval: 10 * time.Second,
		last:     make(map[uuid.UUID]vitals.Severity),
	}
}

// Start runs the polling loop. The first cycle happens immediately, then on
// every tick. It blocks until ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) {
	m.logger.Info().Dur("interval", m.Interval).Msg("monitor started")
	m.cycle(ctx)

	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("monitor stopped")
			return
		case <-ticker.C:
			m.cycle(ctx)
		}
	}
}

func (m *Monitor) cycle(ctx context.Context) {
	start := time.Now()
	cyclesTotal.Inc()

	latest, err := m.source.LatestPerPatient(ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to load latest readings")
		return
	}
	patientsObserved.Set(float64(len(latest)))

	observedAt := time.Now().UTC()
	for _, r := range latest {
		sample := r.Sample()
		overall := m.analyzer.OverallStatus(&sample)
		classificationsTotal.WithLabelValues(overall.Severity.String()).Inc()

		prev, seen := m.swap(r.PatientID, overall.Severity)
		if !seen {
			// First sighting establishes the baseline without an event.
			continue
		}
		if prev == overall.Severity {
			continue
		}

		change := StatusChange{
			PatientID:      r.PatientID,
			PreviousStatus: prev.String(),
			NewStatus:      overall.Severity.String(),
			Message:        overall.Message,
			RecordedAt:     r.RecordedAt,
			ObservedAt:     observedAt,
		}
		m.publish(ctx, change)
		statusChangesTotal.Inc()

		if overall.Severity >= vitals.SeverityWarning && m.alerts != nil && m.alerts.Enabled() {
			m.alerts.Dispatch(ctx, change)
		}
	}

	cycleDuration.Observe(time.Since(start).Seconds())
}

// swap records the patient's new severity and returns the previous one.
func (m *Monitor) swap(patientID uuid.UUID, s vitals.Severity) (vitals.Severity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, seen := m.last[patientID]
	m.last[patientID] = s
	return prev, seen
}

func (m *Monitor) publish(ctx context.Context, change StatusChange) {
	payload, err := json.Marshal(change)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to marshal status change")
		return
	}
	if err := m.redis.Publish(ctx, m.channel, payload).Err(); err != nil {
		m.logger.Error().Err(err).
			Str("patient_id", change.PatientID.String()).
			Msg("failed to publish status change")
		return
	}
	m.logger.Info().
		Str("patient_id", change.PatientID.String()).
		Str("previous_status", change.PreviousStatus).
		Str("new_status", change.NewStatus).
		Msg("patient status changed")
}
