package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/vitalwatch/vitalwatch/internal/domain/readings"
)

type fakeRecorder struct {
	mu       sync.Mutex
	recorded []*readings.Reading
	err      error
}

func (f *fakeRecorder) Record(_ context.Context, r *readings.Reading) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, r)
	return nil
}

func (f *fakeRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.recorded)
}

func (f *fakeRecorder) last() *readings.Reading {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.recorded) == 0 {
		return nil
	}
	return f.recorded[len(f.recorded)-1]
}

// fakeMessage satisfies the broker client's message interface without a broker.
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool { return false }
func (m fakeMessage) Qos() byte { return 1 }
func (m fakeMessage) Retained() bool { return false }
func (m fakeMessage) Topic() string { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte { return m.payload }
func (m fakeMessage) Ack() {}

func newTestIngestor(recorder Recorder) *Ingestor {
	return New(recorder, Options{
		BrokerURL: "tcp://localhost:1883",
		ClientID:  "vitalwatch-test",
		Topic:     "vitalwatch/readings/+",
		QoS:       1,
	}, zerolog.Nop())
}

func TestHandleMessage_StoresValidReading(t *testing.T) {
	recorder := &fakeRecorder{}
	ing := newTestIngestor(recorder)
	patientID := uuid.New()

	storedBefore := testutil.ToFloat64(readingsStored)

	ing.handleMessage(nil, fakeMessage{
		topic: "vitalwatch/readings/" + patientID.String(),
		payload: []byte(`{
			"recorded_at": "2026-02-15T08:30:00Z",
			"heart_rate": 82,
			"bp_systolic": 121,
			"bp_diastolic": 79,
			"oxygen_pct": 97.5,
			"temperature_c": 36.6
		}`),
	})

	if recorder.count() != 1 {
		t.Fatalf("expected 1 stored reading, got %d", recorder.count())
	}

	r := recorder.last()
	if r.PatientID != patientID {
		t.Errorf("expected patient %s, got %s", patientID, r.PatientID)
	}
	if r.HeartRate != 82 {
		t.Errorf("expected heart rate 82, got %d", r.HeartRate)
	}
	if r.BPSystolic != 121 || r.BPDiastolic != 79 {
		t.Errorf("unexpected blood pressure %d/%d", r.BPSystolic, r.BPDiastolic)
	}
	if r.OxygenPct != 97.5 {
		t.Errorf("expected oxygen 97.5, got %v", r.OxygenPct)
	}
	if r.TemperatureC != 36.6 {
		t.Errorf("expected temperature 36.6, got %v", r.TemperatureC)
	}
	want := time.Date(2026, 2, 15, 8, 30, 0, 0, time.UTC)
	if !r.RecordedAt.Equal(want) {
		t.Errorf("expected recorded_at %v, got %v", want, r.RecordedAt)
	}

	if got := testutil.ToFloat64(readingsStored) - storedBefore; got != 1 {
		t.Errorf("expected stored counter +1, got +%v", got)
	}
}

func TestHandleMessage_OmittedRecordedAtPassesThroughZero(t *testing.T) {
	recorder := &fakeRecorder{}
	ing := newTestIngestor(recorder)
	patientID := uuid.New()

	ing.handleMessage(nil, fakeMessage{
		topic:   "vitalwatch/readings/" + patientID.String(),
		payload: []byte(`{"heart_rate":70,"bp_systolic":115,"bp_diastolic":75,"oxygen_pct":98,"temperature_c":36.5}`),
	})

	if recorder.count() != 1 {
		t.Fatalf("expected 1 stored reading, got %d", recorder.count())
	}
	// The readings service stamps the time when it is absent.
	if !recorder.last().RecordedAt.IsZero() {
		t.Errorf("expected zero recorded_at, got %v", recorder.last().RecordedAt)
	}
}

func TestHandleMessage_RejectsBadTopic(t *testing.T) {
	tests := []struct {
		name  string
		topic string
	}{
		{"no patient segment", "vitalwatch/readings"},
		{"trailing slash", "vitalwatch/readings/"},
		{"not a uuid", "vitalwatch/readings/device-42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &fakeRecorder{}
			ing := newTestIngestor(recorder)

			rejectedBefore := testutil.ToFloat64(messagesRejected)
			ing.handleMessage(nil, fakeMessage{
				topic:   tt.topic,
				payload: []byte(`{"heart_rate":70}`),
			})

			if recorder.count() != 0 {
				t.Fatalf("expected no stored readings, got %d", recorder.count())
			}
			if got := testutil.ToFloat64(messagesRejected) - rejectedBefore; got != 1 {
				t.Errorf("expected rejected counter +1, got +%v", got)
			}
		})
	}
}

func TestHandleMessage_RejectsMalformedPayload(t *testing.T) {
	recorder := &fakeRecorder{}
	ing := newTestIngestor(recorder)

	ing.handleMessage(nil, fakeMessage{
		topic:   "vitalwatch/readings/" + uuid.New().String(),
		payload: []byte(`{not json at all`),
	})

	if recorder.count() != 0 {
		t.Fatalf("expected no stored readings, got %d", recorder.count())
	}
}

func TestHandleMessage_RecorderErrorIsDropped(t *testing.T) {
	recorder := &fakeRecorder{err: errors.New("oxygen_pct must be between 0 and 100")}
	ing := newTestIngestor(recorder)

	rejectedBefore := testutil.ToFloat64(messagesRejected)
	ing.handleMessage(nil, fakeMessage{
		topic:   "vitalwatch/readings/" + uuid.New().String(),
		payload: []byte(`{"heart_rate":70,"oxygen_pct":250}`),
	})

	if got := testutil.ToFloat64(messagesRejected) - rejectedBefore; got != 1 {
		t.Errorf("expected rejected counter +1, got +%v", got)
	}
}

func TestHandleMessage_CountsReceived(t *testing.T) {
	recorder := &fakeRecorder{}
	ing := newTestIngestor(recorder)

	receivedBefore := testutil.ToFloat64(messagesReceived)
	for i := 0; i < 3; i++ {
		ing.handleMessage(nil, fakeMessage{
			topic:   "vitalwatch/readings/garbage",
			payload: nil,
		})
	}

	if got := testutil.ToFloat64(messagesReceived) - receivedBefore; got != 3 {
		t.Errorf("expected received counter +3, got +%v", got)
	}
}

func TestPatientFromTopic(t *testing.T) {
	patientID := uuid.New()

	tests := []struct {
		name    string
		topic   string
		want    uuid.UUID
		wantErr bool
	}{
		{"valid", "vitalwatch/readings/" + patientID.String(), patientID, false},
		{"bare uuid", patientID.String(), uuid.Nil, true},
		{"empty", "", uuid.Nil, true},
		{"no segments", "vitalwatch", uuid.Nil, true},
		{"trailing slash", "vitalwatch/readings/", uuid.Nil, true},
		{"non-uuid segment", "vitalwatch/readings/device-1", uuid.Nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := patientFromTopic(tt.topic)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
