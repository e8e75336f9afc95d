// Package ingest consumes device readings from an MQTT broker and stores
// them through the readings service. Devices publish one JSON payload per
// reading to vitalwatch/readings/<patient-uuid>; the patient is identified
// by the topic, not the payload. Malformed messages are counted, logged and
// dropped so a misbehaving device can never stall the feed.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vitalwatch/vitalwatch/internal/domain/readings"
)

const storeTimeout = 5 * time.Second

// Recorder is the subset of the readings service the ingestor needs.
type Recorder interface {
	Record(ctx context.Context, r *readings.Reading) error
}

// Options carries the broker settings from configuration.
type Options struct {
	BrokerURL string
	ClientID  string
	Topic     string
	QoS       byte
}

// payload is the wire form devices publish. recorded_at is optional; the
// readings service stamps the current time when it is absent.
type payload struct {
	RecordedAt   time.Time `json:"recorded_at"`
	HeartRate    int       `json:"heart_rate"`
	BPSystolic   int       `json:"bp_systolic"`
	BPDiastolic  int       `json:"bp_diastolic"`
	OxygenPct    float64   `json:"oxygen_pct"`
	TemperatureC float64   `json:"temperature_c"`
}

// Ingestor bridges the MQTT device feed into the readings store.
type Ingestor struct {
	recorder Recorder
	opts     Options
	logger   zerolog.Logger

	ctx context.Context
}

func New(recorder Recorder, opts Options, logger zerolog.Logger) *Ingestor {
	return &Ingestor{
		recorder: recorder,
		opts:     opts,
		logger:   logger.With().Str("component", "ingest").Logger(),
	}
}

// Start connects to the broker and blocks until ctx is cancelled. The
// connection retries and resubscribes on its own; only the initial connect
// returns an error.
func (i *Ingestor) Start(ctx context.Context) error {
	i.ctx = ctx

	opts := mqtt.NewClientOptions()
	opts.AddBroker(i.opts.BrokerURL)
	opts.SetClientID(i.opts.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.OnConnect = func(client mqtt.Client) {
		token := client.Subscribe(i.opts.Topic, i.opts.QoS, i.handleMessage)
		token.Wait()
		if token.Error() != nil {
			i.logger.Error().Err(token.Error()).
				Str("topic", i.opts.Topic).
				Msg("mqtt subscribe failed")
			return
		}
		i.logger.Info().
			Str("broker", i.opts.BrokerURL).
			Str("topic", i.opts.Topic).
			Uint8("qos", i.opts.QoS).
			Msg("subscribed to device feed")
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		i.logger.Warn().Err(err).Msg("mqtt connection lost, reconnecting")
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}

	<-ctx.Done()
	client.Disconnect(250)
	i.logger.Info().Msg("ingest stopped")
	return nil
}

func (i *Ingestor) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	messagesReceived.Inc()

	patientID, err := patientFromTopic(msg.Topic())
	if err != nil {
		messagesRejected.Inc()
		i.logger.Warn().Err(err).Str("topic", msg.Topic()).Msg("dropping reading")
		return
	}

	var p payload
	if err := json.Unmarshal(msg.Payload(), &p); err != nil {
		messagesRejected.Inc()
		i.logger.Warn().Err(err).
			Str("topic", msg.Topic()).
			Str("patient_id", patientID.String()).
			Msg("dropping malformed reading payload")
		return
	}

	r := &readings.Reading{
		PatientID:    patientID,
		RecordedAt:   p.RecordedAt,
		HeartRate:    p.HeartRate,
		BPSystolic:   p.BPSystolic,
		BPDiastolic:  p.BPDiastolic,
		OxygenPct:    p.OxygenPct,
		TemperatureC: p.TemperatureC,
	}

	ctx, cancel := context.WithTimeout(i.baseContext(), storeTimeout)
	defer cancel()

	if err := i.recorder.Record(ctx, r); err != nil {
		messagesRejected.Inc()
		i.logger.Warn().Err(err).
			Str("patient_id", patientID.String()).
			Msg("reading rejected")
		return
	}

	readingsStored.Inc()
	i.logger.Debug().
		Str("patient_id", patientID.String()).
		Str("reading_id", r.ID.String()).
		Msg("device reading stored")
}

func (i *Ingestor) baseContext() context.Context {
	if i.ctx != nil {
		return i.ctx
	}
	return context.Background()
}

// patientFromTopic extracts the patient UUID from the final topic segment of
// vitalwatch/readings/<patient-uuid>.
func patientFromTopic(topic string) (uuid.UUID, error) {
	idx := strings.LastIndex(topic, "/")
	if idx < 0 || idx == len(topic)-1 {
		return uuid.Nil, fmt.Errorf("topic %q carries no patient segment", topic)
	}
	id, err := uuid.Parse(topic[idx+1:])
	if err != nil {
		return uuid.Nil, fmt.Errorf("topic %q: invalid patient id: %w", topic, err)
	}
	return id, nil
}
