package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vitalwatch_ingest_messages_received_total",
		Help: "MQTT messages received on the device feed.",
	})
	readingsStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vitalwatch_ingest_readings_stored_total",
		Help: "Device readings accepted and stored.",
	})
	messagesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vitalwatch_ingest_messages_rejected_total",
		Help: "Device messages dropped for bad topics, payloads or validation failures.",
	})
)
