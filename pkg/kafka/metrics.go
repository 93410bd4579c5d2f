package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProducerMessagesPublished counts events accepted by the broker.
	ProducerMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_producer_messages_published_total",
			Help: "Total number of events published to Kafka",
		},
		[]string{"topic"},
	)

	// ProducerPublishFailures counts events the broker did not accept.
	ProducerPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_producer_publish_failures_total",
			Help: "Total number of Kafka publish attempts that failed",
		},
		[]string{"topic"},
	)
)
