package ws

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "kyvex",
		Subsystem: "gateway",
		Name:      "connections",
		Help:      "Number of open gateway connections.",
	})

	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kyvex",
		Subsystem: "gateway",
		Name:      "events_published_total",
		Help:      "Events published to topics, by event name.",
	}, []string{"event"})

	eventsDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kyvex",
		Subsystem: "gateway",
		Name:      "events_delivered_total",
		Help:      "Event frames handed to client send buffers.",
	})

	eventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kyvex",
		Subsystem: "gateway",
		Name:      "events_dropped_total",
		Help:      "Event frames dropped because a client send buffer was full.",
	})
)
