package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "courier",
		Subsystem: "relay",
		Name:      "commands_total",
		Help:      "Requests handled by the dispatcher, by command and response status.",
	}, []string{"cmd", "status"})

	queuedMessages = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "courier",
		Subsystem: "relay",
		Name:      "queued_messages",
		Help:      "Ciphertext entries currently held across all mailboxes.",
	})

	openConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "courier",
		Subsystem: "relay",
		Name:      "open_connections",
		Help:      "Client connections currently being served.",
	})
)
