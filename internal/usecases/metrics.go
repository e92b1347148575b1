package usecases

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	flowsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codemint_flows_started_total",
		Help: "Transaction flows started, by flow kind.",
	}, []string{"kind"})

	flowsConfirmed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codemint_flows_confirmed_total",
		Help: "Transaction flows that reached on-chain confirmation.",
	}, []string{"kind"})

	flowsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codemint_flows_failed_total",
		Help: "Transaction flows that failed at any stage.",
	}, []string{"kind"})

	flowsAbandoned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codemint_flows_abandoned_total",
		Help: "Transaction flows abandoned before settling.",
	}, []string{"kind"})

	pinsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codemint_pins_created_total",
		Help: "Content pins created, by purpose.",
	}, []string{"purpose"})
)
