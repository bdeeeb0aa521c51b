package storage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var opsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "admitgen",
	Subsystem: "store",
	Name:      "operations_total",
	Help:      "Key-value store operations by kind.",
}, []string{"op"})
