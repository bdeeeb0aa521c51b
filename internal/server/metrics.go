package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admitgen_http_requests_total",
		Help: "HTTP requests served, by method and status.",
	}, []string{"method", "status"})

	lettersRendered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admitgen_letters_rendered_total",
		Help: "Letters rendered, by output.",
	}, []string{"output"})
)
