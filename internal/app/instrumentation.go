package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"time"
)

var (
	requestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "icomfort",
		Subsystem: "monitor",
		Name:      "http_requests_total",
		Help:      "total number of http requests",
	},
		[]string{"code", "method"},
	)

	requestDuration = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: "icomfort",
		Subsystem: "monitor",
		Name:      "http_request_duration_seconds",
		Help:      "duration of http requests",
	},
		[]string{"code", "method"},
	)
)

func instrumentedHTTPClient(counter *prometheus.CounterVec, obs prometheus.ObserverVec) *http.Client {
	rt := promhttp.InstrumentRoundTripperCounter(counter,
		promhttp.InstrumentRoundTripperDuration(obs,
			http.DefaultTransport,
		),
	)
	return &http.Client{Transport: rt, Timeout: 30 * time.Second}
}
