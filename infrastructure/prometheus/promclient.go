package promclient

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var StreamReconnectsCounter = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "market_stream_reconnects_total",
		Help: "market stream reconnect attempts",
	},
)

var OrdersSentCounter = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "orders_sent_total",
		Help: "orders accepted by the exchange",
	},
)

var FlightCountEstimateGauge = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "flight_count_estimate",
		Help: "fair value estimate from the total flight count",
	},
)

var FlowImbalanceEstimateGauge = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "flow_imbalance_estimate",
		Help: "fair value estimate from the arrival/departure flow imbalance",
	},
)

func StartPromClientServer(addr string) {
	reg := prometheus.NewRegistry()
	promHandler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	reg.MustRegister(StreamReconnectsCounter)
	reg.MustRegister(OrdersSentCounter)
	reg.MustRegister(FlightCountEstimateGauge)
	reg.MustRegister(FlowImbalanceEstimateGauge)
	reg.MustRegister(collectors.NewGoCollector())

	http.Handle("/metrics", promHandler)
	log.Printf("prometheus server listening at %s", addr)

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
