package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cmi-trading/flightbot/config"
	"github.com/cmi-trading/flightbot/exchange"
	promclient "github.com/cmi-trading/flightbot/infrastructure/prometheus"
	"github.com/cmi-trading/flightbot/pricing"
	"github.com/cmi-trading/flightbot/schedule"
	"github.com/cmi-trading/flightbot/series"
	"github.com/cmi-trading/flightbot/strategy"
)

func main() {
	conf, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if conf.Metrics.Enabled {
		go promclient.StartPromClientServer(conf.Metrics.Addr)
	}

	fetcher := schedule.NewFetcher(conf.Schedule.BaseURL, conf.Schedule.Pages, schedule.Window{
		From: conf.Schedule.From,
		To:   conf.Schedule.To,
	})
	arrivals := fetcher.FetchAll(true)
	departures := fetcher.FetchAll(false)

	flightCount := pricing.FlightCountEstimate(arrivals, departures)
	flowImbalance := pricing.FlowImbalanceEstimate(arrivals, departures, conf.Pricing.WindowStart, conf.Pricing.WindowEnd)
	log.Printf("flight count estimate: %.0f, flow imbalance estimate: %.0f", flightCount, flowImbalance)

	promclient.FlightCountEstimateGauge.Set(flightCount)
	promclient.FlowImbalanceEstimateGauge.Set(flowImbalance)

	store := series.NewStore(conf.Series.Path)
	if err := store.Append(flightCount, flowImbalance); err != nil {
		log.Printf("failed to persist estimates: %v", err)
	}

	api := exchange.NewSyncAPI(conf.Exchange.BaseURL, conf.Exchange.Username, conf.Exchange.Password)
	session := exchange.NewSession(api)

	quoter := strategy.NewQuoter(session.API(), conf.Exchange.Product, flightCount)
	if err := session.Start(quoter); err != nil {
		log.Fatalf("failed to start trading session: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	session.Stop()
	api.CancelAllOrders()
}
