// Package metrics exposes prometheus counters for bot activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	tele "gopkg.in/telebot.v4"
)

const namespace = "coursebot"

// Registry holds every coursebot collector plus the Go runtime and process collectors.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// Actions counts navigation actions by name.
	Actions = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "actions_total",
		Help:      "Navigation actions handled, by action.",
	}, []string{"action"})

	// Searches counts free-text searches by whether anything matched.
	Searches = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_queries_total",
		Help:      "Free-text searches, by result (hit, empty).",
	}, []string{"result"})

	// Toggles counts favorite toggles by direction.
	Toggles = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "favorite_toggles_total",
		Help:      "Favorite toggles, by op (add, remove, error).",
	}, []string{"op"})

	// Deliveries counts file deliveries by outcome.
	Deliveries = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deliveries_total",
		Help:      "File deliveries, by outcome (sent, fallback, failed).",
	}, []string{"outcome"})

	// Updates measures Telegram update handling time by update kind.
	Updates = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "update_duration_seconds",
		Help:      "Time spent handling a Telegram update, by kind.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"kind"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Action records one handled action.
func Action(name string) {
	Actions.WithLabelValues(name).Inc()
}

// Search records a search and whether it found anything.
func Search(results int) {
	if results == 0 {
		Searches.WithLabelValues("empty").Inc()
		return
	}
	Searches.WithLabelValues("hit").Inc()
}

// Toggle records a favorite toggle.
func Toggle(added bool, err error) {
	switch {
	case err != nil:
		Toggles.WithLabelValues("error").Inc()
	case added:
		Toggles.WithLabelValues("add").Inc()
	default:
		Toggles.WithLabelValues("remove").Inc()
	}
}

// Delivery records a delivery outcome.
func Delivery(outcome string) {
	Deliveries.WithLabelValues(outcome).Inc()
}

// UpdateKind classifies an update for the Updates histogram.
func UpdateKind(u tele.Update) string {
	switch {
	case u.Callback != nil:
		return "callback"
	case u.Message != nil && u.Message.Text != "" && u.Message.Text[0] == '/':
		return "command"
	case u.Message != nil:
		return "message"
	}
	return "other"
}

// Middleware observes how long each update takes to handle.
func Middleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		start := time.Now()
		err := next(c)
		Updates.WithLabelValues(UpdateKind(c.Update())).Observe(time.Since(start).Seconds())
		return err
	}
}
