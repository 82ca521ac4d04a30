// Package metrics exports venmoauth flow outcomes to Prometheus.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/venmoauth"
)

// Observer implements venmoauth.Observer with Prometheus collectors.
type Observer struct {
	challenges prometheus.Counter
	callbacks  *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

var _ venmoauth.Observer = (*Observer)(nil)

// New creates the collectors under the given namespace ("venmoauth" if empty).
// They are not registered; call Register.
func New(namespace string) *Observer {
	if namespace == "" {
		namespace = "venmoauth"
	}
	return &Observer{
		challenges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "challenges_total",
			Help:      "Redirects to the Venmo authorization endpoint",
		}),
		callbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "callbacks_total",
			Help:      "Completed callbacks by terminal stage and outcome",
		}, []string{"stage", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "callback_duration_seconds",
			Help:      "Callback latency including token exchange and profile fetch",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"outcome"}),
	}
}

// Register registers the collectors on reg, or the default registerer if nil.
// Collectors already registered are ignored.
func (o *Observer) Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{o.challenges, o.callbacks, o.duration} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
		}
	}
	return nil
}

func (o *Observer) ChallengeIssued() {
	o.challenges.Inc()
}

func (o *Observer) CallbackCompleted(stage venmoauth.Stage, err error, elapsed time.Duration) {
	outcome := outcomeOf(err)
	o.callbacks.WithLabelValues(stage.String(), outcome).Inc()
	o.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, venmoauth.ErrProviderDenied):
		return "denied"
	default:
		return "failure"
	}
}
