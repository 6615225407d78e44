// Package metrics exposes Prometheus collectors for the game server.
//
// All recording methods are safe on a nil *Metrics so components can be
// constructed without instrumentation in tests.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wordle"

// Metrics bundles the collectors recorded by the session, rotation and
// background subsystems.
type Metrics struct {
	commands        *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
	gamesFinished   *prometheus.CounterVec
	hintsIssued     prometheus.Counter
	checkouts       prometheus.Counter
	background      *prometheus.CounterVec
	actors          prometheus.Gauge
	rotations       *prometheus.CounterVec
}

// New constructs collectors and registers them with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{}
	var err error

	if m.commands, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "commands_total",
		Help:      "Session commands processed, partitioned by command and outcome.",
	}, []string{"command", "outcome"})); err != nil {
		return nil, err
	}

	if m.commandDuration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "command_duration_seconds",
		Help:      "Time a command spent in its actor turn, including external calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"command"})); err != nil {
		return nil, err
	}

	if m.gamesFinished, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "game",
		Name:      "finished_total",
		Help:      "Games that reached a terminal status.",
	}, []string{"status"})); err != nil {
		return nil, err
	}

	if m.hintsIssued, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "hint",
		Name:      "issued_total",
		Help:      "Hints issued after a confirmed payment.",
	})); err != nil {
		return nil, err
	}

	if m.checkouts, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "hint",
		Name:      "checkouts_created_total",
		Help:      "Checkout sessions created for hint payments.",
	})); err != nil {
		return nil, err
	}

	if m.background, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "background",
		Name:      "tasks_total",
		Help:      "Detached tasks partitioned by task and result (ok, failed, dropped).",
	}, []string{"task", "result"})); err != nil {
		return nil, err
	}

	if m.actors, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "actors",
		Help:      "Per-user session actors currently running.",
	})); err != nil {
		return nil, err
	}

	if m.rotations, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "daily",
		Name:      "rotations_total",
		Help:      "Daily word rotations partitioned by result (created, skipped, failed).",
	}, []string{"result"})); err != nil {
		return nil, err
	}

	return m, nil
}

// register adds c to reg, reusing an identical collector that is already registered.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
			return c, fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
		}
		return c, fmt.Errorf("register collector: %w", err)
	}
	return c, nil
}

// Command records one processed session command.
func (m *Metrics) Command(command, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(command, outcome).Inc()
	m.commandDuration.WithLabelValues(command).Observe(took.Seconds())
}

// GameFinished records a terminal transition.
func (m *Metrics) GameFinished(status string) {
	if m == nil {
		return
	}
	m.gamesFinished.WithLabelValues(status).Inc()
}

func (m *Metrics) HintIssued() {
	if m == nil {
		return
	}
	m.hintsIssued.Inc()
}

func (m *Metrics) CheckoutCreated() {
	if m == nil {
		return
	}
	m.checkouts.Inc()
}

// Background records the result of a detached task.
func (m *Metrics) Background(task, result string) {
	if m == nil {
		return
	}
	m.background.WithLabelValues(task, result).Inc()
}

func (m *Metrics) ActorStarted() {
	if m == nil {
		return
	}
	m.actors.Inc()
}

func (m *Metrics) ActorStopped() {
	if m == nil {
		return
	}
	m.actors.Dec()
}

// Rotation records the result of a daily word rotation.
func (m *Metrics) Rotation(result string) {
	if m == nil {
		return
	}
	m.rotations.WithLabelValues(result).Inc()
}
