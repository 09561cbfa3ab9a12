package metrics

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/systree/internal/systree"
)

// Collector counts what happens during a run on its own registry, so several
// runs in one process never collide. It satisfies systree.Observer.
type Collector struct {
	registry     *prometheus.Registry
	steps        prometheus.Counter
	reportsTotal *prometheus.CounterVec
	migrations   *prometheus.CounterVec
	simTime      prometheus.Gauge
	stepDuration prometheus.Histogram

	mu      sync.Mutex
	metrics []Metric
}

func NewCollector(scenario string, ms ...Metric) *Collector {
	labels := prometheus.Labels{"scenario": scenario}
	c := &Collector{
		registry: prometheus.NewRegistry(),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "systree_steps_total",
			Help:        "Root step calls",
			ConstLabels: labels,
		}),
		reportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "systree_reports_total",
				Help:        "Body reports emitted by steps",
				ConstLabels: labels,
			},
			[]string{"owner"},
		),
		migrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "systree_migrations_total",
				Help:        "Bodies crossing a system boundary",
				ConstLabels: labels,
			},
			[]string{"direction"},
		),
		simTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "systree_sim_time",
			Help:        "Root clock in ticks",
			ConstLabels: labels,
		}),
		stepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "systree_step_duration_seconds",
			Help:        "Wall time spent in one root step",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		metrics: ms,
	}

	c.registry.MustRegister(c.steps, c.reportsTotal, c.migrations, c.simTime, c.stepDuration)
	return c
}

func (c *Collector) OnMigrate(m systree.Migration, owner string, at int64) {
	c.migrations.WithLabelValues(m.String()).Inc()
}

// ObserveStep records one Step call and feeds its reports to every metric.
func (c *Collector) ObserveStep(reports []systree.Report, simTime int64, elapsed time.Duration) {
	c.steps.Inc()
	c.simTime.Set(float64(simTime))
	c.stepDuration.Observe(elapsed.Seconds())

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range reports {
		c.reportsTotal.WithLabelValues(r.Body.Owner).Inc()
		for _, m := range c.metrics {
			m.Observe(r)
		}
	}
}

// Step runs tree.Step and records it.
func (c *Collector) Step(tree *systree.Tree) []systree.Report {
	start := time.Now()
	reports := tree.Step()
	c.ObserveStep(reports, tree.Time(), time.Since(start))
	return reports
}

// Summary flattens the counters and metric values into a map suitable for
// run metadata. A failed gather is logged and whatever was gathered is kept.
func (c *Collector) Summary() map[string]float64 {
	out := map[string]float64{
		"steps":    0,
		"reports":  0,
		"descents": 0,
		"ascents":  0,
		"sim_time": 0,
	}

	families, err := c.registry.Gather()
	if err != nil {
		slog.Warn("gather metrics", "error", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch mf.GetName() {
			case "systree_steps_total":
				out["steps"] += m.GetCounter().GetValue()
			case "systree_reports_total":
				out["reports"] += m.GetCounter().GetValue()
			case "systree_sim_time":
				out["sim_time"] = m.GetGauge().GetValue()
			case "systree_migrations_total":
				for _, lp := range m.GetLabel() {
					if lp.GetName() != "direction" {
						continue
					}
					switch lp.GetValue() {
					case systree.Descend.String():
						out["descents"] += m.GetCounter().GetValue()
					case systree.Ascend.String():
						out["ascents"] += m.GetCounter().GetValue()
					}
				}
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
