package logging

import "github.com/prometheus/client_golang/prometheus"

// Metrics exports training progress as Prometheus collectors
type Metrics struct {
	generation     prometheus.Gauge
	bestFitness    prometheus.Gauge
	meanFitness    prometheus.Gauge
	stdFitness     prometheus.Gauge
	skippedCredits prometheus.Counter
}

// NewMetrics creates the collectors and registers them on reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "evlearn_generation",
			Help: "Current generation counter.",
		}),
		bestFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "evlearn_best_fitness",
			Help: "Best fitness of the last evaluated generation.",
		}),
		meanFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "evlearn_mean_fitness",
			Help: "Mean fitness of the last evaluated generation.",
		}),
		stdFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "evlearn_fitness_stddev",
			Help: "Population standard deviation of fitness.",
		}),
		skippedCredits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "evlearn_skipped_credits_total",
			Help: "Selection credits dropped for lack of a crossover partner.",
		}),
	}
	for _, c := range []prometheus.Collector{m.generation, m.bestFitness, m.meanFitness, m.stdFitness, m.skippedCredits} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe updates the collectors from a summary
func (m *Metrics) Observe(s GenerationSummary) {
	m.generation.Set(float64(s.Generation))
	m.bestFitness.Set(s.BestFitness)
	m.meanFitness.Set(s.MeanFitness)
	m.stdFitness.Set(s.StdFitness)
	m.skippedCredits.Add(float64(s.SkippedCredits))
}
