package hotcache

import "github.com/prometheus/client_golang/prometheus"

// PrometheusRecorder mirrors liveStats as Prometheus counters, so a process
// that scrapes metrics sees the same hit/miss/promotion/demotion/eviction
// counts Stats() reports, without having to poll Stats() itself. Grounded
// on IvanBrykalov-shardcache's use of prometheus/client_golang to export an
// in-process cache's counters; optional, wired in with WithPrometheus.
type PrometheusRecorder struct {
	hardHits   prometheus.Counter
	weakHits   prometheus.Counter
	misses     prometheus.Counter
	created    prometheus.Counter
	promotions prometheus.Counter
	demotions  prometheus.Counter
	evictions  prometheus.Counter
}

// NewPrometheusRecorder builds a recorder registering seven counters under
// namespace_subsystem_hotcache_* names, and registers them with reg.
func NewPrometheusRecorder(reg prometheus.Registerer, namespace, subsystem string) *PrometheusRecorder {
	counter := func(name, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		})
		reg.MustRegister(c)
		return c
	}
	return &PrometheusRecorder{
		hardHits:   counter("hotcache_hard_hits_total", "Lookups served from the hard tier."),
		weakHits:   counter("hotcache_weak_hits_total", "Lookups recovered from the weak tier."),
		misses:     counter("hotcache_misses_total", "Lookups found in neither tier."),
		created:    counter("hotcache_created_total", "Values constructed by the controller on miss."),
		promotions: counter("hotcache_promotions_total", "Entries promoted from weak back to hard."),
		demotions:  counter("hotcache_demotions_total", "Entries demoted from hard to weak."),
		evictions:  counter("hotcache_evictions_total", "Entries evicted outright (dead weak reference reclaimed)."),
	}
}

func (p *PrometheusRecorder) recordHardHit()   { p.hardHits.Inc() }
func (p *PrometheusRecorder) recordWeakHit()   { p.weakHits.Inc() }
func (p *PrometheusRecorder) recordMiss()      { p.misses.Inc() }
func (p *PrometheusRecorder) recordCreated()   { p.created.Inc() }
func (p *PrometheusRecorder) recordPromotion() { p.promotions.Inc() }
func (p *PrometheusRecorder) recordDemotion()  { p.demotions.Inc() }
func (p *PrometheusRecorder) recordEviction()  { p.evictions.Inc() }
