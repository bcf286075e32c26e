// Package metrics adapts the gateway's request and validation-outcome
// counters onto Prometheus, the way the rest of the ambient stack picks
// one observability backend and exposes it behind a narrow interface
// rather than scattering *prometheus.Counter fields through the gateway.
package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Scope is a stats collector that prefixes the name of everything it
// collects, and lazily creates the underlying Prometheus collector the
// first time a given stat name is observed - callers never declare their
// metrics up front.
type Scope interface {
	NewScope(scopes ...string) Scope

	Inc(stat string, value int64) error
	Gauge(stat string, value int64) error
	GaugeDelta(stat string, value int64) error
	Timing(stat string, delta int64) error
	TimingDuration(stat string, delta time.Duration) error
	SetInt(stat string, value int64) error

	// IncResult increments a counter keyed by stat with result dotted onto
	// the end (e.g. "validate.allowed", "validate.Blocked"), the way
	// gatewayfe records one validation outcome per request without a
	// separate named counter per outcome.
	IncResult(stat, result string) error

	MustRegister(...prometheus.Collector)
}

// promScope is a Scope that sends data to Prometheus, lazily registering
// each stat's collector the first time it's observed.
type promScope struct {
	prometheus.Registerer
	prefix string

	mu        sync.Mutex
	counters  map[string]prometheus.Counter
	gauges    map[string]prometheus.Gauge
	summaries map[string]prometheus.Summary
}

var _ Scope = &promScope{}

// NewPromScope returns a Scope that sends data to Prometheus via
// registerer, with every stat name prefixed by scopes joined with
// periods.
func NewPromScope(registerer prometheus.Registerer, scopes ...string) Scope {
	return &promScope{
		Registerer: registerer,
		prefix:     strings.Join(scopes, ".") + ".",
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		summaries:  make(map[string]prometheus.Summary),
	}
}

// NewScope generates a new Scope prefixed by this Scope's prefix plus the
// prefixes given joined by periods.
func (s *promScope) NewScope(scopes ...string) Scope {
	scope := strings.Join(scopes, ".")
	return NewPromScope(s.Registerer, s.prefix+scope)
}

func (s *promScope) autoCounter(name string) prometheus.Counter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.counters[name]; ok {
		return c
	}
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: sanitize(name), Help: name})
	s.MustRegister(c)
	s.counters[name] = c
	return c
}

func (s *promScope) autoGauge(name string) prometheus.Gauge {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.gauges[name]; ok {
		return g
	}
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: sanitize(name), Help: name})
	s.MustRegister(g)
	s.gauges[name] = g
	return g
}

func (s *promScope) autoSummary(name string) prometheus.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sm, ok := s.summaries[name]; ok {
		return sm
	}
	sm := prometheus.NewSummary(prometheus.SummaryOpts{Name: sanitize(name), Help: name})
	s.MustRegister(sm)
	s.summaries[name] = sm
	return sm
}

// sanitize turns a dotted stat name into a prometheus-legal metric name.
func sanitize(name string) string {
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
			out[i] = c
		default:
			out[i] = '_'
		}
	}
	return string(out)
}

// Inc increments the given stat and adds the Scope's prefix to the name.
func (s *promScope) Inc(stat string, value int64) error {
	s.autoCounter(s.prefix + stat).Add(float64(value))
	return nil
}

// Gauge sends a gauge stat and adds the Scope's prefix to the name.
func (s *promScope) Gauge(stat string, value int64) error {
	s.autoGauge(s.prefix + stat).Set(float64(value))
	return nil
}

// GaugeDelta sends the change in a gauge stat and adds the Scope's prefix
// to the name.
func (s *promScope) GaugeDelta(stat string, value int64) error {
	s.autoGauge(s.prefix + stat).Add(float64(value))
	return nil
}

// Timing sends a latency stat and adds the Scope's prefix to the name.
func (s *promScope) Timing(stat string, delta int64) error {
	s.autoSummary(s.prefix + stat + "_seconds").Observe(float64(delta))
	return nil
}

// TimingDuration sends a latency stat as a time.Duration and adds the
// Scope's prefix to the name.
func (s *promScope) TimingDuration(stat string, delta time.Duration) error {
	s.autoSummary(s.prefix + stat + "_seconds").Observe(delta.Seconds())
	return nil
}

// SetInt sets a stat's integer value and adds the Scope's prefix to the
// name.
func (s *promScope) SetInt(stat string, value int64) error {
	s.autoGauge(s.prefix + stat).Set(float64(value))
	return nil
}

// IncResult increments stat+"."+result by one.
func (s *promScope) IncResult(stat, result string) error {
	return s.Inc(stat+"."+result, 1)
}

type noopScope struct{}

// NewNoopScope returns a Scope that won't collect anything.
func NewNoopScope() Scope {
	return noopScope{}
}
func (ns noopScope) NewScope(scopes ...string) Scope {
	return ns
}
func (noopScope) Inc(stat string, value int64) error {
	return nil
}
func (noopScope) Gauge(stat string, value int64) error {
	return nil
}
func (noopScope) GaugeDelta(stat string, value int64) error {
	return nil
}
func (noopScope) Timing(stat string, delta int64) error {
	return nil
}
func (noopScope) TimingDuration(stat string, delta time.Duration) error {
	return nil
}
func (noopScope) SetInt(stat string, value int64) error {
	return nil
}
func (noopScope) IncResult(stat, result string) error {
	return nil
}
func (noopScope) MustRegister(...prometheus.Collector) {
}
