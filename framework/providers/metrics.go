package providers

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/km-arc/go-services/framework/extension"
)

// Collector is a shared extension holding a container's prometheus registry.
// Every Metrics provider in a container reports into the same Collector.
type Collector struct {
	extension.Extension

	Namespace string

	registry *prometheus.Registry
	calls    *prometheus.CounterVec
}

// NewCollector declares the shared collector.
func NewCollector(namespace string) *Collector {
	c := &Collector{Namespace: namespace}
	c.Init(namespace, extension.SharedArg)
	return c
}

// Setup creates the registry and the call counter.
func (c *Collector) Setup(_ context.Context) error {
	c.registry = prometheus.NewRegistry()
	c.calls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.Namespace,
		Name:      "calls_total",
		Help:      "Service calls dispatched, by method.",
	}, []string{"method"})
	return c.registry.Register(c.calls)
}

// Registry returns the container's prometheus registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Observe counts one call of method.
func (c *Collector) Observe(method string) {
	c.calls.WithLabelValues(method).Inc()
}

// Calls returns the counter for method.
func (c *Collector) Calls(method string) prometheus.Counter {
	return c.calls.WithLabelValues(method)
}

// Handler exposes the registry in the prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Metrics counts every call it is injected into and hands the call the
// container's Collector.
//
//	def.Attach("metrics", providers.NewMetrics("greeter"))
type Metrics struct {
	extension.InjectionProvider

	Collector *Collector `extension:"collector"`
}

// NewMetrics declares a Metrics provider.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{Collector: NewCollector(namespace)}
	m.Init(namespace)
	return m
}

// Acquire counts the call and returns the Collector.
func (m *Metrics) Acquire(_ context.Context, w *extension.Worker) (any, error) {
	m.Collector.Observe(w.Method)
	return m.Collector, nil
}
