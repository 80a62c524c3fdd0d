package metrics

import (
	"net/http"
	"time"

	"github.com/LuanMakohin/api-simples/internal/gateway"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus implements gateway.Metrics on its own registry.
type Prometheus struct {
	registry *prometheus.Registry
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
	gateways *prometheus.CounterVec
}

var _ gateway.Metrics = (*Prometheus)(nil)

func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "settlement_outcomes_total",
			Help: "Settlement attempts by movement kind and resulting status.",
		}, []string{"kind", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "settlement_duration_seconds",
			Help:    "Time spent settling one movement, gateway calls included.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		gateways: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_calls_total",
			Help: "External gateway calls by gateway and result.",
		}, []string{"gateway", "result"}),
	}
	p.registry.MustRegister(
		p.outcomes,
		p.duration,
		p.gateways,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

func (p *Prometheus) ObserveSettlement(kind, status string, duration time.Duration) {
	p.outcomes.WithLabelValues(kind, status).Inc()
	p.duration.WithLabelValues(kind).Observe(duration.Seconds())
}

func (p *Prometheus) ObserveGateway(gateway, result string) {
	p.gateways.WithLabelValues(gateway, result).Inc()
}

// Handler serves the registry in the text exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}
