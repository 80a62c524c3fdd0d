package gateway

import "time"

// Metrics collects settlement and gateway counters.
type Metrics interface {
	ObserveSettlement(kind, status string, duration time.Duration)
	ObserveGateway(gateway, result string)
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) ObserveSettlement(string, string, time.Duration) {}
func (NoopMetrics) ObserveGateway(string, string)                   {}
