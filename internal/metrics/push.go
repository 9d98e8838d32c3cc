package metrics

import (
	"github.com/berfenger/pac2mqtt/pkg/pac_modbus"

	"github.com/prometheus/client_golang/prometheus/push"
)

// PushSink updates the gauges with every reading and pushes the whole
// registry to a Pushgateway.
type PushSink struct {
	metrics *Metrics
	pusher  *push.Pusher
}

func NewPushSink(metrics *Metrics, url, job string) *PushSink {
	return &PushSink{
		metrics: metrics,
		pusher:  push.New(url, job).Gatherer(metrics.registry),
	}
}

func (s *PushSink) Publish(reading *pac_modbus.Reading) error {
	s.metrics.Update(reading)
	return s.pusher.Push()
}
