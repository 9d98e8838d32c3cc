package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/berfenger/pac2mqtt/pkg/pac_modbus"

	"go.uber.org/zap"
)

type ReadingSource interface {
	Read() (*pac_modbus.Reading, error)
}

// Sink receives every successful reading.
type Sink interface {
	Publish(reading *pac_modbus.Reading) error
}

type PollerOption func(*Poller)

func WithSink(name string, sink Sink) PollerOption {
	return func(p *Poller) {
		p.sinks = append(p.sinks, namedSink{name: name, sink: sink})
	}
}

func WithReadErrorHandler(handler func(error)) PollerOption {
	return func(p *Poller) {
		p.onReadError = handler
	}
}

type namedSink struct {
	name string
	sink Sink
}

type Poller struct {
	source      ReadingSource
	interval    time.Duration
	sinks       []namedSink
	onReadError func(error)
	readErrors  uint64
	logger      *zap.Logger
}

func NewPoller(source ReadingSource, interval time.Duration, logger *zap.Logger, opts ...PollerOption) *Poller {
	p := &Poller{
		source:      source,
		interval:    interval,
		onReadError: func(error) {},
		logger:      logger.With(zap.String("component", "poller")),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls until ctx is cancelled. The first reading is taken right away.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.PollOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped", zap.Uint64("read_errors", p.readErrors))
			return ctx.Err()
		case <-ticker.C:
			p.PollOnce(ctx)
		}
	}
}

// PollOnce reads the meter and dispatches the reading to the sinks.
// It returns the read error, sink errors are only logged.
func (p *Poller) PollOnce(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	reading, err := p.source.Read()
	if err != nil {
		p.readErrors++
		p.onReadError(err)
		p.logger.Error("meter read failed", zap.Error(err), zap.Uint64("read_errors", p.readErrors))
		return fmt.Errorf("read meter: %w", err)
	}
	p.logger.Debug("meter read", zap.Duration("took", time.Since(start)))

	for _, s := range p.sinks {
		if err := s.sink.Publish(reading); err != nil {
			p.logger.Warn("sink publish failed", zap.String("sink", s.name), zap.Error(err))
		}
	}
	return nil
}

func (p *Poller) ReadErrors() uint64 {
	return p.readErrors
}
