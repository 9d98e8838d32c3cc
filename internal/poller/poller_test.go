package poller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/berfenger/pac2mqtt/pkg/pac_modbus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSink struct {
	mu       sync.Mutex
	readings []*pac_modbus.Reading
	err      error
}

func (s *recordingSink) Publish(reading *pac_modbus.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = append(s.readings, reading)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.readings)
}

func testSource(t *testing.T) pac_modbus.PACModbusReader {
	reader, err := pac_modbus.CreateTestPACModbusReader()
	require.NoError(t, err)
	return reader
}

type failingSource struct{}

func (failingSource) Read() (*pac_modbus.Reading, error) {
	return nil, errors.New("modbus: request timed out")
}

func TestPollOnce(t *testing.T) {

	assert := assert.New(t)

	first := &recordingSink{}
	second := &recordingSink{}
	p := NewPoller(testSource(t), time.Second, zap.NewNop(),
		WithSink("first", first), WithSink("second", second))

	err := p.PollOnce(context.Background())
	assert.NoError(err)
	assert.Equal(1, first.count())
	assert.Equal(1, second.count())
	assert.Equal(50.02, first.readings[0].Frequency)
	assert.Zero(p.ReadErrors())
}

func TestPollOnceSinkErrorDoesNotStop(t *testing.T) {

	assert := assert.New(t)

	failing := &recordingSink{err: errors.New("broker gone")}
	other := &recordingSink{}
	p := NewPoller(testSource(t), time.Second, zap.NewNop(),
		WithSink("failing", failing), WithSink("other", other))

	assert.NoError(p.PollOnce(context.Background()))
	assert.Equal(1, failing.count())
	assert.Equal(1, other.count())
}

func TestPollOnceReadError(t *testing.T) {

	assert := assert.New(t)

	var handled []error
	sink := &recordingSink{}
	p := NewPoller(failingSource{}, time.Second, zap.NewNop(),
		WithSink("sink", sink),
		WithReadErrorHandler(func(err error) { handled = append(handled, err) }))

	err := p.PollOnce(context.Background())
	assert.ErrorContains(err, "request timed out")
	err = p.PollOnce(context.Background())
	assert.Error(err)

	assert.Equal(0, sink.count())
	assert.Equal(uint64(2), p.ReadErrors())
	assert.Len(handled, 2)
}

func TestPollOnceCancelled(t *testing.T) {

	sink := &recordingSink{}
	p := NewPoller(testSource(t), time.Second, zap.NewNop(), WithSink("sink", sink))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, p.PollOnce(ctx), context.Canceled)
	assert.Equal(t, 0, sink.count())
}

func TestRun(t *testing.T) {

	sink := &recordingSink{}
	p := NewPoller(testSource(t), 10*time.Millisecond, zap.NewNop(), WithSink("sink", sink))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- p.Run(ctx)
	}()

	require.Eventually(t, func() bool { return sink.count() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}

func TestPrinterSinkJSON(t *testing.T) {

	assert := assert.New(t)

	reading, err := testSource(t).Read()
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, NewPrinterSink(&out, true).Publish(reading))

	assert.True(strings.HasSuffix(out.String(), "\n"))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(50.02, decoded["frequency"])
	assert.Contains(decoded, "power")
	assert.Contains(decoded, "tariffs")
}

func TestPrinterSinkNaN(t *testing.T) {

	assert := assert.New(t)

	reading := pac_modbus.NewReading()

	var out bytes.Buffer
	require.NoError(t, NewPrinterSink(&out, true).Publish(&reading))
	assert.Contains(out.String(), `"frequency":0`)

	out.Reset()
	require.NoError(t, NewPrinterSink(&out, false).Publish(&reading))
	assert.Contains(out.String(), "NaN")
	assert.Equal(reading.String()+"\n", out.String())
}
