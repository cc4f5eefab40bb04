package otel

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Disabled(t *testing.T) {
	p, err := New(Config{Enabled: false})
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.NotNil(t, p.Meter("test"))
	assert.NoError(t, p.Flush(context.Background()))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNew_EnabledWithoutWriter(t *testing.T) {
	_, err := New(Config{Enabled: true, ServiceName: "flightcore"})
	require.Error(t, err)
}

func TestNew_ExportsMetrics(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(Config{
		Enabled:        true,
		ServiceName:    "flightcore-test",
		ExportInterval: time.Hour, // export only on flush
		MetricWriter:   &buf,
	})
	require.NoError(t, err)
	defer p.Shutdown(context.Background())

	counter, err := p.Meter("test").Int64Counter("commands.seen")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	require.NoError(t, p.Flush(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "commands.seen")
	assert.Contains(t, out, "flightcore-test")
}
