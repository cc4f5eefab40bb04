package command

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/skyward/flightcore/internal/command"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
