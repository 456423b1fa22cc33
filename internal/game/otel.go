package game

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/lukinoo0/Blazefield/internal/game"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// engineMetrics records gameplay counters on the global meter provider.
// Without a configured provider every instrument is a no-op.
type engineMetrics struct {
	shots     metric.Int64Counter
	hits      metric.Int64Counter
	kills     metric.Int64Counter
	drops     metric.Int64Counter
	sessions  metric.Int64UpDownCounter
	broadcast metric.Float64Histogram
}

func newEngineMetrics(m metric.Meter) *engineMetrics {
	if m == nil {
		m = meter()
	}
	metrics := &engineMetrics{}

	var err error
	if metrics.shots, err = m.Int64Counter("blazefield.shots",
		metric.WithDescription("Shots fired")); err != nil {
		otel.Handle(err)
	}
	if metrics.hits, err = m.Int64Counter("blazefield.hits",
		metric.WithDescription("Shots that struck an entity")); err != nil {
		otel.Handle(err)
	}
	if metrics.kills, err = m.Int64Counter("blazefield.kills",
		metric.WithDescription("Lethal hits")); err != nil {
		otel.Handle(err)
	}
	if metrics.drops, err = m.Int64Counter("blazefield.dropped_updates",
		metric.WithDescription("Inbound messages rejected by decoding or validation")); err != nil {
		otel.Handle(err)
	}
	if metrics.sessions, err = m.Int64UpDownCounter("blazefield.sessions",
		metric.WithDescription("Connected human sessions")); err != nil {
		otel.Handle(err)
	}
	if metrics.broadcast, err = m.Float64Histogram("blazefield.broadcast.duration",
		metric.WithDescription("Time spent building and queueing one snapshot"),
		metric.WithUnit("ms")); err != nil {
		otel.Handle(err)
	}
	return metrics
}

func (m *engineMetrics) shotFired(byBot bool) {
	if m.shots == nil {
		return
	}
	m.shots.Add(context.Background(), 1, metric.WithAttributes(attribute.Bool("bot", byBot)))
}

func (m *engineMetrics) hitLanded(headshot bool) {
	if m.hits == nil {
		return
	}
	m.hits.Add(context.Background(), 1, metric.WithAttributes(attribute.Bool("headshot", headshot)))
}

func (m *engineMetrics) killed() {
	if m.kills == nil {
		return
	}
	m.kills.Add(context.Background(), 1)
}

func (m *engineMetrics) dropped(reason string) {
	if m.drops == nil {
		return
	}
	m.drops.Add(context.Background(), 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *engineMetrics) sessionOpened() {
	if m.sessions != nil {
		m.sessions.Add(context.Background(), 1)
	}
}

func (m *engineMetrics) sessionClosed() {
	if m.sessions != nil {
		m.sessions.Add(context.Background(), -1)
	}
}

func (m *engineMetrics) broadcastTook(d time.Duration) {
	if m.broadcast != nil {
		m.broadcast.Record(context.Background(), float64(d)/float64(time.Millisecond))
	}
}
