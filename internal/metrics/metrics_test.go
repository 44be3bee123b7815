package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveUpstream(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveUpstream("list_students", time.Now(), nil)
	m.ObserveUpstream("list_students", time.Now(), errors.New("boom"))
	m.ObserveUpstream("list_students", time.Now(), nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.upstreamCalls.WithLabelValues("list_students", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamCalls.WithLabelValues("list_students", OutcomeError)))
}

func TestCollectionSizeAndToggles(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.SetCollectionSize("students", 12)
	m.TrackToggle("Absent")
	m.TrackPublish(nil)
	m.TrackPublish(errors.New("redis down"))

	assert.Equal(t, 12.0, testutil.ToFloat64(m.collectionSize.WithLabelValues("students")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.statusToggles.WithLabelValues("Absent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.feedPublishes.WithLabelValues(OutcomeError)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveUpstream("x", time.Now(), nil)
		m.SetCollectionSize("students", 1)
		m.TrackToggle("Present")
		m.TrackPublish(nil)
	})
}
