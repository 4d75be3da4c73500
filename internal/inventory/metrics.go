package inventory

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	opLoad = "load"
	opSave = "save"
	opPing = "ping"
)

type StoreMetrics struct {
	Operations *prometheus.CounterVec
	Latency    *prometheus.HistogramVec
	Games      prometheus.Gauge
}

func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_store_operations_total",
				Help: "Catalogue document store operations by result",
			},
			[]string{"op", "result"},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "inventory_store_operation_duration_seconds",
				Help:    "Catalogue document store latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		Games: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_games",
			Help: "Games in the catalogue as of the last load or save",
		}),
	}

	reg.MustRegister(m.Operations, m.Latency, m.Games)
	return m
}

func (m *StoreMetrics) observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Operations.WithLabelValues(op, result).Inc()
	m.Latency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

type instrumentedStore struct {
	next    Store
	metrics *StoreMetrics
}

// InstrumentStore wraps s so every operation is counted and timed.
func InstrumentStore(s Store, m *StoreMetrics) Store {
	if m == nil {
		return s
	}
	return &instrumentedStore{next: s, metrics: m}
}

func (s *instrumentedStore) Load(ctx context.Context) (Document, error) {
	start := time.Now()
	doc, err := s.next.Load(ctx)
	s.metrics.observe(opLoad, start, err)
	if err == nil {
		s.metrics.Games.Set(float64(len(doc.Games)))
	}
	return doc, err
}

func (s *instrumentedStore) Save(ctx context.Context, doc Document) error {
	start := time.Now()
	err := s.next.Save(ctx, doc)
	s.metrics.observe(opSave, start, err)
	if err == nil {
		s.metrics.Games.Set(float64(len(doc.Games)))
	}
	return err
}

func (s *instrumentedStore) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.next.Ping(ctx)
	s.metrics.observe(opPing, start, err)
	return err
}

func (s *instrumentedStore) Close() error {
	return s.next.Close()
}
