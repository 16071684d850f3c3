package metrics

import (
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nakabonne/tstorage"
	"go.uber.org/zap"
)

var (
	storage  tstorage.Storage
	initOnce sync.Once
	counters sync.Map // metric name -> *int64
)

// InitMetrics opens the embedded time-series store under workdir/metrics.
func InitMetrics(workdir string) error {
	var err error
	initOnce.Do(func() {
		storage, err = tstorage.NewStorage(
			tstorage.WithDataPath(filepath.Join(workdir, "metrics")),
			tstorage.WithTimestampPrecision(tstorage.Seconds),
			tstorage.WithRetention(7*24*time.Hour),
		)
	})
	return err
}

// SetGauge records an instantaneous value for the named metric.
func SetGauge(name string, value int64) {
	if storage == nil {
		return
	}
	err := storage.InsertRows([]tstorage.Row{
		{
			Metric:    name,
			DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: float64(value)},
		},
	})
	if err != nil {
		zap.S().Debugf("metrics insert failed: %s", err.Error())
	}
}

// IncrCounter increments a monotonic counter and records the new total.
func IncrCounter(name string, delta int64) {
	v, _ := counters.LoadOrStore(name, new(int64))
	total := atomic.AddInt64(v.(*int64), delta)
	SetGauge(name, total)
}

// GetLatest returns the most recent recorded value for the named metric.
func GetLatest(name string) (float64, bool) {
	if storage == nil {
		return 0, false
	}
	points, err := storage.Select(name, nil, time.Now().Add(-24*time.Hour).Unix(), time.Now().Unix())
	if err != nil || len(points) == 0 {
		return 0, false
	}
	return points[len(points)-1].Value, true
}

// Close flushes and closes the metrics store.
func Close() error {
	if storage == nil {
		return nil
	}
	return storage.Close()
}
