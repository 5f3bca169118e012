package explorer

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omerfarukorc/ulog-analysis/store"
	"github.com/omerfarukorc/ulog-analysis/ulog"
	"github.com/omerfarukorc/ulog-analysis/ulog/ulogtest"
)

func newTestExplorer(t *testing.T, cacheSize uint) *Explorer {
	t.Helper()

	s, err := store.NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "flight.ulg"), ulogtest.SampleFlight(), 0o644))

	return NewExplorer(s, store.NewCatalog(store.NewMemoryRepository()), cacheSize, 0)
}

func TestOpenCachesAndEvicts(t *testing.T) {
	e := newTestExplorer(t, 1)
	require.NoError(t, os.WriteFile(filepath.Join(e.Store().Dir(), "second.ulg"), ulogtest.SampleFlight(), 0o644))

	u1, err := e.Open("flight.ulg")
	require.NoError(t, err)
	assert.Equal(t, 1, e.ActiveLogNum())

	// cached: the same parse result comes back
	u1again, err := e.Open("flight.ulg")
	require.NoError(t, err)
	assert.Same(t, u1, u1again)

	// cache of one: opening another log evicts the first
	_, err = e.Open("second.ulg")
	require.NoError(t, err)
	assert.Equal(t, 1, e.ActiveLogNum())

	_, cached := e.logCache.Load("flight.ulg")
	assert.False(t, cached)
}

func TestOpenConcurrentMissesShareOneParse(t *testing.T) {
	e := newTestExplorer(t, 1)
	require.NoError(t, os.WriteFile(filepath.Join(e.Store().Dir(), "second.ulg"), ulogtest.SampleFlight(), 0o644))

	const openers = 8
	for round := 0; round < 50; round++ {
		start := make(chan struct{})
		logs := make([]*ulog.ULog, openers)

		var wg sync.WaitGroup
		for i := 0; i < openers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				u, err := e.Open("flight.ulg")
				assert.NoError(t, err)
				logs[i] = u
			}(i)
		}
		close(start)
		wg.Wait()

		// all racing openers got the same parse result
		for _, u := range logs[1:] {
			assert.Same(t, logs[0], u)
		}

		// the freshly opened log is still cached afterwards
		u, err := e.Open("flight.ulg")
		require.NoError(t, err)
		assert.Same(t, logs[0], u)
		assert.Equal(t, 1, e.ActiveLogNum())

		// evict so the next round misses again
		_, err = e.Open("second.ulg")
		require.NoError(t, err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	e := newTestExplorer(t, 2)
	_, err := e.Open("nope.ulg")
	assert.Error(t, err)
}

func TestTopicsAndFields(t *testing.T) {
	e := newTestExplorer(t, 2)

	topics, err := e.Topics("flight.ulg")
	require.NoError(t, err)
	assert.Contains(t, topics, "vehicle_attitude_0")
	assert.Contains(t, topics, "cpuload_0")
	assert.IsIncreasing(t, topics)

	fields, err := e.Fields("flight.ulg", "vehicle_local_position_0")
	require.NoError(t, err)
	assert.Equal(t, []string{"dist_bottom", "vx", "vy", "vz", "x", "y", "z"}, fields)
	assert.NotContains(t, fields, "timestamp")

	_, err = e.Fields("flight.ulg", "no_such_topic_0")
	assert.Error(t, err)
}

func TestSeries(t *testing.T) {
	e := newTestExplorer(t, 2)

	s, err := e.Series("flight.ulg", "cpuload_0", "load", 0)
	require.NoError(t, err)
	require.Len(t, s.Time, 50)
	assert.InDelta(t, 1.0, s.Time[0], 1e-9) // µs → s
	assert.InDelta(t, 0.35, s.Values[0], 1e-3)

	_, err = e.Series("flight.ulg", "cpuload_0", "bogus", 0)
	assert.Error(t, err)
}

func TestSeriesDownsamples(t *testing.T) {
	e := newTestExplorer(t, 2)

	s, err := e.Series("flight.ulg", "cpuload_0", "load", 10)
	require.NoError(t, err)
	assert.Len(t, s.Time, 10)
	// endpoints survive downsampling
	assert.InDelta(t, 1.0, s.Time[0], 1e-9)
	assert.InDelta(t, 5.9, s.Time[len(s.Time)-1], 1e-9)
}

func TestDownsampleKeepsSpikes(t *testing.T) {
	n := 1000
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = float64(i)
	}
	y[500] = 100 // lone spike

	_, yd := Downsample(x, y, 20)
	assert.Len(t, yd, 20)
	assert.Contains(t, yd, 100.0)
}

func TestStats(t *testing.T) {
	e := newTestExplorer(t, 2)

	stats, err := e.Stats("flight.ulg", []Param{
		{Topic: "cpuload_0", Field: "load"},
		{Topic: "cpuload_0", Field: "missing"},
		{Topic: "missing_0", Field: "load"},
	})
	require.NoError(t, err)
	require.Len(t, stats, 1)

	st := stats[0]
	assert.Equal(t, "cpuload.load", st.Param)
	assert.Equal(t, 50, st.Count)
	assert.InDelta(t, 0.35, st.Min, 1e-3)
	assert.InDelta(t, 0.399, st.Max, 1e-3)
	assert.Greater(t, st.Std, 0.0)
}

func TestInfo(t *testing.T) {
	e := newTestExplorer(t, 2)

	info, err := e.Info("flight.ulg")
	require.NoError(t, err)

	assert.Equal(t, "PX4", info.SysName)
	assert.Equal(t, "SITL", info.HWVersion)
	assert.Equal(t, "v1.15.2", info.SWRelease)
	assert.Equal(t, "EKF2", info.Estimator)
	assert.Equal(t, "0:04", info.Duration)
	assert.Equal(t, "14-11-2023 22:13", info.StartTime)
	assert.Equal(t, 7, info.TopicCount)

	// flight stats derived from local position and attitude
	assert.NotEmpty(t, info.Flight.Distance)
	assert.Equal(t, "4.9 m", info.Flight.MaxAltitude)
	assert.NotEmpty(t, info.Flight.MaxTilt)
}

func TestIndexAndReindex(t *testing.T) {
	e := newTestExplorer(t, 2)
	ctx := context.Background()

	require.NoError(t, e.Index(ctx, "flight.ulg"))

	rec, err := e.Catalog().Get(ctx, "flight.ulg")
	require.NoError(t, err)
	assert.Equal(t, "PX4", rec.Vehicle)
	assert.Equal(t, 7, rec.TopicCount)
	assert.Greater(t, rec.DurationS, 4.0)

	// reindex covers every stored file
	require.NoError(t, os.WriteFile(filepath.Join(e.Store().Dir(), "second.ulg"), ulogtest.SampleFlight(), 0o644))
	require.NoError(t, e.Reindex(ctx, 2))

	n, err := e.Catalog().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
