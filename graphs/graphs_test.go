package graphs

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omerfarukorc/ulog-analysis/ulog"
	"github.com/omerfarukorc/ulog-analysis/ulog/ulogtest"
)

func parseSample(t *testing.T) *ulog.ULog {
	t.Helper()
	u, err := ulog.Parse(ulogtest.SampleFlight())
	require.NoError(t, err)
	return u
}

func TestGenerateStandardSet(t *testing.T) {
	u := parseSample(t)
	figs := Generate(u)
	require.NotEmpty(t, figs)

	keys := make([]string, 0, len(figs))
	for _, f := range figs {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{
		"flight_path", "roll", "pitch", "yaw",
		"local_pos_x", "local_pos_y", "local_pos_z",
		"velocity", "manual_control", "raw_accel",
		"vibration", "raw_gyro", "distance_sensor",
		"power", "cpu_ram",
	}, keys)
}

func TestGenerateSkipsEmptyLog(t *testing.T) {
	u, err := ulog.Parse(ulogtest.NewBuilder(1_000_000).Bytes())
	require.NoError(t, err)
	assert.Empty(t, Generate(u))
}

func TestFlightPathUsesEastNorthAxes(t *testing.T) {
	u := parseSample(t)
	fig := buildFlightPath2D(u)
	require.NotNil(t, fig)
	assert.True(t, fig.EqualAspect)
	require.NotEmpty(t, fig.Traces)
	assert.Equal(t, "Estimated", fig.Traces[0].Name)

	lp := u.GetDataset("vehicle_local_position", 0)
	assert.InDelta(t, lp.Field("y")[0], fig.Traces[0].X[0], 1e-9)
	assert.InDelta(t, lp.Field("x")[0], fig.Traces[0].Y[0], 1e-9)
}

func TestManualControlRange(t *testing.T) {
	fig := buildManualControl(parseSample(t))
	require.NotNil(t, fig)
	assert.Equal(t, []float64{-1.1, 1.1}, fig.YRange)
	names := make([]string, 0, len(fig.Traces))
	for _, tr := range fig.Traces {
		names = append(names, tr.Name)
	}
	assert.Equal(t, []string{"Y / Roll", "X / Pitch", "Yaw", "Throttle"}, names)
}

func TestRawGyroInDegrees(t *testing.T) {
	u := parseSample(t)
	fig := buildRawGyro(u)
	require.NotNil(t, fig)
	require.Len(t, fig.Traces, 3)

	sc := u.GetDataset("sensor_combined", 0)
	want := sc.Field("gyro_rad[0]")[0] * 180 / math.Pi
	assert.InDelta(t, want, fig.Traces[0].Y[0], 1e-6)
}

func TestPowerScalesDischargeAndRemaining(t *testing.T) {
	fig := buildPower(parseSample(t))
	require.NotNil(t, fig)
	require.Len(t, fig.Traces, 4)
	assert.Equal(t, "Discharged [mAh / 100]", fig.Traces[2].Name)
	assert.Equal(t, "Remaining [0=empty, 10=full]", fig.Traces[3].Name)
	assert.Equal(t, "dot", fig.Traces[3].Dash)
}

func TestVibrationFallsBackToEstimator(t *testing.T) {
	fig := buildVibration(parseSample(t))
	require.NotNil(t, fig)
	require.Len(t, fig.Traces, 3)
	assert.Equal(t, "Vibe X", fig.Traces[0].Name)
}

func TestSpectrogramFindsTonePeak(t *testing.T) {
	const (
		fs   = 100.0
		tone = 20.0
		n    = 1024
	)
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * tone * float64(i) / fs)
	}
	freqs, times, power := spectrogram(x, fs, 256, 128)
	require.NotEmpty(t, times)
	require.Len(t, power, len(freqs))

	best, bestPower := 0, 0.0
	for k := range freqs {
		var sum float64
		for _, p := range power[k] {
			sum += p
		}
		if sum > bestPower {
			best, bestPower = k, sum
		}
	}
	assert.InDelta(t, tone, freqs[best], 1.0)
}

func TestAccelPSDFigures(t *testing.T) {
	b := ulogtest.NewBuilder(1_000_000).
		Format("sensor_combined:uint64_t timestamp;float[3] gyro_rad;float[3] accelerometer_m_s2;").
		Subscribe(0, 1, "sensor_combined")
	// 30 Hz tone sampled at 100 Hz.
	for i := 0; i < 1024; i++ {
		ts := uint64(1_000_000 + i*10_000)
		ax := float32(math.Sin(2 * math.Pi * 30 * float64(i) / 100))
		b.Data(1, ts, 0, 0, 0, ax, ax, ax)
	}
	u, err := ulog.Parse(b.Bytes())
	require.NoError(t, err)

	figs := buildAccelPSD(u)
	require.Len(t, figs, 3)
	for _, fig := range figs {
		require.NotNil(t, fig.Heatmap)
		assert.Equal(t, "dB", fig.Heatmap.ZLabel)
		assert.Equal(t, len(fig.Heatmap.Y), len(fig.Heatmap.Z))
		// Heatmap times carry the log's start offset.
		assert.GreaterOrEqual(t, fig.Heatmap.X[0], 1.0)
		assert.LessOrEqual(t, fig.Heatmap.Y[len(fig.Heatmap.Y)-1], 50.0)
	}
	assert.Equal(t, "accel_psd_x", figs[0].Key)
}

func TestAccelPSDNeedsEnoughSamples(t *testing.T) {
	assert.Nil(t, buildAccelPSD(parseSample(t)))
}
