package graphs

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/omerfarukorc/ulog-analysis/ulog"
)

const (
	// minPSDSamples is the shortest series worth a spectrogram.
	minPSDSamples = 512
	psdFloor      = 1e-12
	maxPSDFreq    = 500.0
)

// buildAccelPSD renders one spectrogram heatmap per accelerometer axis,
// the way Flight Review shows acceleration power spectral density.
func buildAccelPSD(u *ulog.ULog) []*Figure {
	sc := u.GetDataset("sensor_combined", 0)
	if sc == nil {
		return nil
	}
	t := sc.TimeSeconds()
	if len(t) < minPSDSamples {
		return nil
	}
	dt := medianStep(t)
	if dt <= 0 {
		return nil
	}
	fs := 1.0 / dt

	nperseg := len(t) / 4
	if nperseg > 256 {
		nperseg = 256
	}
	noverlap := nperseg / 2

	var figs []*Figure
	for i, axis := range []string{"X", "Y", "Z"} {
		vals := sc.Field(fmt.Sprintf("accelerometer_m_s2[%d]", i))
		if vals == nil {
			continue
		}
		freqs, times, power := spectrogram(demean(vals), fs, nperseg, noverlap)
		if len(times) == 0 {
			continue
		}
		for j := range times {
			times[j] += t[0]
		}

		// Cap the frequency axis and convert to dB.
		maxFreq := math.Min(fs/2, maxPSDFreq)
		rows := 0
		for rows < len(freqs) && freqs[rows] <= maxFreq {
			rows++
		}
		z := make([][]float64, rows)
		for r := 0; r < rows; r++ {
			z[r] = make([]float64, len(times))
			for c := range times {
				z[r][c] = 10 * math.Log10(math.Max(power[r][c], psdFloor))
			}
		}

		figs = append(figs, &Figure{
			Key:    "accel_psd_" + strings.ToLower(axis),
			Title:  fmt.Sprintf("Acceleration Power Spectral Density — %s", axis),
			XTitle: "Time (s)",
			YTitle: "Frequency [Hz]",
			Heatmap: &Heatmap{
				X:      times,
				Y:      freqs[:rows],
				Z:      z,
				ZLabel: "dB",
			},
		})
	}
	return figs
}

// spectrogram computes a one-sided Welch-style PSD per Hann-windowed
// segment. power is indexed [freq][segment], times are segment centers
// in seconds relative to the first sample.
func spectrogram(x []float64, fs float64, nperseg, noverlap int) (freqs, times []float64, power [][]float64) {
	if nperseg < 2 || len(x) < nperseg {
		return nil, nil, nil
	}
	step := nperseg - noverlap
	if step < 1 {
		step = 1
	}

	window := make([]float64, nperseg)
	var winPower float64
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(nperseg-1)))
		winPower += window[i] * window[i]
	}

	fft := fourier.NewFFT(nperseg)
	nfreq := nperseg/2 + 1

	freqs = make([]float64, nfreq)
	for k := range freqs {
		freqs[k] = float64(k) * fs / float64(nperseg)
	}
	power = make([][]float64, nfreq)

	seg := make([]float64, nperseg)
	for start := 0; start+nperseg <= len(x); start += step {
		for i := range seg {
			seg[i] = x[start+i] * window[i]
		}
		coeffs := fft.Coefficients(nil, seg)
		for k := 0; k < nfreq; k++ {
			c := coeffs[k]
			p := (real(c)*real(c) + imag(c)*imag(c)) / (fs * winPower)
			if k != 0 && k != nperseg/2 {
				p *= 2 // one-sided spectrum
			}
			power[k] = append(power[k], p)
		}
		times = append(times, (float64(start)+float64(nperseg)/2)/fs)
	}
	return freqs, times, power
}

func demean(vals []float64) []float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = v - mean
	}
	return out
}

func medianStep(t []float64) float64 {
	if len(t) < 2 {
		return 0
	}
	diffs := make([]float64, len(t)-1)
	for i := 1; i < len(t); i++ {
		diffs[i-1] = t[i] - t[i-1]
	}
	sort.Float64s(diffs)
	return diffs[len(diffs)/2]
}
