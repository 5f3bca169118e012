package explorer

import (
	"fmt"
	"math"
)

// DefaultMaxPoints caps the samples returned per series; long flights are
// downsampled before they hit the wire.
const DefaultMaxPoints = 2000

// Series is one plottable time series, time in seconds since boot.
type Series struct {
	Topic  string    `json:"topic"`
	Field  string    `json:"field"`
	Time   []float64 `json:"time"`
	Values []float64 `json:"values"`
}

// Topics returns the sorted name_multiID topic labels of one log.
func (e *Explorer) Topics(name string) ([]string, error) {
	u, err := e.Open(name)
	if err != nil {
		return nil, err
	}
	list := u.DataList()
	labels := make([]string, 0, len(list))
	for _, d := range list {
		labels = append(labels, d.Label())
	}
	return labels, nil
}

// Fields returns the sorted field names of one topic, timestamp excluded.
func (e *Explorer) Fields(name, topic string) ([]string, error) {
	u, err := e.Open(name)
	if err != nil {
		return nil, err
	}
	d := u.GetDatasetByLabel(topic)
	if d == nil {
		return nil, fmt.Errorf("log %s has no topic %s", name, topic)
	}
	return d.FieldNames(), nil
}

// Series extracts one field as a time series, downsampled to maxPoints.
// maxPoints <= 0 applies the explorer default.
func (e *Explorer) Series(name, topic, field string, maxPoints int) (*Series, error) {
	u, err := e.Open(name)
	if err != nil {
		return nil, err
	}
	d := u.GetDatasetByLabel(topic)
	if d == nil {
		return nil, fmt.Errorf("log %s has no topic %s", name, topic)
	}
	values := d.Field(field)
	if values == nil {
		return nil, fmt.Errorf("topic %s has no field %s", topic, field)
	}

	if maxPoints <= 0 {
		maxPoints = e.maxPoints
	}
	t, y := Downsample(d.TimeSeconds(), values, maxPoints)
	return &Series{Topic: topic, Field: field, Time: t, Values: y}, nil
}

// Downsample reduces a series to at most maxPts points, keeping the first and
// last sample and, per bucket, the point deviating most from the bucket mean
// so spikes survive.
func Downsample(x, y []float64, maxPts int) ([]float64, []float64) {
	n := len(x)
	if maxPts < 3 || n <= maxPts {
		return x, y
	}

	step := float64(n) / float64(maxPts)
	indices := make([]int, 0, maxPts)
	indices = append(indices, 0)

	for i := 1; i < maxPts-1; i++ {
		start := int(float64(i) * step)
		end := int(float64(i+1) * step)
		if end > n {
			end = n
		}
		if start >= end {
			indices = append(indices, start)
			continue
		}

		bucket := y[start:end]
		avg := 0.0
		for _, v := range bucket {
			avg += v
		}
		avg /= float64(len(bucket))

		best := start
		bestDev := math.Inf(-1)
		for j, v := range bucket {
			dev := math.Abs(v - avg)
			if dev > bestDev {
				bestDev = dev
				best = start + j
			}
		}
		indices = append(indices, best)
	}
	indices = append(indices, n-1)

	xd := make([]float64, len(indices))
	yd := make([]float64, len(indices))
	for i, idx := range indices {
		xd[i] = x[idx]
		yd[i] = y[idx]
	}
	return xd, yd
}
