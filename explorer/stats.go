package explorer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

type (
	// Param identifies one selected series.
	Param struct {
		Topic string `json:"topic"`
		Field string `json:"field"`
	}

	// FieldStats are NaN-aware summary statistics of one selected series.
	FieldStats struct {
		Param string  `json:"param"`
		Count int     `json:"count"`
		Min   float64 `json:"min"`
		Max   float64 `json:"max"`
		Mean  float64 `json:"mean"`
		Std   float64 `json:"std"`
	}
)

// Stats computes summary statistics for the selected series of one log.
// Params without data are skipped.
func (e *Explorer) Stats(name string, params []Param) ([]FieldStats, error) {
	u, err := e.Open(name)
	if err != nil {
		return nil, err
	}

	out := make([]FieldStats, 0, len(params))
	for _, p := range params {
		d := u.GetDatasetByLabel(p.Topic)
		if d == nil {
			continue
		}
		values := d.Field(p.Field)
		if values == nil {
			continue
		}

		clean := make([]float64, 0, len(values))
		for _, v := range values {
			if !math.IsNaN(v) {
				clean = append(clean, v)
			}
		}
		if len(clean) == 0 {
			continue
		}

		min, max := clean[0], clean[0]
		for _, v := range clean[1:] {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}

		out = append(out, FieldStats{
			Param: fmt.Sprintf("%s.%s", topicBase(p.Topic), p.Field),
			Count: len(clean),
			Min:   min,
			Max:   max,
			Mean:  stat.Mean(clean, nil),
			Std:   stat.PopStdDev(clean, nil),
		})
	}
	return out, nil
}

// topicBase strips the trailing _multiID from a topic label.
func topicBase(label string) string {
	for i := len(label) - 1; i >= 0; i-- {
		if label[i] == '_' {
			return label[:i]
		}
	}
	return label
}
