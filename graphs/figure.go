// Package graphs builds the standard PX4 Flight Review figure set from a
// parsed log, in the order review.px4.io presents them. Figures are a plain
// JSON-serializable model rendered client-side.
package graphs

import (
	"math"

	"github.com/omerfarukorc/ulog-analysis/explorer"
)

type (
	// Trace is one line of a figure.
	Trace struct {
		X     []float64 `json:"x"`
		Y     []float64 `json:"y"`
		Name  string    `json:"name"`
		Color string    `json:"color"`
		Width float64   `json:"width"`
		Dash  string    `json:"dash,omitempty"`
	}

	// Heatmap carries spectrogram-style figures.
	Heatmap struct {
		X      []float64   `json:"x"`
		Y      []float64   `json:"y"`
		Z      [][]float64 `json:"z"` // Z[row][col], rows follow Y
		ZLabel string      `json:"z_label"`
	}

	// Figure is one chart: either traces or a heatmap.
	Figure struct {
		Key         string    `json:"key"`
		Title       string    `json:"title"`
		XTitle      string    `json:"x_title"`
		YTitle      string    `json:"y_title"`
		YRange      []float64 `json:"y_range,omitempty"`
		EqualAspect bool      `json:"equal_aspect,omitempty"`
		Traces      []Trace   `json:"traces,omitempty"`
		Heatmap     *Heatmap  `json:"heatmap,omitempty"`
	}
)

// traceColors matches the review.px4.io inspired palette of the UI.
var traceColors = []string{
	"#6366f1", "#10b981", "#f59e0b", "#ef4444",
	"#8b5cf6", "#ec4899", "#06b6d4", "#84cc16",
	"#f97316", "#14b8a6", "#a855f7", "#fb7185",
}

// maxPoints caps the samples per trace; figures are downsampled server-side.
const maxPoints = 2000

func color(i int) string {
	return traceColors[i%len(traceColors)]
}

func newFigure(key, title, yTitle string) *Figure {
	return &Figure{Key: key, Title: title, XTitle: "Time (s)", YTitle: yTitle}
}

// addTrace appends a downsampled line to the figure.
func (f *Figure) addTrace(x, y []float64, name, color string, width float64, dash string) {
	if len(x) == 0 || len(y) == 0 {
		return
	}
	xd, yd := explorer.Downsample(x, y, maxPoints)
	f.Traces = append(f.Traces, Trace{X: xd, Y: yd, Name: name, Color: color, Width: width, Dash: dash})
}

func degrees(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = v * 180 / math.Pi
	}
	return out
}

func scale(vals []float64, k float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = v * k
	}
	return out
}
