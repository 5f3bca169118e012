// Package ulog decodes the ULog binary flight-log format written by
// PX4/ArduPilot autopilot firmware: a 16-byte header followed by a stream of
// typed messages carrying format definitions, metadata, parameters and
// timestamped topic data.
package ulog

import (
	"fmt"
	"os"
	"sort"
)

type (
	// ParamChange records a parameter update during the data section.
	ParamChange struct {
		Timestamp uint64
		Name      string
		Value     any
	}

	// LoggedMessage is a free-form firmware log line.
	LoggedMessage struct {
		Level     uint8
		Tag       uint16
		Timestamp uint64
		Message   string
	}

	// Dropout marks a period where the logger could not keep up.
	Dropout struct {
		Timestamp  uint64
		DurationMS uint16
	}

	// ULog is a fully decoded log file.
	ULog struct {
		FileVersion    uint8
		StartTimestamp uint64 // µs, from the file header
		LastTimestamp  uint64 // µs, largest data timestamp seen

		Formats       map[string]*MessageFormat
		Info          map[string]any
		InfoMultiple  map[string][]any
		InitialParams map[string]any
		DefaultParams map[string]any
		ChangedParams []ParamChange
		Logged        []LoggedMessage
		Dropouts      []Dropout

		// Truncated is set when the file ends mid-message. Everything decoded
		// up to that point is kept.
		Truncated bool

		datasets []*Dataset
		subs     map[uint16]*Dataset
	}
)

// ReadFile decodes the log at path.
func ReadFile(path string) (*ULog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read log file: %v", err)
	}
	return Parse(data)
}

// DataList returns every dataset with at least one sample, sorted by topic label.
func (u *ULog) DataList() []*Dataset {
	out := make([]*Dataset, 0, len(u.datasets))
	for _, d := range u.datasets {
		if d.Size() > 0 {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label() < out[j].Label() })
	return out
}

// GetDataset finds the dataset for a topic, preferring the exact multi
// instance and falling back to any instance of the same name.
func (u *ULog) GetDataset(name string, multiID uint8) *Dataset {
	for _, d := range u.datasets {
		if d.Name == name && d.MultiID == multiID && d.Size() > 0 {
			return d
		}
	}
	for _, d := range u.datasets {
		if d.Name == name && d.Size() > 0 {
			return d
		}
	}
	return nil
}

// GetDatasetByLabel resolves a name_multiID topic label.
func (u *ULog) GetDatasetByLabel(label string) *Dataset {
	for _, d := range u.datasets {
		if d.Label() == label && d.Size() > 0 {
			return d
		}
	}
	return nil
}

// TopicNames returns the set of recorded topic names (without multi IDs).
func (u *ULog) TopicNames() map[string]bool {
	names := make(map[string]bool, len(u.datasets))
	for _, d := range u.datasets {
		if d.Size() > 0 {
			names[d.Name] = true
		}
	}
	return names
}

// DurationSeconds is the span between the header timestamp and the last data sample.
func (u *ULog) DurationSeconds() float64 {
	if u.LastTimestamp <= u.StartTimestamp {
		return 0
	}
	return float64(u.LastTimestamp-u.StartTimestamp) / 1e6
}
