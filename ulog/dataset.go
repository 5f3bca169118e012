package ulog

import (
	"fmt"
	"sort"
)

// Dataset holds every sample recorded for one (topic, multi instance)
// subscription: a timestamp column in microseconds plus one float64 column
// per numeric field, in wire order.
type Dataset struct {
	Name    string
	MultiID uint8
	MsgID   uint16

	Timestamps []uint64
	Data       map[string][]float64

	fields  []string // numeric field names in wire order, timestamp excluded
	layout  []column
	rowSize int
	tsCol   int // offset of the timestamp column in the row
}

func newDataset(name string, multiID uint8, msgID uint16, f *MessageFormat, formats map[string]*MessageFormat) (*Dataset, error) {
	cols, rowSize, err := f.flatten(formats, "", 0)
	if err != nil {
		return nil, err
	}

	d := &Dataset{
		Name:    name,
		MultiID: multiID,
		MsgID:   msgID,
		Data:    make(map[string][]float64),
		layout:  cols,
		rowSize: rowSize,
		tsCol:   -1,
	}

	for _, c := range cols {
		if c.name == "timestamp" && c.typ == "uint64_t" {
			d.tsCol = c.offset
			continue
		}
		if c.skipped {
			continue
		}
		d.fields = append(d.fields, c.name)
		d.Data[c.name] = nil
	}

	if d.tsCol < 0 {
		return nil, fmt.Errorf("format %s has no uint64 timestamp field", name)
	}
	return d, nil
}

// appendRow decodes one data message payload. Rows may be shorter than the
// declared size when trailing padding was left off the wire.
func (d *Dataset) appendRow(row []byte) {
	if d.tsCol+8 > len(row) {
		return
	}
	ts := uint64(readNumeric("uint64_t", row, d.tsCol))
	d.Timestamps = append(d.Timestamps, ts)

	for _, c := range d.layout {
		if c.skipped || c.offset == d.tsCol {
			continue
		}
		v := 0.0
		if c.offset+basicTypeSizes[c.typ] <= len(row) {
			v = readNumeric(c.typ, row, c.offset)
		}
		d.Data[c.name] = append(d.Data[c.name], v)
	}
}

// Label is the topic label shown to users, name_multiID.
func (d *Dataset) Label() string {
	return fmt.Sprintf("%s_%d", d.Name, d.MultiID)
}

// FieldNames returns the numeric field names sorted alphabetically,
// timestamp excluded.
func (d *Dataset) FieldNames() []string {
	out := make([]string, len(d.fields))
	copy(out, d.fields)
	sort.Strings(out)
	return out
}

// TimeSeconds converts the timestamp column to seconds since boot.
func (d *Dataset) TimeSeconds() []float64 {
	t := make([]float64, len(d.Timestamps))
	for i, ts := range d.Timestamps {
		t[i] = float64(ts) / 1e6
	}
	return t
}

// Field returns the samples of one field, or nil when it does not exist.
func (d *Dataset) Field(name string) []float64 {
	return d.Data[name]
}

// Size is the number of recorded samples.
func (d *Dataset) Size() int {
	return len(d.Timestamps)
}
