package ulog

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/omerfarukorc/ulog-analysis/core/logger"
)

// message types per the ULog file format
const (
	msgFlagBits     = 'B'
	msgFormat       = 'F'
	msgInfo         = 'I'
	msgInfoMultiple = 'M'
	msgParameter    = 'P'
	msgParamDefault = 'Q'
	msgAddLogged    = 'A'
	msgRemoveLogged = 'R'
	msgData         = 'D'
	msgLoggedString = 'L'
	msgLoggedTagged = 'C'
	msgSync         = 'S'
	msgDropout      = 'O'
)

const headerSize = 16

var headerMagic = []byte{'U', 'L', 'o', 'g', 0x01, 0x12, 0x35}

// incompatFlagDataAppended marks logs that continue at the appended offsets
// of the flag bits message. Any other incompat bit makes the file unreadable.
const incompatFlagDataAppended = 1 << 0

// Parse decodes a complete ULog byte stream.
func Parse(data []byte) (*ULog, error) {
	if len(data) < headerSize || !bytes.Equal(data[:len(headerMagic)], headerMagic) {
		return nil, ErrBadMagic
	}

	u := &ULog{
		FileVersion:    data[7],
		StartTimestamp: binary.LittleEndian.Uint64(data[8:16]),
		Formats:        make(map[string]*MessageFormat),
		Info:           make(map[string]any),
		InfoMultiple:   make(map[string][]any),
		InitialParams:  make(map[string]any),
		DefaultParams:  make(map[string]any),
		subs:           make(map[uint16]*Dataset),
	}
	u.LastTimestamp = u.StartTimestamp

	r := &reader{u: u, data: data, pos: headerSize}
	if err := r.run(); err != nil {
		return nil, err
	}
	return u, nil
}

type reader struct {
	u    *ULog
	data []byte
	pos  int

	inDefinitions bool
	appended      []int // remaining recovery offsets from the flag bits message
}

func (r *reader) run() error {
	r.inDefinitions = true

	for {
		if r.pos+3 > len(r.data) {
			r.u.Truncated = r.pos != len(r.data)
			return nil
		}

		size := int(binary.LittleEndian.Uint16(r.data[r.pos:]))
		typ := r.data[r.pos+2]

		if !validMessageType(typ) || r.pos+3+size > len(r.data) {
			// Corrupt or cut off. Logs with appended data legitimately
			// continue at the recorded offsets, otherwise give up on the tail.
			if r.recover() {
				continue
			}
			r.u.Truncated = true
			return nil
		}

		payload := r.data[r.pos+3 : r.pos+3+size]
		r.pos += 3 + size

		if err := r.handle(typ, payload); err != nil {
			return err
		}
	}
}

// recover jumps to the next appended-data offset past the current position.
func (r *reader) recover() bool {
	for len(r.appended) > 0 {
		off := r.appended[0]
		r.appended = r.appended[1:]
		if off > r.pos && off < len(r.data) {
			r.pos = off
			return true
		}
	}
	return false
}

func validMessageType(typ byte) bool {
	switch typ {
	case msgFlagBits, msgFormat, msgInfo, msgInfoMultiple, msgParameter,
		msgParamDefault, msgAddLogged, msgRemoveLogged, msgData,
		msgLoggedString, msgLoggedTagged, msgSync, msgDropout:
		return true
	}
	return false
}

func (r *reader) handle(typ byte, payload []byte) error {
	switch typ {
	case msgFlagBits:
		return r.handleFlagBits(payload)
	case msgFormat:
		return r.handleFormat(payload)
	case msgInfo:
		r.handleInfo(payload)
	case msgInfoMultiple:
		r.handleInfoMultiple(payload)
	case msgParameter:
		r.handleParameter(payload)
	case msgParamDefault:
		r.handleParamDefault(payload)
	case msgAddLogged:
		r.inDefinitions = false
		return r.handleAddLogged(payload)
	case msgRemoveLogged:
		if len(payload) >= 2 {
			delete(r.u.subs, binary.LittleEndian.Uint16(payload))
		}
	case msgData:
		r.inDefinitions = false
		r.handleData(payload)
	case msgLoggedString:
		r.handleLoggedString(payload)
	case msgLoggedTagged:
		r.handleLoggedTagged(payload)
	case msgSync:
		// sync magic carries no state
	case msgDropout:
		if len(payload) >= 2 {
			r.u.Dropouts = append(r.u.Dropouts, Dropout{
				Timestamp:  r.u.LastTimestamp,
				DurationMS: binary.LittleEndian.Uint16(payload),
			})
		}
	}
	return nil
}

func (r *reader) handleFlagBits(payload []byte) error {
	if len(payload) < 40 {
		return fmt.Errorf("ulog: flag bits message too short (%d bytes)", len(payload))
	}
	incompat := payload[8:16]
	if incompat[0]&^byte(incompatFlagDataAppended) != 0 {
		return ErrUnknownIncompatFlags
	}
	for _, b := range incompat[1:] {
		if b != 0 {
			return ErrUnknownIncompatFlags
		}
	}
	for i := 0; i < 3; i++ {
		off := binary.LittleEndian.Uint64(payload[16+i*8:])
		if off > 0 {
			r.appended = append(r.appended, int(off))
		}
	}
	return nil
}

func (r *reader) handleFormat(payload []byte) error {
	f, err := parseFormat(string(payload))
	if err != nil {
		return fmt.Errorf("ulog: %v", err)
	}
	r.u.Formats[f.Name] = f
	return nil
}

// splitKey parses the "type name" key of info and parameter messages.
func splitKey(payload []byte) (typeStr, name string, value []byte, ok bool) {
	if len(payload) < 1 {
		return "", "", nil, false
	}
	keyLen := int(payload[0])
	if 1+keyLen > len(payload) {
		return "", "", nil, false
	}
	key := string(payload[1 : 1+keyLen])
	typeStr, name, found := strings.Cut(key, " ")
	if !found {
		return "", "", nil, false
	}
	return typeStr, name, payload[1+keyLen:], true
}

func (r *reader) handleInfo(payload []byte) {
	typeStr, name, raw, ok := splitKey(payload)
	if !ok {
		return
	}
	if v := decodeTyped(typeStr, raw); v != nil {
		r.u.Info[name] = v
	}
}

func (r *reader) handleInfoMultiple(payload []byte) {
	if len(payload) < 1 {
		return
	}
	// leading is_continued byte, then an ordinary info message
	typeStr, name, raw, ok := splitKey(payload[1:])
	if !ok {
		return
	}
	if v := decodeTyped(typeStr, raw); v != nil {
		r.u.InfoMultiple[name] = append(r.u.InfoMultiple[name], v)
	}
}

func (r *reader) handleParameter(payload []byte) {
	typeStr, name, raw, ok := splitKey(payload)
	if !ok {
		return
	}
	v := decodeTyped(typeStr, raw)
	if v == nil {
		return
	}
	if r.inDefinitions {
		r.u.InitialParams[name] = v
	} else {
		r.u.ChangedParams = append(r.u.ChangedParams, ParamChange{
			Timestamp: r.u.LastTimestamp,
			Name:      name,
			Value:     v,
		})
	}
}

func (r *reader) handleParamDefault(payload []byte) {
	if len(payload) < 1 {
		return
	}
	// leading default_types bitfield, then an ordinary parameter message
	typeStr, name, raw, ok := splitKey(payload[1:])
	if !ok {
		return
	}
	if v := decodeTyped(typeStr, raw); v != nil {
		r.u.DefaultParams[name] = v
	}
}

func (r *reader) handleAddLogged(payload []byte) error {
	if len(payload) < 3 {
		return fmt.Errorf("ulog: subscription message too short")
	}
	multiID := payload[0]
	msgID := binary.LittleEndian.Uint16(payload[1:])
	name := string(payload[3:])

	f, ok := r.u.Formats[name]
	if !ok {
		logger.Warn("subscription for unknown format %s, data will be skipped", name)
		r.u.subs[msgID] = nil
		return nil
	}

	d, err := newDataset(name, multiID, msgID, f, r.u.Formats)
	if err != nil {
		logger.Warn("cannot subscribe %s: %v", name, err)
		r.u.subs[msgID] = nil
		return nil
	}
	r.u.subs[msgID] = d
	r.u.datasets = append(r.u.datasets, d)
	return nil
}

func (r *reader) handleData(payload []byte) {
	if len(payload) < 2 {
		return
	}
	msgID := binary.LittleEndian.Uint16(payload)
	d, ok := r.u.subs[msgID]
	if !ok || d == nil {
		return
	}
	d.appendRow(payload[2:])
	if n := d.Size(); n > 0 {
		if ts := d.Timestamps[n-1]; ts > r.u.LastTimestamp {
			r.u.LastTimestamp = ts
		}
	}
}

func (r *reader) handleLoggedString(payload []byte) {
	if len(payload) < 9 {
		return
	}
	r.u.Logged = append(r.u.Logged, LoggedMessage{
		Level:     payload[0],
		Timestamp: binary.LittleEndian.Uint64(payload[1:]),
		Message:   string(payload[9:]),
	})
}

func (r *reader) handleLoggedTagged(payload []byte) {
	if len(payload) < 11 {
		return
	}
	r.u.Logged = append(r.u.Logged, LoggedMessage{
		Level:     payload[0],
		Tag:       binary.LittleEndian.Uint16(payload[1:]),
		Timestamp: binary.LittleEndian.Uint64(payload[3:]),
		Message:   string(payload[11:]),
	})
}
