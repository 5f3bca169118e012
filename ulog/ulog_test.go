package ulog

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// logBuilder assembles a ULog byte stream for tests.
type logBuilder struct {
	buf []byte
}

func newLogBuilder(startTS uint64) *logBuilder {
	b := &logBuilder{}
	b.buf = append(b.buf, headerMagic...)
	b.buf = append(b.buf, 1) // file version
	b.buf = binary.LittleEndian.AppendUint64(b.buf, startTS)
	return b
}

func (b *logBuilder) msg(typ byte, payload []byte) *logBuilder {
	b.buf = binary.LittleEndian.AppendUint16(b.buf, uint16(len(payload)))
	b.buf = append(b.buf, typ)
	b.buf = append(b.buf, payload...)
	return b
}

func (b *logBuilder) flagBits(incompat0 byte) *logBuilder {
	payload := make([]byte, 40)
	payload[8] = incompat0
	return b.msg(msgFlagBits, payload)
}

func (b *logBuilder) format(def string) *logBuilder {
	return b.msg(msgFormat, []byte(def))
}

func (b *logBuilder) info(key string, value []byte) *logBuilder {
	payload := append([]byte{byte(len(key))}, key...)
	payload = append(payload, value...)
	return b.msg(msgInfo, payload)
}

func (b *logBuilder) param(key string, value []byte) *logBuilder {
	payload := append([]byte{byte(len(key))}, key...)
	payload = append(payload, value...)
	return b.msg(msgParameter, payload)
}

func (b *logBuilder) subscribe(multiID uint8, msgID uint16, name string) *logBuilder {
	payload := []byte{multiID}
	payload = binary.LittleEndian.AppendUint16(payload, msgID)
	payload = append(payload, name...)
	return b.msg(msgAddLogged, payload)
}

func (b *logBuilder) data(msgID uint16, row []byte) *logBuilder {
	payload := binary.LittleEndian.AppendUint16(nil, msgID)
	payload = append(payload, row...)
	return b.msg(msgData, payload)
}

func (b *logBuilder) raw(chunk []byte) *logBuilder {
	b.buf = append(b.buf, chunk...)
	return b
}

func f32(v float32) []byte {
	return binary.LittleEndian.AppendUint32(nil, math.Float32bits(v))
}

func u64(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, v)
}

func i32(v int32) []byte {
	return binary.LittleEndian.AppendUint32(nil, uint32(v))
}

func attitudeRow(ts uint64, q [4]float32) []byte {
	row := u64(ts)
	for _, v := range q {
		row = append(row, f32(v)...)
	}
	return row
}

func TestParseRejectsBadMagic(t *testing.T) {
	_, err := Parse([]byte("not a ulog file, definitely"))
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestParseRejectsUnknownIncompatFlags(t *testing.T) {
	b := newLogBuilder(100).flagBits(0x02)
	_, err := Parse(b.buf)
	assert.ErrorIs(t, err, ErrUnknownIncompatFlags)
}

func TestParseBasicLog(t *testing.T) {
	b := newLogBuilder(1_000_000).
		flagBits(0).
		format("vehicle_attitude:uint64_t timestamp;float[4] q;").
		info("char[10] sys_name", []byte("PX4\x00\x00\x00\x00\x00\x00\x00")).
		info("uint32_t ver_sw_release", binary.LittleEndian.AppendUint32(nil, 0x01_0E_00_00)).
		param("int32_t SYS_AUTOSTART", i32(4001)).
		param("float MC_ROLL_P", f32(6.5)).
		subscribe(0, 3, "vehicle_attitude").
		subscribe(1, 4, "vehicle_attitude").
		data(3, attitudeRow(1_500_000, [4]float32{1, 0, 0, 0})).
		data(4, attitudeRow(1_600_000, [4]float32{0.5, 0.5, 0.5, 0.5})).
		data(3, attitudeRow(2_500_000, [4]float32{0.9, 0.1, 0, 0}))

	u, err := Parse(b.buf)
	require.NoError(t, err)

	assert.False(t, u.Truncated)
	assert.Equal(t, uint64(1_000_000), u.StartTimestamp)
	assert.Equal(t, uint64(2_500_000), u.LastTimestamp)
	assert.InDelta(t, 1.5, u.DurationSeconds(), 1e-9)

	assert.Equal(t, "PX4", u.Info["sys_name"])
	assert.Equal(t, int32(4001), u.InitialParams["SYS_AUTOSTART"])
	assert.Equal(t, float32(6.5), u.InitialParams["MC_ROLL_P"])

	list := u.DataList()
	require.Len(t, list, 2)
	assert.Equal(t, "vehicle_attitude_0", list[0].Label())
	assert.Equal(t, "vehicle_attitude_1", list[1].Label())

	d := u.GetDataset("vehicle_attitude", 0)
	require.NotNil(t, d)
	assert.Equal(t, 2, d.Size())
	assert.Equal(t, []string{"q[0]", "q[1]", "q[2]", "q[3]"}, d.FieldNames())
	assert.InDelta(t, 0.9, d.Field("q[0]")[1], 1e-6)
	assert.InDelta(t, 1.5, d.TimeSeconds()[0], 1e-9)

	// fallback to another instance when the exact multi ID is absent
	assert.Equal(t, uint8(0), u.GetDataset("vehicle_attitude", 7).MultiID)
	require.NotNil(t, u.GetDatasetByLabel("vehicle_attitude_1"))
}

func TestParseNestedAndPaddedFormats(t *testing.T) {
	b := newLogBuilder(0).
		format("inner:float value;uint8_t flag;").
		format("outer:uint64_t timestamp;inner[2] pair;char[4] name;uint8_t _padding0;")

	row := u64(10_000)
	row = append(row, f32(1.5)...)
	row = append(row, 1)
	row = append(row, f32(2.5)...)
	row = append(row, 0)
	row = append(row, []byte("abcd")...)
	// trailing padding byte deliberately left off the wire

	b.subscribe(0, 1, "outer").data(1, row)

	u, err := Parse(b.buf)
	require.NoError(t, err)

	d := u.GetDataset("outer", 0)
	require.NotNil(t, d)
	assert.Equal(t, []string{"pair[0].flag", "pair[0].value", "pair[1].flag", "pair[1].value"}, d.FieldNames())
	assert.InDelta(t, 2.5, d.Field("pair[1].value")[0], 1e-6)
	assert.Equal(t, 1.0, d.Field("pair[0].flag")[0])
	// char and padding columns never become data fields
	assert.Nil(t, d.Field("name"))
}

func TestParseChangedParametersAndDropouts(t *testing.T) {
	b := newLogBuilder(0).
		format("cpuload:uint64_t timestamp;float load;").
		param("float MC_PITCH_P", f32(6.0)).
		subscribe(0, 1, "cpuload")

	row := append(u64(500_000), f32(0.4)...)
	b.data(1, row)
	b.param("float MC_PITCH_P", f32(7.5))
	b.msg(msgDropout, binary.LittleEndian.AppendUint16(nil, 250))

	u, err := Parse(b.buf)
	require.NoError(t, err)

	assert.Equal(t, float32(6.0), u.InitialParams["MC_PITCH_P"])
	require.Len(t, u.ChangedParams, 1)
	assert.Equal(t, "MC_PITCH_P", u.ChangedParams[0].Name)
	assert.Equal(t, float32(7.5), u.ChangedParams[0].Value)

	require.Len(t, u.Dropouts, 1)
	assert.Equal(t, uint16(250), u.Dropouts[0].DurationMS)
}

func TestParseTruncatedFileKeepsPrefix(t *testing.T) {
	b := newLogBuilder(0).
		format("cpuload:uint64_t timestamp;float load;").
		subscribe(0, 1, "cpuload").
		data(1, append(u64(100_000), f32(0.3)...))

	full := b.data(1, append(u64(200_000), f32(0.6)...)).buf
	cut := full[:len(full)-5]

	u, err := Parse(cut)
	require.NoError(t, err)

	assert.True(t, u.Truncated)
	d := u.GetDataset("cpuload", 0)
	require.NotNil(t, d)
	assert.Equal(t, 1, d.Size())
}

func TestParseResumesAtAppendedOffset(t *testing.T) {
	b := newLogBuilder(0).
		flagBits(incompatFlagDataAppended).
		format("cpuload:uint64_t timestamp;float load;").
		subscribe(0, 1, "cpuload").
		data(1, append(u64(100_000), f32(0.3)...))

	// a stretch of junk where the logger was interrupted, then the
	// appended data continues with valid messages
	resume := len(b.buf) + 6
	b.raw([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}).
		data(1, append(u64(900_000), f32(0.8)...))

	// first appended offset lives 16 bytes into the flag bits payload,
	// which directly follows the 16 byte file header and 3 byte message header
	binary.LittleEndian.PutUint64(b.buf[35:], uint64(resume))

	u, err := Parse(b.buf)
	require.NoError(t, err)

	assert.False(t, u.Truncated)
	d := u.GetDataset("cpuload", 0)
	require.NotNil(t, d)
	require.Equal(t, 2, d.Size())
	assert.InDelta(t, 0.8, d.Field("load")[1], 1e-6)
	assert.Equal(t, uint64(900_000), u.LastTimestamp)
}

func TestParseLoggedStrings(t *testing.T) {
	payload := []byte{4} // level
	payload = append(payload, u64(42_000_000)...)
	payload = append(payload, []byte("takeoff detected")...)

	b := newLogBuilder(0).msg(msgLoggedString, payload)

	u, err := Parse(b.buf)
	require.NoError(t, err)
	require.Len(t, u.Logged, 1)
	assert.Equal(t, "takeoff detected", u.Logged[0].Message)
	assert.Equal(t, uint64(42_000_000), u.Logged[0].Timestamp)
}
