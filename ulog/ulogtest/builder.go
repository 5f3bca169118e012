// Package ulogtest builds ULog byte streams for tests.
package ulogtest

import (
	"encoding/binary"
	"math"
	"strconv"
)

var headerMagic = []byte{'U', 'L', 'o', 'g', 0x01, 0x12, 0x35}

// Builder assembles a ULog file in memory.
type Builder struct {
	buf []byte
}

func NewBuilder(startTS uint64) *Builder {
	b := &Builder{}
	b.buf = append(b.buf, headerMagic...)
	b.buf = append(b.buf, 1) // file version
	b.buf = binary.LittleEndian.AppendUint64(b.buf, startTS)
	return b
}

func (b *Builder) Bytes() []byte {
	return b.buf
}

func (b *Builder) msg(typ byte, payload []byte) *Builder {
	b.buf = binary.LittleEndian.AppendUint16(b.buf, uint16(len(payload)))
	b.buf = append(b.buf, typ)
	b.buf = append(b.buf, payload...)
	return b
}

// Format appends a format definition, e.g. "cpuload:uint64_t timestamp;float load;".
func (b *Builder) Format(def string) *Builder {
	return b.msg('F', []byte(def))
}

// InfoString appends a char-array info message.
func (b *Builder) InfoString(name, value string) *Builder {
	key := "char[" + strconv.Itoa(len(value)) + "] " + name
	payload := append([]byte{byte(len(key))}, key...)
	payload = append(payload, value...)
	return b.msg('I', payload)
}

// InfoUint32 appends a uint32 info message.
func (b *Builder) InfoUint32(name string, value uint32) *Builder {
	key := "uint32_t " + name
	payload := append([]byte{byte(len(key))}, key...)
	payload = binary.LittleEndian.AppendUint32(payload, value)
	return b.msg('I', payload)
}

// InfoUint64 appends a uint64 info message.
func (b *Builder) InfoUint64(name string, value uint64) *Builder {
	key := "uint64_t " + name
	payload := append([]byte{byte(len(key))}, key...)
	payload = binary.LittleEndian.AppendUint64(payload, value)
	return b.msg('I', payload)
}

// ParamFloat appends a float parameter message.
func (b *Builder) ParamFloat(name string, value float32) *Builder {
	key := "float " + name
	payload := append([]byte{byte(len(key))}, key...)
	payload = binary.LittleEndian.AppendUint32(payload, math.Float32bits(value))
	return b.msg('P', payload)
}

// Subscribe appends an add-subscription message.
func (b *Builder) Subscribe(multiID uint8, msgID uint16, name string) *Builder {
	payload := []byte{multiID}
	payload = binary.LittleEndian.AppendUint16(payload, msgID)
	payload = append(payload, name...)
	return b.msg('A', payload)
}

// Data appends a data message: the timestamp followed by float32 values,
// matching formats declared as "uint64_t timestamp;float a;float b;...".
func (b *Builder) Data(msgID uint16, ts uint64, values ...float32) *Builder {
	payload := binary.LittleEndian.AppendUint16(nil, msgID)
	payload = binary.LittleEndian.AppendUint64(payload, ts)
	for _, v := range values {
		payload = binary.LittleEndian.AppendUint32(payload, math.Float32bits(v))
	}
	return b.msg('D', payload)
}

// SampleFlight builds a small but realistic flight log covering the topics
// the standard graphs and the vehicle summary read.
func SampleFlight() []byte {
	b := NewBuilder(1_000_000).
		InfoString("sys_name", "PX4").
		InfoString("ver_hw", "SITL").
		InfoString("ver_sw", "9e413df").
		InfoUint32("ver_sw_release", 0x01_0F_02_00). // v1.15.2
		InfoUint64("time_ref_utc", 1_700_000_000_000_000).
		ParamFloat("MC_ROLL_P", 6.5).
		Format("vehicle_attitude:uint64_t timestamp;float[4] q;").
		Format("vehicle_local_position:uint64_t timestamp;float x;float y;float z;float vx;float vy;float vz;float dist_bottom;").
		Format("cpuload:uint64_t timestamp;float load;float ram_usage;").
		Format("battery_status:uint64_t timestamp;float voltage_v;float current_a;float discharged_mah;float remaining;").
		Format("sensor_combined:uint64_t timestamp;float[3] gyro_rad;float[3] accelerometer_m_s2;").
		Format("manual_control_setpoint:uint64_t timestamp;float roll;float pitch;float yaw;float throttle;").
		Format("estimator_status:uint64_t timestamp;float[3] vibe;").
		Subscribe(0, 1, "vehicle_attitude").
		Subscribe(0, 2, "vehicle_local_position").
		Subscribe(0, 3, "cpuload").
		Subscribe(0, 4, "battery_status").
		Subscribe(0, 5, "sensor_combined").
		Subscribe(0, 6, "manual_control_setpoint").
		Subscribe(0, 7, "estimator_status")

	const samples = 50
	for i := 0; i < samples; i++ {
		ts := uint64(1_000_000 + i*100_000)
		fi := float32(i)
		phase := float64(i) * 0.2

		// slow rotation around yaw
		q0 := float32(math.Cos(phase / 2))
		q3 := float32(math.Sin(phase / 2))
		b.Data(1, ts, q0, 0, 0, q3)

		b.Data(2, ts,
			fi*0.5, fi*0.25, -fi*0.1, // x, y, z (climbing in NED)
			0.5, 0.25, -0.1, // vx, vy, vz
			fi*0.1) // dist_bottom
		b.Data(3, ts, 0.35+0.001*fi, 0.42)
		b.Data(4, ts, 12.6-0.01*fi, 8.5, 10*fi, 1-0.01*fi)
		b.Data(5, ts,
			0.01, -0.01, 0.002,
			0.1, -0.1, -9.81)
		b.Data(6, ts, 0.1, -0.1, 0, 0.6)
		b.Data(7, ts, 0.5, 0.4, 0.3)
	}
	return b.Bytes()
}
