package graphs

import (
	"fmt"
	"math"

	"github.com/omerfarukorc/ulog-analysis/explorer"
	"github.com/omerfarukorc/ulog-analysis/ulog"
)

type graphDef struct {
	key   string
	title string
	build func(*ulog.ULog) []*Figure
}

// standardGraphs lists every figure in the order review.px4.io shows them.
var standardGraphs = []graphDef{
	{"flight_path", "Local Position (2D)", single(buildFlightPath2D)},
	{"altitude", "Altitude Estimate", single(buildAltitude)},
	{"roll", "Roll Angle", attitude("Roll", 0)},
	{"roll_rate", "Roll Angular Rate", rate("Roll", 0)},
	{"pitch", "Pitch Angle", attitude("Pitch", 1)},
	{"pitch_rate", "Pitch Angular Rate", rate("Pitch", 1)},
	{"yaw", "Yaw Angle", attitude("Yaw", 2)},
	{"yaw_rate", "Yaw Angular Rate", rate("Yaw", 2)},
	{"local_pos_x", "Local Position X", localPos("x", "X")},
	{"local_pos_y", "Local Position Y", localPos("y", "Y")},
	{"local_pos_z", "Local Position Z", localPos("z", "Z")},
	{"velocity", "Velocity", single(buildVelocity)},
	{"manual_control", "Manual Control Inputs", single(buildManualControl)},
	{"actuator_controls", "Actuator Controls", single(buildActuatorControls)},
	{"actuator_outputs", "Actuator Outputs", single(buildActuatorOutputs)},
	{"raw_accel", "Raw Acceleration", single(buildRawAccel)},
	{"vibration", "Vibration Metrics", single(buildVibration)},
	{"raw_gyro", "Raw Angular Speed (Gyroscope)", single(buildRawGyro)},
	{"magnetometer", "Raw Magnetic Field Strength", single(buildMagnetometer)},
	{"distance_sensor", "Distance Sensor", single(buildDistanceSensor)},
	{"gps_uncertainty", "GPS Uncertainty", single(buildGPSUncertainty)},
	{"gps_noise", "GPS Noise & Jamming", single(buildGPSNoise)},
	{"power", "Power", single(buildPower)},
	{"cpu_ram", "CPU & RAM", single(buildCPURAM)},
	{"accel_psd", "Acceleration Power Spectral Density", buildAccelPSD},
}

// Generate builds every standard figure that the log has data for.
func Generate(u *ulog.ULog) []*Figure {
	var out []*Figure
	for _, def := range standardGraphs {
		for _, fig := range def.build(u) {
			if fig == nil {
				continue
			}
			if fig.Key == "" {
				fig.Key = def.key
			}
			if fig.Title == "" {
				fig.Title = def.title
			}
			out = append(out, fig)
		}
	}
	return out
}

func single(fn func(*ulog.ULog) *Figure) func(*ulog.ULog) []*Figure {
	return func(u *ulog.ULog) []*Figure {
		fig := fn(u)
		if fig == nil {
			return nil
		}
		return []*Figure{fig}
	}
}

func buildFlightPath2D(u *ulog.ULog) *Figure {
	lp := u.GetDataset("vehicle_local_position", 0)
	if lp == nil || lp.Field("x") == nil || lp.Field("y") == nil {
		return nil
	}
	// NED: east on the x axis, north on the y axis.
	fig := &Figure{Key: "flight_path", XTitle: "[m]", YTitle: "[m]", EqualAspect: true}
	fig.addTrace(lp.Field("y"), lp.Field("x"), "Estimated", color(0), 1.5, "")
	if sp := u.GetDataset("vehicle_local_position_setpoint", 0); sp != nil {
		fig.addTrace(sp.Field("y"), sp.Field("x"), "Setpoint", color(1), 1, "dot")
	}
	return fig
}

func buildAltitude(u *ulog.ULog) *Figure {
	gps := u.GetDataset("vehicle_gps_position", 0)
	gpos := u.GetDataset("vehicle_global_position", 0)
	lp := u.GetDataset("vehicle_local_position", 0)
	air := u.GetDataset("vehicle_air_data", 0)
	if gps == nil && lp == nil && air == nil {
		return nil
	}
	fig := newFigure("altitude", "Altitude Estimate", "[m]")
	if gps != nil {
		if alt := gps.Field("altitude_msl_m"); alt != nil {
			fig.addTrace(gps.TimeSeconds(), alt, "GPS Altitude (MSL)", color(0), 1.5, "")
		} else if alt := gps.Field("alt"); alt != nil {
			// Older logs store alt in millimeters.
			if maxOf(alt) > 10000 {
				alt = scale(alt, 0.001)
			}
			fig.addTrace(gps.TimeSeconds(), alt, "GPS Altitude (MSL)", color(0), 1.5, "")
		}
	}
	if air != nil {
		fig.addTrace(air.TimeSeconds(), air.Field("baro_alt_meter"), "Barometer Altitude", color(1), 1, "")
	}
	if gpos != nil {
		fig.addTrace(gpos.TimeSeconds(), gpos.Field("alt"), "Fused Altitude Estimation", color(2), 1, "")
	}
	if pst := u.GetDataset("position_setpoint_triplet", 0); pst != nil && pst.Field("current.alt") != nil {
		fig.addTrace(pst.TimeSeconds(), pst.Field("current.alt"), "Altitude Setpoint", "#ec4899", 1.5, "dash")
	} else if sp := u.GetDataset("vehicle_local_position_setpoint", 0); sp != nil && sp.Field("z") != nil &&
		gpos != nil && len(gpos.Field("alt")) > 0 {
		ref := gpos.Field("alt")[0]
		z := sp.Field("z")
		alt := make([]float64, len(z))
		for i, v := range z {
			alt[i] = ref - v
		}
		fig.addTrace(sp.TimeSeconds(), alt, "Altitude Setpoint", "#ec4899", 1.5, "dash")
	}
	if len(fig.Traces) == 0 {
		return nil
	}
	return fig
}

func attitude(axis string, idx int) func(*ulog.ULog) []*Figure {
	return single(func(u *ulog.ULog) *Figure {
		att := u.GetDataset("vehicle_attitude", 0)
		if att == nil || att.Field("q[0]") == nil {
			return nil
		}
		roll, pitch, yaw := quatEuler(att)
		angles := [3][]float64{roll, pitch, yaw}

		fig := newFigure("", fmt.Sprintf("%s Angle", axis), "[deg]")
		fig.addTrace(att.TimeSeconds(), angles[idx], axis+" Estimated", color(0), 1.5, "")

		if sp := u.GetDataset("vehicle_attitude_setpoint", 0); sp != nil {
			for _, field := range [][3]string{
				{"roll_d", "pitch_d", "yaw_d"},
				{"roll_body", "pitch_body", "yaw_body"},
			} {
				if vals := sp.Field(field[idx]); vals != nil {
					fig.addTrace(sp.TimeSeconds(), degrees(vals), axis+" Setpoint", color(1), 1, "dash")
					break
				}
			}
		}
		return fig
	})
}

func rate(axis string, idx int) func(*ulog.ULog) []*Figure {
	return single(func(u *ulog.ULog) *Figure {
		av := u.GetDataset("vehicle_angular_velocity", 0)
		if av == nil {
			return nil
		}
		fig := newFigure("", fmt.Sprintf("%s Angular Rate", axis), "[deg/s]")
		if vals := av.Field(fmt.Sprintf("xyz[%d]", idx)); vals != nil {
			fig.addTrace(av.TimeSeconds(), degrees(vals), axis+" Rate Estimated", color(0), 1.5, "")
		}
		if rs := u.GetDataset("vehicle_rates_setpoint", 0); rs != nil {
			field := [3]string{"roll", "pitch", "yaw"}[idx]
			if vals := rs.Field(field); vals != nil {
				fig.addTrace(rs.TimeSeconds(), degrees(vals), axis+" Rate Setpoint", color(1), 1, "dash")
			}
		}
		if rc := u.GetDataset("rate_ctrl_status", 0); rc != nil {
			field := [3]string{"rollspeed_integ", "pitchspeed_integ", "yawspeed_integ"}[idx]
			if vals := rc.Field(field); vals != nil {
				fig.addTrace(rc.TimeSeconds(), scale(vals, 100), axis+" Rate Integral (*100)", color(2), 1, "")
			}
		}
		if len(fig.Traces) == 0 {
			return nil
		}
		return fig
	})
}

func localPos(field, label string) func(*ulog.ULog) []*Figure {
	return single(func(u *ulog.ULog) *Figure {
		lp := u.GetDataset("vehicle_local_position", 0)
		if lp == nil {
			return nil
		}
		fig := newFigure("", fmt.Sprintf("Local Position %s", label), "[m]")
		if vals := lp.Field(field); vals != nil {
			fig.addTrace(lp.TimeSeconds(), vals, label+" Estimated", color(0), 1.5, "")
		}
		if sp := u.GetDataset("vehicle_local_position_setpoint", 0); sp != nil {
			if vals := sp.Field(field); vals != nil {
				fig.addTrace(sp.TimeSeconds(), vals, label+" Setpoint", color(1), 1, "dash")
			}
		}
		if len(fig.Traces) == 0 {
			return nil
		}
		return fig
	})
}

func buildVelocity(u *ulog.ULog) *Figure {
	lp := u.GetDataset("vehicle_local_position", 0)
	if lp == nil {
		return nil
	}
	fig := newFigure("velocity", "Velocity", "[m/s]")
	velColors := [3]string{color(0), color(1), color(2)}
	spColors := [3]string{color(5), color(4), color(6)}
	axes := [3]struct{ field, label string }{{"vx", "X"}, {"vy", "Y"}, {"vz", "Z"}}
	for i, a := range axes {
		if vals := lp.Field(a.field); vals != nil {
			fig.addTrace(lp.TimeSeconds(), vals, a.label, velColors[i], 1.5, "")
		}
	}
	if sp := u.GetDataset("vehicle_local_position_setpoint", 0); sp != nil {
		for i, a := range axes {
			if vals := sp.Field(a.field); vals != nil {
				fig.addTrace(sp.TimeSeconds(), vals, a.label+" Setpoint", spColors[i], 1, "dash")
			}
		}
	}
	if len(fig.Traces) == 0 {
		return nil
	}
	return fig
}

func buildManualControl(u *ulog.ULog) *Figure {
	mc := u.GetDataset("manual_control_setpoint", 0)
	if mc == nil {
		return nil
	}
	fig := newFigure("manual_control", "Manual Control Inputs (Radio or Joystick)", "")
	fig.YRange = []float64{-1.1, 1.1}
	t := mc.TimeSeconds()

	fields := []struct{ field, label string }{
		{"roll", "Y / Roll"}, {"pitch", "X / Pitch"}, {"yaw", "Yaw"}, {"throttle", "Throttle"},
	}
	if mc.Field("roll") == nil {
		// Pre-1.13 stick field names.
		fields = []struct{ field, label string }{
			{"y", "Y / Roll"}, {"x", "X / Pitch"}, {"r", "Yaw"}, {"z", "Throttle"},
		}
	}
	for i, f := range fields {
		if vals := mc.Field(f.field); vals != nil {
			fig.addTrace(t, vals, f.label, color(i), 1.5, "")
		}
	}
	for i, aux := range []string{"aux1", "aux2"} {
		if vals := mc.Field(aux); vals != nil {
			fig.addTrace(t, vals, "Aux"+fmt.Sprint(i+1), color(4+i), 1, "")
		}
	}
	if len(fig.Traces) == 0 {
		return nil
	}
	return fig
}

func buildActuatorControls(u *ulog.ULog) *Figure {
	// Dynamic control allocation topics first.
	if motors := u.GetDataset("actuator_motors", 0); motors != nil {
		fig := newFigure("actuator_controls", "Motor Outputs", "")
		t := motors.TimeSeconds()
		for i := 0; i < 12; i++ {
			vals := motors.Field(fmt.Sprintf("control[%d]", i))
			if vals == nil || allZeroOrNaN(vals) {
				continue
			}
			fig.addTrace(t, vals, fmt.Sprintf("Motor %d", i+1), color(i), 1, "")
		}
		if len(fig.Traces) == 0 {
			return nil
		}
		return fig
	}

	act := u.GetDataset("actuator_controls_0", 0)
	if act == nil {
		return nil
	}
	fig := newFigure("actuator_controls", "Actuator Controls", "")
	t := act.TimeSeconds()
	for i, label := range []string{"Roll", "Pitch", "Yaw", "Thrust"} {
		if vals := act.Field(fmt.Sprintf("control[%d]", i)); vals != nil {
			fig.addTrace(t, vals, label, color(i), 1.5, "")
		}
	}
	if len(fig.Traces) == 0 {
		return nil
	}
	return fig
}

func buildActuatorOutputs(u *ulog.ULog) *Figure {
	act := u.GetDataset("actuator_outputs", 0)
	if act == nil {
		return nil
	}
	fig := newFigure("actuator_outputs", "Actuator Outputs (Main)", "")
	t := act.TimeSeconds()
	numOutputs := 16
	if n := act.Field("noutputs"); len(n) > 0 {
		if m := int(maxOf(n)); m < numOutputs {
			numOutputs = m
		}
	}
	for i := 0; i < numOutputs; i++ {
		vals := act.Field(fmt.Sprintf("output[%d]", i))
		if vals == nil || allEqual(vals) {
			continue
		}
		fig.addTrace(t, vals, fmt.Sprintf("Output %d", i), color(i), 1, "")
	}
	if len(fig.Traces) == 0 {
		return nil
	}
	return fig
}

func buildRawAccel(u *ulog.ULog) *Figure {
	sc := u.GetDataset("sensor_combined", 0)
	if sc == nil {
		return nil
	}
	fig := newFigure("raw_accel", "Raw Acceleration", "[m/s²]")
	t := sc.TimeSeconds()
	for i, label := range []string{"X", "Y", "Z"} {
		if vals := sc.Field(fmt.Sprintf("accelerometer_m_s2[%d]", i)); vals != nil {
			fig.addTrace(t, vals, label, color(i), 1, "")
		}
	}
	if len(fig.Traces) == 0 {
		return nil
	}
	return fig
}

func buildVibration(u *ulog.ULog) *Figure {
	if imu := u.GetDataset("vehicle_imu_status", 0); imu != nil && imu.Field("accel_vibration_metric") != nil {
		fig := newFigure("vibration", "Vibration Metrics", "[m/s²]")
		fig.addTrace(imu.TimeSeconds(), imu.Field("accel_vibration_metric"),
			"Accel 0 Vibration [m/s²]", color(0), 1.5, "")
		for inst := uint8(1); inst < 4; inst++ {
			n := u.GetDataset("vehicle_imu_status", inst)
			if n == nil || n.MultiID != inst || n.Field("accel_vibration_metric") == nil {
				continue
			}
			fig.addTrace(n.TimeSeconds(), n.Field("accel_vibration_metric"),
				fmt.Sprintf("Accel %d Vibration [m/s²]", inst), color(int(inst)), 1.5, "")
		}
		return fig
	}

	est := u.GetDataset("estimator_status", 0)
	if est == nil || est.Field("vibe[0]") == nil {
		return nil
	}
	fig := newFigure("vibration", "Vibration Metrics", "[m/s²]")
	t := est.TimeSeconds()
	for i, axis := range []string{"X", "Y", "Z"} {
		if vals := est.Field(fmt.Sprintf("vibe[%d]", i)); vals != nil {
			fig.addTrace(t, vals, "Vibe "+axis, color(i), 1, "")
		}
	}
	return fig
}

func buildRawGyro(u *ulog.ULog) *Figure {
	sc := u.GetDataset("sensor_combined", 0)
	if sc == nil {
		return nil
	}
	fig := newFigure("raw_gyro", "Raw Angular Speed (Gyroscope)", "[deg/s]")
	t := sc.TimeSeconds()
	for i, label := range []string{"X", "Y", "Z"} {
		if vals := sc.Field(fmt.Sprintf("gyro_rad[%d]", i)); vals != nil {
			fig.addTrace(t, degrees(vals), label, color(i), 1, "")
		}
	}
	if len(fig.Traces) == 0 {
		return nil
	}
	return fig
}

func buildMagnetometer(u *ulog.ULog) *Figure {
	mag := u.GetDataset("vehicle_magnetometer", 0)
	if mag == nil {
		mag = u.GetDataset("sensor_combined", 0)
	}
	if mag == nil {
		return nil
	}
	fig := newFigure("magnetometer", "Raw Magnetic Field Strength", "[gauss]")
	t := mag.TimeSeconds()
	for i, label := range []string{"X", "Y", "Z"} {
		if vals := mag.Field(fmt.Sprintf("magnetometer_ga[%d]", i)); vals != nil {
			fig.addTrace(t, vals, label, color(i), 1, "")
		}
	}
	if len(fig.Traces) == 0 {
		return nil
	}
	return fig
}

func buildDistanceSensor(u *ulog.ULog) *Figure {
	ds := u.GetDataset("distance_sensor", 0)
	lp := u.GetDataset("vehicle_local_position", 0)
	if ds == nil && lp == nil {
		return nil
	}
	fig := newFigure("distance_sensor", "Distance Sensor", "[m]")
	if ds != nil {
		fig.addTrace(ds.TimeSeconds(), ds.Field("current_distance"), "Distance", color(0), 1.5, "")
	}
	if lp != nil {
		fig.addTrace(lp.TimeSeconds(), lp.Field("dist_bottom"), "Estimated Distance Bottom [m]", color(2), 1, "")
	}
	if len(fig.Traces) == 0 {
		return nil
	}
	return fig
}

func gpsDataset(u *ulog.ULog) *ulog.Dataset {
	if gps := u.GetDataset("vehicle_gps_position", 0); gps != nil {
		return gps
	}
	return u.GetDataset("sensor_gps", 0)
}

func buildGPSUncertainty(u *ulog.ULog) *Figure {
	gps := gpsDataset(u)
	if gps == nil {
		return nil
	}
	fig := newFigure("gps_uncertainty", "GPS Uncertainty", "")
	fig.YRange = []float64{0, 40}
	t := gps.TimeSeconds()
	fields := []struct{ field, label string }{
		{"eph", "Horizontal position accuracy [m]"},
		{"epv", "Vertical position accuracy [m]"},
		{"hdop", "Horizontal dilution of precision [m]"},
		{"vdop", "Vertical dilution of precision [m]"},
		{"s_variance_m_s", "Speed accuracy [m/s]"},
		{"satellites_used", "Num Satellites used"},
		{"fix_type", "GPS Fix"},
	}
	for i, f := range fields {
		if vals := gps.Field(f.field); vals != nil {
			fig.addTrace(t, vals, f.label, color(i), 1, "")
		}
	}
	if len(fig.Traces) == 0 {
		return nil
	}
	return fig
}

func buildGPSNoise(u *ulog.ULog) *Figure {
	gps := gpsDataset(u)
	if gps == nil {
		return nil
	}
	noise := gps.Field("noise_per_ms")
	jam := gps.Field("jamming_indicator")
	if noise == nil && jam == nil {
		return nil
	}
	fig := newFigure("gps_noise", "GPS Noise & Jamming", "")
	t := gps.TimeSeconds()
	fig.addTrace(t, noise, "Noise per ms", color(0), 1.5, "")
	fig.addTrace(t, jam, "Jamming Indicator", color(1), 1, "")
	return fig
}

func buildPower(u *ulog.ULog) *Figure {
	bat := u.GetDataset("battery_status", 0)
	if bat == nil {
		return nil
	}
	fig := newFigure("power", "Power", "")
	t := bat.TimeSeconds()
	if v := bat.Field("voltage_v"); v != nil {
		fig.addTrace(t, v, "Battery Voltage [V]", color(0), 1.5, "")
	} else {
		fig.addTrace(t, bat.Field("voltage_filtered_v"), "Battery Voltage [V]", color(0), 1.5, "")
	}
	if c := bat.Field("current_a"); c != nil {
		fig.addTrace(t, c, "Battery Current [A]", color(1), 1, "")
	} else {
		fig.addTrace(t, bat.Field("current_filtered_a"), "Battery Current [A]", color(1), 1, "")
	}
	if d := bat.Field("discharged_mah"); d != nil {
		fig.addTrace(t, scale(d, 0.01), "Discharged [mAh / 100]", color(2), 1, "")
	}
	if r := bat.Field("remaining"); r != nil {
		fig.addTrace(t, scale(r, 10), "Remaining [0=empty, 10=full]", color(3), 1, "dot")
	}
	if len(fig.Traces) == 0 {
		return nil
	}
	return fig
}

func buildCPURAM(u *ulog.ULog) *Figure {
	cpu := u.GetDataset("cpuload", 0)
	if cpu == nil {
		return nil
	}
	fig := newFigure("cpu_ram", "CPU & RAM", "")
	fig.YRange = []float64{0, 1}
	t := cpu.TimeSeconds()
	fig.addTrace(t, cpu.Field("ram_usage"), "RAM Usage", color(1), 1.5, "")
	fig.addTrace(t, cpu.Field("load"), "CPU Load", color(2), 1.5, "")
	if len(fig.Traces) == 0 {
		return nil
	}
	return fig
}

func quatEuler(att *ulog.Dataset) (roll, pitch, yaw []float64) {
	return explorer.QuatToEuler(att.Field("q[0]"), att.Field("q[1]"), att.Field("q[2]"), att.Field("q[3]"))
}

func maxOf(vals []float64) float64 {
	m := math.Inf(-1)
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return m
}

func allZeroOrNaN(vals []float64) bool {
	for _, v := range vals {
		if v != 0 && !math.IsNaN(v) {
			return false
		}
	}
	return true
}

func allEqual(vals []float64) bool {
	for _, v := range vals[1:] {
		if v != vals[0] {
			return false
		}
	}
	return true
}
