package explorer

import (
	"fmt"
	"math"
	"time"

	"github.com/omerfarukorc/ulog-analysis/ulog"
)

type (
	// FlightStats are derived from the position and attitude estimates.
	FlightStats struct {
		Distance     string `json:"distance,omitempty"`
		MaxAltitude  string `json:"max_altitude,omitempty"`
		MaxSpeed     string `json:"max_speed,omitempty"`
		AvgSpeed     string `json:"avg_speed,omitempty"`
		MaxSpeedUp   string `json:"max_speed_up,omitempty"`
		MaxSpeedDown string `json:"max_speed_down,omitempty"`
		MaxTilt      string `json:"max_tilt,omitempty"`
	}

	// VehicleInfo summarizes the log metadata the firmware wrote.
	VehicleInfo struct {
		SysName      string  `json:"sys_name"`
		HWVersion    string  `json:"hw_version"`
		SWVersion    string  `json:"sw_version"`
		SWBranch     string  `json:"sw_branch"`
		SWRelease    string  `json:"sw_release"`
		OS           string  `json:"os"`
		OSVersion    string  `json:"os_version"`
		UUID         string  `json:"uuid"`
		Estimator    string  `json:"estimator"`
		Duration     string  `json:"duration"`
		DurationS    float64 `json:"duration_s"`
		StartTime    string  `json:"start_time"`
		TopicCount   int     `json:"topic_count"`
		DropoutCount int     `json:"dropout_count"`
		Truncated    bool    `json:"truncated"`

		Flight FlightStats `json:"flight"`
	}
)

// Info builds the vehicle summary of one stored log.
func (e *Explorer) Info(name string) (*VehicleInfo, error) {
	u, err := e.Open(name)
	if err != nil {
		return nil, err
	}
	return BuildInfo(u), nil
}

// BuildInfo summarizes an already parsed log.
func BuildInfo(u *ulog.ULog) *VehicleInfo {
	info := &VehicleInfo{
		SysName:      infoString(u, "sys_name"),
		HWVersion:    infoString(u, "ver_hw"),
		SWVersion:    infoString(u, "ver_sw"),
		SWBranch:     infoString(u, "ver_sw_branch"),
		SWRelease:    releaseString(u.Info["ver_sw_release"]),
		OS:           infoString(u, "ver_os_name"),
		OSVersion:    releaseString(u.Info["ver_os_release"]),
		UUID:         infoString(u, "sys_uuid"),
		DurationS:    u.DurationSeconds(),
		TopicCount:   len(u.DataList()),
		DropoutCount: len(u.Dropouts),
		Truncated:    u.Truncated,
	}

	duration := int(info.DurationS)
	info.Duration = fmt.Sprintf("%d:%02d", duration/60, duration%60)

	info.StartTime = "N/A"
	if utc := asUint64(u.Info["time_ref_utc"]); utc > 0 {
		info.StartTime = time.Unix(int64(utc/1e6), 0).UTC().Format("02-01-2006 15:04")
	}

	topics := u.TopicNames()
	if topics["estimator_status"] || topics["estimator_states"] {
		info.Estimator = "EKF2"
	} else {
		info.Estimator = "LPE/Other"
	}

	info.Flight = flightStats(u)
	return info
}

func flightStats(u *ulog.ULog) FlightStats {
	var fs FlightStats

	lp := u.GetDataset("vehicle_local_position", 0)
	if lp != nil && lp.Size() > 1 {
		x := lp.Field("x")
		y := lp.Field("y")
		z := lp.Field("z")
		vx := lp.Field("vx")
		vy := lp.Field("vy")
		vz := lp.Field("vz")

		if x != nil && y != nil {
			dist := 0.0
			for i := 1; i < len(x) && i < len(y); i++ {
				dx, dy := x[i]-x[i-1], y[i]-y[i-1]
				dist += math.Sqrt(dx*dx + dy*dy)
			}
			fs.Distance = fmt.Sprintf("%.1f m", dist)
		}
		if z != nil {
			minZ := math.Inf(1)
			for _, v := range z {
				if v < minZ {
					minZ = v
				}
			}
			// NED frame, altitude above origin is -z
			fs.MaxAltitude = fmt.Sprintf("%.1f m", -minZ)
		}
		if vx != nil && vy != nil {
			maxH, sumH := 0.0, 0.0
			n := min(len(vx), len(vy))
			for i := 0; i < n; i++ {
				h := math.Hypot(vx[i], vy[i])
				sumH += h
				if h > maxH {
					maxH = h
				}
			}
			fs.MaxSpeed = fmt.Sprintf("%.1f km/h", maxH*3.6)
			if n > 0 {
				fs.AvgSpeed = fmt.Sprintf("%.1f km/h", sumH/float64(n)*3.6)
			}
		}
		if vz != nil {
			minVz, maxVz := math.Inf(1), math.Inf(-1)
			for _, v := range vz {
				if v < minVz {
					minVz = v
				}
				if v > maxVz {
					maxVz = v
				}
			}
			fs.MaxSpeedUp = fmt.Sprintf("%.1f km/h", -minVz*3.6)
			fs.MaxSpeedDown = fmt.Sprintf("%.1f km/h", maxVz*3.6)
		}
	}

	att := u.GetDataset("vehicle_attitude", 0)
	if att != nil && att.Field("q[0]") != nil {
		roll, pitch, _ := QuatToEuler(att.Field("q[0]"), att.Field("q[1]"), att.Field("q[2]"), att.Field("q[3]"))
		maxTilt := 0.0
		for i := range roll {
			tilt := math.Hypot(roll[i], pitch[i])
			if tilt > maxTilt {
				maxTilt = tilt
			}
		}
		fs.MaxTilt = fmt.Sprintf("%.1f deg", maxTilt)
	}

	return fs
}

func infoString(u *ulog.ULog, key string) string {
	if s, ok := u.Info[key].(string); ok && s != "" {
		return s
	}
	return "N/A"
}

// releaseString renders firmware release words packed as 0xAABBCC00 into
// vAA.BB.CC, passing strings through.
func releaseString(v any) string {
	switch t := v.(type) {
	case nil:
		return "N/A"
	case string:
		return t
	}
	packed := asUint64(v)
	if packed == 0 {
		return "N/A"
	}
	return fmt.Sprintf("v%d.%d.%d", (packed>>24)&0xFF, (packed>>16)&0xFF, (packed>>8)&0xFF)
}

func asUint64(v any) uint64 {
	switch t := v.(type) {
	case uint64:
		return t
	case int64:
		return uint64(t)
	case uint32:
		return uint64(t)
	case int32:
		return uint64(t)
	case uint16:
		return uint64(t)
	case int16:
		return uint64(t)
	case uint8:
		return uint64(t)
	case int8:
		return uint64(t)
	case int:
		return uint64(t)
	}
	return 0
}
