package explorer

import "math"

// QuatToEuler converts quaternion samples to roll/pitch/yaw angles in degrees.
// The slices are truncated to the shortest input.
func QuatToEuler(q0, q1, q2, q3 []float64) (roll, pitch, yaw []float64) {
	n := len(q0)
	for _, q := range [][]float64{q1, q2, q3} {
		if len(q) < n {
			n = len(q)
		}
	}

	roll = make([]float64, n)
	pitch = make([]float64, n)
	yaw = make([]float64, n)

	const radToDeg = 180 / math.Pi
	for i := 0; i < n; i++ {
		sinrCosp := 2 * (q0[i]*q1[i] + q2[i]*q3[i])
		cosrCosp := 1 - 2*(q1[i]*q1[i]+q2[i]*q2[i])
		roll[i] = math.Atan2(sinrCosp, cosrCosp) * radToDeg

		sinp := 2 * (q0[i]*q2[i] - q3[i]*q1[i])
		sinp = math.Max(-1, math.Min(1, sinp))
		pitch[i] = math.Asin(sinp) * radToDeg

		sinyCosp := 2 * (q0[i]*q3[i] + q1[i]*q2[i])
		cosyCosp := 1 - 2*(q2[i]*q2[i]+q3[i]*q3[i])
		yaw[i] = math.Atan2(sinyCosp, cosyCosp) * radToDeg
	}
	return roll, pitch, yaw
}
