package onboard

import (
	"math"

	"github.com/CodedInternet/gomd22/md22"
	"github.com/go-gl/mathgl/mgl64"
)

const speedSteps = 127

// EncodeSpeed maps v in [-1, 1] (clamped) onto a speed register value for the
// given mode: 128±127 for Mode0 and a signed byte for Mode1.
func EncodeSpeed(mode md22.OperatingMode, v float64) byte {
	step := int(math.Round(mgl64.Clamp(v, -1, 1) * speedSteps))

	switch mode {
	case md22.Mode1:
		return byte(int8(step))
	default:
		return byte(128 + step)
	}
}

// DecodeSpeed is the inverse of EncodeSpeed. Values beyond ±127 steps are
// clamped.
func DecodeSpeed(mode md22.OperatingMode, b byte) float64 {
	var step int
	switch mode {
	case md22.Mode1:
		step = int(int8(b))
	default:
		step = int(b) - 128
	}

	return mgl64.Clamp(float64(step)/speedSteps, -1, 1)
}

// Mix converts throttle and steer into the two motor speeds of a
// differential drive. Outputs are scaled down together when either exceeds
// full speed so the turn ratio is kept.
func Mix(throttle, steer float64) (left, right float64) {
	throttle = mgl64.Clamp(throttle, -1, 1)
	steer = mgl64.Clamp(steer, -1, 1)

	left = throttle + steer
	right = throttle - steer

	if m := math.Max(math.Abs(left), math.Abs(right)); m > 1 {
		left /= m
		right /= m
	}
	return
}
