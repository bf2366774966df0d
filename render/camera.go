package render

import (
	"math"

	"github.com/echoflaresat/planetshade/base"
	"github.com/echoflaresat/planetshade/earth"
)

// Camera models a pinhole camera in ECEF coordinates (meters).
type Camera struct {
	FOVDeg     float64
	TanHalfFOV float64
	Position   base.Vec3
	Forward    base.Vec3
	Right      base.Vec3
	Up         base.Vec3
}

// NewCamera constructs a camera from geodetic lat/lon (degrees), altitude
// above the surface (meters), field of view (degrees), plus tilt about the
// Right axis and yaw about the Up axis (degrees).
func NewCamera(latDeg, lonDeg, altM, fovDeg, tiltDeg, yawDeg float64) Camera {
	lat := latDeg * math.Pi / 180.0
	lon := lonDeg * math.Pi / 180.0

	camRadius := earth.Radius + altM
	pos := base.Vec3{
		X: camRadius * math.Cos(lat) * math.Cos(lon),
		Y: camRadius * math.Cos(lat) * math.Sin(lon),
		Z: camRadius * math.Sin(lat),
	}

	fovRad := fovDeg * math.Pi / 180.0
	tanHalf := math.Tan(fovRad / 2.0)

	// Basis vectors: look toward the planet center.
	fwd := pos.Normalize().Scale(-1.0)
	globalUp := base.Vec3{X: 0, Y: 0, Z: 1}
	right := fwd.Cross(globalUp)
	if right.Norm() < 1e-6 {
		right = base.Vec3{X: 1, Y: 0, Z: 0} // near-pole fallback
	}
	right = right.Normalize()
	up := right.Cross(fwd).Normalize()

	// Yaw is applied in the horizon plane: pitch up, pan, pitch back.
	fwd, right, up = tiltCamera(fwd, right, up, 90)
	if yawDeg != 0 {
		fwd, right, up = yawCamera(fwd, right, up, yawDeg)
	}
	fwd, right, up = tiltCamera(fwd, right, up, -90)

	if tiltDeg != 0 {
		fwd, right, up = tiltCamera(fwd, right, up, tiltDeg)
	}

	return Camera{
		FOVDeg:     fovDeg,
		TanHalfFOV: tanHalf,
		Position:   pos,
		Forward:    fwd,
		Right:      right,
		Up:         up,
	}
}

// rotateVec applies Rodrigues' rotation: rotate v around axis by (cosT, sinT).
func rotateVec(v, axis base.Vec3, cosT, sinT float64) base.Vec3 {
	return v.Scale(cosT).
		Add(axis.Cross(v).Scale(sinT)).
		Add(axis.Scale(axis.Dot(v) * (1.0 - cosT)))
}

// tiltCamera rotates forward/up around the Right axis by tiltDeg.
func tiltCamera(fwd, right, up base.Vec3, tiltDeg float64) (base.Vec3, base.Vec3, base.Vec3) {
	theta := tiltDeg * math.Pi / 180.0
	c, s := math.Cos(theta), math.Sin(theta)

	fwdNew := rotateVec(fwd, right, c, s).Normalize()
	upNew := rotateVec(up, right, c, s).Normalize()
	return fwdNew, right, upNew
}

// yawCamera rotates forward/right around the Up axis by yawDeg.
func yawCamera(fwd, right, up base.Vec3, yawDeg float64) (base.Vec3, base.Vec3, base.Vec3) {
	theta := yawDeg * math.Pi / 180.0
	c, s := math.Cos(theta), math.Sin(theta)

	fwdNew := rotateVec(fwd, up, c, s).Normalize()
	rightNew := rotateVec(right, up, c, s).Normalize()
	return fwdNew, rightNew, up
}

// ComputeRay returns the normalized viewing direction for pixel (i,j).
// i and j can be fractional for supersampling.
func (c Camera) ComputeRay(i, j float64, width, height int) base.Vec3 {
	w := float64(width)
	h := float64(height)

	// NDC in [-1, +1] centered, +up in screen space.
	xNDC := (i - (w-1)/2.0) / ((w - 1) / 2.0)
	yNDC := -((j - (h-1)/2.0) / ((h - 1) / 2.0))

	dir := c.Right.Scale(xNDC * c.TanHalfFOV).
		Add(c.Up.Scale(yNDC * c.TanHalfFOV)).
		Add(c.Forward)

	return dir.Normalize()
}
