package shade

import (
	"math"

	"github.com/echoflaresat/planetshade/base"
)

// Smoothstep performs a Hermite interpolation between 0 and 1 across
// [edge0, edge1]. Returns 0 if x < edge0, 1 if x > edge1.
func Smoothstep(edge0, edge1, x float64) float64 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0.0
		}
		return 1.0
	}

	t := (x - edge0) / (edge1 - edge0)
	if t < 0.0 {
		t = 0.0
	} else if t > 1.0 {
		t = 1.0
	}
	return t * t * (3.0 - 2.0*t)
}

// Clip clamps x into the inclusive range [min, max].
func Clip(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

// IntersectSphere solves (O + t·D)·(O + t·D) = r² for a sphere centered at
// the origin and returns the closest positive t, or -1 if the ray misses.
func IntersectSphere(o, d base.Vec3, r float64) float64 {
	b := 2.0 * o.Dot(d)
	c := o.Dot(o) - r*r

	discriminant := b*b - 4.0*c
	if discriminant < 0 {
		return -1.0
	}

	sqrtDisc := math.Sqrt(discriminant)
	t1 := (-b - sqrtDisc) / 2.0
	t2 := (-b + sqrtDisc) / 2.0

	if t1 > 0 {
		return t1
	}
	if t2 > 0 {
		return t2
	}
	return -1.0
}

// IntersectSphereFull returns both roots of the ray–sphere quadratic,
// unclamped, so callers can pick entry or exit points.
func IntersectSphereFull(o, d base.Vec3, r float64) (hit bool, tEntry, tExit float64) {
	b := 2.0 * o.Dot(d)
	c := o.Dot(o) - r*r

	discriminant := b*b - 4.0*c
	if discriminant < 0 {
		return false, 0, 0
	}

	sqrtDisc := math.Sqrt(discriminant)
	return true, (-b - sqrtDisc) / 2.0, (-b + sqrtDisc) / 2.0
}

// sphereEntryDistance is the distance along the ray at which it enters a
// sphere of radius r, clamped to ≥ 0 so a camera already inside yields 0.
// ok is false when the ray misses entirely.
func sphereEntryDistance(o, d base.Vec3, r float64) (entry float64, ok bool) {
	hit, tEntry, tExit := IntersectSphereFull(o, d, r)
	if !hit || tExit < 0 {
		return 0, false
	}
	return math.Max(0, tEntry), true
}

// dayNightFactor attenuates atmosphere terms on the night side without
// ever letting them vanish completely in shadow.
func dayNightFactor(sunOrientation float64) float64 {
	return 0.25 + 0.75*Smoothstep(-0.15, 0.25, sunOrientation)
}
