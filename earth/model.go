package earth

import (
	"math"
	"time"

	"github.com/echoflaresat/planetshade/base"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
)

// Radius is the Earth radius in meters (spherical approximation).
const Radius = 6.371e6

const (
	rad       = math.Pi / 180
	j2000     = 2451545.0
	obliquity = rad * 23.4397
)

// SunAngles is the low-precision solar position for one observer and
// instant. All angles are radians. Azimuth is measured from south,
// positive toward west.
type SunAngles struct {
	Altitude    float64
	Azimuth     float64
	Declination float64
}

func toDays(t time.Time) float64 {
	return julian.TimeToJD(t.UTC()) - j2000
}

func solarMeanAnomaly(d float64) float64 {
	return rad * (357.5291 + 0.98560028*d)
}

func eclipticLongitude(m float64) float64 {
	// equation of center
	c := rad * (1.9148*math.Sin(m) + 0.02*math.Sin(2*m) + 0.0003*math.Sin(3*m))
	// perihelion of the Earth
	p := rad * 102.9372
	return m + c + p + math.Pi
}

func declination(l float64) float64 {
	return math.Asin(math.Sin(l) * math.Sin(obliquity))
}

func rightAscension(l float64) float64 {
	return math.Atan2(math.Sin(l)*math.Cos(obliquity), math.Cos(l))
}

func siderealTime(d, lw float64) float64 {
	return rad*(280.16+360.9856235*d) - lw
}

// Declination returns the sun's declination at t, in radians. It drives the
// seasonal term of both sun models.
func Declination(t time.Time) float64 {
	return declination(eclipticLongitude(solarMeanAnomaly(toDays(t))))
}

// SunPosition computes the sun's altitude, azimuth and declination for an
// observer at latDeg/lonDeg (degrees) at time t, using the NOAA
// low-precision solar position formulas. Pure; callers keep latitude inside
// [-90, 90] (azimuth degrades at the poles but stays finite).
func SunPosition(t time.Time, latDeg, lonDeg float64) SunAngles {
	lw := rad * -lonDeg
	phi := rad * latDeg
	d := toDays(t)

	m := solarMeanAnomaly(d)
	l := eclipticLongitude(m)
	dec := declination(l)
	ra := rightAscension(l)
	h := siderealTime(d, lw) - ra

	return SunAngles{
		Altitude:    math.Asin(math.Sin(phi)*math.Sin(dec) + math.Cos(phi)*math.Cos(dec)*math.Cos(h)),
		Azimuth:     math.Atan2(math.Sin(h), math.Cos(h)*math.Sin(phi)-math.Tan(dec)*math.Cos(phi)),
		Declination: dec,
	}
}

// SunDirection converts horizontal angles into a unit vector pointing from
// the planet center toward the sun, in a Y-up world frame: altitude π/2
// maps to +Y (zenith), azimuth spins in the XZ plane with +Z as the
// azimuth-zero axis. The intermediate vector points sun→planet, so it is
// negated to match the directional-light convention of the shading stage.
func SunDirection(a SunAngles) base.Vec3 {
	v := base.Vec3{
		X: math.Cos(a.Altitude) * math.Sin(a.Azimuth),
		Y: -math.Sin(a.Altitude),
		Z: math.Cos(a.Altitude) * math.Cos(a.Azimuth),
	}
	return v.Scale(-1)
}

// SimplifiedSunDirection derives a sun direction from t alone, ignoring the
// observer: seasonal declination plus a linear hour angle taken from the
// UTC time of day. The frame is Y = north pole axis, Z = the noon axis.
// The UTC-only hour angle is physically inconsistent with any particular
// longitude; that is the documented trade of this cheaper mode.
func SimplifiedSunDirection(t time.Time) base.Vec3 {
	u := t.UTC()
	dec := Declination(u)

	dayFrac := (float64(u.Hour()) + float64(u.Minute())/60.0 + float64(u.Second())/3600.0) / 24.0
	hourAngle := dayFrac*2*math.Pi - math.Pi

	return base.Vec3{
		X: math.Cos(dec) * math.Sin(hourAngle),
		Y: math.Sin(dec),
		Z: math.Cos(dec) * math.Cos(hourAngle),
	}.Normalize()
}

// SunDirectionECEF is the high-accuracy reference model: apparent RA/Dec
// from meeus rotated into Earth-fixed coordinates via GMST.
func SunDirectionECEF(t time.Time) base.Vec3 {
	jd := julian.TimeToJD(t.UTC())

	ra, dec := solar.ApparentEquatorial(jd)

	// Unit vector in ECI (Earth-centered inertial).
	x := dec.Cos() * ra.Cos()
	y := dec.Cos() * ra.Sin()
	z := dec.Sin()

	// Rotate ECI → ECEF using GMST.
	gmst := sidereal.Apparent0UT(jd)
	cosGMST := gmst.Angle().Cos()
	sinGMST := gmst.Angle().Sin()

	return base.Vec3{
		X: x*cosGMST + y*sinGMST,
		Y: -x*sinGMST + y*cosGMST,
		Z: z,
	}
}

// LocalToECEF rotates a vector from the observer's east-up-north frame
// (the frame SunDirection emits) into ECEF coordinates.
func LocalToECEF(latDeg, lonDeg float64, v base.Vec3) base.Vec3 {
	lat := rad * latDeg
	lon := rad * lonDeg

	east := base.Vec3{X: -math.Sin(lon), Y: math.Cos(lon), Z: 0}
	up := base.Vec3{X: math.Cos(lat) * math.Cos(lon), Y: math.Cos(lat) * math.Sin(lon), Z: math.Sin(lat)}
	north := base.Vec3{X: -math.Sin(lat) * math.Cos(lon), Y: -math.Sin(lat) * math.Sin(lon), Z: math.Cos(lat)}

	return east.Scale(v.X).Add(up.Scale(v.Y)).Add(north.Scale(v.Z))
}

// EquatorialToECEF maps the simplified model's frame (Y = pole, Z = the
// UTC-noon axis over the prime meridian) into ECEF.
func EquatorialToECEF(v base.Vec3) base.Vec3 {
	return base.Vec3{X: v.Z, Y: -v.X, Z: v.Y}
}
