package geo

import (
	"math"

	"github.com/skyward/flightcore/pkg/core"
	"github.com/wroge/wgs84"
)

// PLANET FRAMES
// All world positions are planet-fixed ECEF (EPSG 4978) in meters. Geodetic
// conversion goes through the wgs84 EPSG registry so the same datum handling
// is used everywhere. Frames are plain value types; building one per tick
// allocates nothing.

const degToRad = math.Pi / 180

// Geodetic is a WGS84 longitude/latitude in degrees plus ellipsoidal
// height in meters.
type Geodetic struct {
	Lon    float64
	Lat    float64
	Height float64
}

// Frame is a right-handed orthonormal basis at an origin in the planet
// frame. For an east-north-up frame the axes are X=east, Y=north, Z=up;
// for a vehicle body frame X=right, Y=forward, Z=up.
type Frame struct {
	Origin core.Position3D
	X      core.Position3D
	Y      core.Position3D
	Z      core.Position3D
}

// TransformVector maps a local-frame displacement into the planet frame.
func (f Frame) TransformVector(local core.Position3D) core.Position3D {
	return f.X.Scale(local.X).Add(f.Y.Scale(local.Y)).Add(f.Z.Scale(local.Z))
}

// TransformPoint maps a local-frame point into the planet frame.
func (f Frame) TransformPoint(local core.Position3D) core.Position3D {
	return f.Origin.Add(f.TransformVector(local))
}

// Ellipsoid converts between the planet frame and geodetic coordinates and
// constructs local frames. It holds the two EPSG transform closures so the
// registry lookup happens once, not per tick.
type Ellipsoid struct {
	toGeodetic   func(float64, float64, float64) (float64, float64, float64)
	fromGeodetic func(float64, float64, float64) (float64, float64, float64)
}

// NewEllipsoid builds an Ellipsoid backed by the WGS84 EPSG registry.
func NewEllipsoid() *Ellipsoid {
	epsg := wgs84.EPSG()
	return &Ellipsoid{
		toGeodetic:   epsg.Transform(4978, 4326),
		fromGeodetic: epsg.Transform(4326, 4978),
	}
}

// FromGeodetic converts a geodetic coordinate to a planet-fixed position.
func (e *Ellipsoid) FromGeodetic(g Geodetic) core.Position3D {
	x, y, z := e.fromGeodetic(g.Lon, g.Lat, g.Height)
	return core.Position3D{X: x, Y: y, Z: z}
}

// ToGeodetic converts a planet-fixed position to geodetic coordinates.
func (e *Ellipsoid) ToGeodetic(pos core.Position3D) Geodetic {
	lon, lat, h := e.toGeodetic(pos.X, pos.Y, pos.Z)
	return Geodetic{Lon: lon, Lat: lat, Height: h}
}

// HeightAbove returns the ellipsoidal height of a position in meters.
func (e *Ellipsoid) HeightAbove(pos core.Position3D) float64 {
	_, _, h := e.toGeodetic(pos.X, pos.Y, pos.Z)
	return h
}

// ENUAt builds the east-north-up frame at a planet-fixed position.
func (e *Ellipsoid) ENUAt(pos core.Position3D) Frame {
	g := e.ToGeodetic(pos)
	lam := g.Lon * degToRad
	phi := g.Lat * degToRad

	sinLam, cosLam := math.Sincos(lam)
	sinPhi, cosPhi := math.Sincos(phi)

	return Frame{
		Origin: pos,
		X:      core.Position3D{X: -sinLam, Y: cosLam, Z: 0},
		Y:      core.Position3D{X: -sinPhi * cosLam, Y: -sinPhi * sinLam, Z: cosPhi},
		Z:      core.Position3D{X: cosPhi * cosLam, Y: cosPhi * sinLam, Z: sinPhi},
	}
}

// BearingTo returns the heading from one planet-fixed position toward
// another, measured counterclockwise from local east at the start point.
func (e *Ellipsoid) BearingTo(from, to core.Position3D) float64 {
	enu := e.ENUAt(from)
	d := to.Sub(from)
	return core.WrapAngle(math.Atan2(enu.Y.Dot(d), enu.X.Dot(d)))
}

// LocalUpAt returns the local up unit vector at a planet-fixed position.
func (e *Ellipsoid) LocalUpAt(pos core.Position3D) core.Position3D {
	return e.ENUAt(pos).Z
}

// OrientationToWorld builds the vehicle body frame (X=right, Y=forward,
// Z=up) at a position for the given attitude. Heading rotates the forward
// axis counterclockwise from east, pitch raises the nose, and positive
// roll banks the right side down.
func (e *Ellipsoid) OrientationToWorld(pos core.Position3D, o core.Orientation) Frame {
	enu := e.ENUAt(pos)
	east, north, up := enu.X, enu.Y, enu.Z

	sinH, cosH := math.Sincos(o.Heading)
	forward := east.Scale(cosH).Add(north.Scale(sinH))
	right := east.Scale(sinH).Add(north.Scale(-cosH))

	sinP, cosP := math.Sincos(o.Pitch)
	fwdP := forward.Scale(cosP).Add(up.Scale(sinP))
	upP := up.Scale(cosP).Add(forward.Scale(-sinP))

	sinR, cosR := math.Sincos(o.Roll)
	rightR := right.Scale(cosR).Add(upP.Scale(-sinR))
	upR := upP.Scale(cosR).Add(right.Scale(sinR))

	return Frame{Origin: pos, X: rightR, Y: fwdP, Z: upR}
}
