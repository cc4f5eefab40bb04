// Package terrain answers ground-clearance queries for collision probing.
// Elevation is a base relief function plus extruded obstacle footprints;
// footprints are stored as geometry polygons in geodetic coordinates so
// they can be loaded straight from config.
package terrain

import (
	"encoding/json"
	"fmt"
	"math"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/skyward/flightcore/internal/geo"
	"github.com/skyward/flightcore/pkg/core"
)

// ReliefFunc returns base terrain elevation in meters for a geodetic
// longitude/latitude in degrees.
type ReliefFunc func(lon, lat float64) float64

// Flat returns a relief of constant elevation.
func Flat(elevation float64) ReliefFunc {
	return func(lon, lat float64) float64 {
		return elevation
	}
}

// Rolling returns a synthetic wavy relief. Stands in for real elevation
// data the same way a DEM tile service would plug in here.
func Rolling(amplitude float64) ReliefFunc {
	return func(lon, lat float64) float64 {
		wave1 := math.Sin(lon*40) * amplitude
		wave2 := math.Sin((lon+lat)*90) * amplitude * 0.5
		return wave1 + wave2 + amplitude
	}
}

// Obstacle is a vertical extrusion over a geodetic footprint: a building,
// a mast, a no-fly block. Height is absolute elevation in meters.
type Obstacle struct {
	Name      string
	Height    float64
	footprint geom.Polygon
}

// NewObstacle builds an obstacle from a footprint ring of [lon,lat]
// vertices. The ring is closed automatically if the input is open.
func NewObstacle(name string, ring [][2]float64, height float64) (Obstacle, error) {
	if len(ring) < 3 {
		return Obstacle{}, fmt.Errorf("obstacle %q: footprint needs at least 3 vertices, got %d", name, len(ring))
	}

	closed := ring
	if ring[0] != ring[len(ring)-1] {
		closed = append(append([][2]float64{}, ring...), ring[0])
	}

	flat := make([]float64, 0, len(closed)*2)
	for _, v := range closed {
		flat = append(flat, v[0], v[1])
	}

	seq := geom.NewSequence(flat, geom.DimXY)
	poly := geom.NewPolygon([]geom.LineString{geom.NewLineString(seq)})
	if err := poly.Validate(); err != nil {
		return Obstacle{}, fmt.Errorf("obstacle %q: invalid footprint: %w", name, err)
	}

	return Obstacle{Name: name, Height: height, footprint: poly}, nil
}

// ParseObstacle builds an obstacle from a JSON footprint string in the
// format "[[lon1,lat1],[lon2,lat2],...]".
func ParseObstacle(name, footprintJSON string, height float64) (Obstacle, error) {
	var coords [][]float64
	if err := json.Unmarshal([]byte(footprintJSON), &coords); err != nil {
		return Obstacle{}, fmt.Errorf("obstacle %q: failed to parse footprint JSON: %w", name, err)
	}

	ring := make([][2]float64, 0, len(coords))
	for i, c := range coords {
		if len(c) < 2 {
			return Obstacle{}, fmt.Errorf("obstacle %q: vertex %d has insufficient values", name, i)
		}
		ring = append(ring, [2]float64{c[0], c[1]})
	}
	return NewObstacle(name, ring, height)
}

func (o Obstacle) contains(lon, lat float64) bool {
	pt := geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: lon, Y: lat},
		Type: geom.DimXY,
	})
	return geom.Intersects(o.footprint.AsGeometry(), pt.AsGeometry())
}

// Map is the terrain query capability consumed by vehicle controllers.
type Map struct {
	ellipsoid *geo.Ellipsoid
	relief    ReliefFunc
	obstacles []Obstacle
}

// NewMap creates a terrain map over the given relief.
func NewMap(ellipsoid *geo.Ellipsoid, relief ReliefFunc, obstacles ...Obstacle) *Map {
	return &Map{
		ellipsoid: ellipsoid,
		relief:    relief,
		obstacles: obstacles,
	}
}

// HeightAt returns the terrain elevation directly below a planet-fixed
// position: base relief, or the tallest obstacle whose footprint contains
// the point.
func (m *Map) HeightAt(pos core.Position3D) float64 {
	g := m.ellipsoid.ToGeodetic(pos)
	h := m.relief(g.Lon, g.Lat)
	for _, o := range m.obstacles {
		if o.Height > h && o.contains(g.Lon, g.Lat) {
			h = o.Height
		}
	}
	return h
}

// ClampToSurface projects a position straight down (or up) onto the
// terrain surface.
func (m *Map) ClampToSurface(pos core.Position3D) core.Position3D {
	g := m.ellipsoid.ToGeodetic(pos)
	g.Height = m.HeightAt(pos)
	return m.ellipsoid.FromGeodetic(g)
}
