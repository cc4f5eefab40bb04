package terrain

import (
	"math"
	"testing"

	"github.com/skyward/flightcore/internal/geo"
)

func testEllipsoid() *geo.Ellipsoid {
	return geo.NewEllipsoid()
}

func TestHeightAt_FlatGround(t *testing.T) {
	e := testEllipsoid()
	m := NewMap(e, Flat(120))

	pos := e.FromGeodetic(geo.Geodetic{Lon: 10, Lat: 50, Height: 800})
	if h := m.HeightAt(pos); h != 120 {
		t.Errorf("expected flat ground at 120, got %f", h)
	}
}

func TestHeightAt_ObstacleExtrusion(t *testing.T) {
	e := testEllipsoid()
	tower, err := NewObstacle("tower", [][2]float64{
		{9.999, 49.999},
		{10.001, 49.999},
		{10.001, 50.001},
		{9.999, 50.001},
	}, 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := NewMap(e, Flat(0), tower)

	inside := e.FromGeodetic(geo.Geodetic{Lon: 10, Lat: 50, Height: 500})
	if h := m.HeightAt(inside); h != 300 {
		t.Errorf("expected obstacle height 300 inside footprint, got %f", h)
	}

	outside := e.FromGeodetic(geo.Geodetic{Lon: 10.01, Lat: 50, Height: 500})
	if h := m.HeightAt(outside); h != 0 {
		t.Errorf("expected base elevation outside footprint, got %f", h)
	}
}

func TestHeightAt_TallestObstacleWins(t *testing.T) {
	e := testEllipsoid()
	ring := [][2]float64{{-0.01, -0.01}, {0.01, -0.01}, {0.01, 0.01}, {-0.01, 0.01}}

	low, err := NewObstacle("low", ring, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	high, err := NewObstacle("high", ring, 150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := NewMap(e, Flat(0), low, high)
	pos := e.FromGeodetic(geo.Geodetic{Lon: 0, Lat: 0, Height: 400})
	if h := m.HeightAt(pos); h != 150 {
		t.Errorf("expected tallest obstacle to win, got %f", h)
	}
}

func TestNewObstacle_RejectsDegenerate(t *testing.T) {
	if _, err := NewObstacle("line", [][2]float64{{0, 0}, {1, 1}}, 10); err == nil {
		t.Error("expected error for a two-vertex footprint")
	}
}

func TestParseObstacle(t *testing.T) {
	o, err := ParseObstacle("block", `[[0,0],[0.002,0],[0.002,0.002],[0,0.002]]`, 75)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !o.contains(0.001, 0.001) {
		t.Error("parsed footprint should contain its center")
	}
	if o.contains(0.01, 0.01) {
		t.Error("parsed footprint should not contain a distant point")
	}

	if _, err := ParseObstacle("bad", `not json`, 75); err == nil {
		t.Error("expected error for malformed JSON")
	}
	if _, err := ParseObstacle("short", `[[0,0],[1]]`, 75); err == nil {
		t.Error("expected error for a vertex with one value")
	}
}

func TestClampToSurface(t *testing.T) {
	e := testEllipsoid()
	m := NewMap(e, Flat(200))

	pos := e.FromGeodetic(geo.Geodetic{Lon: 5, Lat: 45, Height: 1500})
	clamped := m.ClampToSurface(pos)

	g := e.ToGeodetic(clamped)
	if math.Abs(g.Height-200) > 1e-3 {
		t.Errorf("expected clamped height 200, got %f", g.Height)
	}
	if math.Abs(g.Lon-5) > 1e-9 || math.Abs(g.Lat-45) > 1e-9 {
		t.Error("clamping must not move the horizontal position")
	}
}

func TestRollingRelief_Bounded(t *testing.T) {
	relief := Rolling(100)
	for lon := -1.0; lon <= 1.0; lon += 0.05 {
		h := relief(lon, 0.3)
		if h < -60 || h > 260 {
			t.Fatalf("relief out of expected envelope at lon %f: %f", lon, h)
		}
	}
}
