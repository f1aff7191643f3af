package basemap

import (
	_ "embed"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// land_110m.geojson is the Natural Earth 1:110m admin-0 country layer cut down
// to the North Atlantic and Europe, coordinates rounded to 0.001 degrees and
// longitude 180 pulled in to 179.999 so no ring wraps across the cone's cut.
//
//go:embed data/land_110m.geojson
var landGeoJSON []byte

// Area is one projected land polygon. Rings[0] is the outer ring, the rest are holes.
type Area struct {
	Name  string
	Rings [][]XY
}

// Land projects the embedded land polygons and returns those that reach into
// the frame. Rings are not cut at the frame edge; renderers clip on draw.
func (p *Projection) Land() ([]Area, error) {
	fc, err := geojson.UnmarshalFeatureCollection(landGeoJSON)
	if err != nil {
		return nil, fmt.Errorf("decode land polygons: %w", err)
	}

	var out []Area
	for _, f := range fc.Features {
		name := f.Properties.MustString("name", "")
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			out = p.appendArea(out, name, g)
		case orb.MultiPolygon:
			for _, poly := range g {
				out = p.appendArea(out, name, poly)
			}
		default:
			return nil, fmt.Errorf("land feature %q: unsupported geometry %s", name, f.Geometry.GeoJSONType())
		}
	}
	return out, nil
}

func (p *Projection) appendArea(out []Area, name string, poly orb.Polygon) []Area {
	if len(poly) == 0 {
		return out
	}
	rings := make([][]XY, 0, len(poly))
	for _, ring := range poly {
		xys := make([]XY, len(ring))
		for i, pt := range ring {
			x, y := p.Forward(pt.Lon(), pt.Lat())
			xys[i] = XY{X: x, Y: y}
		}
		rings = append(rings, xys)
	}
	if !p.overlaps(rings[0]) {
		return out
	}
	return append(out, Area{Name: name, Rings: rings})
}

// overlaps reports whether the bounding box of ring intersects the frame.
func (p *Projection) overlaps(ring []XY) bool {
	if len(ring) == 0 {
		return false
	}
	minX, maxX, minY, maxY := ring[0].X, ring[0].X, ring[0].Y, ring[0].Y
	for _, pt := range ring[1:] {
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
	}
	return maxX >= 0 && minX <= p.params.Width && maxY >= 0 && minY <= p.params.Height
}
