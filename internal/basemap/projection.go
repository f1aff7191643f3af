// Package basemap projects geographic coordinates onto the fixed regional map
// frame used for every tephra map.
//
// The frame is an ellipsoidal Lambert conformal conic projection (Snyder 1987,
// "Map Projections: A Working Manual", ch. 15) with the projection origin at
// the centre of the frame, so map coordinates run from (0, 0) at the lower-left
// corner to (Width, Height) at the upper-right corner, in metres.
package basemap

import (
	"errors"
	"math"
)

// Params describes a Lambert conformal conic map frame.
type Params struct {
	Width     float64 // metres
	Height    float64 // metres
	SemiMajor float64 // ellipsoid equatorial radius, metres
	SemiMinor float64 // ellipsoid polar radius, metres
	Lat1      float64 // first standard parallel, degrees
	Lat2      float64 // second standard parallel, degrees
	Lat0      float64 // latitude of origin, degrees
	Lon0      float64 // central meridian, degrees
}

// NorthAtlantic is the frame used for the Hekla 3 / Hekla 4 distal maps:
// 2800 x 3200 km on WGS84, standard parallels 50N and 66N, centred on 61.5N 0E.
func NorthAtlantic() Params {
	return Params{
		Width:     2.8e6,
		Height:    3.2e6,
		SemiMajor: 6378137.00,
		SemiMinor: 6356752.3142,
		Lat1:      50,
		Lat2:      66,
		Lat0:      61.5,
		Lon0:      0,
	}
}

// Projection converts longitude/latitude to map-frame metres.
type Projection struct {
	params Params
	a      float64 // semi-major axis
	e      float64 // first eccentricity
	n      float64 // cone constant
	f      float64
	rho0   float64
}

// NewLambertConformal validates p and precomputes the projection constants.
func NewLambertConformal(p Params) (*Projection, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, errors.New("map width and height must be positive")
	}
	if p.SemiMajor <= 0 || p.SemiMinor <= 0 || p.SemiMinor > p.SemiMajor {
		return nil, errors.New("invalid ellipsoid axes")
	}
	if math.Abs(p.Lat1+p.Lat2) < 1e-10 {
		return nil, errors.New("standard parallels must not be symmetric about the equator")
	}
	for _, lat := range []float64{p.Lat0, p.Lat1, p.Lat2} {
		if math.Abs(lat) >= 90 {
			return nil, errors.New("latitudes must lie strictly between the poles")
		}
	}

	proj := &Projection{params: p, a: p.SemiMajor}
	proj.e = math.Sqrt(1 - (p.SemiMinor*p.SemiMinor)/(p.SemiMajor*p.SemiMajor))

	phi1, phi2, phi0 := radians(p.Lat1), radians(p.Lat2), radians(p.Lat0)
	m1, m2 := proj.m(phi1), proj.m(phi2)
	t1, t2, t0 := proj.t(phi1), proj.t(phi2), proj.t(phi0)

	if math.Abs(p.Lat1-p.Lat2) < 1e-10 {
		proj.n = math.Sin(phi1)
	} else {
		proj.n = (math.Log(m1) - math.Log(m2)) / (math.Log(t1) - math.Log(t2))
	}
	proj.f = m1 / (proj.n * math.Pow(t1, proj.n))
	proj.rho0 = proj.a * proj.f * math.Pow(t0, proj.n)
	return proj, nil
}

// Forward projects lon/lat degrees to frame coordinates in metres.
func (p *Projection) Forward(lon, lat float64) (x, y float64) {
	rho := p.a * p.f * math.Pow(p.t(radians(lat)), p.n)
	theta := p.n * radians(normalizeLon(lon-p.params.Lon0))
	x = rho*math.Sin(theta) + p.params.Width/2
	y = p.rho0 - rho*math.Cos(theta) + p.params.Height/2
	return x, y
}

// Contains reports whether a projected point lies inside the map frame.
func (p *Projection) Contains(x, y float64) bool {
	return x >= 0 && x <= p.params.Width && y >= 0 && y <= p.params.Height
}

// Params returns the parameters the projection was built from.
func (p *Projection) Params() Params { return p.params }

// m is Snyder eq. 14-15.
func (p *Projection) m(phi float64) float64 {
	s := math.Sin(phi)
	return math.Cos(phi) / math.Sqrt(1-p.e*p.e*s*s)
}

// t is Snyder eq. 15-9.
func (p *Projection) t(phi float64) float64 {
	s := math.Sin(phi)
	return math.Tan(math.Pi/4-phi/2) / math.Pow((1-p.e*s)/(1+p.e*s), p.e/2)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// normalizeLon wraps a longitude difference into [-180, 180).
func normalizeLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}
