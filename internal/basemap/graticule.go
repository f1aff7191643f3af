package basemap

import (
	"math"
	"strconv"
)

// graticuleStep is the sampling interval along each graticule line, degrees.
const graticuleStep = 0.5

// XY is a point in map-frame metres.
type XY struct {
	X, Y float64
}

// LineKind tells parallels from meridians.
type LineKind int

const (
	Parallel LineKind = iota
	Meridian
)

// Polyline is one visible run of a graticule line.
type Polyline struct {
	Label  string
	Kind   LineKind
	Points []XY
}

// Edge identifies a side of the map frame.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeLeft
	EdgeRight
	EdgeBottom
	EdgeTop
)

// Label is a graticule annotation anchored where its line meets the frame.
type Label struct {
	Text string
	At   XY
	Edge Edge
}

// edgeTolerance is how close to a side, in metres, a point must be to sit on it.
const edgeTolerance = 1.0

// Parallels returns latitudes from -30 to 80 every 10 degrees.
func Parallels() []float64 { return stepRange(-30, 80, 10) }

// Meridians returns longitudes from -50 to 50 every 10 degrees.
func Meridians() []float64 { return stepRange(-50, 50, 10) }

// Graticule traces the given parallels and meridians across the frame and
// returns only the parts inside it. A line that leaves and re-enters the frame
// yields one Polyline per visible run.
func (p *Projection) Graticule(parallels, meridians []float64) []Polyline {
	var out []Polyline
	for _, lat := range parallels {
		var line []XY
		for lon := p.params.Lon0 - 180; lon <= p.params.Lon0+180; lon += graticuleStep {
			x, y := p.Forward(lon, lat)
			line = append(line, XY{X: x, Y: y})
		}
		out = append(out, p.clip(formatLat(lat), Parallel, line)...)
	}
	for _, lon := range meridians {
		var line []XY
		for lat := -80.0; lat <= 88; lat += graticuleStep {
			x, y := p.Forward(lon, lat)
			line = append(line, XY{X: x, Y: y})
		}
		out = append(out, p.clip(formatLon(lon), Meridian, line)...)
	}
	return out
}

// clip splits line into the runs inside the frame. Runs that cross a side are
// extended to the exact crossing point so labels can sit on the frame edge.
func (p *Projection) clip(label string, kind LineKind, line []XY) []Polyline {
	var out []Polyline
	var run []XY
	flush := func() {
		if len(run) >= 2 {
			out = append(out, Polyline{Label: label, Kind: kind, Points: run})
		}
		run = nil
	}
	for i, pt := range line {
		if p.Contains(pt.X, pt.Y) {
			if len(run) == 0 && i > 0 {
				run = append(run, p.crossing(pt, line[i-1]))
			}
			run = append(run, pt)
			continue
		}
		if len(run) > 0 {
			run = append(run, p.crossing(line[i-1], pt))
		}
		flush()
	}
	flush()
	return out
}

// crossing finds where the segment from in (inside the frame) to out
// (outside) meets the frame boundary.
func (p *Projection) crossing(in, out XY) XY {
	lo, hi := 0.0, 1.0
	for range 60 {
		mid := (lo + hi) / 2
		if p.Contains(in.X+(out.X-in.X)*mid, in.Y+(out.Y-in.Y)*mid) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return XY{X: in.X + (out.X-in.X)*lo, Y: in.Y + (out.Y-in.Y)*lo}
}

// EdgeOf reports which side of the frame pt lies on, or EdgeNone.
func (p *Projection) EdgeOf(pt XY) Edge {
	switch {
	case math.Abs(pt.X) <= edgeTolerance:
		return EdgeLeft
	case math.Abs(pt.X-p.params.Width) <= edgeTolerance:
		return EdgeRight
	case math.Abs(pt.Y) <= edgeTolerance:
		return EdgeBottom
	case math.Abs(pt.Y-p.params.Height) <= edgeTolerance:
		return EdgeTop
	default:
		return EdgeNone
	}
}

// EdgeLabels places parallel labels on the left and right sides and meridian
// labels on the bottom side, at the points where each line leaves the frame.
func (p *Projection) EdgeLabels(lines []Polyline) []Label {
	var out []Label
	seen := make(map[Label]bool)
	for _, l := range lines {
		ends := []XY{l.Points[0], l.Points[len(l.Points)-1]}
		for _, pt := range ends {
			edge := p.EdgeOf(pt)
			wanted := (l.Kind == Parallel && (edge == EdgeLeft || edge == EdgeRight)) ||
				(l.Kind == Meridian && edge == EdgeBottom)
			if !wanted {
				continue
			}
			lb := Label{Text: l.Label, At: pt, Edge: edge}
			if seen[lb] {
				continue
			}
			seen[lb] = true
			out = append(out, lb)
		}
	}
	return out
}

func stepRange(from, to, step float64) []float64 {
	var out []float64
	for v := from; v <= to; v += step {
		out = append(out, v)
	}
	return out
}

func formatLat(lat float64) string {
	return formatDegrees(lat, "N", "S")
}

func formatLon(lon float64) string {
	return formatDegrees(lon, "E", "W")
}

func formatDegrees(v float64, pos, neg string) string {
	s := strconv.FormatFloat(math.Abs(v), 'f', -1, 64) + "°"
	switch {
	case v > 0:
		return s + pos
	case v < 0:
		return s + neg
	default:
		return s
	}
}
