package domain

import (
	"math"
	"strings"
)

// Sample is one tephra occurrence row after loading.
type Sample struct {
	TephraName  string
	Site        string
	Longitude   float64
	Latitude    float64
	SiO2        float64 // wt%; NaN when the row has no geochemistry
	Composition Composition

	// Row is the zero-based position in the concatenated SampleSet.
	Row int
}

// HasGeochemistry reports whether the sample carries an SiO2 value.
func (s Sample) HasGeochemistry() bool {
	return !math.IsNaN(s.SiO2)
}

// Point returns the sample location.
func (s Sample) Point() Point {
	return Point{Lon: s.Longitude, Lat: s.Latitude}
}

// SampleSet is the full in-memory collection of samples for one run.
type SampleSet []Sample

// Tephras returns the distinct tephra names in first-seen order. Rows with no
// tephra name are skipped.
func (ss SampleSet) Tephras() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range ss {
		if s.TephraName == "" || seen[s.TephraName] {
			continue
		}
		seen[s.TephraName] = true
		out = append(out, s.TephraName)
	}
	return out
}

// CountByComposition tallies the samples of one tephra per composition.
func (ss SampleSet) CountByComposition(tephra string) map[Composition]int {
	counts := make(map[Composition]int)
	for _, s := range ss {
		if s.TephraName == tephra {
			counts[s.Composition]++
		}
	}
	return counts
}

// Point is a WGS-84 longitude/latitude pair in degrees.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// CoordinateBucket holds the map layers for a single (tephra, composition) query.
type CoordinateBucket struct {
	Matched    []Point
	OtherKnown []Point
	NoData     []Point
}

// Len returns the total number of points across all three layers.
func (b CoordinateBucket) Len() int {
	return len(b.Matched) + len(b.OtherKnown) + len(b.NoData)
}

// SummaryRow is the mean location of all samples sharing a (tephra, site, composition) key.
type SummaryRow struct {
	TephraName  string      `json:"tephra_name"`
	Site        string      `json:"site"`
	Composition Composition `json:"composition"`
	Longitude   float64     `json:"longitude"`
	Latitude    float64     `json:"latitude"`
}

// Key returns the grouping key joined with "|".
func (r SummaryRow) Key() string {
	return r.TephraName + "|" + r.Site + "|" + string(r.Composition)
}

// MapRequest is everything a renderer needs for one (tephra, composition) map.
type MapRequest struct {
	Tephra      string
	Composition Composition
	Bucket      CoordinateBucket
}

// Title is "<tephra> <composition>", also used as the file stem.
func (m MapRequest) Title() string {
	return m.Tephra + " " + m.Composition.String()
}

// FileName returns the PNG file name for the map. Path separators in the
// title are replaced so the file always lands in the output directory.
func (m MapRequest) FileName() string {
	return strings.NewReplacer("/", "-", `\`, "-").Replace(m.Title()) + ".png"
}
