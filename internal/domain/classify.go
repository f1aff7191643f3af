package domain

import (
	"fmt"
	"math"
)

// Composition is a rock type label derived from SiO2 content.
type Composition string

const (
	Rhyolite           Composition = "Rhyolite"
	Dacite             Composition = "Dacite"
	Andesite           Composition = "Andesite"
	BasalticAndesite   Composition = "Basaltic andesite"
	Basalt             Composition = "Basalt"
	NoGeochemistryData Composition = "No geochemistry data"
)

// silicaBand assigns label to SiO2 values strictly above lowerBound.
type silicaBand struct {
	lowerBound float64
	label      Composition
}

// silicaBands is evaluated top to bottom; the first band whose bound is
// exceeded wins. Anything at or below the last bound is Basalt.
var silicaBands = []silicaBand{
	{lowerBound: 69, label: Rhyolite},
	{lowerBound: 63, label: Dacite},
	{lowerBound: 57, label: Andesite},
	{lowerBound: 52, label: BasalticAndesite},
}

// Classify maps an SiO2 wt% value to a composition. NaN means no data.
func Classify(sio2 float64) Composition {
	if math.IsNaN(sio2) {
		return NoGeochemistryData
	}
	for _, b := range silicaBands {
		if sio2 > b.lowerBound {
			return b.label
		}
	}
	return Basalt
}

// ClassifyAll sets Composition on every sample from its SiO2 value.
func ClassifyAll(samples SampleSet) {
	for i := range samples {
		samples[i].Composition = Classify(samples[i].SiO2)
	}
}

// Compositions lists every label in descending silica order, sentinel last.
func Compositions() []Composition {
	return []Composition{Rhyolite, Dacite, Andesite, BasalticAndesite, Basalt, NoGeochemistryData}
}

// IsKnown reports whether c is a real rock type rather than the no-data sentinel.
func (c Composition) IsKnown() bool {
	switch c {
	case Rhyolite, Dacite, Andesite, BasalticAndesite, Basalt:
		return true
	default:
		return false
	}
}

func (c Composition) String() string { return string(c) }

// ParseComposition returns the composition whose label equals s exactly.
func ParseComposition(s string) (Composition, error) {
	for _, c := range Compositions() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown composition %q", s)
}
