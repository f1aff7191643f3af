package domain

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"
)

// summaryPrecision is the number of decimal places kept on mean coordinates.
const summaryPrecision = 2

type groupKey struct {
	tephra      string
	site        string
	composition Composition
}

// Aggregate groups samples by (tephra, site, composition) and returns the mean
// longitude and latitude of each group rounded to two decimal places.
// Rows are sorted by key, so the result does not depend on input order.
func Aggregate(samples SampleSet) ([]SummaryRow, error) {
	lons := make(map[groupKey]stats.Float64Data)
	lats := make(map[groupKey]stats.Float64Data)
	for _, s := range samples {
		k := groupKey{tephra: s.TephraName, site: s.Site, composition: s.Composition}
		lons[k] = append(lons[k], s.Longitude)
		lats[k] = append(lats[k], s.Latitude)
	}

	rows := make([]SummaryRow, 0, len(lons))
	for k, lon := range lons {
		meanLon, err := roundedMean(lon)
		if err != nil {
			return nil, fmt.Errorf("aggregate longitude for %s/%s/%s: %w", k.tephra, k.site, k.composition, err)
		}
		meanLat, err := roundedMean(lats[k])
		if err != nil {
			return nil, fmt.Errorf("aggregate latitude for %s/%s/%s: %w", k.tephra, k.site, k.composition, err)
		}
		rows = append(rows, SummaryRow{
			TephraName:  k.tephra,
			Site:        k.site,
			Composition: k.composition,
			Longitude:   meanLon,
			Latitude:    meanLat,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.TephraName != b.TephraName {
			return a.TephraName < b.TephraName
		}
		if a.Site != b.Site {
			return a.Site < b.Site
		}
		return a.Composition < b.Composition
	})
	return rows, nil
}

// roundedMean sorts a copy before summing so equal groups in any row order
// produce bit-identical means.
func roundedMean(values stats.Float64Data) (float64, error) {
	sorted := append(stats.Float64Data(nil), values...)
	sort.Float64s(sorted)
	mean, err := stats.Mean(sorted)
	if err != nil {
		return 0, err
	}
	return stats.Round(mean, summaryPrecision)
}
