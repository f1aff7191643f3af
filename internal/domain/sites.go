package domain

import (
	"strconv"
	"strings"
)

// AssignSiteIDs fills in a site for every sample that has none, using the
// sample's zero-based row index. If that string is already a supplied site,
// it is prefixed with "_" until unique. Returns the number of sites assigned.
func AssignSiteIDs(samples SampleSet) int {
	taken := make(map[string]bool, len(samples))
	for _, s := range samples {
		if site := strings.TrimSpace(s.Site); site != "" {
			taken[site] = true
		}
	}

	assigned := 0
	for i := range samples {
		if strings.TrimSpace(samples[i].Site) != "" {
			continue
		}
		id := strconv.Itoa(i)
		for taken[id] {
			id = "_" + id
		}
		taken[id] = true
		samples[i].Site = id
		assigned++
	}
	return assigned
}
