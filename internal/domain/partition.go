package domain

// Partition splits the samples of one tephra into map layers for a composition query.
//
// Every sample whose TephraName equals tephra lands in exactly one bucket:
// Matched when its composition equals the query, NoData when it has no
// geochemistry, OtherKnown otherwise. Samples of other tephras are ignored,
// so an unknown tephra yields three empty buckets. Row order is preserved.
//
// Querying with NoGeochemistryData is not special-cased: Matched and NoData
// then hold the same points.
func Partition(samples SampleSet, tephra string, composition Composition) CoordinateBucket {
	var b CoordinateBucket
	for _, s := range samples {
		if s.TephraName != tephra {
			continue
		}
		if s.Composition == composition {
			b.Matched = append(b.Matched, s.Point())
		}
		if s.Composition != composition && s.Composition != NoGeochemistryData {
			b.OtherKnown = append(b.OtherKnown, s.Point())
		}
		if s.Composition == NoGeochemistryData {
			b.NoData = append(b.NoData, s.Point())
		}
	}
	return b
}
