// Package domain models distal tephra geochemistry samples and the pure
// transformations applied to them before mapping.
//
// # Data Source
//
// Samples come from hand-compiled CSV tables of distal Hekla 3 and Hekla 4
// tephra occurrences. One table carries glass geochemistry (an SiO2 column),
// the other lists sites where the layer was found without any analyses.
// Both are concatenated into a single SampleSet before anything else happens.
//
// # Composition Classification
//
// Composition is a simplified total-silica scheme on SiO2 wt%:
//
//	> 69       Rhyolite
//	> 63       Dacite
//	> 57       Andesite
//	> 52       Basaltic andesite
//	otherwise  Basalt
//
// Every threshold uses strict "greater than", so a value exactly on a
// boundary belongs to the lower band (69.0 is Dacite, 52.0 is Basalt).
// A missing SiO2 value (NaN) maps to the "No geochemistry data" sentinel.
//
// # Site Identifiers
//
// Rows without a site get the string form of their zero-based position in the
// concatenated table. See [AssignSiteIDs].
//
// # Map Buckets
//
// For a (tephra, composition) query every row of that tephra lands in exactly
// one of three buckets: matched, other known composition, or no data. See
// [Partition].
package domain
