package coerce

import (
	"strings"

	"tabclean/pkg/contracts/domain"
)

// DefaultOtherLabel is the bucket rare categories collapse into.
const DefaultOtherLabel = "Other"

// coerceCategory trims and lowercases the column's text values, then
// collapses categories seen fewer than minFreq times into the other
// bucket, bounding cardinality. Absent cells stay absent.
func coerceCategory(col domain.Column, minFreq int, otherLabel string) domain.Column {
	n := col.Len()
	values := make([]string, n)
	absent := make([]bool, n)

	counts := make(map[string]int)
	for i := 0; i < n; i++ {
		v := col.Value(i)
		if v.IsAbsent() {
			absent[i] = true
			continue
		}
		s := strings.ToLower(strings.TrimSpace(v.String()))
		values[i] = s
		counts[s]++
	}

	for i := 0; i < n; i++ {
		if !absent[i] && counts[values[i]] < minFreq {
			values[i] = otherLabel
		}
	}

	return domain.NewCategoricalColumn(col.Name(), values, absent)
}
