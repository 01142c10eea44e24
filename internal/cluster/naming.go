package cluster

import (
	"sort"

	"github.com/angelmondragon/churnsight/internal/rfm"
	"github.com/angelmondragon/churnsight/pkg/enums"
)

// Names derives the cluster-index to segment-name mapping by ranking each
// cluster's raw-space profile: high average monetary and frequency with low
// recency ranks first. Ranking on the fitted profile keeps names stable in
// meaning even though k-means assigns indices in arbitrary order.
func (m *Model) Names(customers []rfm.Customer) map[int]enums.Segment {
	type profile struct {
		cluster  int
		recency  float64
		freq     float64
		monetary float64
		count    int
	}
	profiles := make([]profile, m.K)
	for c := range profiles {
		profiles[c].cluster = c
	}
	for i, c := range m.Assignments {
		p := &profiles[c]
		p.recency += float64(customers[i].RecencyDays)
		p.freq += float64(customers[i].Frequency)
		p.monetary += customers[i].Monetary
		p.count++
	}
	for c := range profiles {
		if profiles[c].count > 0 {
			n := float64(profiles[c].count)
			profiles[c].recency /= n
			profiles[c].freq /= n
			profiles[c].monetary /= n
		}
	}

	// Composite score: sum of per-dimension ranks, recency inverted.
	score := make([]float64, m.K)
	addRanks := func(value func(profile) float64, invert bool) {
		order := make([]int, m.K)
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			if invert {
				return value(profiles[order[a]]) < value(profiles[order[b]])
			}
			return value(profiles[order[a]]) > value(profiles[order[b]])
		})
		for rank, c := range order {
			score[c] += float64(rank)
		}
	}
	addRanks(func(p profile) float64 { return p.monetary }, false)
	addRanks(func(p profile) float64 { return p.freq }, false)
	addRanks(func(p profile) float64 { return p.recency }, true)

	order := make([]int, m.K)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return score[order[a]] < score[order[b]] })

	names := make(map[int]enums.Segment, m.K)
	for rank, c := range order {
		names[c] = enums.SegmentForRank(rank)
	}
	return names
}

// NameByIndex is the legacy static index mapping. It is only meaningful for
// the specific fitted model that produced the indices: a re-fit with another
// seed or dataset can reorder clusters and silently invalidate it. Prefer
// Model.Names.
func NameByIndex(idx int) enums.Segment {
	return enums.SegmentForRank(idx)
}
