package enums

import "fmt"

// Segment names a behavioral customer cluster derived from RFM features.
type Segment string

const (
	SegmentChampions      Segment = "Champions"
	SegmentLoyalCustomers Segment = "Loyal Customers"
	SegmentAtRisk         Segment = "At Risk"
	SegmentHibernating    Segment = "Hibernating"
)

// segmentsByRank orders segments from the strongest centroid profile
// (high monetary/frequency, low recency) to the weakest.
var segmentsByRank = []Segment{
	SegmentChampions,
	SegmentLoyalCustomers,
	SegmentAtRisk,
	SegmentHibernating,
}

// String implements fmt.Stringer.
func (s Segment) String() string {
	return string(s)
}

// IsValid reports whether the value is a known Segment.
func (s Segment) IsValid() bool {
	for _, candidate := range segmentsByRank {
		if candidate == s {
			return true
		}
	}
	return false
}

// SegmentForRank maps a centroid rank (0 = strongest profile) to a segment
// name. Ranks beyond the named set get a generic label, which happens when
// the pipeline is configured with more than four clusters.
func SegmentForRank(rank int) Segment {
	if rank >= 0 && rank < len(segmentsByRank) {
		return segmentsByRank[rank]
	}
	return Segment(fmt.Sprintf("Segment %d", rank+1))
}

// ParseSegment converts the raw string to a Segment.
func ParseSegment(value string) (Segment, error) {
	for _, candidate := range segmentsByRank {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid segment %q", value)
}
