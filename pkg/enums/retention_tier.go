package enums

import "fmt"

// RetentionTier is the batch-relative priority tier assigned from churn
// probability and the batch's own RFM medians.
type RetentionTier string

const (
	RetentionTierHigh   RetentionTier = "High Priority"
	RetentionTierMedium RetentionTier = "Medium Priority"
	RetentionTierLow    RetentionTier = "Low Priority"
)

var validRetentionTiers = []RetentionTier{
	RetentionTierHigh,
	RetentionTierMedium,
	RetentionTierLow,
}

// String implements fmt.Stringer.
func (r RetentionTier) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RetentionTier.
func (r RetentionTier) IsValid() bool {
	for _, candidate := range validRetentionTiers {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRetentionTier converts the raw string to a RetentionTier.
func ParseRetentionTier(value string) (RetentionTier, error) {
	for _, candidate := range validRetentionTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid retention tier %q", value)
}
