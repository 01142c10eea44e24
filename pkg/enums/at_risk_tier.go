package enums

import "fmt"

// AtRiskTier is the absolute-threshold priority tier for already-churned
// customers. It is a separate policy from RetentionTier, not an extension.
type AtRiskTier string

const (
	AtRiskTierHighROI          AtRiskTier = "High-ROI Priority"
	AtRiskTierMidLevel         AtRiskTier = "Mid-Level"
	AtRiskTierHighValueChurned AtRiskTier = "High-Value Churned"
	AtRiskTierLowValueChurned  AtRiskTier = "Low-Value Churned"
	AtRiskTierReviewManually   AtRiskTier = "Review Manually"
)

var validAtRiskTiers = []AtRiskTier{
	AtRiskTierHighROI,
	AtRiskTierMidLevel,
	AtRiskTierHighValueChurned,
	AtRiskTierLowValueChurned,
	AtRiskTierReviewManually,
}

// String implements fmt.Stringer.
func (a AtRiskTier) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AtRiskTier.
func (a AtRiskTier) IsValid() bool {
	for _, candidate := range validAtRiskTiers {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAtRiskTier converts the raw string to an AtRiskTier.
func ParseAtRiskTier(value string) (AtRiskTier, error) {
	for _, candidate := range validAtRiskTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid at-risk tier %q", value)
}
