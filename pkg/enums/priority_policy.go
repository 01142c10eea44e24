package enums

import "fmt"

// PriorityPolicy selects which tiering rule set is applied to a customer
// table. The two policies are intentionally distinct: retention is
// batch-relative, at-risk uses absolute thresholds over churned customers.
type PriorityPolicy string

const (
	PriorityPolicyRetention PriorityPolicy = "retention"
	PriorityPolicyAtRisk    PriorityPolicy = "at_risk"
)

var validPriorityPolicies = []PriorityPolicy{
	PriorityPolicyRetention,
	PriorityPolicyAtRisk,
}

// IsValid reports whether the value is a known PriorityPolicy.
func (p PriorityPolicy) IsValid() bool {
	for _, candidate := range validPriorityPolicies {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePriorityPolicy converts the raw string to a PriorityPolicy.
func ParsePriorityPolicy(value string) (PriorityPolicy, error) {
	for _, candidate := range validPriorityPolicies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid priority policy %q", value)
}
