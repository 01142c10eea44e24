package priority

import (
	"fmt"
	"sort"

	"github.com/angelmondragon/churnsight/internal/rfm"
	"github.com/angelmondragon/churnsight/pkg/enums"
	pkgerrors "github.com/angelmondragon/churnsight/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Thresholds carries the batch-relative cutoffs the retention policy compares
// against. They are recomputed per run, so tier boundaries shift with the
// customer population.
type Thresholds struct {
	MedianMonetary  float64
	MedianFrequency float64
}

// BatchThresholds derives the medians from the current customer table.
func BatchThresholds(customers []rfm.Customer) Thresholds {
	monetary := make([]float64, len(customers))
	frequency := make([]float64, len(customers))
	for i, c := range customers {
		monetary[i] = c.Monetary
		frequency[i] = float64(c.Frequency)
	}
	sort.Float64s(monetary)
	sort.Float64s(frequency)
	return Thresholds{
		MedianMonetary:  stat.Quantile(0.5, stat.Empirical, monetary, nil),
		MedianFrequency: stat.Quantile(0.5, stat.Empirical, frequency, nil),
	}
}

// Retention assigns the batch-relative tier from churn probability and the
// customer's standing against the batch medians. Pure and order-independent
// per row.
func Retention(c rfm.Customer, churnProbability float64, th Thresholds) enums.RetentionTier {
	switch {
	case churnProbability >= 0.7 &&
		c.Monetary >= th.MedianMonetary &&
		c.RecencyDays < 300 &&
		float64(c.Frequency) >= th.MedianFrequency:
		return enums.RetentionTierHigh
	case churnProbability >= 0.5 && churnProbability < 0.7 && c.RecencyDays < 400:
		return enums.RetentionTierMedium
	default:
		return enums.RetentionTierLow
	}
}

// Absolute cutoffs for the at-risk policy. Unlike the retention tiers these
// do not move with the batch.
const (
	atRiskHighROIFrequency = 20
	atRiskHighROIMonetary  = 100000
	atRiskHighROIRecency   = 250
	atRiskMidFrequency     = 10
	atRiskMidMonetary      = 50000
	atRiskHighValue        = 100000
	atRiskLowValue         = 5000
)

// Assign dispatches to the named tiering policy. Thresholds are only
// consulted by the retention policy; the at-risk policy ignores them.
func Assign(policy enums.PriorityPolicy, c rfm.Customer, churnProbability float64, th Thresholds) (fmt.Stringer, error) {
	switch policy {
	case enums.PriorityPolicyRetention:
		return Retention(c, churnProbability, th), nil
	case enums.PriorityPolicyAtRisk:
		return AtRisk(c), nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown priority policy %q", policy))
	}
}

// AtRisk assigns one of the five absolute-threshold tiers for an
// already-churned customer. Rules are evaluated top-down; first match wins.
func AtRisk(c rfm.Customer) enums.AtRiskTier {
	switch {
	case c.Frequency >= atRiskHighROIFrequency &&
		c.Monetary >= atRiskHighROIMonetary &&
		c.RecencyDays < atRiskHighROIRecency:
		return enums.AtRiskTierHighROI
	case c.Frequency >= atRiskMidFrequency && c.Monetary >= atRiskMidMonetary:
		return enums.AtRiskTierMidLevel
	case c.Monetary >= atRiskHighValue:
		return enums.AtRiskTierHighValueChurned
	case c.Monetary < atRiskLowValue:
		return enums.AtRiskTierLowValueChurned
	default:
		return enums.AtRiskTierReviewManually
	}
}
