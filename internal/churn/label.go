package churn

import "github.com/angelmondragon/churnsight/internal/rfm"

// Label flags each customer as churned when recency exceeds the threshold.
// Pure and total over the RFM table.
func Label(customers []rfm.Customer, thresholdDays int) []bool {
	labels := make([]bool, len(customers))
	for i, c := range customers {
		labels[i] = c.RecencyDays > thresholdDays
	}
	return labels
}
