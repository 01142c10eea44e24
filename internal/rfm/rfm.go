package rfm

import (
	"sort"
	"time"

	"github.com/angelmondragon/churnsight/internal/repair"
	pkgerrors "github.com/angelmondragon/churnsight/pkg/errors"
)

// Customer is one row of the per-customer feature table.
// RecencyDays >= 0 and Frequency >= 1 hold for every produced record:
// customers with no orders are absent, never zero-valued.
type Customer struct {
	CustomerID  string
	RecencyDays int
	Frequency   int
	Monetary    float64
}

// Aggregate folds repaired transactions into one RFM record per customer.
// The reference date is the batch's own horizon (max order date + 1 day),
// so reruns over the same data are deterministic regardless of wall clock.
func Aggregate(txns []repair.Repaired) ([]Customer, time.Time, error) {
	if len(txns) == 0 {
		return nil, time.Time{}, pkgerrors.New(pkgerrors.CodeInsufficientData, "no transactions to aggregate")
	}

	var maxDate time.Time
	for _, tx := range txns {
		if tx.OrderDate.After(maxDate) {
			maxDate = tx.OrderDate
		}
	}
	reference := maxDate.Add(24 * time.Hour)

	type acc struct {
		latest   time.Time
		lines    int
		monetary float64
	}
	byCustomer := make(map[string]*acc)
	for _, tx := range txns {
		a, ok := byCustomer[tx.CustomerID]
		if !ok {
			a = &acc{}
			byCustomer[tx.CustomerID] = a
		}
		if tx.OrderDate.After(a.latest) {
			a.latest = tx.OrderDate
		}
		a.lines++
		a.monetary += tx.Amount.InexactFloat64()
	}

	customers := make([]Customer, 0, len(byCustomer))
	for id, a := range byCustomer {
		customers = append(customers, Customer{
			CustomerID:  id,
			RecencyDays: int(reference.Sub(a.latest).Hours() / 24),
			Frequency:   a.lines,
			Monetary:    a.monetary,
		})
	}
	sort.Slice(customers, func(i, j int) bool {
		return customers[i].CustomerID < customers[j].CustomerID
	})
	return customers, reference, nil
}
