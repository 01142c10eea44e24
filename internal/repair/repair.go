package repair

import (
	"fmt"
	"sort"

	"github.com/angelmondragon/churnsight/internal/frame"
	"github.com/angelmondragon/churnsight/internal/ingest"
	pkgerrors "github.com/angelmondragon/churnsight/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/stat"
)

// Repaired is a transaction with quantity guaranteed present, the unit price
// recomputed for internal consistency, and unknown costs estimated from the
// batch's median gross margin.
type Repaired struct {
	ingest.Transaction
	CostEstimated bool
}

var one = decimal.NewFromInt(1)

// Run repairs the batch. It is a pure function of the full input: the median
// margin used for cost estimation depends on every valid row, so identical
// input always produces identical output.
func Run(txns []ingest.Transaction) ([]Repaired, error) {
	if len(txns) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientData, "no transactions to repair")
	}

	repaired := make([]Repaired, len(txns))
	var badRows []int
	var rowErr error
	for i, tx := range txns {
		repaired[i] = Repaired{Transaction: tx}
		r := &repaired[i]

		// Fill missing quantity from amount/price; a zero price makes the
		// row unrepairable and fails the stage rather than propagating NaN.
		if r.Qty == nil {
			if tx.UnitPrice.IsZero() {
				badRows = append(badRows, i)
				rowErr = multierr.Append(rowErr, fmt.Errorf("row %d (%s): quantity and unit price both missing", i, tx.OrderID))
				continue
			}
			qty := tx.Amount.Div(tx.UnitPrice).Round(0).IntPart()
			r.Qty = &qty
		}

		if *r.Qty == 0 {
			badRows = append(badRows, i)
			rowErr = multierr.Append(rowErr, fmt.Errorf("row %d (%s): zero quantity", i, tx.OrderID))
			continue
		}

		// Recompute the price for every row so amount = qty x price holds
		// exactly, overwriting whatever the source supplied.
		r.UnitPrice = r.Amount.Div(decimal.NewFromInt(*r.Qty))
	}
	if rowErr != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDataQuality, rowErr, "unrepairable transaction rows").
			WithDetails(map[string]any{"rows": badRows})
	}

	if err := estimateCosts(repaired); err != nil {
		return nil, err
	}
	return repaired, nil
}

// estimateCosts fills zero (unknown) costs using the median gross-margin
// percentage over rows where both price and cost are positive.
func estimateCosts(repaired []Repaired) error {
	var margins []float64
	for _, r := range repaired {
		if r.UnitCost.IsPositive() && r.UnitPrice.IsPositive() {
			margin := r.UnitPrice.Sub(r.UnitCost).Div(r.UnitPrice).InexactFloat64()
			margins = append(margins, margin)
		}
	}

	needsEstimate := false
	for _, r := range repaired {
		if r.UnitCost.IsZero() {
			needsEstimate = true
			break
		}
	}
	if !needsEstimate {
		return nil
	}
	if len(margins) == 0 {
		return pkgerrors.New(pkgerrors.CodeInsufficientData,
			"no rows with known cost and price to derive a margin from")
	}

	sort.Float64s(margins)
	medianMargin := stat.Quantile(0.5, stat.Empirical, margins, nil)
	costFactor := one.Sub(decimal.NewFromFloat(medianMargin))

	for i := range repaired {
		r := &repaired[i]
		if !r.UnitCost.IsZero() {
			continue
		}
		estimated := r.UnitPrice.Mul(costFactor).Round(2)
		if estimated.IsNegative() {
			estimated = decimal.Zero
		}
		r.UnitCost = estimated
		r.CostEstimated = true
	}
	return nil
}

// Output column layout for the repaired-transactions audit file.
var auditColumns = []string{
	ingest.ColCustomerID, ingest.ColOrderDate, ingest.ColOrderID,
	ingest.ColSalesQty, ingest.ColUnitPrice, ingest.ColUnitCost,
	ingest.ColSalesAmount, "unit_cost_estimated",
}

// ToFrame renders repaired transactions for the audit CSV, carrying the
// cost-estimation flag for downstream transparency.
func ToFrame(repaired []Repaired) *frame.Frame {
	rows := make([][]string, len(repaired))
	for i, r := range repaired {
		estimated := "false"
		if r.CostEstimated {
			estimated = "true"
		}
		rows[i] = []string{
			r.CustomerID,
			r.OrderDate.Format("2006-01-02"),
			r.OrderID,
			fmt.Sprintf("%d", *r.Qty),
			r.UnitPrice.Round(4).String(),
			r.UnitCost.String(),
			r.Amount.String(),
			estimated,
		}
	}
	return &frame.Frame{Columns: auditColumns, Rows: rows}
}
