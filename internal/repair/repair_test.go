package repair

import (
	"testing"
	"time"

	"github.com/angelmondragon/churnsight/internal/ingest"
	pkgerrors "github.com/angelmondragon/churnsight/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(customer, order string, qty *int64, price, cost, amount string) ingest.Transaction {
	return ingest.Transaction{
		CustomerID: customer,
		OrderDate:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		OrderID:    order,
		Qty:        qty,
		UnitPrice:  decimal.RequireFromString(price),
		UnitCost:   decimal.RequireFromString(cost),
		Amount:     decimal.RequireFromString(amount),
	}
}

func qty(v int64) *int64 { return &v }

func TestRunFillsMissingQuantity(t *testing.T) {
	txns := []ingest.Transaction{
		tx("C1", "O-1", nil, "10.00", "6.00", "30.00"),
		tx("C1", "O-2", qty(4), "5.00", "3.00", "20.00"),
	}

	repaired, err := Run(txns)
	require.NoError(t, err)

	require.NotNil(t, repaired[0].Qty)
	assert.EqualValues(t, 3, *repaired[0].Qty)
}

func TestRunPriceTimesQtyEqualsAmount(t *testing.T) {
	// Supplied unit prices are deliberately inconsistent with the amounts;
	// repair must overwrite them.
	txns := []ingest.Transaction{
		tx("C1", "O-1", qty(3), "999.00", "6.00", "30.00"),
		tx("C2", "O-2", qty(7), "1.00", "2.00", "21.70"),
		tx("C3", "O-3", nil, "5.00", "1.00", "25.00"),
	}

	repaired, err := Run(txns)
	require.NoError(t, err)

	for _, r := range repaired {
		product := r.UnitPrice.Mul(decimal.NewFromInt(*r.Qty))
		diff := product.Sub(r.Amount).Abs().InexactFloat64()
		assert.Less(t, diff, 1e-9, "order %s: %s x %d != %s", r.OrderID, r.UnitPrice, *r.Qty, r.Amount)
	}
}

func TestRunEstimatesUnknownCosts(t *testing.T) {
	// Known-cost rows carry 40% margin, so the estimated cost is 60% of the
	// recomputed price, rounded to cents.
	txns := []ingest.Transaction{
		tx("C1", "O-1", qty(1), "10.00", "6.00", "10.00"),
		tx("C2", "O-2", qty(1), "20.00", "12.00", "20.00"),
		tx("C3", "O-3", qty(1), "50.00", "0", "50.00"),
	}

	repaired, err := Run(txns)
	require.NoError(t, err)

	assert.False(t, repaired[0].CostEstimated)
	assert.True(t, repaired[0].UnitCost.Equal(decimal.RequireFromString("6.00")))

	assert.True(t, repaired[2].CostEstimated)
	assert.True(t, repaired[2].UnitCost.Equal(decimal.RequireFromString("30.00")),
		"got %s", repaired[2].UnitCost)
	assert.False(t, repaired[2].UnitCost.IsNegative())
}

func TestRunFailsWhenQuantityAndPriceMissing(t *testing.T) {
	txns := []ingest.Transaction{
		tx("C1", "O-1", nil, "0", "6.00", "30.00"),
	}

	_, err := Run(txns)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDataQuality, typed.Code())
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []int{0}, details["rows"])
}

func TestRunFailsWithoutAnyMarginRows(t *testing.T) {
	txns := []ingest.Transaction{
		tx("C1", "O-1", qty(1), "10.00", "0", "10.00"),
	}

	_, err := Run(txns)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeInsufficientData, pkgerrors.As(err).Code())
}

func TestRunIsDeterministic(t *testing.T) {
	txns := []ingest.Transaction{
		tx("C1", "O-1", qty(1), "10.00", "6.00", "10.00"),
		tx("C2", "O-2", qty(2), "20.00", "0", "40.00"),
		tx("C3", "O-3", nil, "5.00", "4.00", "15.00"),
	}

	first, err := Run(txns)
	require.NoError(t, err)
	second, err := Run(txns)
	require.NoError(t, err)
	assert.Equal(t, ToFrame(first), ToFrame(second))
}

func TestToFrameCarriesEstimationFlag(t *testing.T) {
	txns := []ingest.Transaction{
		tx("C1", "O-1", qty(1), "10.00", "6.00", "10.00"),
		tx("C2", "O-2", qty(1), "20.00", "0", "20.00"),
	}

	repaired, err := Run(txns)
	require.NoError(t, err)

	f := ToFrame(repaired)
	assert.Contains(t, f.Columns, "unit_cost_estimated")
	assert.Equal(t, "false", f.Rows[0][len(f.Columns)-1])
	assert.Equal(t, "true", f.Rows[1][len(f.Columns)-1])
}
