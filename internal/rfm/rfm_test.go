package rfm

import (
	"testing"
	"time"

	"github.com/angelmondragon/churnsight/internal/ingest"
	"github.com/angelmondragon/churnsight/internal/repair"
	pkgerrors "github.com/angelmondragon/churnsight/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(customer, order string, date time.Time, amount float64) repair.Repaired {
	qty := int64(1)
	return repair.Repaired{Transaction: ingest.Transaction{
		CustomerID: customer,
		OrderDate:  date,
		OrderID:    order,
		Qty:        &qty,
		UnitPrice:  decimal.NewFromFloat(amount),
		UnitCost:   decimal.NewFromFloat(amount / 2),
		Amount:     decimal.NewFromFloat(amount),
	}}
}

func TestAggregate(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC) }
	txns := []repair.Repaired{
		line("C1", "O-1", day(1), 100),
		line("C1", "O-2", day(10), 250),
		line("C2", "O-3", day(20), 40),
	}

	customers, reference, err := Aggregate(txns)
	require.NoError(t, err)
	require.Len(t, customers, 2)

	// Reference is max order date + 1 day.
	assert.Equal(t, day(21), reference)

	// Sorted by customer ID.
	assert.Equal(t, "C1", customers[0].CustomerID)
	assert.Equal(t, 11, customers[0].RecencyDays)
	assert.Equal(t, 2, customers[0].Frequency)
	assert.InDelta(t, 350, customers[0].Monetary, 1e-9)

	assert.Equal(t, "C2", customers[1].CustomerID)
	assert.Equal(t, 1, customers[1].RecencyDays)
	assert.Equal(t, 1, customers[1].Frequency)
}

func TestAggregateInvariants(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC) }
	txns := []repair.Repaired{
		line("C1", "O-1", day(30), 10),
		line("C2", "O-2", day(1), 10),
	}

	customers, _, err := Aggregate(txns)
	require.NoError(t, err)
	for _, c := range customers {
		assert.GreaterOrEqual(t, c.RecencyDays, 0)
		assert.GreaterOrEqual(t, c.Frequency, 1)
	}
}

func TestAggregateDeterministic(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC) }
	txns := []repair.Repaired{
		line("C3", "O-1", day(3), 30),
		line("C1", "O-2", day(1), 10),
		line("C2", "O-3", day(2), 20),
		line("C1", "O-4", day(4), 40),
	}

	first, _, err := Aggregate(txns)
	require.NoError(t, err)
	second, _, err := Aggregate(txns)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAggregateEmptyBatch(t *testing.T) {
	_, _, err := Aggregate(nil)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeInsufficientData, pkgerrors.As(err).Code())
}
