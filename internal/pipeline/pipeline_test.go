package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/churnsight/internal/ingest"
	"github.com/angelmondragon/churnsight/pkg/config"
	pkgerrors "github.com/angelmondragon/churnsight/pkg/errors"
	"github.com/angelmondragon/churnsight/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
}

func testConfig() config.PipelineConfig {
	return config.PipelineConfig{
		ChurnThresholdDays: 180,
		Clusters:           4,
		Seed:               42,
		TestFraction:       0.2,
		Trees:              20,
		MaxDepth:           5,
		MinLeaf:            1,
		CVFolds:            5,
	}
}

// testTransactions builds 20 active customers ordering recently and 20
// lapsed customers whose last order is over a year before the batch horizon.
func testTransactions() []ingest.Transaction {
	horizon := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	qty := func(v int64) *int64 { return &v }

	var txns []ingest.Transaction
	addLine := func(customer, order string, date time.Time, q *int64, price, cost, amount float64) {
		txns = append(txns, ingest.Transaction{
			CustomerID: customer,
			OrderDate:  date,
			OrderID:    order,
			Qty:        q,
			UnitPrice:  decimal.NewFromFloat(price),
			UnitCost:   decimal.NewFromFloat(cost),
			Amount:     decimal.NewFromFloat(amount),
		})
	}

	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("ACTIVE-%02d", i)
		recent := horizon.AddDate(0, 0, -(5 + i))
		addLine(id, id+"-1", recent.AddDate(0, 0, -30), qty(10), 100, 60, 1000)
		addLine(id, id+"-2", recent, qty(20), 100, 60, 2000)
	}
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("LAPSED-%02d", i)
		old := horizon.AddDate(0, 0, -(400 + i))
		addLine(id, id+"-1", old, qty(1), 50, 30, 50)
	}

	// One repairable row: missing quantity, unknown cost.
	addLine("ACTIVE-00", "ACTIVE-00-3", horizon, nil, 100, 0, 500)
	return txns
}

func TestRunEndToEnd(t *testing.T) {
	result, err := Run(context.Background(), testLogger(), testTransactions(), testConfig())
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), result.ReferenceDate)
	require.Len(t, result.Customers, 40)

	for _, c := range result.Customers {
		assert.GreaterOrEqual(t, c.RecencyDays, 0, c.CustomerID)
		assert.GreaterOrEqual(t, c.Frequency, 1, c.CustomerID)
		assert.GreaterOrEqual(t, c.ChurnProbability, 0.0, c.CustomerID)
		assert.LessOrEqual(t, c.ChurnProbability, 1.0, c.CustomerID)
		assert.True(t, c.Priority.IsValid(), "customer %s has no valid tier", c.CustomerID)
		assert.GreaterOrEqual(t, c.Cluster, 0)
		assert.Less(t, c.Cluster, 4)
	}

	// Lapsed customers are churned at the 180-day threshold, active are not.
	for _, c := range result.Customers {
		if c.CustomerID[:6] == "LAPSED" {
			assert.True(t, c.Churned, c.CustomerID)
		} else {
			assert.False(t, c.Churned, c.CustomerID)
		}
	}

	assert.Len(t, result.CVScores, 5)
	assert.Greater(t, result.CVMean, 0.5)
}

func TestRunDeterministicApartFromRunID(t *testing.T) {
	first, err := Run(context.Background(), testLogger(), testTransactions(), testConfig())
	require.NoError(t, err)
	second, err := Run(context.Background(), testLogger(), testTransactions(), testConfig())
	require.NoError(t, err)

	assert.Equal(t, first.Customers, second.Customers)
	assert.Equal(t, first.CVScores, second.CVScores)
}

func TestRunFailsWithStageOnError(t *testing.T) {
	_, err := Run(context.Background(), testLogger(), nil, testConfig())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, "repair", typed.Stage())
}

func TestAtRiskTiersOnlyForChurned(t *testing.T) {
	result, err := Run(context.Background(), testLogger(), testTransactions(), testConfig())
	require.NoError(t, err)

	tiers := result.AtRiskTiers()
	assert.Len(t, tiers, 20)
	for id, tier := range tiers {
		assert.Equal(t, "LAPSED", id[:6])
		assert.True(t, tier.IsValid())
	}
}

func TestToFrameMatchesOutputContract(t *testing.T) {
	result, err := Run(context.Background(), testLogger(), testTransactions(), testConfig())
	require.NoError(t, err)

	f := result.ToFrame()
	assert.Equal(t, []string{
		"customer_id", "recency", "frequency", "monetary",
		"cluster", "segment", "churned", "churn_probability", "priority_segment",
	}, f.Columns)
	require.Len(t, f.Rows, len(result.Customers))
	for _, row := range f.Rows {
		assert.Len(t, row, len(f.Columns))
	}
}
