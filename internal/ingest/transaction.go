package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/churnsight/internal/frame"
	pkgerrors "github.com/angelmondragon/churnsight/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// Input column contract for transaction tables.
const (
	ColCustomerID  = "customer_id"
	ColOrderDate   = "order_date"
	ColOrderID     = "order_id"
	ColSalesQty    = "sales_qty"
	ColUnitPrice   = "unit_price"
	ColUnitCost    = "unit_cost"
	ColSalesAmount = "sales_amount"
)

var requiredColumns = []string{
	ColCustomerID, ColOrderDate, ColOrderID,
	ColSalesQty, ColUnitPrice, ColUnitCost, ColSalesAmount,
}

// Transaction is one raw sales line. Qty is nil when the source row had no
// quantity; UnitCost zero means "unknown" per the input contract.
type Transaction struct {
	CustomerID string
	OrderDate  time.Time
	OrderID    string
	Qty        *int64
	UnitPrice  decimal.Decimal
	UnitCost   decimal.Decimal
	Amount     decimal.Decimal
}

var validate = validator.New()

// rowCheck mirrors the numeric fields validator can range-check directly.
type rowCheck struct {
	CustomerID  string  `validate:"required"`
	OrderID     string  `validate:"required"`
	UnitPrice   float64 `validate:"gte=0"`
	UnitCost    float64 `validate:"gte=0"`
	SalesAmount float64 `validate:"gte=0"`
}

// Validate checks the data-model invariants on every transaction and returns
// one data-quality error naming the offending rows, or nil.
func Validate(txns []Transaction) error {
	var badRows []int
	var err error
	for i, tx := range txns {
		check := rowCheck{
			CustomerID:  tx.CustomerID,
			OrderID:     tx.OrderID,
			UnitPrice:   tx.UnitPrice.InexactFloat64(),
			UnitCost:    tx.UnitCost.InexactFloat64(),
			SalesAmount: tx.Amount.InexactFloat64(),
		}
		if vErr := validate.Struct(check); vErr != nil {
			badRows = append(badRows, i)
			err = multierr.Append(err, fmt.Errorf("row %d: %w", i, vErr))
		}
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDataQuality, err, "invalid transaction rows").
			WithDetails(map[string]any{"rows": badRows})
	}
	return nil
}

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", "01/02/2006"}

func parseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, trimmed); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable order date %q", value)
}

func isNull(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "na", "nan", "null", "none":
		return true
	}
	return false
}

// FromFrame binds a raw frame to typed transactions. Missing contract columns
// fail with a schema error; unparseable cells are collected per row into one
// data-quality error.
func FromFrame(f *frame.Frame) ([]Transaction, error) {
	idx := make(map[string]int, len(requiredColumns))
	var missing []string
	for _, col := range requiredColumns {
		i, ok := f.ColumnIndex(col)
		if !ok {
			missing = append(missing, col)
			continue
		}
		idx[col] = i
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeSchema, "transaction table is missing contract columns").
			WithDetails(map[string]any{"missing_columns": missing})
	}

	txns := make([]Transaction, 0, f.Len())
	var badRows []int
	var rowErr error
	for r, row := range f.Rows {
		tx, err := bindRow(row, idx)
		if err != nil {
			badRows = append(badRows, r)
			rowErr = multierr.Append(rowErr, fmt.Errorf("row %d: %w", r, err))
			continue
		}
		txns = append(txns, tx)
	}
	if rowErr != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDataQuality, rowErr, "unparseable transaction rows").
			WithDetails(map[string]any{"rows": badRows})
	}
	if err := Validate(txns); err != nil {
		return nil, err
	}
	return txns, nil
}

func bindRow(row []string, idx map[string]int) (Transaction, error) {
	var tx Transaction
	tx.CustomerID = strings.TrimSpace(row[idx[ColCustomerID]])
	tx.OrderID = strings.TrimSpace(row[idx[ColOrderID]])

	date, err := parseDate(row[idx[ColOrderDate]])
	if err != nil {
		return tx, err
	}
	tx.OrderDate = date

	if raw := row[idx[ColSalesQty]]; !isNull(raw) {
		qtyFloat, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return tx, fmt.Errorf("unparseable quantity %q", raw)
		}
		qty := int64(qtyFloat + 0.5)
		tx.Qty = &qty
	}

	for _, field := range []struct {
		col  string
		dest *decimal.Decimal
	}{
		{ColUnitPrice, &tx.UnitPrice},
		{ColUnitCost, &tx.UnitCost},
		{ColSalesAmount, &tx.Amount},
	} {
		raw := row[idx[field.col]]
		if isNull(raw) {
			*field.dest = decimal.Zero
			continue
		}
		value, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return tx, fmt.Errorf("unparseable %s %q", field.col, raw)
		}
		*field.dest = value
	}
	return tx, nil
}
