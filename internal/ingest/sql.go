package ingest

import (
	"context"
	"io"
	"log"
	"strings"
	"time"

	"github.com/angelmondragon/churnsight/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	pkgerrors "github.com/angelmondragon/churnsight/pkg/errors"
)

// SQLSource reads the transaction table from Postgres or SQLite, dispatched
// on the DSN scheme.
type SQLSource struct {
	dsn   string
	table string
	logg  *logger.Logger
}

func NewSQLSource(dsn, table string, logg *logger.Logger) *SQLSource {
	return &SQLSource{dsn: dsn, table: table, logg: logg}
}

type transactionRow struct {
	CustomerID  string    `gorm:"column:customer_id"`
	OrderDate   time.Time `gorm:"column:order_date"`
	OrderID     string    `gorm:"column:order_id"`
	SalesQty    *int64    `gorm:"column:sales_qty"`
	UnitPrice   float64   `gorm:"column:unit_price"`
	UnitCost    float64   `gorm:"column:unit_cost"`
	SalesAmount float64   `gorm:"column:sales_amount"`
}

// Load queries the table and returns validated transactions.
func (s *SQLSource) Load(ctx context.Context) ([]Transaction, error) {
	conn, err := s.open(ctx)
	if err != nil {
		return nil, err
	}

	var rows []transactionRow
	if err := conn.WithContext(ctx).Table(s.table).Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeSchema, err, "querying transaction table")
	}

	txns := make([]Transaction, len(rows))
	for i, row := range rows {
		txns[i] = Transaction{
			CustomerID: row.CustomerID,
			OrderDate:  row.OrderDate.UTC(),
			OrderID:    row.OrderID,
			Qty:        row.SalesQty,
			UnitPrice:  decimal.NewFromFloat(row.UnitPrice),
			UnitCost:   decimal.NewFromFloat(row.UnitCost),
			Amount:     decimal.NewFromFloat(row.SalesAmount),
		}
	}
	if err := Validate(txns); err != nil {
		return nil, err
	}
	return txns, nil
}

func (s *SQLSource) open(ctx context.Context) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(s.dsn, "postgres://") || strings.HasPrefix(s.dsn, "postgresql://") || strings.Contains(s.dsn, "host=") {
		dialector = postgres.New(postgres.Config{DSN: s.dsn, PreferSimpleProtocol: true})
	} else {
		dialector = sqlite.Open(s.dsn)
	}

	silent := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)
	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 silent,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "opening transaction database")
	}
	if s.logg != nil {
		s.logg.Info(ctx, "transaction database connection established")
	}
	return conn, nil
}
