package repository

import (
	"context"
	"time"

	"github.com/sangkips/storefront-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SalesRecordRepository defines the interface for sales ledger operations.
// Create leaves out optional columns whose value is unset.
type SalesRecordRepository interface {
	Create(ctx context.Context, record *entity.SalesRecord) error
	// Summarize returns the number of records and their summed total created
	// at or after since. A zero since covers every record.
	Summarize(ctx context.Context, since time.Time) (count int64, total decimal.Decimal, err error)
}

// SalesLineRepository defines the interface for sales line operations
type SalesLineRepository interface {
	CreateBatch(ctx context.Context, lines []entity.SalesLine) error
}
