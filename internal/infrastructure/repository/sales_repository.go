package repository

import (
	"context"
	"time"

	"github.com/sangkips/storefront-api/internal/domain/entity"
	domainRepo "github.com/sangkips/storefront-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type salesRecordRepository struct {
	db *gorm.DB
}

// NewSalesRecordRepository creates a new sales record repository
func NewSalesRecordRepository(db *gorm.DB) domainRepo.SalesRecordRepository {
	return &salesRecordRepository{db: db}
}

// Create inserts the record. An unset TaxID is omitted from the statement
// entirely so the insert works against schemas without that column.
func (r *salesRecordRepository) Create(ctx context.Context, record *entity.SalesRecord) error {
	omit := []string{clause.Associations}
	if record.TaxID == nil {
		omit = append(omit, entity.SalesRecordTaxIDColumn)
	}
	err := r.db.WithContext(ctx).Omit(omit...).Create(record).Error
	return classifyWriteError(entity.SalesRecord{}.TableName(), err)
}

func (r *salesRecordRepository) Summarize(ctx context.Context, since time.Time) (int64, decimal.Decimal, error) {
	var row struct {
		Count int64
		Total decimal.Decimal
	}

	query := r.db.WithContext(ctx).Model(&entity.SalesRecord{})
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since)
	}
	err := query.Select("COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").Scan(&row).Error
	return row.Count, row.Total, err
}

type salesLineRepository struct {
	db *gorm.DB
}

// NewSalesLineRepository creates a new sales line repository
func NewSalesLineRepository(db *gorm.DB) domainRepo.SalesLineRepository {
	return &salesLineRepository{db: db}
}

func (r *salesLineRepository) CreateBatch(ctx context.Context, lines []entity.SalesLine) error {
	if len(lines) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Create(&lines).Error
	return classifyWriteError(entity.SalesLine{}.TableName(), err)
}
