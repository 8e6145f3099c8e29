package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sangkips/storefront-api/internal/domain/entity"
	"github.com/sangkips/storefront-api/internal/domain/enum"
	domainRepo "github.com/sangkips/storefront-api/internal/domain/repository"
	"github.com/sangkips/storefront-api/internal/infrastructure/database"
	"github.com/sangkips/storefront-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.Models()...))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, stock int) *entity.Product {
	t.Helper()
	img := "img/" + name + ".png"
	p := &entity.Product{
		Name:     name,
		Code:     "PROD-" + uuid.NewString()[:8],
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		ImageURL: &img,
		IsActive: true,
	}
	require.NoError(t, NewProductRepository(db).Create(context.Background(), p))
	return p
}

func newOrder(customerID uuid.UUID, createdAt time.Time) *entity.Order {
	return &entity.Order{
		OrderNumber:     "ORD-" + uuid.NewString()[:8],
		CustomerID:      customerID,
		ShippingAddress: "12 Market St",
		PaymentMethod:   enum.PaymentMethodCard,
		TaxID:           "0614-123456-101-1",
		Total:           decimal.RequireFromString("84.75"),
		Status:          enum.OrderStatusPending,
		CreatedAt:       createdAt,
	}
}

func TestOrderRepository_ListByCustomer(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	orders := NewOrderRepository(db)
	lines := NewOrderLineRepository(db)

	mug := seedProduct(t, db, "mug", "25.00", 10)
	lamp := seedProduct(t, db, "lamp", "39.90", 3)

	customer := uuid.New()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	older := newOrder(customer, base)
	require.NoError(t, orders.Create(ctx, older))
	require.NoError(t, lines.CreateBatch(ctx, []entity.OrderLine{
		{OrderID: older.ID, ProductID: mug.ID, Quantity: 3, UnitPrice: mug.Price, Subtotal: decimal.RequireFromString("75")},
		{OrderID: older.ID, ProductID: lamp.ID, Quantity: 1, UnitPrice: lamp.Price, Subtotal: lamp.Price},
	}))

	// header written, lines never written
	empty := newOrder(customer, base.Add(time.Hour))
	require.NoError(t, orders.Create(ctx, empty))

	other := newOrder(uuid.New(), base.Add(2*time.Hour))
	require.NoError(t, orders.Create(ctx, other))

	got, err := orders.ListByCustomer(ctx, customer)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, empty.ID, got[0].ID)
	assert.Empty(t, got[0].Lines)

	assert.Equal(t, older.ID, got[1].ID)
	require.Len(t, got[1].Lines, 2)
	for _, l := range got[1].Lines {
		require.NotNil(t, l.Product)
		assert.NotEmpty(t, l.Product.Name)
	}
	assert.True(t, got[1].Total.Equal(decimal.RequireFromString("84.75")))
}

func TestOrderRepository_GetWithLinesKeepsDeletedProductFields(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	orders := NewOrderRepository(db)

	mug := seedProduct(t, db, "mug", "25.00", 10)
	order := newOrder(uuid.New(), time.Now().UTC())
	require.NoError(t, orders.Create(ctx, order))
	require.NoError(t, NewOrderLineRepository(db).CreateBatch(ctx, []entity.OrderLine{
		{OrderID: order.ID, ProductID: mug.ID, Quantity: 1, UnitPrice: mug.Price, Subtotal: mug.Price},
	}))

	require.NoError(t, db.Delete(&entity.Product{}, "id = ?", mug.ID).Error)

	got, err := orders.GetWithLines(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Lines, 1)
	require.NotNil(t, got.Lines[0].Product)
	assert.Equal(t, "mug", got.Lines[0].Product.Name)

	missing, err := orders.GetWithLines(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestOrderRepository_ListCountAndStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	orders := NewOrderRepository(db)

	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	var created []*entity.Order
	for i := 0; i < 4; i++ {
		o := newOrder(uuid.New(), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, orders.Create(ctx, o))
		created = append(created, o)
	}
	require.NoError(t, orders.UpdateStatus(ctx, created[0].ID, enum.OrderStatusPending, enum.OrderStatusConfirmed))

	// a writer that still believes the order is pending loses
	err := orders.UpdateStatus(ctx, created[0].ID, enum.OrderStatusPending, enum.OrderStatusCancelled)
	assert.ErrorIs(t, err, domainRepo.ErrStatusChanged)
	stored, err := orders.GetWithLines(ctx, created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusConfirmed, stored.Status)

	pending := enum.OrderStatusPending
	count, err := orders.Count(ctx, &pending)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	all, err := orders.Count(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 4, all)

	page, total, err := orders.List(ctx, &domainRepo.OrderFilterParams{
		Pagination: &pagination.PaginationParams{Page: 1, PerPage: 2},
		Status:     &pending,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, created[3].ID, page[0].ID)

	recent, err := orders.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, created[3].ID, recent[0].ID)
}

func TestSalesRecordRepository_Create(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSalesRecordRepository(db)

	taxID := "0614-123456-101-1"
	rec := &entity.SalesRecord{
		ReferenceNo:   "SAL-" + uuid.NewString()[:8],
		CustomerID:    uuid.New(),
		CashierID:     uuid.New(),
		Total:         decimal.RequireFromString("84.75"),
		PaymentMethod: enum.PaymentMethodCash,
		TaxID:         &taxID,
	}
	require.NoError(t, repo.Create(ctx, rec))

	var stored entity.SalesRecord
	require.NoError(t, db.First(&stored, "id = ?", rec.ID).Error)
	require.NotNil(t, stored.TaxID)
	assert.Equal(t, taxID, *stored.TaxID)

	require.NoError(t, NewSalesLineRepository(db).CreateBatch(ctx, []entity.SalesLine{
		{SalesRecordID: rec.ID, ProductID: uuid.New(), Quantity: 3, UnitPrice: decimal.RequireFromString("25"), Subtotal: decimal.RequireFromString("75")},
	}))
	var lineCount int64
	require.NoError(t, db.Model(&entity.SalesLine{}).Where("sales_record_id = ?", rec.ID).Count(&lineCount).Error)
	assert.EqualValues(t, 1, lineCount)
}

func TestSalesRecordRepository_SchemaWithoutTaxID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSalesRecordRepository(db)
	require.NoError(t, db.Exec("ALTER TABLE sales_records DROP COLUMN tax_id").Error)

	taxID := "0614-123456-101-1"
	rec := &entity.SalesRecord{
		ReferenceNo: "SAL-" + uuid.NewString()[:8],
		CustomerID:  uuid.New(),
		CashierID:   uuid.New(),
		Total:       decimal.RequireFromString("10"),
		TaxID:       &taxID,
	}
	err := repo.Create(ctx, rec)

	var mismatch *domainRepo.SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "tax_id", mismatch.Column)
	assert.Equal(t, "sales_records", mismatch.Table)

	require.True(t, rec.StripOptional(mismatch.Column))
	rec.ID = uuid.Nil
	require.NoError(t, repo.Create(ctx, rec))
}

func TestSalesRecordRepository_Summarize(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSalesRecordRepository(db)

	for _, total := range []string{"10.50", "20.25"} {
		require.NoError(t, repo.Create(ctx, &entity.SalesRecord{
			ReferenceNo: "SAL-" + uuid.NewString()[:8],
			CustomerID:  uuid.New(),
			CashierID:   uuid.New(),
			Total:       decimal.RequireFromString(total),
		}))
	}

	count, sum, err := repo.Summarize(ctx, time.Time{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	assert.Equal(t, "30.75", sum.StringFixed(2))

	count, sum, err = repo.Summarize(ctx, time.Now().Add(24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
	assert.True(t, sum.IsZero())
}

func TestProfileRepository_UpdateCheckoutDetails(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewProfileRepository(db)
	id := uuid.New()

	missing, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, missing)

	taxID := "A-1"
	require.NoError(t, repo.UpdateCheckoutDetails(ctx, id, "1 First Ave", &taxID))

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "1 First Ave", got.ShippingAddress)
	assert.Equal(t, "A-1", got.TaxID)

	require.NoError(t, repo.UpdateCheckoutDetails(ctx, id, "2 Second Ave", nil))
	got, err = repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "2 Second Ave", got.ShippingAddress)
	assert.Equal(t, "A-1", got.TaxID)
}

func TestProductRepository_LowStock(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewProductRepository(db)

	seedProduct(t, db, "plenty", "1", 50)
	seedProduct(t, db, "few", "1", 4)
	seedProduct(t, db, "none", "1", 0)

	count, err := repo.CountLowStock(ctx, entity.LowStockThreshold)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	low, err := repo.ListLowStock(ctx, entity.LowStockThreshold, 10)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "none", low[0].Name)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestIdempotencyRepository(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewIdempotencyRepository(db)
	owner := uuid.New()
	const checkout = "POST /api/v1/checkout"

	newKey := func(key, endpoint string, ttl time.Duration) *entity.IdempotencyKey {
		return &entity.IdempotencyKey{Key: key, OwnerID: owner, Endpoint: endpoint, ExpiresAt: time.Now().Add(ttl)}
	}

	first := newKey("abc", checkout, time.Hour)
	ok, err := repo.Reserve(ctx, first)
	require.NoError(t, err)
	require.True(t, ok)

	pending, err := repo.GetByKey(ctx, "abc", owner, checkout)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.True(t, pending.IsPending())

	// a concurrent duplicate cannot take the key
	ok, err = repo.Reserve(ctx, newKey("abc", checkout, time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Complete(ctx, first.ID, 201, `{"success":true}`))
	got, err := repo.GetByKey(ctx, "abc", owner, checkout)
	require.NoError(t, err)
	assert.Equal(t, 201, got.ResponseCode)
	assert.Equal(t, `{"success":true}`, got.ResponseBody)

	other, err := repo.GetByKey(ctx, "abc", uuid.New(), checkout)
	require.NoError(t, err)
	assert.Nil(t, other)

	// the same key on another endpoint is a different key
	elsewhere, err := repo.GetByKey(ctx, "abc", owner, "POST /api/v1/returns")
	require.NoError(t, err)
	assert.Nil(t, elsewhere)
	ok, err = repo.Reserve(ctx, newKey("abc", "POST /api/v1/returns", time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)

	// a released key can be reserved again
	retry := newKey("retry", checkout, time.Hour)
	ok, err = repo.Reserve(ctx, retry)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, repo.Release(ctx, retry.ID))
	ok, err = repo.Reserve(ctx, newKey("retry", checkout, time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)

	// an expired key is invisible and can be reused
	old := newKey("old", checkout, -time.Minute)
	ok, err = repo.Reserve(ctx, old)
	require.NoError(t, err)
	require.True(t, ok)
	expired, err := repo.GetByKey(ctx, "old", owner, checkout)
	require.NoError(t, err)
	assert.Nil(t, expired)
	ok, err = repo.Reserve(ctx, newKey("old", checkout, -time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.DeleteExpired(ctx))
	var remaining int64
	require.NoError(t, db.Model(&entity.IdempotencyKey{}).Count(&remaining).Error)
	assert.EqualValues(t, 3, remaining)
}

func TestClassifyWriteError(t *testing.T) {
	assert.NoError(t, classifyWriteError("orders", nil))

	plain := errors.New("connection refused")
	assert.Same(t, plain, classifyWriteError("orders", plain))

	pgErr := &pgconn.PgError{
		Code:    "42703",
		Message: `column "tax_id" of relation "sales_records" does not exist`,
	}
	var mismatch *domainRepo.SchemaMismatchError
	require.ErrorAs(t, classifyWriteError("sales_records", pgErr), &mismatch)
	assert.Equal(t, "tax_id", mismatch.Column)
	assert.ErrorIs(t, mismatch, pgErr)

	other := &pgconn.PgError{Code: "23505", Message: "duplicate key value"}
	assert.False(t, errors.As(classifyWriteError("sales_records", other), &mismatch))
}
