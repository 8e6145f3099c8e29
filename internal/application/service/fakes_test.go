package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-api/internal/domain/entity"
	"github.com/sangkips/storefront-api/internal/domain/enum"
	"github.com/sangkips/storefront-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var errBoom = errors.New("boom")

// memMirror is an in-memory CartMirror that can be told to fail
type memMirror struct {
	mu         sync.Mutex
	entries    map[string][]byte
	saves      int
	loadErr    error
	saveErr    error
	deleteErr  error
	loadCalled int
}

func newMemMirror() *memMirror {
	return &memMirror{entries: make(map[string][]byte)}
}

func (m *memMirror) Load(_ context.Context, session string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadCalled++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	data, ok := m.entries[session]
	if !ok {
		return nil, repository.ErrMirrorMiss
	}
	return data, nil
}

func (m *memMirror) Save(_ context.Context, session string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.entries[session] = append([]byte(nil), payload...)
	return nil
}

func (m *memMirror) Delete(_ context.Context, session string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.entries, session)
	return nil
}

func (m *memMirror) Close() error { return nil }

func (m *memMirror) entry(session string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.entries[session]
	return data, ok
}

func (m *memMirror) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

type fakeProductRepo struct {
	products map[uuid.UUID]*entity.Product
}

func newFakeProductRepo(products ...*entity.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[uuid.UUID]*entity.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	return r.products[id], nil
}

func (r *fakeProductRepo) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	for _, p := range r.products {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) UpdateStock(_ context.Context, id uuid.UUID, stock int) error {
	if p, ok := r.products[id]; ok {
		p.Stock = stock
	}
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) List(context.Context, *repository.ProductFilterParams) ([]entity.Product, int64, error) {
	out := make([]entity.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) Count(context.Context) (int64, error) {
	return int64(len(r.products)), nil
}

func (r *fakeProductRepo) CountLowStock(context.Context, int) (int64, error) {
	return 0, nil
}

func (r *fakeProductRepo) ListLowStock(context.Context, int, int) ([]entity.Product, error) {
	return nil, nil
}

// backend is a shared in-memory backing for the order and sales fakes
type backend struct {
	mu           sync.Mutex
	orders       map[uuid.UUID]*entity.Order
	orderLines   []entity.OrderLine
	salesRecords []entity.SalesRecord
	salesLines   []entity.SalesLine
	profiles     map[uuid.UUID]*entity.Profile

	orderErr     error
	orderLineErr error
	salesErr     error
	salesLineErr error
	profileErr   error

	// salesSchemaLacksTaxID makes sales record writes with a tax id fail the
	// way an older deployed schema does
	salesSchemaLacksTaxID bool
	// salesSchemaAlwaysDrifts reports a missing column on every write
	salesSchemaAlwaysDrifts bool
	salesAttempts           int

	// beforeSalesLines runs while the checkout writes are in flight
	beforeSalesLines func()
}

func newBackend() *backend {
	return &backend{
		orders:   make(map[uuid.UUID]*entity.Order),
		profiles: make(map[uuid.UUID]*entity.Profile),
	}
}

func (s *backend) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders) + len(s.orderLines) + len(s.salesRecords) + len(s.salesLines)
}

type fakeOrderRepo struct{ *backend }

func (r fakeOrderRepo) Create(ctx context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.orderErr != nil {
		return r.orderErr
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = time.Now()
	copied := *order
	copied.Lines = nil
	r.orders[order.ID] = &copied
	return nil
}

func (r fakeOrderRepo) withLines(o entity.Order) entity.Order {
	o.Lines = []entity.OrderLine{}
	for _, l := range r.orderLines {
		if l.OrderID == o.ID {
			o.Lines = append(o.Lines, l)
		}
	}
	return o
}

func (r fakeOrderRepo) GetWithLines(_ context.Context, id uuid.UUID) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	out := r.withLines(*o)
	return &out, nil
}

func (r fakeOrderRepo) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Order
	for _, o := range r.orders {
		if o.CustomerID == customerID {
			out = append(out, r.withLines(*o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r fakeOrderRepo) List(context.Context, *repository.OrderFilterParams) ([]entity.Order, int64, error) {
	return nil, 0, nil
}

func (r fakeOrderRepo) ListRecent(context.Context, int) ([]entity.Order, error) {
	return nil, nil
}

func (r fakeOrderRepo) Count(context.Context, *enum.OrderStatus) (int64, error) {
	return 0, nil
}

func (r fakeOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to enum.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return repository.ErrStatusChanged
	}
	o.Status = to
	return nil
}

type fakeOrderLineRepo struct{ *backend }

func (r fakeOrderLineRepo) CreateBatch(_ context.Context, lines []entity.OrderLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.orderLineErr != nil {
		return r.orderLineErr
	}
	r.orderLines = append(r.orderLines, lines...)
	return nil
}

type fakeSalesRepo struct{ *backend }

func (r fakeSalesRepo) Create(_ context.Context, record *entity.SalesRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.salesAttempts++
	if r.salesErr != nil {
		return r.salesErr
	}
	if r.salesSchemaAlwaysDrifts {
		return &repository.SchemaMismatchError{
			Table:  "sales_records",
			Column: entity.SalesRecordTaxIDColumn,
			Err:    errors.New(`column "tax_id" of relation "sales_records" does not exist`),
		}
	}
	if r.salesSchemaLacksTaxID && record.TaxID != nil {
		return &repository.SchemaMismatchError{
			Table:  "sales_records",
			Column: entity.SalesRecordTaxIDColumn,
			Err:    errors.New(`column "tax_id" of relation "sales_records" does not exist`),
		}
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	r.salesRecords = append(r.salesRecords, *record)
	return nil
}

func (r fakeSalesRepo) Summarize(context.Context, time.Time) (int64, decimal.Decimal, error) {
	return 0, decimal.Zero, nil
}

type fakeSalesLineRepo struct{ *backend }

func (r fakeSalesLineRepo) CreateBatch(_ context.Context, lines []entity.SalesLine) error {
	if r.beforeSalesLines != nil {
		r.beforeSalesLines()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.salesLineErr != nil {
		return r.salesLineErr
	}
	r.salesLines = append(r.salesLines, lines...)
	return nil
}

type fakeProfileRepo struct{ *backend }

func (r fakeProfileRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.profiles[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

func (r fakeProfileRepo) UpdateCheckoutDetails(_ context.Context, id uuid.UUID, shippingAddress string, taxID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.profileErr != nil {
		return r.profileErr
	}
	p, ok := r.profiles[id]
	if !ok {
		p = &entity.Profile{ID: id}
		r.profiles[id] = p
	}
	p.ShippingAddress = shippingAddress
	if taxID != nil {
		p.TaxID = *taxID
	}
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []OrderPlacedEvent
	err    error
}

func (p *fakePublisher) PublishOrderPlaced(_ context.Context, event OrderPlacedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) published() []OrderPlacedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]OrderPlacedEvent(nil), p.events...)
}

// staticIdentity always answers with the same identity, or none
type staticIdentity struct {
	id *Identity
}

func (s staticIdentity) CurrentIdentity(context.Context) (*Identity, bool) {
	if s.id == nil {
		return nil, false
	}
	return s.id, true
}

func newProduct(name, price string, stock int) *entity.Product {
	return &entity.Product{
		ID:       uuid.New(),
		Name:     name,
		Code:     "PROD-" + name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
	}
}
