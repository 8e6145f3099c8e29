package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-api/internal/domain/entity"
	"github.com/sangkips/storefront-api/internal/domain/enum"
	"github.com/sangkips/storefront-api/internal/domain/repository"
	"github.com/sangkips/storefront-api/pkg/apperror"
	"github.com/sangkips/storefront-api/pkg/utils"
)

// CheckoutForm is what the customer submits to place an order
type CheckoutForm struct {
	ShippingAddress string `json:"shipping_address"`
	PaymentMethod   string `json:"payment_method"`
	TaxID           string `json:"tax_id"`
	Note            string `json:"note"`
}

// CheckoutDeps groups the collaborators of CheckoutService
type CheckoutDeps struct {
	Identity       IdentityProvider
	Orders         repository.OrderRepository
	OrderLines     repository.OrderLineRepository
	SalesRecords   repository.SalesRecordRepository
	SalesLines     repository.SalesLineRepository
	Profiles       repository.ProfileRepository
	Events         OrderEventPublisher
	CashierID      uuid.UUID
	ProfileTimeout time.Duration
}

// CheckoutService turns a session's cart into an order, its lines, and the
// matching sales record.
type CheckoutService struct {
	identity       IdentityProvider
	orderRepo      repository.OrderRepository
	orderLineRepo  repository.OrderLineRepository
	salesRepo      repository.SalesRecordRepository
	salesLineRepo  repository.SalesLineRepository
	profileRepo    repository.ProfileRepository
	events         OrderEventPublisher
	cashierID      uuid.UUID
	profileTimeout time.Duration

	background sync.WaitGroup
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(deps CheckoutDeps) *CheckoutService {
	events := deps.Events
	if events == nil {
		events = NoopPublisher{}
	}
	timeout := deps.ProfileTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CheckoutService{
		identity:       deps.Identity,
		orderRepo:      deps.Orders,
		orderLineRepo:  deps.OrderLines,
		salesRepo:      deps.SalesRecords,
		salesLineRepo:  deps.SalesLines,
		profileRepo:    deps.Profiles,
		events:         events,
		cashierID:      deps.CashierID,
		profileTimeout: timeout,
	}
}

type validatedForm struct {
	shippingAddress string
	taxID           string
	note            string
	paymentMethod   enum.PaymentMethod
}

func validateForm(form CheckoutForm) (*validatedForm, error) {
	v := &validatedForm{
		shippingAddress: strings.TrimSpace(form.ShippingAddress),
		taxID:           strings.TrimSpace(form.TaxID),
		note:            strings.TrimSpace(form.Note),
	}
	if v.shippingAddress == "" {
		return nil, &apperror.FieldValidationError{Field: "shipping_address"}
	}
	if v.taxID == "" {
		return nil, &apperror.FieldValidationError{Field: "tax_id"}
	}
	method, err := enum.ParsePaymentMethod(form.PaymentMethod)
	if err != nil {
		return nil, &apperror.FieldValidationError{Field: "payment_method", Message: "must be cash, card or transfer"}
	}
	v.paymentMethod = method
	return v, nil
}

// Checkout places an order for the cart held by store. Nothing is written
// unless the caller is signed in, the cart has lines and the form is valid.
// The writes run in a fixed order without a spanning transaction; a failure
// is reported as a CheckoutFailedError naming the step, and earlier writes
// are left in place. On success the ordered lines leave the cart.
func (s *CheckoutService) Checkout(ctx context.Context, store *CartStore, form CheckoutForm) (*entity.Order, error) {
	identity, ok := s.identity.CurrentIdentity(ctx)
	if !ok {
		return nil, apperror.ErrNotAuthenticated
	}

	cart := store.Snapshot()
	if cart.IsEmpty() {
		return nil, apperror.ErrEmptyCart
	}

	v, err := validateForm(form)
	if err != nil {
		return nil, err
	}

	// the sequence must not be abandoned halfway by a disconnecting client
	ctx = context.WithoutCancel(ctx)
	customerID := identity.UserID
	log := slog.With("customer_id", customerID, "session", store.Session())

	order := &entity.Order{
		OrderNumber:     utils.GenerateReferenceNo("ORD"),
		CustomerID:      customerID,
		ShippingAddress: v.shippingAddress,
		PaymentMethod:   v.paymentMethod,
		TaxID:           v.taxID,
		Note:            v.note,
		Total:           cart.Total().Round(2),
		Status:          enum.OrderStatusPending,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		log.Error("checkout failed", "stage", apperror.StageOrder, "error", err)
		return nil, apperror.NewCheckoutFailedError(apperror.StageOrder, err)
	}
	log = log.With("order_id", order.ID)

	orderLines := make([]entity.OrderLine, 0, len(cart.Lines()))
	for _, line := range cart.Lines() {
		orderLines = append(orderLines, entity.OrderLine{
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal(),
		})
	}
	if err := s.orderLineRepo.CreateBatch(ctx, orderLines); err != nil {
		// the order header stays behind without lines
		log.Error("checkout failed", "stage", apperror.StageOrderLines, "error", err)
		return nil, apperror.NewCheckoutFailedError(apperror.StageOrderLines, err)
	}
	order.Lines = orderLines

	cashierID := s.cashierID
	if cashierID == uuid.Nil {
		cashierID = customerID
	}
	taxID := v.taxID
	record := &entity.SalesRecord{
		ReferenceNo:   utils.GenerateReferenceNo("SAL"),
		CustomerID:    customerID,
		CashierID:     cashierID,
		Total:         order.Total,
		PaymentMethod: v.paymentMethod,
		TaxID:         &taxID,
	}
	if err := s.createSalesRecord(ctx, record); err != nil {
		log.Error("checkout failed", "stage", apperror.StageSalesRecord, "error", err)
		return nil, apperror.NewCheckoutFailedError(apperror.StageSalesRecord, err)
	}

	salesLines := make([]entity.SalesLine, 0, len(orderLines))
	for _, line := range orderLines {
		salesLines = append(salesLines, entity.SalesLine{
			SalesRecordID: record.ID,
			ProductID:     line.ProductID,
			Quantity:      line.Quantity,
			UnitPrice:     line.UnitPrice,
			Subtotal:      line.Subtotal,
		})
	}
	if err := s.salesLineRepo.CreateBatch(ctx, salesLines); err != nil {
		log.Error("checkout failed", "stage", apperror.StageSalesLines, "error", err)
		return nil, apperror.NewCheckoutFailedError(apperror.StageSalesLines, err)
	}

	s.afterCheckout(ctx, order, v)

	if err := store.ClearOrdered(ctx, cart); err != nil {
		log.Warn("failed to clear cart after checkout", "error", err)
	}

	log.Info("order placed", "order_number", order.OrderNumber, "total", entity.FormatAmount(order.Total))
	return order, nil
}

// createSalesRecord writes the record, retrying once without an optional
// column the deployed schema turns out not to have.
func (s *CheckoutService) createSalesRecord(ctx context.Context, record *entity.SalesRecord) error {
	err := s.salesRepo.Create(ctx, record)

	var mismatch *repository.SchemaMismatchError
	if errors.As(err, &mismatch) && record.StripOptional(mismatch.Column) {
		slog.Warn("sales record schema lacks optional column, retrying without it",
			"column", mismatch.Column, "reference_no", record.ReferenceNo)
		err = s.salesRepo.Create(ctx, record)
	}
	return err
}

// afterCheckout runs the best-effort steps in the background. Their failures
// are logged and never reach the customer.
func (s *CheckoutService) afterCheckout(ctx context.Context, order *entity.Order, v *validatedForm) {
	s.background.Add(1)
	go func() {
		defer s.background.Done()

		ctx, cancel := context.WithTimeout(ctx, s.profileTimeout)
		defer cancel()

		if err := s.updateProfile(ctx, order.CustomerID, v); err != nil {
			slog.Warn("profile update failed", "stage", "profile", "customer_id", order.CustomerID, "error", err)
		}

		event := OrderPlacedEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			CustomerID:  order.CustomerID,
			Total:       entity.FormatAmount(order.Total),
			LineCount:   len(order.Lines),
			PlacedAt:    time.Now().UTC(),
		}
		if err := s.events.PublishOrderPlaced(ctx, event); err != nil {
			slog.Warn("order event not published", "stage", "event", "order_id", order.ID, "error", err)
		}
	}()
}

func (s *CheckoutService) updateProfile(ctx context.Context, customerID uuid.UUID, v *validatedForm) error {
	profile, err := s.profileRepo.GetByID(ctx, customerID)
	if err != nil {
		return err
	}

	var taxID *string
	if profile == nil || profile.TaxID != v.taxID {
		taxID = &v.taxID
	}
	return s.profileRepo.UpdateCheckoutDetails(ctx, customerID, v.shippingAddress, taxID)
}

// Wait blocks until every background step started by Checkout has finished
func (s *CheckoutService) Wait() {
	s.background.Wait()
}
