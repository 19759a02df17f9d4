package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"storefront/internal/service/order/domain"
	"storefront/internal/service/order/domain/port"
)

type memOrderRepo struct {
	mu     sync.Mutex
	orders map[string]domain.Order
	err    error
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]domain.Order)}
}

func (r *memOrderRepo) Save(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.orders[o.ID] = *o
	return nil
}

func (r *memOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &o, nil
}

// flatShipping 每个发货单都报同一个运费并选中
type flatShipping struct {
	cost decimal.Decimal
	err  error
}

func (s *flatShipping) QuoteShipments(_ context.Context, o *domain.Order) ([]port.ShipmentQuote, error) {
	if s.err != nil {
		return nil, s.err
	}
	quotes := make([]port.ShipmentQuote, 0, len(o.Shipments))
	for _, sh := range o.Shipments {
		quotes = append(quotes, port.ShipmentQuote{
			ShipmentNumber: sh.Number,
			Rates:          []domain.ShippingRate{{ShippingMethodID: 1, Name: "Ground", Cost: s.cost, Selected: true}},
		})
	}
	return quotes, nil
}

// freeShipping 把全部运费减免，Remove 记录调用次数
type freeShipping struct {
	repo     *memOrderRepo
	applyErr error
	removed  int
}

func (p *freeShipping) Apply(ctx context.Context, orderID, _ string) (*port.PromotionResult, error) {
	if p.applyErr != nil {
		return nil, p.applyErr
	}
	o, err := p.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &port.PromotionResult{Applied: true, AdjustmentTotal: o.ShipTotal.Neg()}, nil
}

func (p *freeShipping) Remove(context.Context, string, string) (*port.PromotionResult, error) {
	p.removed++
	return &port.PromotionResult{}, nil
}

type recordingPublisher struct {
	events []*domain.OrderEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e *domain.OrderEvent) error {
	p.events = append(p.events, e)
	return p.err
}

type fixture struct {
	svc       *CheckoutService
	repo      *memOrderRepo
	shipping  *flatShipping
	promo     *freeShipping
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newMemOrderRepo()
	f := &fixture{
		repo:      repo,
		shipping:  &flatShipping{cost: decimal.NewFromInt(100)},
		promo:     &freeShipping{repo: repo},
		publisher: &recordingPublisher{},
	}
	f.svc = NewCheckoutService(repo, 5*time.Second, noop.NewTracerProvider().Tracer("test"),
		NewMetrics(prometheus.NewRegistry()), f.shipping, f.promo, f.publisher)
	return f
}

func checkoutRequest(code string) *CheckoutRequest {
	return &CheckoutRequest{
		OrderID:     "R300",
		Email:       "buyer@example.com",
		Currency:    "USD",
		ShipAddress: domain.Address{Country: "US", State: "CA"},
		Packages: [][]domain.LineItem{
			{{VariantID: 1, Quantity: 1, Price: decimal.NewFromInt(40)}},
			{{VariantID: 2, Quantity: 3, Price: decimal.NewFromInt(5)}},
		},
		PromoCode: code,
	}
}

func TestCheckoutWithFreeShipping(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Checkout(t.Context(), checkoutRequest("FREESHIP"))
	require.NoError(t, err)

	assert.Equal(t, domain.StatePendingPayment, resp.State)
	assert.Equal(t, "55", resp.ItemTotal.String())
	assert.Equal(t, "200", resp.ShipTotal.String())
	assert.Equal(t, "-200", resp.PromoTotal.String())
	assert.Equal(t, "55", resp.Total.String())
	require.Len(t, resp.Shipments, 2)
	assert.Equal(t, "Ground", resp.Shipments[0].ShippingMethodName)

	stored, err := f.repo.FindByID(t.Context(), "R300")
	require.NoError(t, err)
	assert.Equal(t, domain.StatePendingPayment, stored.State)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, domain.EventOrderPlaced, f.publisher.events[0].Type)
	assert.NotEmpty(t, f.publisher.events[0].EventID)
}

func TestCheckoutInvalidRequest(t *testing.T) {
	f := newFixture(t)
	req := checkoutRequest("")
	req.Packages = nil

	_, err := f.svc.Checkout(t.Context(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)
	assert.Empty(t, f.publisher.events)
}

func TestCheckoutInitialSaveFails(t *testing.T) {
	f := newFixture(t)
	f.repo.err = domain.ErrOrderExists

	_, err := f.svc.Checkout(t.Context(), checkoutRequest(""))
	assert.ErrorIs(t, err, domain.ErrOrderExists)
	assert.Empty(t, f.publisher.events)
}

func TestCheckoutShippingFailureMarksOrderFailed(t *testing.T) {
	f := newFixture(t)
	f.shipping.err = errors.New("shipping-service unavailable")

	_, err := f.svc.Checkout(t.Context(), checkoutRequest("FREESHIP"))
	require.Error(t, err)

	stored, err := f.repo.FindByID(t.Context(), "R300")
	require.NoError(t, err)
	assert.Equal(t, domain.StateFailed, stored.State)
	assert.Zero(t, f.promo.removed)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, domain.EventOrderFailed, f.publisher.events[0].Type)
	assert.Contains(t, f.publisher.events[0].Reason, "shipping-service unavailable")
}

func TestCheckoutPromotionFailureFailsOrder(t *testing.T) {
	f := newFixture(t)
	f.promo.applyErr = errors.New("promotion not eligible")

	_, err := f.svc.Checkout(t.Context(), checkoutRequest("FREESHIP"))
	require.Error(t, err)

	stored, _ := f.repo.FindByID(t.Context(), "R300")
	assert.Equal(t, domain.StateFailed, stored.State)
	// Apply 没成功就没有需要撤销的促销
	assert.Zero(t, f.promo.removed)
}

func TestCheckoutPublishFailureDoesNotFailCheckout(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("kafka: leader not available")

	resp, err := f.svc.Checkout(t.Context(), checkoutRequest(""))
	require.NoError(t, err)
	assert.Equal(t, domain.StatePendingPayment, resp.State)
}

func TestGetOrder(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetOrder(t.Context(), "R300")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = f.svc.Checkout(t.Context(), checkoutRequest(""))
	require.NoError(t, err)

	resp, err := f.svc.GetOrder(t.Context(), "R300")
	require.NoError(t, err)
	assert.Equal(t, "255", resp.Total.String())
}
