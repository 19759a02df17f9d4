package saga

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"storefront/internal/service/order/domain"
	"storefront/internal/service/order/domain/port"
)

type mockShipping struct{ mock.Mock }

func (m *mockShipping) QuoteShipments(ctx context.Context, order *domain.Order) ([]port.ShipmentQuote, error) {
	args := m.Called(ctx, order)
	quotes, _ := args.Get(0).([]port.ShipmentQuote)
	return quotes, args.Error(1)
}

type mockPromotion struct{ mock.Mock }

func (m *mockPromotion) Apply(ctx context.Context, orderID, code string) (*port.PromotionResult, error) {
	args := m.Called(ctx, orderID, code)
	res, _ := args.Get(0).(*port.PromotionResult)
	return res, args.Error(1)
}

func (m *mockPromotion) Remove(ctx context.Context, orderID, code string) (*port.PromotionResult, error) {
	args := m.Called(ctx, orderID, code)
	res, _ := args.Get(0).(*port.PromotionResult)
	return res, args.Error(1)
}

type memRepo struct {
	saves  int
	states []domain.State
	err    error
}

func (r *memRepo) Save(_ context.Context, order *domain.Order) error {
	if r.err != nil {
		return r.err
	}
	r.saves++
	r.states = append(r.states, order.State)
	return nil
}

func (r *memRepo) FindByID(context.Context, string) (*domain.Order, error) {
	return nil, domain.ErrOrderNotFound
}

func newOrder(t *testing.T, code string) *domain.Order {
	t.Helper()
	o, err := domain.NewOrder("R200", "buyer@example.com", "USD", domain.Address{Country: "US", State: "NY"},
		[][]domain.LineItem{
			{{VariantID: 1, Quantity: 1, Price: decimal.NewFromInt(30)}},
			{{VariantID: 2, Quantity: 2, Price: decimal.NewFromInt(10)}},
		}, code)
	require.NoError(t, err)
	return o
}

func quotesFor(cost int64) []port.ShipmentQuote {
	rates := []domain.ShippingRate{
		{ShippingMethodID: 1, Name: "Ground", Cost: decimal.NewFromInt(cost), Selected: true},
		{ShippingMethodID: 2, Name: "Express", Cost: decimal.NewFromInt(cost * 3)},
	}
	return []port.ShipmentQuote{
		{ShipmentNumber: "R200-H1", Rates: rates},
		{ShipmentNumber: "R200-H2", Rates: rates},
	}
}

func buildChain() Handler {
	chain := new(ShippingRateHandler)
	chain.SetNext(new(PromotionHandler)).SetNext(new(ConfirmHandler))
	return chain
}

func newCheckoutContext(t *testing.T, order *domain.Order, ship port.ShippingService, promo port.PromotionService, repo domain.OrderRepository) *CheckoutContext {
	return &CheckoutContext{
		Ctx:              t.Context(),
		Order:            order,
		Tracer:           noop.NewTracerProvider().Tracer("test"),
		Repo:             repo,
		ShippingService:  ship,
		PromotionService: promo,
	}
}

func TestChainWithPromotion(t *testing.T) {
	order := newOrder(t, "FREESHIP")
	ship := new(mockShipping)
	ship.On("QuoteShipments", mock.Anything, order).Return(quotesFor(10), nil)
	promo := new(mockPromotion)
	promo.On("Apply", mock.Anything, "R200", "FREESHIP").
		Return(&port.PromotionResult{Applied: true, AdjustmentTotal: decimal.NewFromInt(-20)}, nil)
	repo := &memRepo{}

	cc := newCheckoutContext(t, order, ship, promo, repo)
	require.NoError(t, buildChain().Handle(cc))

	assert.Equal(t, domain.StatePendingPayment, order.State)
	assert.Equal(t, "20", order.ShipTotal.String())
	assert.Equal(t, "-20", order.PromoTotal.String())
	assert.Equal(t, "50", order.Total.String())
	assert.Equal(t, []domain.State{domain.StateDelivery, domain.StatePendingPayment}, repo.states)
	ship.AssertExpectations(t)
	promo.AssertExpectations(t)
}

func TestChainWithoutCodeSkipsPromotion(t *testing.T) {
	order := newOrder(t, "")
	ship := new(mockShipping)
	ship.On("QuoteShipments", mock.Anything, order).Return(quotesFor(7), nil)
	promo := new(mockPromotion)
	repo := &memRepo{}

	require.NoError(t, buildChain().Handle(newCheckoutContext(t, order, ship, promo, repo)))

	assert.Equal(t, "64", order.Total.String())
	promo.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything)
}

func TestChainShippingFailureStopsEarly(t *testing.T) {
	order := newOrder(t, "FREESHIP")
	ship := new(mockShipping)
	ship.On("QuoteShipments", mock.Anything, order).Return(nil, errors.New("connection refused"))
	promo := new(mockPromotion)
	repo := &memRepo{}

	err := buildChain().Handle(newCheckoutContext(t, order, ship, promo, repo))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quote shipments")
	assert.Equal(t, domain.StateCreated, order.State)
	assert.Zero(t, repo.saves)
	promo.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything)
}

func TestChainNoSelectedRate(t *testing.T) {
	order := newOrder(t, "")
	ship := new(mockShipping)
	ship.On("QuoteShipments", mock.Anything, order).Return([]port.ShipmentQuote{
		{ShipmentNumber: "R200-H1", Rates: nil},
	}, nil)

	err := buildChain().Handle(newCheckoutContext(t, order, ship, new(mockPromotion), &memRepo{}))
	assert.ErrorIs(t, err, domain.ErrNoShippingRate)
}

func TestConfirmFailureCompensatesPromotion(t *testing.T) {
	order := newOrder(t, "FREESHIP")
	ship := new(mockShipping)
	ship.On("QuoteShipments", mock.Anything, order).Return(quotesFor(10), nil)
	promo := new(mockPromotion)
	promo.On("Apply", mock.Anything, "R200", "FREESHIP").
		Return(&port.PromotionResult{Applied: true, AdjustmentTotal: decimal.NewFromInt(-20)}, nil)
	promo.On("Remove", mock.Anything, "R200", "FREESHIP").
		Return(&port.PromotionResult{}, nil)

	// 第一次保存成功，确认时保存失败
	repo := &failingSecondSave{}
	cc := newCheckoutContext(t, order, ship, promo, repo)
	err := buildChain().Handle(cc)
	require.Error(t, err)

	cc.TriggerCompensation(t.Context())
	promo.AssertCalled(t, "Remove", mock.Anything, "R200", "FREESHIP")

	// 补偿只执行一次
	cc.TriggerCompensation(t.Context())
	promo.AssertNumberOfCalls(t, "Remove", 1)
}

func TestCompensationRunsInReverseOrder(t *testing.T) {
	cc := newCheckoutContext(t, newOrder(t, ""), nil, nil, nil)
	var calls []string
	cc.AddCompensation(func(context.Context) { calls = append(calls, "first") })
	cc.AddCompensation(func(context.Context) { calls = append(calls, "second") })
	cc.TriggerCompensation(t.Context())
	assert.Equal(t, []string{"second", "first"}, calls)
}

type failingSecondSave struct{ saves int }

func (r *failingSecondSave) Save(context.Context, *domain.Order) error {
	r.saves++
	if r.saves > 1 {
		return errors.New("deadlock found when trying to get lock")
	}
	return nil
}

func (r *failingSecondSave) FindByID(context.Context, string) (*domain.Order, error) {
	return nil, domain.ErrOrderNotFound
}
