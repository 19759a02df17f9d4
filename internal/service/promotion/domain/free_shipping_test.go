package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderWithShipments(t *testing.T, costs ...int64) *Order {
	t.Helper()
	order := NewOrder("R100", "USD", decimal.NewFromInt(250))
	for i, c := range costs {
		require.NoError(t, order.AddShipment(&Shipment{ID: int64(i + 1), Number: "H" + string(rune('1'+i)), Cost: decimal.NewFromInt(c)}))
	}
	return order
}

func freeShippingPromotion() (*Promotion, *FreeShipping, *PromotionCode) {
	promo := &Promotion{ID: 1, Name: "Free Ship"}
	action := NewFreeShipping(11)
	promo.AddAction(action)
	return promo, action, &PromotionCode{ID: 5, Value: "somecode", PromotionID: 1}
}

func TestFreeShippingCreatesNegativeAdjustmentPerShipment(t *testing.T) {
	order := orderWithShipments(t, 100, 100)
	promo, action, code := freeShippingPromotion()

	assert.True(t, action.Perform(order, code))

	assert.Equal(t, int64(2), promo.CreditsCount)
	adjustments := order.ShipmentAdjustments()
	require.Len(t, adjustments, 2)
	for _, adj := range adjustments {
		assert.Equal(t, int64(-100), adj.Amount.IntPart())
		assert.Same(t, code, adj.PromotionCode)
		assert.Equal(t, "Promotion (Free Ship)", adj.Label)
		assert.Equal(t, int64(11), adj.SourceActionID)
		assert.True(t, adj.Eligible)
	}
	assert.Equal(t, int64(1), adjustments[0].ShipmentID)
	assert.Equal(t, int64(2), adjustments[1].ShipmentID)
	assert.True(t, order.AdjustmentTotal.Equal(decimal.NewFromInt(-200)))
}

func TestFreeShippingDoesNotDiscountTwice(t *testing.T) {
	order := orderWithShipments(t, 100, 100)
	promo, action, code := freeShippingPromotion()

	assert.True(t, action.Perform(order, code))
	assert.False(t, action.Perform(order, code))

	assert.Equal(t, int64(2), promo.CreditsCount)
	assert.Len(t, order.ShipmentAdjustments(), 2)
	assert.True(t, order.AdjustmentTotal.Equal(decimal.NewFromInt(-200)))
}

func TestFreeShippingOnlyDiscountsNewShipments(t *testing.T) {
	order := orderWithShipments(t, 100)
	promo, action, code := freeShippingPromotion()
	require.True(t, action.Perform(order, code))

	require.NoError(t, order.AddShipment(&Shipment{ID: 2, Cost: decimal.RequireFromString("7.25")}))
	assert.True(t, action.Perform(order, code))

	assert.Equal(t, int64(2), promo.CreditsCount)
	adj, ok := order.ShipmentAdjustment(2, action.ID())
	require.True(t, ok)
	assert.Equal(t, "-7.25", adj.Amount.String())
	assert.True(t, order.Shipments[1].DiscountedCost().IsZero())
}

func TestFreeShippingKeepsOtherActionsSeparate(t *testing.T) {
	order := orderWithShipments(t, 10)
	_, first, code := freeShippingPromotion()
	other := &Promotion{ID: 2, Name: "Another"}
	second := NewFreeShipping(12)
	other.AddAction(second)

	assert.True(t, first.Perform(order, code))
	assert.True(t, second.Perform(order, nil))
	assert.Len(t, order.ShipmentAdjustments(), 2)
	assert.Equal(t, int64(1), other.CreditsCount)
}

func TestFreeShippingWithoutShipments(t *testing.T) {
	order := NewOrder("R1", "USD", decimal.Zero)
	promo, action, code := freeShippingPromotion()

	assert.False(t, action.Perform(order, code))
	assert.Zero(t, promo.CreditsCount)
}

func TestFreeShippingZeroCostShipment(t *testing.T) {
	order := orderWithShipments(t, 0)
	promo, action, code := freeShippingPromotion()

	assert.True(t, action.Perform(order, code))
	assert.Equal(t, int64(1), promo.CreditsCount)
	assert.True(t, order.ShipmentAdjustments()[0].Amount.IsZero())
}

func TestPromotionDeactivateKeepsCredits(t *testing.T) {
	order := orderWithShipments(t, 100, 50)
	promo, action, code := freeShippingPromotion()
	require.True(t, promo.Activate(order, code))

	assert.Equal(t, 2, promo.Deactivate(order))
	assert.Empty(t, order.ShipmentAdjustments())
	assert.True(t, order.AdjustmentTotal.IsZero())
	assert.Equal(t, int64(2), promo.CreditsCount)
	assert.Len(t, order.DrainRemoved(), 2)
	assert.Empty(t, order.DrainRemoved())

	// 撤销后可以重新应用
	assert.True(t, action.Perform(order, code))
	assert.Equal(t, int64(4), promo.CreditsCount)
}

func TestPromotionActiveWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	promo := &Promotion{}
	assert.True(t, promo.Active(now))

	promo.StartsAt = now.Add(time.Hour)
	assert.False(t, promo.Active(now))

	promo.StartsAt = now.Add(-time.Hour)
	promo.ExpiresAt = now
	assert.False(t, promo.Active(now))

	promo.ExpiresAt = now.Add(time.Minute)
	assert.True(t, promo.Active(now))
}

func TestNewAction(t *testing.T) {
	a, err := NewAction(ActionFreeShipping, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), a.ID())
	assert.Equal(t, "free_shipping", a.Type())

	_, err = NewAction("create_adjustment", 4)
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestPromotionAppliedTo(t *testing.T) {
	order := orderWithShipments(t, 100, 100)
	promo, action, code := freeShippingPromotion()
	assert.False(t, promo.AppliedTo(order))

	assert.True(t, action.Perform(order, code))
	assert.True(t, promo.AppliedTo(order))

	// 新增的 shipment 还没有调整
	require.NoError(t, order.AddShipment(&Shipment{ID: 3, Number: "H3", Cost: decimal.NewFromInt(20)}))
	assert.False(t, promo.AppliedTo(order))

	assert.False(t, (&Promotion{ID: 2}).AppliedTo(order))
	assert.False(t, promo.AppliedTo(NewOrder("R101", "USD", decimal.Zero)))
}
