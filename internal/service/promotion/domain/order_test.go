package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddShipmentRequiresUniqueIdentity(t *testing.T) {
	order := NewOrder("R1", "usd", decimal.Zero)
	assert.Equal(t, "USD", order.Currency)

	assert.ErrorIs(t, order.AddShipment(&Shipment{}), ErrShipmentIdentity)
	require.NoError(t, order.AddShipment(&Shipment{ID: 1}))
	assert.ErrorIs(t, order.AddShipment(&Shipment{ID: 1}), ErrShipmentIdentity)
}

func TestAddShipmentIndexesLoadedAdjustments(t *testing.T) {
	order := NewOrder("R1", "USD", decimal.Zero)
	loaded := &Adjustment{ID: 9, Amount: decimal.NewFromInt(-5), SourceActionID: 11, Eligible: true}
	require.NoError(t, order.AddShipment(&Shipment{ID: 1, Cost: decimal.NewFromInt(5), Adjustments: []*Adjustment{loaded}}))

	got, ok := order.ShipmentAdjustment(1, 11)
	require.True(t, ok)
	assert.Same(t, loaded, got)
	assert.Equal(t, int64(1), got.ShipmentID)
	assert.True(t, order.AdjustmentTotal.Equal(decimal.NewFromInt(-5)))

	dup := &Shipment{ID: 2, Adjustments: []*Adjustment{{SourceActionID: 3}, {SourceActionID: 3}}}
	assert.ErrorIs(t, order.AddShipment(dup), ErrDuplicateAdjustment)
}

func TestAttachAdjustment(t *testing.T) {
	order := NewOrder("R1", "USD", decimal.Zero)
	require.NoError(t, order.AddShipment(&Shipment{ID: 1, Cost: decimal.NewFromInt(8)}))

	assert.ErrorIs(t, order.AttachAdjustment(&Adjustment{ShipmentID: 2, SourceActionID: 1}), ErrShipmentIdentity)
	require.NoError(t, order.AttachAdjustment(&Adjustment{ShipmentID: 1, SourceActionID: 1, Amount: decimal.NewFromInt(-3), Eligible: true}))
	assert.ErrorIs(t, order.AttachAdjustment(&Adjustment{ShipmentID: 1, SourceActionID: 1}), ErrDuplicateAdjustment)

	// 不生效的调整不计入合计
	require.NoError(t, order.AttachAdjustment(&Adjustment{ShipmentID: 1, SourceActionID: 2, Amount: decimal.NewFromInt(-100)}))
	assert.Equal(t, "-3", order.AdjustmentTotal.String())
	assert.Equal(t, "USD -3.00", order.AdjustmentMoney().Display())
	assert.Equal(t, "5", order.Shipments[0].DiscountedCost().String())
}

func TestNewFact(t *testing.T) {
	order := NewOrder("R1", "USD", decimal.RequireFromString("120.50"))
	order.Country = "us"
	require.NoError(t, order.AddShipment(&Shipment{ID: 1, Cost: decimal.NewFromInt(10)}))
	require.NoError(t, order.AddShipment(&Shipment{ID: 2, Cost: decimal.RequireFromString("4.5")}))

	fact := NewFact(order)
	assert.Equal(t, 120.5, fact["item_total"])
	assert.Equal(t, 14.5, fact["ship_total"])
	assert.Equal(t, int64(2), fact["shipment_count"])
	assert.Equal(t, "US", fact["country"])
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "freeship", NormalizeCode("  FreeShip "))
}
