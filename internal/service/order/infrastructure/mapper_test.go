package infrastructure

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/service/order/domain"
)

func TestOrderMapperRoundTrip(t *testing.T) {
	o, err := domain.NewOrder("R500", "a@example.com", "EUR", domain.Address{Country: "DE", City: "Berlin", Zipcode: "10115"},
		[][]domain.LineItem{{{VariantID: 3, Quantity: 2, Price: decimal.RequireFromString("9.99"), Weight: decimal.RequireFromString("0.5")}}},
		"FREESHIP")
	require.NoError(t, err)
	require.NoError(t, o.SelectRates("R500-H1", []domain.ShippingRate{
		{ShippingMethodID: 4, Name: "DHL", Cost: decimal.NewFromInt(6), Selected: true},
	}))
	o.Shipments[0].ID = 42

	m := FromDomainOrder(o)
	assert.Equal(t, "R500", m.Number)
	assert.Equal(t, "CREATED", m.State)
	assert.Equal(t, "DE", m.ShipCountry)
	require.Len(t, m.Shipments, 1)
	assert.Equal(t, uint(42), m.Shipments[0].ID)
	assert.Equal(t, "DHL", m.Shipments[0].ShippingMethodName)
	require.Len(t, m.Shipments[0].LineItems, 1)

	back := ToDomainOrder(m)
	assert.Equal(t, o.ID, back.ID)
	assert.Equal(t, o.ShipAddress, back.ShipAddress)
	assert.Equal(t, o.PromoCode, back.PromoCode)
	assert.True(t, o.Total.Equal(back.Total))
	require.Len(t, back.Shipments, 1)
	assert.Equal(t, int64(42), back.Shipments[0].ID)
	assert.Equal(t, int64(4), back.Shipments[0].ShippingMethodID)
	assert.Equal(t, "19.98", back.Shipments[0].LineItems[0].Amount().String())
	// 候选报价不落库
	assert.Empty(t, back.Shipments[0].Rates)
}
