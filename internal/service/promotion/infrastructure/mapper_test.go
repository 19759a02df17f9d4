package infrastructure

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront/internal/service/promotion/domain"
)

func TestToDomainPromotion(t *testing.T) {
	expires := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	model := &PromotionModel{
		Model:        gorm.Model{ID: 3},
		Name:         "Free Ship",
		CreditsCount: 7,
		Rule:         "order.item_total > 20.0",
		ExpiresAt:    sql.NullTime{Time: expires, Valid: true},
		Actions:      []PromotionActionModel{{Model: gorm.Model{ID: 11}, PromotionID: 3, Type: "free_shipping"}},
	}

	p, err := ToDomainPromotion(model)
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.ID)
	assert.Equal(t, int64(7), p.CreditsCount)
	assert.True(t, p.StartsAt.IsZero())
	assert.Equal(t, expires, p.ExpiresAt)
	require.Len(t, p.Actions, 1)
	assert.Equal(t, int64(11), p.Actions[0].ID())

	// 动作已经绑定到促销上
	order := domain.NewOrder("R1", "USD", decimal.Zero)
	require.NoError(t, order.AddShipment(&domain.Shipment{ID: 1, Cost: decimal.NewFromInt(5)}))
	assert.True(t, p.Activate(order, nil))
	assert.Equal(t, int64(8), p.CreditsCount)
	assert.Equal(t, "Promotion (Free Ship)", order.ShipmentAdjustments()[0].Label)
}

func TestToDomainPromotionUnknownAction(t *testing.T) {
	model := &PromotionModel{Actions: []PromotionActionModel{{Type: "gift_card"}}}
	_, err := ToDomainPromotion(model)
	assert.ErrorIs(t, err, domain.ErrUnknownAction)
}

func TestToDomainOrderKeepsExistingAdjustments(t *testing.T) {
	record := &OrderRecord{
		ID:          1,
		Number:      "R100",
		Currency:    "usd",
		ItemTotal:   decimal.NewFromInt(40),
		ShipCountry: "US",
		Shipments: []ShipmentRecord{
			{ID: 10, OrderID: 1, Number: "H1", Cost: decimal.NewFromInt(12), Adjustments: []AdjustmentModel{{
				ID: 99, ShipmentID: 10, SourceActionID: 11, Amount: decimal.NewFromInt(-12), Eligible: true,
				PromotionCode: &PromotionCodeModel{Model: gorm.Model{ID: 5}, PromotionID: 3, Value: "freeship"},
			}}},
			{ID: 11, OrderID: 1, Number: "H2", Cost: decimal.NewFromInt(8)},
		},
	}

	order, err := ToDomainOrder(record)
	require.NoError(t, err)
	assert.Equal(t, "USD", order.Currency)
	assert.Equal(t, "-12", order.AdjustmentTotal.String())

	adj, ok := order.ShipmentAdjustment(10, 11)
	require.True(t, ok)
	assert.Equal(t, int64(99), adj.ID)
	assert.Equal(t, "freeship", adj.PromotionCode.Value)

	action := domain.NewFreeShipping(11)
	(&domain.Promotion{Name: "Free Ship"}).AddAction(action)
	assert.True(t, action.Perform(order, nil))
	assert.Len(t, order.ShipmentAdjustments(), 2)
}

func TestFromDomainAdjustment(t *testing.T) {
	adj := &domain.Adjustment{
		ShipmentID:     10,
		SourceActionID: 11,
		Amount:         decimal.NewFromInt(-3),
		Label:          "Promotion (X)",
		PromotionCode:  &domain.PromotionCode{ID: 5},
		Eligible:       true,
	}
	model := FromDomainAdjustment(1, adj)
	assert.Equal(t, uint(1), model.OrderID)
	assert.Equal(t, uint(10), model.ShipmentID)
	require.NotNil(t, model.PromotionCodeID)
	assert.Equal(t, uint(5), *model.PromotionCodeID)

	adj.PromotionCode = nil
	assert.Nil(t, FromDomainAdjustment(1, adj).PromotionCodeID)
}
