package infrastructure

import (
	"github.com/pkg/errors"

	"storefront/internal/service/promotion/domain"
)

// ToDomainPromotion 将数据库模型转换为领域模型，动作按类型装配并绑定到促销上
func ToDomainPromotion(model *PromotionModel) (*domain.Promotion, error) {
	if model == nil {
		return nil, nil
	}
	p := &domain.Promotion{
		ID:           int64(model.ID),
		Name:         model.Name,
		Description:  model.Description,
		CreditsCount: model.CreditsCount,
		Rule:         model.Rule,
	}
	if model.StartsAt.Valid {
		p.StartsAt = model.StartsAt.Time
	}
	if model.ExpiresAt.Valid {
		p.ExpiresAt = model.ExpiresAt.Time
	}
	for _, am := range model.Actions {
		action, err := domain.NewAction(am.Type, int64(am.ID))
		if err != nil {
			return nil, errors.WithMessagef(err, "promotion %d", model.ID)
		}
		p.AddAction(action)
	}
	return p, nil
}

func ToDomainPromotionCode(model *PromotionCodeModel) *domain.PromotionCode {
	if model == nil {
		return nil
	}
	return &domain.PromotionCode{
		ID:          int64(model.ID),
		Value:       model.Value,
		PromotionID: int64(model.PromotionID),
	}
}

func ToDomainAdjustment(model *AdjustmentModel) *domain.Adjustment {
	return &domain.Adjustment{
		ID:             int64(model.ID),
		ShipmentID:     int64(model.ShipmentID),
		Amount:         model.Amount,
		Label:          model.Label,
		PromotionCode:  ToDomainPromotionCode(model.PromotionCode),
		SourceActionID: int64(model.SourceActionID),
		Eligible:       model.Eligible,
		CreatedAt:      model.CreatedAt,
	}
}

// ToDomainOrder 按 shipment id 顺序装配订单及其已有调整
func ToDomainOrder(record *OrderRecord) (*domain.Order, error) {
	order := domain.NewOrder(record.Number, record.Currency, record.ItemTotal)
	order.Country = record.ShipCountry
	order.State = record.ShipState
	for i := range record.Shipments {
		sr := &record.Shipments[i]
		s := &domain.Shipment{ID: int64(sr.ID), Number: sr.Number, Cost: sr.Cost}
		for j := range sr.Adjustments {
			s.Adjustments = append(s.Adjustments, ToDomainAdjustment(&sr.Adjustments[j]))
		}
		if err := order.AddShipment(s); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// FromDomainAdjustment 用于插入新调整
func FromDomainAdjustment(orderID uint, adj *domain.Adjustment) *AdjustmentModel {
	model := &AdjustmentModel{
		ID:             uint(adj.ID),
		OrderID:        orderID,
		ShipmentID:     uint(adj.ShipmentID),
		SourceActionID: uint(adj.SourceActionID),
		Amount:         adj.Amount,
		Label:          adj.Label,
		Eligible:       adj.Eligible,
	}
	if adj.PromotionCode != nil && adj.PromotionCode.ID != 0 {
		id := uint(adj.PromotionCode.ID)
		model.PromotionCodeID = &id
	}
	return model
}
