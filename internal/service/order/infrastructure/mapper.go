package infrastructure

import (
	"storefront/internal/service/order/domain"
)

func FromDomainOrder(o *domain.Order) *OrderModel {
	m := &OrderModel{
		Number:      o.ID,
		Email:       o.Email,
		Currency:    o.Currency,
		State:       string(o.State),
		ItemTotal:   o.ItemTotal,
		ShipTotal:   o.ShipTotal,
		PromoTotal:  o.PromoTotal,
		Total:       o.Total,
		PromoCode:   o.PromoCode,
		ShipCountry: o.ShipAddress.Country,
		ShipState:   o.ShipAddress.State,
		ShipCity:    o.ShipAddress.City,
		ShipZipcode: o.ShipAddress.Zipcode,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		Shipments:   make([]ShipmentModel, 0, len(o.Shipments)),
	}
	for _, s := range o.Shipments {
		sm := ShipmentModel{
			ID:                 uint(s.ID),
			Number:             s.Number,
			ShippingMethodID:   s.ShippingMethodID,
			ShippingMethodName: s.ShippingMethodName,
			Cost:               s.Cost,
			LineItems:          make([]LineItemModel, 0, len(s.LineItems)),
		}
		for _, li := range s.LineItems {
			sm.LineItems = append(sm.LineItems, LineItemModel{
				VariantID: li.VariantID,
				Quantity:  li.Quantity,
				Price:     li.Price,
				Weight:    li.Weight,
			})
		}
		m.Shipments = append(m.Shipments, sm)
	}
	return m
}

// ToDomainOrder 候选报价不落库，加载出的发货单只有选中的配送方式
func ToDomainOrder(m *OrderModel) *domain.Order {
	o := &domain.Order{
		ID:       m.Number,
		Email:    m.Email,
		Currency: m.Currency,
		ShipAddress: domain.Address{
			Country: m.ShipCountry,
			State:   m.ShipState,
			City:    m.ShipCity,
			Zipcode: m.ShipZipcode,
		},
		PromoCode:  m.PromoCode,
		ItemTotal:  m.ItemTotal,
		ShipTotal:  m.ShipTotal,
		PromoTotal: m.PromoTotal,
		Total:      m.Total,
		State:      domain.State(m.State),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	for _, sm := range m.Shipments {
		s := &domain.Shipment{
			ID:                 int64(sm.ID),
			Number:             sm.Number,
			ShippingMethodID:   sm.ShippingMethodID,
			ShippingMethodName: sm.ShippingMethodName,
			Cost:               sm.Cost,
		}
		for _, li := range sm.LineItems {
			s.LineItems = append(s.LineItems, domain.LineItem{
				VariantID: li.VariantID,
				Quantity:  li.Quantity,
				Price:     li.Price,
				Weight:    li.Weight,
			})
		}
		o.Shipments = append(o.Shipments, s)
	}
	return o
}
