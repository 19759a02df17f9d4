package infrastructure

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"storefront/internal/service/order/domain"
)

// GormOrderRepository 是 OrderRepository 的 GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Save 首次保存时连同发货单和商品行一起插入并回填发货单 ID，之后只更新状态、金额和运费
func (r *GormOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var orderID uint
		err := tx.Model(&OrderModel{}).Select("id").Where("number = ?", order.ID).Scan(&orderID).Error
		if err != nil {
			return errors.Wrap(err, "query order id")
		}
		if orderID == 0 {
			return r.create(tx, order)
		}
		return r.update(tx, orderID, order)
	})
}

func (r *GormOrderRepository) create(tx *gorm.DB, order *domain.Order) error {
	model := FromDomainOrder(order)
	if err := tx.Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.Wrapf(domain.ErrOrderExists, "number %s", order.ID)
		}
		return errors.Wrap(err, "insert order")
	}
	for i := range model.Shipments {
		order.Shipments[i].ID = int64(model.Shipments[i].ID)
	}
	return nil
}

func (r *GormOrderRepository) update(tx *gorm.DB, orderID uint, order *domain.Order) error {
	err := tx.Model(&OrderModel{}).Where("id = ?", orderID).Updates(map[string]any{
		"state":       string(order.State),
		"item_total":  order.ItemTotal,
		"ship_total":  order.ShipTotal,
		"promo_total": order.PromoTotal,
		"total":       order.Total,
		"updated_at":  order.UpdatedAt,
	}).Error
	if err != nil {
		return errors.Wrap(err, "update order")
	}

	for _, s := range order.Shipments {
		if s.ID == 0 {
			return errors.Wrapf(domain.ErrShipmentNotFound, "shipment %s was never persisted", s.Number)
		}
		err := tx.Model(&ShipmentModel{}).Where("id = ? AND order_id = ?", s.ID, orderID).Updates(map[string]any{
			"shipping_method_id":   s.ShippingMethodID,
			"shipping_method_name": s.ShippingMethodName,
			"cost":                 s.Cost,
			"updated_at":           order.UpdatedAt,
		}).Error
		if err != nil {
			return errors.Wrapf(err, "update shipment %s", s.Number)
		}
	}
	return nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).
		Preload("Shipments", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Shipments.LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("number = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(domain.ErrOrderNotFound, "number %s", id)
		}
		return nil, errors.Wrap(err, "query order")
	}
	return ToDomainOrder(&model), nil
}
