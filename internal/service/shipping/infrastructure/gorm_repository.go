package infrastructure

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"storefront/internal/service/shipping/domain"
)

// GormShippingMethodRepository 是 ShippingMethodRepository 的 GORM 实现
type GormShippingMethodRepository struct {
	db *gorm.DB
}

func NewGormShippingMethodRepository(db *gorm.DB) *GormShippingMethodRepository {
	return &GormShippingMethodRepository{db: db}
}

func (r *GormShippingMethodRepository) FindByIDs(ctx context.Context, ids []int64) ([]*domain.ShippingMethod, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []ShippingMethodModel
	err := r.db.WithContext(ctx).Preload("Zones.Members").Where("id IN ?", ids).Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "query shipping methods by id")
	}

	byID := make(map[int64]*ShippingMethodModel, len(models))
	for i := range models {
		byID[int64(models[i].ID)] = &models[i]
	}
	out := make([]*domain.ShippingMethod, 0, len(ids))
	for _, id := range ids {
		model, ok := byID[id]
		if !ok {
			return nil, errors.Wrapf(domain.ErrShippingMethodNotFound, "id %d", id)
		}
		m, err := ToDomainShippingMethod(model)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// FindForAddress 通过 zone_members 找到覆盖该地址的区域，再找出绑定这些区域的配送方式
func (r *GormShippingMethodRepository) FindForAddress(ctx context.Context, addr domain.Address) ([]*domain.ShippingMethod, error) {
	db := r.db.WithContext(ctx)
	country := strings.ToUpper(addr.Country)
	state := strings.ToUpper(addr.State)

	zoneIDs := db.Model(&ZoneMemberModel{}).Select("zone_id").Where("kind = ? AND code = ?", string(domain.ZoneMemberCountry), country)
	if state != "" {
		zoneIDs = zoneIDs.Or("kind = ? AND code = ? AND (country = '' OR country = ?)", string(domain.ZoneMemberState), state, country)
	}
	methodIDs := db.Table("shipping_method_zones").Select("shipping_method_id").Where("zone_id IN (?)", zoneIDs)

	var models []ShippingMethodModel
	err := db.Preload("Zones.Members").Where("id IN (?)", methodIDs).Order("id").Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "query shipping methods for address")
	}

	out := make([]*domain.ShippingMethod, 0, len(models))
	for i := range models {
		m, err := ToDomainShippingMethod(&models[i])
		if err != nil {
			return nil, err
		}
		if m.IncludesAddress(addr) {
			out = append(out, m)
		}
	}
	return out, nil
}
