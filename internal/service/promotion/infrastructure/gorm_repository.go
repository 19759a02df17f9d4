package infrastructure

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/service/promotion/domain"
)

// GormPromotionRepository 是 PromotionRepository 的 GORM 实现
type GormPromotionRepository struct {
	db *gorm.DB
}

func NewGormPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

func (r *GormPromotionRepository) FindByCode(ctx context.Context, code string) (*domain.Promotion, *domain.PromotionCode, error) {
	db := dbFromContext(ctx, r.db)

	var codeModel PromotionCodeModel
	err := db.Where("value = ?", domain.NormalizeCode(code)).First(&codeModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errors.Wrapf(domain.ErrPromotionCodeNotFound, "%q", code)
		}
		return nil, nil, errors.Wrap(err, "query promotion code")
	}

	var model PromotionModel
	err = db.Preload("Actions", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&model, codeModel.PromotionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errors.Wrapf(domain.ErrPromotionNotFound, "id %d", codeModel.PromotionID)
		}
		return nil, nil, errors.Wrap(err, "query promotion")
	}

	promo, err := ToDomainPromotion(&model)
	if err != nil {
		return nil, nil, err
	}
	return promo, ToDomainPromotionCode(&codeModel), nil
}

// AddCredits 在数据库侧累加，避免并发覆盖
func (r *GormPromotionRepository) AddCredits(ctx context.Context, promotionID int64, delta int64) error {
	if delta == 0 {
		return nil
	}
	result := dbFromContext(ctx, r.db).Model(&PromotionModel{}).
		Where("id = ?", promotionID).
		UpdateColumn("credits_count", gorm.Expr("credits_count + ?", delta))
	if result.Error != nil {
		return errors.Wrap(result.Error, "update promotion credits")
	}
	if result.RowsAffected == 0 {
		return errors.Wrapf(domain.ErrPromotionNotFound, "id %d", promotionID)
	}
	return nil
}

// GormOrderRepository 读取订单和 shipment，维护 adjustments 表
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	record, err := r.findRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToDomainOrder(record)
}

func (r *GormOrderRepository) findRecord(ctx context.Context, number string) (*OrderRecord, error) {
	var record OrderRecord
	err := dbFromContext(ctx, r.db).
		Preload("Shipments", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Shipments.Adjustments", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Shipments.Adjustments.PromotionCode").
		Where("number = ?", number).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(domain.ErrOrderNotFound, "number %s", number)
		}
		return nil, errors.Wrap(err, "query order")
	}
	return &record, nil
}

// SaveAdjustments 删除被撤销的调整、插入新调整，并回写订单的 promo_total。
// 订单行在事务内加 FOR UPDATE 锁，promo_total 取库中有效调整之和，不依赖内存快照。
func (r *GormOrderRepository) SaveAdjustments(ctx context.Context, order *domain.Order) error {
	db := dbFromContext(ctx, r.db)

	var orderID uint
	err := lockOrder(db, order.ID).Scan(&orderID).Error
	if err != nil {
		return errors.Wrap(err, "query order id")
	}
	if orderID == 0 {
		return errors.Wrapf(domain.ErrOrderNotFound, "number %s", order.ID)
	}

	var removedIDs []uint
	for _, adj := range order.DrainRemoved() {
		if adj.ID != 0 {
			removedIDs = append(removedIDs, uint(adj.ID))
		}
	}
	if len(removedIDs) > 0 {
		if err := db.Where("id IN ?", removedIDs).Delete(&AdjustmentModel{}).Error; err != nil {
			return errors.Wrap(err, "delete adjustments")
		}
	}

	for _, adj := range order.ShipmentAdjustments() {
		if adj.ID != 0 {
			continue
		}
		model := FromDomainAdjustment(orderID, adj)
		if err := db.Create(model).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errors.Wrapf(domain.ErrDuplicateAdjustment, "shipment %d, action %d", adj.ShipmentID, adj.SourceActionID)
			}
			return errors.Wrap(err, "insert adjustment")
		}
		adj.ID = int64(model.ID)
		adj.CreatedAt = model.CreatedAt
	}

	err = updatePromoTotal(db, orderID).Error
	return errors.Wrap(err, "update order promo total")
}

func lockOrder(db *gorm.DB, number string) *gorm.DB {
	return db.Model(&OrderRecord{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("number = ?", number)
}

// updatePromoTotal promo_total = 订单上所有有效调整之和
func updatePromoTotal(db *gorm.DB, orderID uint) *gorm.DB {
	sum := db.Session(&gorm.Session{NewDB: true}).Model(&AdjustmentModel{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("order_id = ? AND eligible = ?", orderID, true)
	return db.Model(&OrderRecord{}).Where("id = ?", orderID).Updates(map[string]any{
		"promo_total": sum,
		"updated_at":  time.Now(),
	})
}
