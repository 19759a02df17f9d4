package infrastructure

import "gorm.io/gorm"

// ShippingMethodModel 对应 shipping_methods 表，计算器参数以 JSON 存储
type ShippingMethodModel struct {
	gorm.Model
	Name                  string `gorm:"size:128;not null"`
	Code                  string `gorm:"size:64;index"`
	DisplayOn             string `gorm:"size:16;not null;default:both"`
	CalculatorType        string `gorm:"size:32;not null"`
	CalculatorPreferences string `gorm:"type:text"`
	// 关联关系
	Zones []ZoneModel `gorm:"many2many:shipping_method_zones;joinForeignKey:ShippingMethodID;joinReferences:ZoneID"`
}

func (ShippingMethodModel) TableName() string {
	return "shipping_methods"
}

// ZoneModel 对应 zones 表
type ZoneModel struct {
	gorm.Model
	Name        string `gorm:"size:128;uniqueIndex"`
	Description string
	Members     []ZoneMemberModel `gorm:"foreignKey:ZoneID"`
}

func (ZoneModel) TableName() string {
	return "zones"
}

// ZoneMemberModel 对应 zone_members 表，kind 为 country 或 state
type ZoneMemberModel struct {
	gorm.Model
	ZoneID  uint   `gorm:"index;not null"`
	Kind    string `gorm:"size:16;not null"`
	Code    string `gorm:"size:8;not null;index:idx_zone_member_code"`
	Country string `gorm:"size:8;index:idx_zone_member_code"` // 州成员所属国家
}

func (ZoneMemberModel) TableName() string {
	return "zone_members"
}

// Models 需要自动迁移的模型
func Models() []any {
	return []any{&ZoneModel{}, &ZoneMemberModel{}, &ShippingMethodModel{}}
}
