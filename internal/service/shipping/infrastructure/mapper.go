package infrastructure

import (
	"strings"

	"github.com/pkg/errors"

	"storefront/internal/service/shipping/domain"
)

// ToDomainShippingMethod 将数据库模型转换为领域模型，并按类型装配计算器
func ToDomainShippingMethod(model *ShippingMethodModel) (*domain.ShippingMethod, error) {
	if model == nil {
		return nil, nil
	}
	display := domain.DisplayOn(model.DisplayOn)
	if !display.Valid() {
		return nil, errors.Errorf("shipping method %d: invalid display_on %q", model.ID, model.DisplayOn)
	}
	prefs, err := domain.ParsePreferences(model.CalculatorPreferences)
	if err != nil {
		return nil, errors.WithMessagef(err, "shipping method %d", model.ID)
	}
	calc, err := domain.NewCalculator(domain.CalculatorType(model.CalculatorType), prefs)
	if err != nil {
		return nil, errors.WithMessagef(err, "shipping method %d", model.ID)
	}

	zones := make([]*domain.Zone, 0, len(model.Zones))
	for i := range model.Zones {
		zones = append(zones, ToDomainZone(&model.Zones[i]))
	}
	return &domain.ShippingMethod{
		ID:         int64(model.ID),
		Name:       model.Name,
		Code:       model.Code,
		DisplayOn:  display,
		Zones:      zones,
		Calculator: calc,
	}, nil
}

func ToDomainZone(model *ZoneModel) *domain.Zone {
	members := make([]domain.ZoneMember, 0, len(model.Members))
	for _, m := range model.Members {
		members = append(members, domain.ZoneMember{
			Kind:    domain.ZoneMemberKind(m.Kind),
			Code:    strings.ToUpper(m.Code),
			Country: strings.ToUpper(m.Country),
		})
	}
	return &domain.Zone{ID: int64(model.ID), Name: model.Name, Members: members}
}
