package domain

import "errors"

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrPromotionNotFound     = errors.New("promotion not found")
	ErrPromotionCodeNotFound = errors.New("promotion code not found")
	ErrPromotionNotEligible  = errors.New("order is not eligible for promotion")
	ErrPromotionExpired      = errors.New("promotion is not active")
	ErrInvalidRule           = errors.New("invalid promotion rule")
	ErrUnknownAction         = errors.New("unknown promotion action type")
	ErrShipmentIdentity      = errors.New("shipment identity is missing or duplicated")
	ErrDuplicateAdjustment   = errors.New("shipment already has an adjustment from this action")
)
