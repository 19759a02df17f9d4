package domain

import "errors"

var (
	ErrInvalidOrder           = errors.New("invalid order")
	ErrOrderNotFound          = errors.New("order not found")
	ErrOrderExists            = errors.New("order already exists")
	ErrShipmentNotFound       = errors.New("shipment not found")
	ErrNoShippingRate         = errors.New("no shipping rate available for shipment")
	ErrInvalidStateTransition = errors.New("invalid order state transition")
)
