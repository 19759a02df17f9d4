package domain

import "errors"

var (
	ErrPackageInvalid         = errors.New("package is invalid")
	ErrInvalidDisplay         = errors.New("invalid display filter")
	ErrShippingMethodNotFound = errors.New("shipping method not found")
	ErrUnknownCalculator      = errors.New("unknown calculator type")
)
