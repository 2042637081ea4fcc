package domain

import "errors"

var (
	ErrValidation    = errors.New("invalid alert")
	ErrTradeNotFound = errors.New("trade not found")
	ErrDelivery      = errors.New("message delivery failed")
	ErrRegistry      = errors.New("registry operation failed")
)
