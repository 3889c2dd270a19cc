package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidState      = errors.New("invalid state")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrStockConflict     = errors.New("stock conflict")
)

// InsufficientStockError names the line item that failed the stock gate.
type InsufficientStockError struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	item := e.ProductID.String()
	if e.Name != "" {
		item = fmt.Sprintf("%s (%s)", e.Name, item)
	}
	if e.VariantID != nil {
		item = fmt.Sprintf("%s variant %s", item, e.VariantID)
	}
	return fmt.Sprintf("insufficient stock for %s: requested=%d, available=%d", item, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// StockConflictError is returned by persistence when the conditional decrement at commit time fails.
type StockConflictError struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
}

func (e *StockConflictError) Error() string {
	if e.VariantID != nil {
		return fmt.Sprintf("stock conflict for product %s variant %s: quantity=%d", e.ProductID, e.VariantID, e.Quantity)
	}
	return fmt.Sprintf("stock conflict for product %s: quantity=%d", e.ProductID, e.Quantity)
}

func (e *StockConflictError) Unwrap() error {
	return ErrStockConflict
}
