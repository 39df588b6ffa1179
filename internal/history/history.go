// Package history keeps the status history of every order.
package history

import (
	"context"

	"foodcart_back_end/internal/models"
)

type Store interface {
	Append(ctx context.Context, event models.OrderEvent) error
	// List returns the order's events oldest first.
	List(ctx context.Context, orderID string) ([]models.OrderEvent, error)
}
