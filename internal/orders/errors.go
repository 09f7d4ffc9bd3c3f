package orders

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("orders: not found")
	ErrEmptyCart         = errors.New("orders: cart is empty")
	ErrInvalidTransition = errors.New("orders: invalid status transition")
)

// UnavailableItemsError rejects a whole cart: no partial orders. InvalidItems
// holds products that are missing or flagged unavailable, InsufficientItems
// those whose requested quantity exceeds current stock. Both lists are
// de-duplicated and an item appears in at most one of them.
type UnavailableItemsError struct {
	InvalidItems      []string
	InsufficientItems []string
}

func (e *UnavailableItemsError) Error() string {
	return fmt.Sprintf("orders: cart has %d invalid and %d insufficient items",
		len(e.InvalidItems), len(e.InsufficientItems))
}
