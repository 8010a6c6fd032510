package cart

import (
	"context"
	"errors"

	"github.com/MotownC/TheRackHack/internal/domain"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = errors.New("item not found in cart")
)

type Repository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, item domain.CartItem) error
	UpdateItemQuantity(ctx context.Context, userID, productID, size string, quantity int) error
	RemoveItem(ctx context.Context, userID, productID, size string) error
	DeleteCart(ctx context.Context, userID string) error
}
