package cart

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/MotownC/TheRackHack/internal/domain"
	"golang.org/x/sync/singleflight"
)

var ErrInsufficientStock = errors.New("requested quantity exceeds available stock")

// ProductReader is the catalog lookup used for the soft stock check on add.
type ProductReader interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

// Service owns the cart value: persistence and caching are injected
// side-effects, loaded on read and saved on change.
type Service struct {
	repo     Repository
	cache    Cache
	products ProductReader
	sfg      singleflight.Group // Prevents cache stampede
}

func NewService(repo Repository, cache Cache, products ProductReader) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		products: products,
	}
}

func (s *Service) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cached, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("cart cache get error: %v", err) // log cache error but continue
		}

		cart, errGet := s.repo.GetCart(ctx, userID)
		if errors.Is(errGet, ErrCartNotFound) {
			// A missing cart reads as an empty one.
			return &domain.Cart{
				UserID:    userID,
				Items:     nil,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), userID, cart); errSet != nil {
				log.Printf("cart cache set error: %v", errSet)
			}
		}()

		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

// AddItem adds or replaces a product/size entry. The stock check is a soft
// guard at mutation time, not a reservation.
func (s *Service) AddItem(ctx context.Context, userID string, item domain.CartItem) error {
	if s.products != nil {
		product, err := s.products.GetProduct(ctx, item.ID)
		if err == nil && item.Quantity > product.Stock {
			return ErrInsufficientStock
		}
		if err != nil {
			log.Printf("stock check skipped for product %s: %v", item.ID, err)
		}
	}

	if err := s.repo.AddItem(ctx, userID, item); err != nil {
		log.Printf("repo add item error: %v", err)
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *Service) UpdateQuantity(ctx context.Context, userID, productID, size string, quantity int) error {
	if err := s.repo.UpdateItemQuantity(ctx, userID, productID, size, quantity); err != nil {
		log.Printf("repo update item quantity error: %v", err)
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID, size string) error {
	if err := s.repo.RemoveItem(ctx, userID, productID, size); err != nil {
		log.Printf("repo remove item error: %v", err)
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *Service) ClearCart(ctx context.Context, userID string) error {
	if err := s.repo.DeleteCart(ctx, userID); err != nil {
		log.Printf("repo delete cart error: %v", err)
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *Service) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cart cache invalidate error: %v", err)
	}
}
