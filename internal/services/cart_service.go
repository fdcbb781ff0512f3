package services

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// CartService manages shopper carts. Mutations of one cart are serialized
// in-process and each runs in a single transaction.
type CartService struct {
	store repositories.Store
	locks *keyedMutex
}

// NewCartService creates a new CartService.
func NewCartService(store repositories.Store) *CartService {
	return &CartService{
		store: store,
		locks: newKeyedMutex(),
	}
}

// lock serializes work on one cart. The checkout takes it too so that a
// cart cannot change while it is being turned into an order.
func (s *CartService) lock(cartKey string) func() {
	return s.locks.Lock(cartKey)
}

// GetCart returns the cart for key. A cart that was never written is
// returned empty.
func (s *CartService) GetCart(ctx context.Context, cartKey string) (*models.Cart, error) {
	cart, err := s.store.Carts().Get(ctx, cartKey)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to load cart")
	}
	if cart == nil {
		cart = &models.Cart{Key: cartKey, UserID: userIDFrom(ctx)}
	}
	if cart.Lines == nil {
		cart.Lines = []models.CartLine{}
	}
	return cart, nil
}

// AddItem adds quantity units of a product. An existing line for the
// product is incremented. Only the requested quantity is checked against
// the catalog; stock is reserved at checkout.
func (s *CartService) AddItem(ctx context.Context, cartKey, productID string, quantity int) (*models.CartLine, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, apperr.InvalidArgument("product ID required")
	}
	if quantity < 1 {
		return nil, apperr.InvalidArgument("quantity must be at least 1")
	}
	return s.mutateLine(ctx, cartKey, productID, quantity, func(existing int) int { return existing + quantity })
}

// SetItemQuantity sets the quantity of a product's line, creating the line
// when the product is not in the cart yet.
func (s *CartService) SetItemQuantity(ctx context.Context, cartKey, productID string, quantity int) (*models.CartLine, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, apperr.InvalidArgument("valid product ID and quantity required")
	}
	if quantity < 1 {
		return nil, apperr.InvalidArgument("valid product ID and quantity required")
	}
	return s.mutateLine(ctx, cartKey, productID, quantity, func(int) int { return quantity })
}

// mutateLine checks requested against the catalog and writes the line
// quantity computed by next from the current one (0 when there is no line).
func (s *CartService) mutateLine(ctx context.Context, cartKey, productID string, requested int, next func(existing int) int) (*models.CartLine, error) {
	unlock := s.lock(cartKey)
	defer unlock()

	var result *models.CartLine
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		product, err := tx.Products().GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if !product.IsActive() {
			return apperr.Unavailable(product.ID, product.Name)
		}
		if requested > product.Quantity {
			return apperr.InsufficientStock(product.ID, requested, product.Quantity)
		}

		line, err := tx.Carts().LineByProduct(ctx, cartKey, productID)
		if err != nil {
			return err
		}
		existing := 0
		if line != nil {
			existing = line.Quantity
		}
		quantity := next(existing)

		if line != nil {
			if err := tx.Carts().UpdateLineQuantity(ctx, line.ID, quantity); err != nil {
				return err
			}
			line.Quantity = quantity
			result = line
			return nil
		}

		if err := tx.Carts().Ensure(ctx, cartKey, userIDFrom(ctx)); err != nil {
			return err
		}
		line = &models.CartLine{CartKey: cartKey, ProductID: product.ID, Quantity: quantity}
		line.Snapshot(product)
		if err := tx.Carts().CreateLine(ctx, line); err != nil {
			return err
		}
		result = line
		return nil
	})
	if err != nil {
		return nil, classify(err, "failed to update cart")
	}
	return result, nil
}

// RemoveItem deletes a line by its id. Removing a line that is not in the
// cart fails with NotFound.
func (s *CartService) RemoveItem(ctx context.Context, cartKey, lineID string) error {
	if strings.TrimSpace(lineID) == "" {
		return apperr.InvalidArgument("item ID required")
	}

	unlock := s.lock(cartKey)
	defer unlock()

	removed, err := s.store.Carts().DeleteLine(ctx, cartKey, lineID)
	if err != nil {
		return apperr.Unexpected(err, "failed to remove item from cart")
	}
	if !removed {
		return apperr.NotFound("item %s is not in the cart", lineID)
	}
	return nil
}

// Clear empties the cart. Clearing a missing cart succeeds.
func (s *CartService) Clear(ctx context.Context, cartKey string) error {
	unlock := s.lock(cartKey)
	defer unlock()

	if err := s.store.Carts().Clear(ctx, cartKey); err != nil {
		return apperr.Unexpected(err, "failed to clear cart")
	}
	return nil
}

// classify keeps classified errors and marks everything else unexpected.
func classify(err error, msg string) error {
	var e *apperr.Error
	if errors.As(err, &e) {
		return err
	}
	return apperr.Unexpected(err, "%s", msg)
}
