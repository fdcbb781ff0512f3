package services

import (
	"context"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

const defaultWishlistName = "My Wishlist"

// WishlistItemView is a wishlist entry with rating fields on its product.
type WishlistItemView struct {
	ID        string              `json:"id"`
	ProductID string              `json:"productId"`
	AddedAt   time.Time           `json:"addedAt"`
	Product   *models.ProductView `json:"product,omitempty"`
}

// WishlistService manages the signed-in user's wishlist.
type WishlistService struct {
	store repositories.Store
}

func NewWishlistService(store repositories.Store) *WishlistService {
	return &WishlistService{store: store}
}

func requirePrincipal(ctx context.Context) (*Principal, error) {
	p := PrincipalFrom(ctx)
	if p == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	return p, nil
}

// List returns the wishlist items, most recently added first.
func (s *WishlistService) List(ctx context.Context) ([]WishlistItemView, error) {
	p, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	wishlist, err := s.store.Wishlists().GetByUser(ctx, p.UserID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return []WishlistItemView{}, nil
		}
		return nil, apperr.Unexpected(err, "failed to fetch wishlist")
	}
	items, err := s.store.Wishlists().Items(ctx, wishlist.ID)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to fetch wishlist")
	}

	out := make([]WishlistItemView, 0, len(items))
	for _, item := range items {
		v := WishlistItemView{
			ID:        item.ID,
			ProductID: item.ProductID,
			AddedAt:   item.AddedAt,
		}
		if item.Product != nil {
			pv := models.NewProductView(*item.Product)
			v.Product = &pv
		}
		out = append(out, v)
	}
	return out, nil
}

// Add puts a product on the wishlist, creating the wishlist on first use.
// Adding a product twice fails with Conflict.
func (s *WishlistService) Add(ctx context.Context, productID string) (*models.WishlistItem, error) {
	p, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if productID == "" {
		return nil, apperr.InvalidArgument("product ID required")
	}

	var item *models.WishlistItem
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		product, err := tx.Products().GetByID(ctx, productID)
		if err != nil {
			return err
		}

		wishlist, err := tx.Wishlists().GetByUser(ctx, p.UserID)
		if apperr.IsKind(err, apperr.KindNotFound) {
			wishlist = &models.Wishlist{UserID: p.UserID, Name: defaultWishlistName}
			err = tx.Wishlists().Create(ctx, wishlist)
		}
		if err != nil {
			return err
		}

		existing, err := tx.Wishlists().FindItem(ctx, wishlist.ID, productID)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.Conflict("product already in wishlist")
		}

		item = &models.WishlistItem{WishlistID: wishlist.ID, ProductID: productID}
		if err := tx.Wishlists().AddItem(ctx, item); err != nil {
			return err
		}
		item.Product = product
		return nil
	})
	if err != nil {
		return nil, classify(err, "failed to add to wishlist")
	}
	return item, nil
}

// Remove takes a product off the wishlist. Removing an absent product
// succeeds; a user without a wishlist gets NotFound.
func (s *WishlistService) Remove(ctx context.Context, productID string) error {
	p, err := requirePrincipal(ctx)
	if err != nil {
		return err
	}
	if productID == "" {
		return apperr.InvalidArgument("product ID required")
	}
	wishlist, err := s.store.Wishlists().GetByUser(ctx, p.UserID)
	if err != nil {
		return classify(err, "failed to remove from wishlist")
	}
	if _, err := s.store.Wishlists().RemoveItem(ctx, wishlist.ID, productID); err != nil {
		return apperr.Unexpected(err, "failed to remove from wishlist")
	}
	return nil
}
