package services

import (
	"context"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
)

// ProductService handles business logic related to the catalog.
type ProductService struct {
	store repositories.Store
}

// NewProductService creates a new ProductService.
func NewProductService(store repositories.Store) *ProductService {
	return &ProductService{store: store}
}

// CategoryProducts is a category with its active products.
type CategoryProducts struct {
	Category *models.Category     `json:"category"`
	Products []models.ProductView `json:"products"`
}

// CreateProductInput describes a new catalog product.
type CreateProductInput struct {
	Name           string               `json:"name" validate:"required,min=2,max=255"`
	Description    string               `json:"description" validate:"max=5000"`
	Price          decimal.Decimal      `json:"price"`
	CompareAtPrice *decimal.Decimal     `json:"compareAtPrice"`
	Quantity       int                  `json:"inventoryQuantity" validate:"gte=0"`
	Status         models.ProductStatus `json:"status" validate:"omitempty,oneof=draft active inactive out_of_stock"`
	ProductType    models.ProductType   `json:"productType" validate:"omitempty,oneof=physical digital service"`
	CategoryID     *string              `json:"categoryId"`
	ImageURLs      []string             `json:"images" validate:"omitempty,dive,url"`
}

func views(products []models.Product) []models.ProductView {
	out := make([]models.ProductView, 0, len(products))
	for _, p := range products {
		out = append(out, models.NewProductView(p))
	}
	return out
}

// ListProducts returns active products, newest first.
func (s *ProductService) ListProducts(ctx context.Context) ([]models.ProductView, error) {
	products, err := s.store.Products().ListActive(ctx)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to fetch products")
	}
	return views(products), nil
}

// GetProduct returns one product. Shoppers only see active products.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.ProductView, error) {
	product, err := s.store.Products().GetByID(ctx, id)
	if err != nil {
		return nil, classify(err, "failed to fetch product")
	}
	if !product.IsActive() && !PrincipalFrom(ctx).IsAdmin() {
		return nil, apperr.NotFound("product with ID %s not found", id)
	}
	view := models.NewProductView(*product)
	return &view, nil
}

// ListCategories returns every category with its active product count.
func (s *ProductService) ListCategories(ctx context.Context) ([]models.CategorySummary, error) {
	categories, err := s.store.Categories().Summaries(ctx, false)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to fetch categories")
	}
	return categories, nil
}

// GetCategory returns a category and its active products.
func (s *ProductService) GetCategory(ctx context.Context, slug string) (*CategoryProducts, error) {
	category, err := s.store.Categories().GetBySlug(ctx, slug)
	if err != nil {
		return nil, classify(err, "failed to fetch category")
	}
	products, err := s.store.Products().ListByCategory(ctx, category.ID)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to fetch category")
	}
	return &CategoryProducts{Category: category, Products: views(products)}, nil
}

// ListAdminProducts returns products in any status.
func (s *ProductService) ListAdminProducts(ctx context.Context, status models.ProductStatus, query string) ([]models.ProductView, error) {
	if status != "" && !status.Valid() {
		return nil, apperr.InvalidArgument("invalid product status: %s", status)
	}
	products, err := s.store.Products().List(ctx, repositories.ProductFilter{Status: status, Query: strings.TrimSpace(query)})
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to fetch products")
	}
	return views(products), nil
}

// CreateProduct adds a product to the catalog. New products are drafts
// unless a status is given. Initial stock is recorded as a restock.
func (s *ProductService) CreateProduct(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	if !in.Price.IsPositive() {
		return nil, apperr.InvalidArgument("price must be positive")
	}
	if in.CompareAtPrice != nil && in.CompareAtPrice.IsNegative() {
		return nil, apperr.InvalidArgument("compare-at price must not be negative")
	}

	product := &models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Status:      in.Status,
		ProductType: in.ProductType,
		CategoryID:  in.CategoryID,
	}
	if in.CompareAtPrice != nil {
		product.CompareAtPrice = decimal.NewNullDecimal(*in.CompareAtPrice)
	}
	for i, url := range in.ImageURLs {
		product.Images = append(product.Images, models.ProductImage{URL: url, Alt: product.Name, Position: i})
	}

	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		if product.CategoryID != nil && *product.CategoryID != "" {
			if _, err := tx.Categories().GetByID(ctx, *product.CategoryID); err != nil {
				if apperr.IsKind(err, apperr.KindNotFound) {
					return apperr.InvalidArgument("category %s does not exist", *product.CategoryID)
				}
				return err
			}
		}
		if err := tx.Products().Create(ctx, product); err != nil {
			return err
		}
		if product.Quantity == 0 {
			return nil
		}
		return tx.Inventory().Record(ctx, &models.InventoryAdjustment{
			ProductID: product.ID,
			Quantity:  product.Quantity,
			Reason:    models.AdjustmentReasonRestock,
		})
	})
	if err != nil {
		return nil, classify(err, "failed to create product")
	}
	log.Infof("created product %s (%s)", product.Name, product.ID)
	return product, nil
}

// UpdateProductStatus changes a product's lifecycle status.
func (s *ProductService) UpdateProductStatus(ctx context.Context, id string, status models.ProductStatus) (*models.Product, error) {
	if !status.Valid() {
		return nil, apperr.InvalidArgument("invalid product status: %s", status)
	}
	if err := s.store.Products().UpdateStatus(ctx, id, status); err != nil {
		return nil, classify(err, "failed to update product")
	}
	product, err := s.store.Products().GetByID(ctx, id)
	if err != nil {
		return nil, classify(err, "failed to update product")
	}
	return product, nil
}

// Restock adds units to a product and records the adjustment.
func (s *ProductService) Restock(ctx context.Context, id string, quantity int) (*models.Product, error) {
	if quantity < 1 {
		return nil, apperr.InvalidArgument("quantity must be at least 1")
	}
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		if err := tx.Products().IncrementStock(ctx, id, quantity); err != nil {
			return err
		}
		return tx.Inventory().Record(ctx, &models.InventoryAdjustment{
			ProductID: id,
			Quantity:  quantity,
			Reason:    models.AdjustmentReasonRestock,
		})
	})
	if err != nil {
		return nil, classify(err, "failed to restock product")
	}
	product, err := s.store.Products().GetByID(ctx, id)
	if err != nil {
		return nil, classify(err, "failed to restock product")
	}
	return product, nil
}

// InventoryHistory returns the ledger of a product.
func (s *ProductService) InventoryHistory(ctx context.Context, id string) ([]models.InventoryAdjustment, error) {
	if _, err := s.store.Products().GetByID(ctx, id); err != nil {
		return nil, classify(err, "failed to load inventory history")
	}
	adjustments, err := s.store.Inventory().ListByProduct(ctx, id)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to load inventory history")
	}
	return adjustments, nil
}
