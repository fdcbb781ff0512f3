package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

var _ ProductRepository = (*GORMProductRepository)(nil)

func (r *GORMProductRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Reviews")
}

// ListActive retrieves active products, newest first.
func (r *GORMProductRepository) ListActive(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.withRelations(ctx).
		Where("status = ?", models.ProductStatusActive).
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active products: %w", err)
	}
	return products, nil
}

// ListByCategory retrieves the active products of one category, newest first.
func (r *GORMProductRepository) ListByCategory(ctx context.Context, categoryID string) ([]models.Product, error) {
	var products []models.Product
	err := r.withRelations(ctx).
		Where("category_id = ? AND status = ?", categoryID, models.ProductStatusActive).
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products of category %s: %w", categoryID, err)
	}
	return products, nil
}

// List retrieves products in any status for administration.
func (r *GORMProductRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	q := r.withRelations(ctx)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Query != "" {
		like := containsPattern(filter.Query)
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, like, like)
	}
	var products []models.Product
	if err := q.Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Search runs a case-insensitive text match over product and category
// fields, restricted to active products and ordered by name.
func (r *GORMProductRepository) Search(ctx context.Context, criteria SearchCriteria) ([]models.Product, error) {
	like := containsPattern(criteria.Query)
	textMatch := r.db.Session(&gorm.Session{NewDB: true}).
		Where(`LOWER(products.name) LIKE ? ESCAPE '\'`, like).
		Or(`LOWER(products.description) LIKE ? ESCAPE '\'`, like).
		Or(`LOWER(categories.name) LIKE ? ESCAPE '\'`, like).
		Or(`LOWER(categories.description) LIKE ? ESCAPE '\'`, like)

	q := r.withRelations(ctx).
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Where("products.status = ?", models.ProductStatusActive).
		Where(textMatch)
	if criteria.CategorySlug != "" {
		q = q.Where("categories.slug = ?", criteria.CategorySlug)
	}
	if criteria.MinPrice != nil {
		q = q.Where("products.price >= ?", *criteria.MinPrice)
	}
	if criteria.MaxPrice != nil {
		q = q.Where("products.price <= ?", *criteria.MaxPrice)
	}

	var products []models.Product
	if err := q.Order("products.name ASC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a lower-cased LIKE pattern matching query
// literally anywhere in a value. Use it with ESCAPE '\'.
func containsPattern(query string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.withRelations(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product, with its images and reviews, in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// UpdateStatus changes the lifecycle status of a product.
func (r *GORMProductRepository) UpdateStatus(ctx context.Context, id string, status models.ProductStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update product status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("product with ID %s not found for update", id)
	}
	return nil
}

// AddReview stores a review of an existing product.
func (r *GORMProductRepository) AddReview(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *GORMProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

// DecrementStock is a conditional update; concurrent callers racing for the
// last units cannot drive the quantity below zero.
func (r *GORMProductRepository) DecrementStock(ctx context.Context, id string, quantity int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND status = ? AND quantity >= ?", id, models.ProductStatusActive, quantity).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
	if res.Error != nil {
		return false, fmt.Errorf("failed to decrement stock of product %s: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GORMProductRepository) IncrementStock(ctx context.Context, id string, quantity int) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity))
	if res.Error != nil {
		return fmt.Errorf("failed to increment stock of product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("product with ID %s not found", id)
	}
	return nil
}
