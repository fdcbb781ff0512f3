package cli

import (
	"context"
	"fmt"

	"storefront/internal/database"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

const seedStock = 50

type seedProduct struct {
	name        string
	description string
	price       int64
	productType models.ProductType
	image       string
}

type seedCategory struct {
	name        string
	slug        string
	description string
	products    []seedProduct
}

var catalog = []seedCategory{
	{
		name: "Electronics", slug: "electronics", description: "Latest gadgets and electronic devices",
		products: []seedProduct{
			{"Wireless Bluetooth Headphones", "High-quality wireless headphones with noise cancellation and premium sound", 2999, models.ProductTypePhysical, "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=500&h=500&fit=crop"},
			{"Smartphone 256GB", "Latest smartphone with advanced camera system and 5G connectivity", 45999, models.ProductTypePhysical, "https://images.unsplash.com/photo-1511707171634-5f897ff02aa9?w=500&h=500&fit=crop"},
			{"Gaming Laptop 16GB RAM", "Powerful gaming laptop with RTX graphics and SSD storage", 89999, models.ProductTypePhysical, "https://images.unsplash.com/photo-1603302576837-37561b2e2302?w=500&h=500&fit=crop"},
			{"Bluetooth Speaker Portable", "Waterproof portable speaker with deep bass and long battery life", 3999, models.ProductTypePhysical, "https://images.unsplash.com/photo-1608043152269-423dbba4e7e1?w=500&h=500&fit=crop"},
			{"Mobile App Development", "Professional mobile app development service for iOS and Android", 99999, models.ProductTypeService, "https://images.unsplash.com/photo-1512941937669-90a1b58e7e9c?w=500&h=500&fit=crop"},
		},
	},
	{
		name: "Clothing", slug: "clothing", description: "Fashion and apparel for everyone",
		products: []seedProduct{
			{"Cotton T-Shirt", "Comfortable 100% cotton t-shirt available in multiple colors", 599, models.ProductTypePhysical, "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=500&h=500&fit=crop"},
			{"Classic Denim Jeans", "High-quality denim jeans with perfect fit and durability", 2499, models.ProductTypePhysical, "https://images.unsplash.com/photo-1542272604-787c3835535d?w=500&h=500&fit=crop"},
			{"Sports Running Shoes", "Lightweight running shoes with breathable mesh upper", 3599, models.ProductTypePhysical, "https://images.unsplash.com/photo-1549298916-b41d501d3772?w=500&h=500&fit=crop"},
			{"Winter Jacket", "Padded winter jacket with waterproof coating", 4999, models.ProductTypePhysical, "https://images.unsplash.com/photo-1578662996442-48f60103fc96?w=500&h=500&fit=crop"},
		},
	},
	{
		name: "Books", slug: "books", description: "Fiction, non-fiction, and educational books",
		products: []seedProduct{
			{"Digital Marketing Guide", "Comprehensive e-book on digital marketing strategies", 999, models.ProductTypeDigital, "https://images.unsplash.com/photo-1481627834876-b7833e8f5570?w=500&h=500&fit=crop"},
			{"Healthy Living Cookbook", "Delicious and healthy recipes for everyday meals", 899, models.ProductTypePhysical, "https://images.unsplash.com/photo-1481627834876-b7833e8f5570?w=500&h=500&fit=crop"},
			{"Photography Fundamentals", "Complete guide to mastering photography basics", 1599, models.ProductTypeDigital, "https://images.unsplash.com/photo-1452587925148-ce544e77e70d?w=500&h=500&fit=crop"},
		},
	},
	{
		name: "Home & Garden", slug: "home-garden", description: "Everything for your home and garden",
		products: []seedProduct{
			{"Room Plants Collection", "Beautiful collection of indoor plants for home decor", 1299, models.ProductTypePhysical, "https://images.unsplash.com/photo-1416879595882-3373a0480b5b?w=500&h=500&fit=crop"},
			{"Garden Tool Set", "Complete set of professional gardening tools", 2499, models.ProductTypePhysical, "https://images.unsplash.com/photo-1625246333195-78d9c38ad449?w=500&h=500&fit=crop"},
			{"Outdoor Hammock", "Comfortable hanging hammock for relaxation", 3499, models.ProductTypePhysical, "https://images.unsplash.com/photo-1441986300917-64674bd600d8?w=500&h=500&fit=crop"},
		},
	},
}

func newSeedCommand(rt *runtime) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo catalogue and the admin and customer accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := rt.openStore()
			if err != nil {
				return err
			}
			defer database.Close(db)

			n, err := seed(cmd.Context(), store, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "password123", "password of the seeded accounts")
	return cmd
}

// seed loads the demo data in one transaction. A database that already
// has categories is left untouched.
func seed(ctx context.Context, store repositories.Store, password string) (int, error) {
	existing, err := store.Categories().Count(ctx)
	if err != nil {
		return 0, err
	}
	if existing > 0 {
		log.Infof("catalogue already has %d categories, skipping seed", existing)
		return 0, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	created := 0
	err = store.Transaction(ctx, func(tx repositories.Store) error {
		if err := tx.Users().Create(ctx, &models.User{
			Username: "admin", Email: "admin@example.com", Name: "Admin User",
			Password: string(hash), Role: models.RoleAdmin,
		}); err != nil {
			return err
		}
		customer := &models.User{
			Username: "customer", Email: "customer@example.com", Name: "Customer User",
			Password: string(hash), Role: models.RoleCustomer,
		}
		if err := tx.Users().Create(ctx, customer); err != nil {
			return err
		}

		for _, sc := range catalog {
			category := &models.Category{Name: sc.name, Slug: sc.slug, Description: sc.description}
			if err := tx.Categories().Create(ctx, category); err != nil {
				return err
			}
			for _, sp := range sc.products {
				product := &models.Product{
					Name:        sp.name,
					Description: sp.description,
					Price:       decimal.NewFromInt(sp.price),
					Quantity:    seedStock,
					Status:      models.ProductStatusActive,
					ProductType: sp.productType,
					CategoryID:  &category.ID,
					Images:      []models.ProductImage{{URL: sp.image, Alt: sp.name}},
				}
				// Two out of three products get a review.
				if created%3 != 2 {
					rating, content := 5, "Excellent product!"
					if created%2 == 1 {
						rating, content = 4, "Great quality!"
					}
					product.Reviews = []models.Review{{UserID: customer.ID, Rating: rating, Content: content, Verified: true}}
				}
				if err := tx.Products().Create(ctx, product); err != nil {
					return err
				}
				if err := tx.Inventory().Record(ctx, &models.InventoryAdjustment{
					ProductID: product.ID,
					Quantity:  seedStock,
					Reason:    models.AdjustmentReasonRestock,
				}); err != nil {
					return err
				}
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to seed database: %w", err)
	}
	log.Infof("seeded %d categories and %d products", len(catalog), created)
	return created, nil
}
