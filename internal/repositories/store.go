package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories behind one data source and lets callers
// run several of them inside a single transaction.
type Store interface {
	Products() ProductRepository
	Categories() CategoryRepository
	Carts() CartRepository
	Orders() OrderRepository
	Inventory() InventoryRepository
	Users() UserRepository
	Wishlists() WishlistRepository
	// Transaction runs fn against a Store bound to one database
	// transaction. Any error returned by fn rolls every write back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// GORMStore is a GORM implementation of Store.
type GORMStore struct {
	db *gorm.DB
}

// NewGORMStore creates a new GORMStore over db.
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

var _ Store = (*GORMStore)(nil)

func (s *GORMStore) Products() ProductRepository { return NewGORMProductRepository(s.db) }
func (s *GORMStore) Categories() CategoryRepository { return NewGORMCategoryRepository(s.db) }
func (s *GORMStore) Carts() CartRepository { return NewGORMCartRepository(s.db) }
func (s *GORMStore) Orders() OrderRepository { return NewGORMOrderRepository(s.db) }
func (s *GORMStore) Inventory() InventoryRepository { return NewGORMInventoryRepository(s.db) }
func (s *GORMStore) Users() UserRepository { return NewGORMUserRepository(s.db) }
func (s *GORMStore) Wishlists() WishlistRepository { return NewGORMWishlistRepository(s.db) }

func (s *GORMStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GORMStore{db: tx})
	})
}
