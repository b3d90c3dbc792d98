package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	perrors "github.com/abgdnv/pantry/internal/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStore implements ProductStore on top of the gorm ORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new instance of ProductStore backed by gorm.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AutoMigrate synchronizes the products table with the Product model.
// gen_random_uuid is built into PostgreSQL 13 and later.
func (g *GormStore) AutoMigrate(ctx context.Context) error {
	if err := g.db.WithContext(ctx).AutoMigrate(&Product{}); err != nil {
		return fmt.Errorf("failed to migrate products table: %w", err)
	}
	return nil
}

// FindAll retrieves products ordered by creation time with optional pagination.
func (g *GormStore) FindAll(ctx context.Context, offset, limit int32) ([]Product, error) {
	products := make([]Product, 0)
	q := g.db.WithContext(ctx).Order("created_at, id").Offset(int(offset))
	if limit > 0 {
		q = q.Limit(int(limit))
	}
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	return products, nil
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (g *GormStore) FindByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	var product Product
	if err := g.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return &product, nil
}

// SearchByName returns products whose name contains name, ignoring case.
func (g *GormStore) SearchByName(ctx context.Context, name string) ([]Product, error) {
	products := make([]Product, 0)
	err := g.db.WithContext(ctx).
		Where(`name ILIKE ? ESCAPE '\'`, likePattern(name)).
		Order("created_at, id").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// Create adds a new product to the system.
func (g *GormStore) Create(ctx context.Context, params CreateParams) (*Product, error) {
	product := Product{
		Name:        params.Name,
		Description: params.Description,
		Price:       params.Price,
		Quantity:    params.Quantity,
	}
	if err := g.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return g.FindByID(ctx, product.ID)
}

// Update overwrites name, description, price and quantity of an existing product.
// Returns ErrProductNotFound if no product exists with the given ID.
func (g *GormStore) Update(ctx context.Context, product Product) (*Product, error) {
	res := g.db.WithContext(ctx).
		Model(&Product{}).
		Where("id = ?", product.ID).
		Select("name", "description", "price", "quantity", "updated_at").
		Updates(map[string]any{
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price,
			"quantity":    product.Quantity,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, perrors.ErrProductNotFound
	}
	return g.FindByID(ctx, product.ID)
}

// DeleteByID removes a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (g *GormStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	res := g.db.WithContext(ctx).Where("id = ?", id).Delete(&Product{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete product by ID: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

// Ping checks the connection to the database.
func (g *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB from gorm: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
