// Package store provides an interface for product storage operations.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a product row in the products table.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid();index:idx_products_created_at,priority:2"`
	Name        string          `gorm:"type:varchar(100);not null"`
	Description *string         `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null;check:products_price_check,price >= 0"`
	Quantity    int32           `gorm:"not null;check:products_quantity_check,quantity >= 0"`
	CreatedAt   time.Time       `gorm:"not null;default:now();index:idx_products_created_at,priority:1"`
	UpdatedAt   time.Time       `gorm:"not null;default:now()"`
}

// TableName pins the gorm table name to the one created by the migrations.
func (Product) TableName() string {
	return "products"
}

// CreateParams holds the fields a caller supplies for a new product.
type CreateParams struct {
	Name        string
	Description *string
	Price       decimal.Decimal
	Quantity    int32
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (pgx, gorm).
type ProductStore interface {
	// FindAll returns products ordered by creation time.
	// A limit of 0 returns every product after offset.
	FindAll(ctx context.Context, offset, limit int32) ([]Product, error)

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// SearchByName returns products whose name contains name, ignoring case.
	SearchByName(ctx context.Context, name string) ([]Product, error)

	// Create adds a new product and returns it with the generated ID.
	Create(ctx context.Context, params CreateParams) (*Product, error)

	// Update overwrites the mutable fields of an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, product Product) (*Product, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// Ping reports whether the underlying database is reachable.
	Ping(ctx context.Context) error
}

// likePattern escapes LIKE wildcards so name is matched literally as a substring.
func likePattern(name string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(name) + "%"
}
