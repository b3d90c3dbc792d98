package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/pantry/internal/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id, name, description, price, quantity, created_at, updated_at`

const (
	findAllQuery = `SELECT ` + productColumns + ` FROM products
		ORDER BY created_at, id
		OFFSET $1 LIMIT NULLIF($2::int, 0)`
	findByIDQuery = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	searchQuery   = `SELECT ` + productColumns + ` FROM products
		WHERE name ILIKE $1 ESCAPE '\'
		ORDER BY created_at, id`
	createQuery = `INSERT INTO products (name, description, price, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + productColumns
	updateQuery = `UPDATE products
		SET name = $2, description = $3, price = $4, quantity = $5, updated_at = now()
		WHERE id = $1
		RETURNING ` + productColumns
	deleteQuery = `DELETE FROM products WHERE id = $1`
)

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// FindAll retrieves products ordered by creation time with optional pagination.
func (p *PgStore) FindAll(ctx context.Context, offset, limit int32) ([]Product, error) {
	rows, err := p.db.Query(ctx, findAllQuery, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	rows, err := p.db.Query(ctx, findByIDQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	product, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return &product, nil
}

// SearchByName returns products whose name contains name, ignoring case.
func (p *PgStore) SearchByName(ctx context.Context, name string) ([]Product, error) {
	rows, err := p.db.Query(ctx, searchQuery, likePattern(name))
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}

// Create adds a new product to the system.
// Returns an error if the product cannot be created.
func (p *PgStore) Create(ctx context.Context, params CreateParams) (*Product, error) {
	rows, err := p.db.Query(ctx, createQuery, params.Name, params.Description, params.Price, params.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	product, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &product, nil
}

// Update overwrites name, description, price and quantity of an existing product.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) Update(ctx context.Context, product Product) (*Product, error) {
	rows, err := p.db.Query(ctx, updateQuery, product.ID, product.Name, product.Description, product.Price, product.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	updated, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &updated, nil
}

// DeleteByID removes a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	tag, err := p.db.Exec(ctx, deleteQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

// Ping checks the connection to the database.
func (p *PgStore) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

func scanProduct(row pgx.CollectableRow) (Product, error) {
	var product Product
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Quantity,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	return product, err
}
