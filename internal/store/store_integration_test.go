package store

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	perrors "github.com/abgdnv/pantry/internal/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const skipIntegrationTests = "PANTRY_SKIP_INTEGRATION_TESTS"

// ProductStoreSuite runs the same contract tests against every ProductStore implementation.
type ProductStoreSuite struct {
	suite.Suite
	driver      string                      // "pgx" or "gorm"
	pgContainer *postgres.PostgresContainer // PostgreSQL container for the suite
	dbPool      *pgxpool.Pool               // pool used for truncation between tests
	store       ProductStore                // implementation under test
	logger      *slog.Logger
	ctx         context.Context
}

// SetupSuite starts PostgreSQL, creates the schema and builds the store under test.
func (s *ProductStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// 1. Start a PostgreSQL container and wait for it to accept connections.
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("pantry"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	// 2. Get the connection string from the container
	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgxpool")
	for i := range 10 {
		s.logger.Info("Pinging PostgreSQL database", "attempt", i+1)
		if err = s.dbPool.Ping(s.ctx); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	// 3. Create the schema the way the selected driver does at startup
	switch s.driver {
	case "gorm":
		gdb, err := gorm.Open(gormpg.Open(connStr), &gorm.Config{})
		require.NoError(s.T(), err, "Failed to open gorm connection")
		gs := NewGormStore(gdb)
		require.NoError(s.T(), gs.AutoMigrate(s.ctx), "Failed to auto migrate")
		s.store = gs
	default:
		require.NoError(s.T(), Migrate(connStr), "Failed to apply migrations")
		s.store = NewPgStore(s.dbPool)
	}
	s.logger.Info("Initialization complete for ProductStoreSuite", "driver", s.driver)
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *ProductStoreSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		}
	}
}

// SetupTest empties the products table before each test.
func (s *ProductStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE products")
	require.NoError(s.T(), err, "Failed to truncate products table")
}

func TestPgStoreIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, &ProductStoreSuite{driver: "pgx"})
}

func TestGormStoreIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, &ProductStoreSuite{driver: "gorm"})
}

// createTestProduct is a helper function to create a product for testing purposes.
func (s *ProductStoreSuite) createTestProduct(name string, price string, quantity int32) *Product {
	s.T().Helper()
	product, err := s.store.Create(s.ctx, CreateParams{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Quantity: quantity,
	})
	require.NoError(s.T(), err, "createTestProduct helper failed to create product")
	return product
}

func (s *ProductStoreSuite) TestCreateAndFindByID() {
	description := "free range"
	created, err := s.store.Create(s.ctx, CreateParams{
		Name:        "Eggs",
		Description: &description,
		Price:       decimal.RequireFromString("3.50"),
		Quantity:    12,
	})
	require.NoError(s.T(), err)
	require.NotEqual(s.T(), uuid.Nil, created.ID, "ID should be generated by the store")
	require.False(s.T(), created.CreatedAt.IsZero(), "CreatedAt should be set")

	fetched, err := s.store.FindByID(s.ctx, created.ID)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), created.ID, fetched.ID)
	assert.Equal(s.T(), "Eggs", fetched.Name)
	require.NotNil(s.T(), fetched.Description)
	assert.Equal(s.T(), description, *fetched.Description)
	assert.True(s.T(), decimal.RequireFromString("3.5").Equal(fetched.Price))
	assert.Equal(s.T(), int32(12), fetched.Quantity)
}

func (s *ProductStoreSuite) TestFindByID_NotFound() {
	_, err := s.store.FindByID(s.ctx, uuid.New())
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *ProductStoreSuite) TestFindAll() {
	s.createTestProduct("Flour", "2", 3)
	s.createTestProduct("Sugar", "1.25", 4)
	s.createTestProduct("Salt", "0.99", 1)

	all, err := s.store.FindAll(s.ctx, 0, 0)
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 3, "limit 0 returns every product")
	assert.Equal(s.T(), "Flour", all[0].Name)

	page, err := s.store.FindAll(s.ctx, 1, 1)
	require.NoError(s.T(), err)
	require.Len(s.T(), page, 1)
	assert.Equal(s.T(), "Sugar", page[0].Name)
}

func (s *ProductStoreSuite) TestFindAll_Empty() {
	all, err := s.store.FindAll(s.ctx, 0, 0)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), all)
}

func (s *ProductStoreSuite) TestSearchByName() {
	s.createTestProduct("Brown Eggs", "4", 6)
	s.createTestProduct("eggplant", "1", 2)
	s.createTestProduct("Milk", "1", 1)
	s.createTestProduct("100% Juice", "2", 1)

	found, err := s.store.SearchByName(s.ctx, "EGG")
	require.NoError(s.T(), err)
	require.Len(s.T(), found, 2)
	assert.Equal(s.T(), "Brown Eggs", found[0].Name)
	assert.Equal(s.T(), "eggplant", found[1].Name)

	literal, err := s.store.SearchByName(s.ctx, "%")
	require.NoError(s.T(), err)
	require.Len(s.T(), literal, 1, "wildcards are matched literally")
	assert.Equal(s.T(), "100% Juice", literal[0].Name)
}

func (s *ProductStoreSuite) TestUpdate() {
	created := s.createTestProduct("Rice", "2.10", 5)
	toUpdate := *created
	toUpdate.Quantity = 7

	updated, err := s.store.Update(s.ctx, toUpdate)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), created.ID, updated.ID)
	assert.Equal(s.T(), "Rice", updated.Name)
	assert.True(s.T(), created.Price.Equal(updated.Price))
	assert.Equal(s.T(), int32(7), updated.Quantity)
	assert.False(s.T(), updated.UpdatedAt.Before(created.UpdatedAt))
}

func (s *ProductStoreSuite) TestUpdate_NotFound() {
	_, err := s.store.Update(s.ctx, Product{ID: uuid.New(), Name: "Ghost", Price: decimal.NewFromInt(1)})
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *ProductStoreSuite) TestDeleteByID() {
	created := s.createTestProduct("Butter", "3", 2)

	require.NoError(s.T(), s.store.DeleteByID(s.ctx, created.ID))

	_, err := s.store.FindByID(s.ctx, created.ID)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
	err = s.store.DeleteByID(s.ctx, created.ID)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound, "second delete reports not found")
}

func (s *ProductStoreSuite) TestPing() {
	require.NoError(s.T(), s.store.Ping(s.ctx))
}

func (s *ProductStoreSuite) TestSchema_ConstraintsAndIndex() {
	var checks []string
	rows, err := s.dbPool.Query(s.ctx,
		`SELECT conname FROM pg_constraint WHERE conrelid = 'products'::regclass AND contype = 'c' ORDER BY conname`)
	require.NoError(s.T(), err)
	for rows.Next() {
		var name string
		require.NoError(s.T(), rows.Scan(&name))
		checks = append(checks, name)
	}
	require.NoError(s.T(), rows.Err())
	assert.Equal(s.T(), []string{"products_price_check", "products_quantity_check"}, checks)

	var indexDef string
	err = s.dbPool.QueryRow(s.ctx,
		`SELECT indexdef FROM pg_indexes WHERE tablename = 'products' AND indexname = 'idx_products_created_at'`).
		Scan(&indexDef)
	require.NoError(s.T(), err)
	assert.Contains(s.T(), indexDef, "(created_at, id)")

	_, err = s.dbPool.Exec(s.ctx, `INSERT INTO products (name, price, quantity) VALUES ('Rice', -1, 1)`)
	assert.Error(s.T(), err, "negative price is rejected by the table")
	_, err = s.dbPool.Exec(s.ctx, `INSERT INTO products (name, price, quantity) VALUES ('Rice', 1, -1)`)
	assert.Error(s.T(), err, "negative quantity is rejected by the table")
}
