// Package service provides the implementation of pantry business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	producterrors "github.com/abgdnv/pantry/internal/errors"
	"github.com/abgdnv/pantry/internal/store"
	"github.com/abgdnv/pantry/pkg/messaging"
	"github.com/abgdnv/pantry/pkg/messaging/events"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
)

const instrumentationName = "github.com/abgdnv/pantry/internal/service"

// ProductService defines the methods for managing pantry products.
// Ids are accepted as raw strings; a malformed id yields ErrInvalidID.
type ProductService interface {
	// GetProducts returns products ordered by creation time. A limit of 0 means no limit.
	GetProducts(ctx context.Context, offset, limit int32) ([]ProductDto, error)

	// GetProductByID returns ErrProductNotFound if no product exists with the given ID.
	GetProductByID(ctx context.Context, id string) (*ProductDto, error)

	// SearchProductsByName returns products whose name contains name, ignoring case.
	SearchProductsByName(ctx context.Context, name string) ([]ProductDto, error)

	// CreateProduct returns a MissingFieldsError when name, price or quantity is absent.
	CreateProduct(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// UpdateProduct applies the provided fields over the stored product.
	UpdateProduct(ctx context.Context, id string, product ProductUpdateDto) (*ProductDto, error)

	// DeleteProduct returns ErrProductNotFound if nothing was deleted.
	DeleteProduct(ctx context.Context, id string) (*DeleteResult, error)
}

// Service implements ProductService on top of a store.ProductStore.
type Service struct {
	repository store.ProductStore
	publisher  messaging.Publisher
	validate   *validator.Validate
	logger     *slog.Logger

	created metric.Int64Counter
	updated metric.Int64Counter
	deleted metric.Int64Counter
}

// NewService creates a new instance of ProductService with the provided repository.
// Lifecycle events go to publisher; counters are registered on the global meter provider.
func NewService(repo store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	meter := otel.Meter(instrumentationName)
	return &Service{
		repository: repo,
		publisher:  publisher,
		validate:   newValidator(),
		logger:     logger.With("component", "service"),
		created:    newCounter(meter, "pantry_products_created", "Number of products created"),
		updated:    newCounter(meter, "pantry_products_updated", "Number of products updated"),
		deleted:    newCounter(meter, "pantry_products_deleted", "Number of products deleted"),
	}
}

func newCounter(meter metric.Meter, name, description string) metric.Int64Counter {
	counter, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		otel.Handle(err)
	}
	return counter
}

// GetProducts retrieves a page of products and returns them as ProductDTOs.
// Returns an empty slice if no products exist.
func (s *Service) GetProducts(ctx context.Context, offset, limit int32) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return toDtos(products), nil
}

// GetProductByID retrieves a product by its ID and returns it as a ProductDto.
func (s *Service) GetProductByID(ctx context.Context, id string) (*ProductDto, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	product, err := s.repository.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	return toDto(product), nil
}

// SearchProductsByName returns every product whose name contains name.
func (s *Service) SearchProductsByName(ctx context.Context, name string) ([]ProductDto, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, producterrors.ErrEmptySearch
	}
	products, err := s.repository.SearchByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to search products by name %q: %w", name, err)
	}
	return toDtos(products), nil
}

// CreateProduct validates and stores a new product.
func (s *Service) CreateProduct(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	var missing []string
	if product.Name == nil {
		missing = append(missing, "name")
	}
	if product.Price == nil {
		missing = append(missing, "price")
	}
	if product.Quantity == nil {
		missing = append(missing, "quantity")
	}
	if len(missing) > 0 {
		return nil, &producterrors.MissingFieldsError{Fields: missing}
	}
	if err := s.validate.StructCtx(ctx, product); err != nil {
		return nil, toValidationError(err)
	}

	created, err := s.repository.Create(ctx, store.CreateParams{
		Name:        *product.Name,
		Description: product.Description,
		Price:       *product.Price,
		Quantity:    *product.Quantity,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.created.Add(ctx, 1)
	s.publish(ctx, events.ProductCreated(created.ID, created.Name, created.Price, created.Quantity))
	return toDto(created), nil
}

// UpdateProduct merges the provided fields into an existing product and saves it.
func (s *Service) UpdateProduct(ctx context.Context, id string, product ProductUpdateDto) (*ProductDto, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	existing, err := s.repository.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	if product.isEmpty() {
		return nil, producterrors.ErrEmptyUpdate
	}
	if err := s.validate.StructCtx(ctx, product); err != nil {
		return nil, toValidationError(err)
	}

	merged := *existing
	if product.Name != nil {
		merged.Name = *product.Name
	}
	if product.Description != nil {
		merged.Description = product.Description
	}
	if product.Price != nil {
		merged.Price = *product.Price
	}
	if product.Quantity != nil {
		merged.Quantity = *product.Quantity
	}

	updated, err := s.repository.Update(ctx, merged)
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}

	s.updated.Add(ctx, 1)
	s.publish(ctx, events.ProductUpdated(updated.ID, updated.Name, updated.Price, updated.Quantity))
	return toDto(updated), nil
}

// DeleteProduct removes a product and returns a confirmation message.
func (s *Service) DeleteProduct(ctx context.Context, id string) (*DeleteResult, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if err := s.repository.DeleteByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("failed to delete product with ID %s: %w", id, err)
	}

	s.deleted.Add(ctx, 1)
	s.publish(ctx, events.ProductDeleted(productID))
	return &DeleteResult{
		Message: fmt.Sprintf("Product with id %s has been successfully deleted", id),
	}, nil
}

// publish sends a lifecycle event with the current trace context.
// Failures are logged; the change is already committed.
func (s *Service) publish(ctx context.Context, event events.ProductEvent) {
	event.Carrier = make(map[string]string)
	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(event.Carrier))
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish product event",
			"subject", event.Subject(), "product_id", event.ProductID, "error", err)
	}
}

func parseID(id string) (uuid.UUID, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s", producterrors.ErrInvalidID, id)
	}
	return productID, nil
}
