package service

import (
	"time"

	"github.com/abgdnv/pantry/internal/store"
	"github.com/shopspring/decimal"
)

func init() {
	// prices are rendered as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// ProductDto is the representation of a product returned to clients.
type ProductDto struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int32           `json:"quantity"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductCreateDto carries a new product. A nil field means the client did not send it.
type ProductCreateDto struct {
	Name        *string          `json:"name"        validate:"omitnil,min=1,max=100"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"       validate:"omitnil,money"`
	Quantity    *int32           `json:"quantity"    validate:"omitnil,min=0"`
}

// ProductUpdateDto carries a partial update. Only non-nil fields are applied.
type ProductUpdateDto struct {
	Name        *string          `json:"name"        validate:"omitnil,min=1,max=100"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"       validate:"omitnil,money"`
	Quantity    *int32           `json:"quantity"    validate:"omitnil,min=0"`
}

func (d ProductUpdateDto) isEmpty() bool {
	return d.Name == nil && d.Description == nil && d.Price == nil && d.Quantity == nil
}

// DeleteResult confirms a deletion.
type DeleteResult struct {
	Message string `json:"message"`
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID.String(),
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Quantity:    product.Quantity,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

func toDtos(products []store.Product) []ProductDto {
	dtos := make([]ProductDto, len(products))
	for i := range products {
		dtos[i] = *toDto(&products[i])
	}
	return dtos
}
