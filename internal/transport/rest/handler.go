// Package rest provides HTTP handlers for pantry product operations.
package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	producterrors "github.com/abgdnv/pantry/internal/errors"
	"github.com/abgdnv/pantry/internal/service"
	"github.com/abgdnv/pantry/pkg/web"
	"github.com/go-chi/chi/v5"
)

const readinessTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	service   service.ProductService
	readiness Pinger
	logger    *slog.Logger
}

// NewHandler creates a new pantry Handler. readiness may be nil, in which case /readyz always succeeds.
func NewHandler(service service.ProductService, readiness Pinger, logger *slog.Logger) *Handler {
	return &Handler{
		service:   service,
		readiness: readiness,
		logger:    logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the pantry service.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/pantry/products", func(r chi.Router) {
		r.Get("/", h.GetProducts)
		r.Post("/", h.CreateProduct)
		r.Get("/search/{name}", h.SearchProducts)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetProductByID)
			r.Put("/", h.UpdateProduct)
			r.Delete("/", h.DeleteProduct)
		})
	})

	r.Get("/healthz", h.HealthCheck)
	r.Get("/readyz", h.ReadinessCheck)
}

// GetProducts lists products. offset and limit are optional; limit 0 means all.
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	offset, ok := web.ParseOptionalGte(r, w, h.logger, "offset", 0)
	if !ok {
		return
	}
	limit, ok := web.ParseOptionalGte(r, w, h.logger, "limit", 0)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to list products", "offset", offset, "limit", limit)
	list, err := h.service.GetProducts(r.Context(), offset, limit)
	if err != nil {
		h.respondServiceError(w, r, err, "", "Failed to fetch products")
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// GetProductByID retrieves a product by its ID.
func (h *Handler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	h.logger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.GetProductByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, id, fmt.Sprintf("Failed to retrieve product with id %s", id))
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// SearchProducts returns products whose name contains the path parameter.
func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	h.logger.DebugContext(r.Context(), "Received request to search products", "name", name)
	list, err := h.service.SearchProductsByName(r.Context(), name)
	if err != nil {
		h.respondServiceError(w, r, err, "", "Failed to search products")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// CreateProduct handles the creation of a new product.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var dto service.ProductCreateDto
	if err := web.DecodeJSON(w, r, &dto); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	created, err := h.service.CreateProduct(r.Context(), dto)
	if err != nil {
		h.respondServiceError(w, r, err, "", "Failed to create product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondJSON(w, h.logger, http.StatusCreated, created)
}

// UpdateProduct applies a partial update to a product.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var dto service.ProductUpdateDto
	if err := web.DecodeJSON(w, r, &dto); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	updated, err := h.service.UpdateProduct(r.Context(), id, dto)
	if err != nil {
		h.respondServiceError(w, r, err, id, fmt.Sprintf("Failed to update product with id %s", id))
		return
	}
	h.logger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID)
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

// DeleteProduct deletes a product by its ID and confirms the deletion.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	result, err := h.service.DeleteProduct(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, id, fmt.Sprintf("Failed to delete product with id %s", id))
		return
	}
	h.logger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	web.RespondJSON(w, h.logger, http.StatusOK, result)
}

// HealthCheck is a simple liveness endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadinessCheck reports 503 while the store is unreachable.
func (h *Handler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if h.readiness != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := h.readiness.Ping(ctx); err != nil {
			h.logger.WarnContext(r.Context(), "Readiness check failed", "error", err)
			web.RespondJSON(w, h.logger, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	web.RespondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// respondServiceError logs err and maps it to a status code.
// Internal failures are rendered with failMsg; their details stay in the log.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, id, failMsg string) {
	var invalid *producterrors.ValidationError
	switch {
	case errors.As(err, &invalid):
		h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", invalid.Fields)
		web.RespondValidationErrors(w, h.logger, invalid.Fields)
	case errors.Is(err, producterrors.ErrProductNotFound):
		h.logger.WarnContext(r.Context(), "Product not found", "ID", id)
		web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with id %s not found", id))
	case producterrors.IsClientError(err):
		h.logger.WarnContext(r.Context(), "Rejected request", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), failMsg, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, failMsg)
	}
}
