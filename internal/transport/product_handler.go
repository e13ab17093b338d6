package transport

import (
	"fmt"
	"net/http"
	"strconv"

	"inventory-api/internal/dto"
	"inventory-api/internal/middleware"
	"inventory-api/internal/service"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const productsPath = "/api/products"

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes. writeMiddleware guards the
// mutating routes; pass nil to leave them open.
func (h *ProductHandler) RegisterRoutes(r chi.Router, writeMiddleware func(http.Handler) http.Handler) {
	r.Route(productsPath, func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{id}", h.GetProduct)

		r.Group(func(r chi.Router) {
			if writeMiddleware != nil {
				r.Use(writeMiddleware)
			}
			r.Post("/", h.CreateProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
		})
	})
}

// ListProducts returns all products, newest first
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.ListAll(r.Context())
	if err != nil {
		h.internalError(w, r, err, "an error occurred while retrieving products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// GetProduct returns a single product
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	product, err := h.productService.GetByID(r.Context(), id)
	if err != nil {
		h.internalError(w, r, err, "an error occurred while retrieving the product", zap.Int64("product_id", id))
		return
	}
	if product == nil {
		respondNotFound(w, id)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// CreateProduct creates a product and points Location at it
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	product, err := h.productService.Create(r.Context(), input)
	if err != nil {
		h.internalError(w, r, err, "an error occurred while creating the product")
		return
	}

	h.logger.Info("Product created", zap.Int64("product_id", product.ID))

	w.Header().Set("Location", fmt.Sprintf("%s/%d", productsPath, product.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct replaces the mutable fields of an existing product
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	input, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	product, err := h.productService.Update(r.Context(), id, input)
	if err != nil {
		h.internalError(w, r, err, "an error occurred while updating the product", zap.Int64("product_id", id))
		return
	}
	if product == nil {
		respondNotFound(w, id)
		return
	}

	h.logger.Info("Product updated", zap.Int64("product_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct permanently removes a product
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	deleted, err := h.productService.Delete(r.Context(), id)
	if err != nil {
		h.internalError(w, r, err, "an error occurred while deleting the product", zap.Int64("product_id", id))
		return
	}
	if !deleted {
		respondNotFound(w, id)
		return
	}

	h.logger.Info("Product deleted", zap.Int64("product_id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.logger.Debug("Invalid product ID", zap.String("id", raw), zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return 0, false
	}
	return id, true
}

func (h *ProductHandler) decodeProduct(w http.ResponseWriter, r *http.Request) (dto.Product, bool) {
	var input dto.Product

	if err := middleware.DecodeAndValidate(r, &input); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return input, false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return input, false
	}

	return input, true
}

// internalError logs the cause and answers with a generic 500 that leaks no detail
func (h *ProductHandler) internalError(w http.ResponseWriter, r *http.Request, err error, message string, fields ...zap.Field) {
	fields = append(fields,
		zap.Error(err),
		zap.String("request_id", chimiddleware.GetReqID(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
	h.logger.Error(message, fields...)

	middleware.RespondWithError(w, http.StatusInternalServerError, message)
}

func respondNotFound(w http.ResponseWriter, id int64) {
	middleware.RespondWithError(w, http.StatusNotFound, fmt.Sprintf("product with ID %d not found", id))
}
