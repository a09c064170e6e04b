package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/Brownie44l1/partscan/internal/store"
)

const (
	defaultProductLimit = 50
	maxProductLimit     = 100
)

type ProductProvider interface {
	ListProducts(ctx context.Context, filters store.ProductFilters) ([]store.Product, error)
	GetByID(ctx context.Context, id uint) (*store.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
}

type CatalogHandler struct {
	repo   ProductProvider
	logger *zap.Logger
	opts   Options
}

func NewCatalogHandler(repo ProductProvider, logger *zap.Logger, opts Options) *CatalogHandler {
	return &CatalogHandler{
		repo:   repo,
		logger: logger,
		opts:   opts,
	}
}

// HandleListProducts serves GET /api/products?category=&search=&limit=.
func (h *CatalogHandler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := defaultProductLimit
	if lStr := q.Get("limit"); lStr != "" {
		l, err := strconv.Atoi(lStr)
		if err != nil {
			clientError(w, http.StatusBadRequest, ErrKindBadRequest, "limit must be an integer")
			return
		}
		switch {
		case l < 1:
			limit = 1
		case l > maxProductLimit:
			limit = maxProductLimit
		default:
			limit = l
		}
	}

	filters := store.ProductFilters{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Limit:    limit,
	}

	res, err := h.repo.ListProducts(r.Context(), filters)
	if err != nil {
		serverError(w, h.logger, h.opts, ErrKindDatabase, err)
		return
	}

	products := make([]ProductSummary, len(res))
	for i, p := range res {
		products[i] = ProductSummary{
			ID:           p.ID,
			Name:         p.Name,
			Description:  p.Description,
			Category:     p.Category,
			Price:        p.Price.InexactFloat64(),
			Stock:        p.Stock,
			Manufacturer: p.Manufacturer,
			ImageURL:     p.ImageURL,
			Vendor: VendorSummary{
				Name:     p.Vendor.Name,
				Location: p.Vendor.Location,
				Rating:   p.Vendor.Rating,
			},
		}
	}

	writeJSON(w, http.StatusOK, ProductListResponse{
		Success:  true,
		Count:    len(products),
		Products: products,
	})
}

// HandleGetProduct serves GET /api/products/{id}.
func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil || id == 0 {
		clientError(w, http.StatusBadRequest, ErrKindBadRequest, "product id must be a positive integer")
		return
	}

	product, err := h.repo.GetByID(r.Context(), uint(id))
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			clientError(w, http.StatusNotFound, ErrKindNotFound, "Product not found")
			return
		}
		serverError(w, h.logger, h.opts, ErrKindDatabase, err)
		return
	}

	writeJSON(w, http.StatusOK, ProductResponse{
		Success: true,
		Product: ProductDetail{
			ID:           product.ID,
			Name:         product.Name,
			Description:  product.Description,
			Category:     product.Category,
			Price:        product.Price.InexactFloat64(),
			Stock:        product.Stock,
			Manufacturer: product.Manufacturer,
			ImageURL:     product.ImageURL,
			Vendor: VendorDetail{
				Name:     product.Vendor.Name,
				Location: product.Vendor.Location,
				Rating:   product.Vendor.Rating,
				Email:    product.Vendor.Email,
			},
		},
	})
}

// HandleListCategories serves GET /api/categories.
func (h *CatalogHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	res, err := h.repo.ListCategories(r.Context())
	if err != nil {
		serverError(w, h.logger, h.opts, ErrKindDatabase, err)
		return
	}

	categories := make([]string, 0, len(res))
	seen := make(map[string]struct{}, len(res))
	for _, c := range res {
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		categories = append(categories, c)
	}

	writeJSON(w, http.StatusOK, CategoriesResponse{Success: true, Categories: categories})
}
