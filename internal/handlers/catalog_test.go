package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Brownie44l1/partscan/internal/store"
)

// --- Mock Repo ---

type MockProductRepo struct {
	SourceProducts []store.Product
	Categories     []string
	Err            error

	lastCalledFilters store.ProductFilters
	lastCalledID      uint
}

func (m *MockProductRepo) ListProducts(_ context.Context, filters store.ProductFilters) ([]store.Product, error) {
	m.lastCalledFilters = filters
	if m.Err != nil {
		return nil, m.Err
	}

	var out []store.Product
	for _, p := range m.SourceProducts {
		if filters.Category != "" && p.Category != filters.Category {
			continue
		}
		if filters.Search != "" {
			s := strings.ToLower(filters.Search)
			if !strings.Contains(strings.ToLower(p.Name), s) && !strings.Contains(strings.ToLower(p.Description), s) {
				continue
			}
		}
		out = append(out, p)
		if filters.Limit > 0 && len(out) == filters.Limit {
			break
		}
	}
	return out, nil
}

func (m *MockProductRepo) GetByID(_ context.Context, id uint) (*store.Product, error) {
	m.lastCalledID = id
	if m.Err != nil {
		return nil, m.Err
	}
	for _, p := range m.SourceProducts {
		if p.ID == id {
			product := p
			return &product, nil
		}
	}
	return nil, store.ErrProductNotFound
}

func (m *MockProductRepo) ListCategories(context.Context) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Categories, nil
}

// --- Helpers ---

func newTestProduct(id uint, name, description, category string, price float64) store.Product {
	return store.Product{
		ID:          id,
		Name:        name,
		Description: description,
		Category:    category,
		Price:       decimal.NewFromFloat(price),
		Stock:       10,
		Vendor: store.Vendor{
			Name:     "Techshop BD",
			Email:    "info@techshopbd.com",
			Location: "Dhaka, Bangladesh",
			Rating:   4.8,
		},
	}
}

func manyProducts(n int) []store.Product {
	out := make([]store.Product, n)
	for i := range out {
		out[i] = newTestProduct(uint(i+1), "LED", "", "LED", 5)
	}
	return out
}

func newTestCatalog(repo *MockProductRepo) *CatalogHandler {
	return NewCatalogHandler(repo, zap.NewNop(), Options{ExposeErrors: true})
}

// --- Tests ---

func TestHandleListProducts(t *testing.T) {
	allMockProducts := []store.Product{
		newTestProduct(1, "5mm Red LED", "Super bright red LED", "LED", 50),
		newTestProduct(2, "WS2812B Strip", "Addressable RGB LED strip", "LED", 420),
		newTestProduct(3, "5V SPDT Relay Module", "Single pole double throw relay", "relay", 65),
	}

	testCases := []struct {
		name               string
		url                string
		mockRepoSetup      func() *MockProductRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
		checkRepoCalls     func(t *testing.T, repo *MockProductRepo)
	}{
		{
			name: "Success with default limit",
			url:  "/api/products",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp ProductListResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.True(t, resp.Success)
				assert.Equal(t, 3, resp.Count)
				require.Len(t, resp.Products, 3)
				assert.Equal(t, "5mm Red LED", resp.Products[0].Name)
				assert.Equal(t, 50.0, resp.Products[0].Price)
				assert.Equal(t, "Techshop BD", resp.Products[0].Vendor.Name)
			},
			checkRepoCalls: func(t *testing.T, repo *MockProductRepo) {
				assert.Equal(t, 50, repo.lastCalledFilters.Limit, "Expected default limit 50")
				assert.Empty(t, repo.lastCalledFilters.Category)
				assert.Empty(t, repo.lastCalledFilters.Search)
			},
		},
		{
			name: "Limit above ceiling is clamped",
			url:  "/api/products?limit=200",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: manyProducts(150)}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp ProductListResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, 100, resp.Count)
				assert.Len(t, resp.Products, 100)
			},
			checkRepoCalls: func(t *testing.T, repo *MockProductRepo) {
				assert.Equal(t, 100, repo.lastCalledFilters.Limit, "Limit should be clamped to 100")
			},
		},
		{
			name: "Limit below one is clamped",
			url:  "/api/products?limit=0",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkRepoCalls: func(t *testing.T, repo *MockProductRepo) {
				assert.Equal(t, 1, repo.lastCalledFilters.Limit, "Limit should be clamped to 1")
			},
		},
		{
			name: "Non-integer limit",
			url:  "/api/products?limit=ten",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name: "Filter by category and search",
			url:  "/api/products?category=LED&search=addressable",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp ProductListResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				require.Len(t, resp.Products, 1)
				assert.Equal(t, "WS2812B Strip", resp.Products[0].Name)
			},
			checkRepoCalls: func(t *testing.T, repo *MockProductRepo) {
				assert.Equal(t, "LED", repo.lastCalledFilters.Category)
				assert.Equal(t, "addressable", repo.lastCalledFilters.Search)
			},
		},
		{
			name: "Empty result is an empty array",
			url:  "/api/products?category=shunt",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Contains(t, rec.Body.String(), `"products":[]`)
			},
		},
		{
			name: "Repository error",
			url:  "/api/products",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{Err: errors.New("database is locked")}
			},
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				resp := decodeError(t, rec)
				assert.Equal(t, ErrKindDatabase, resp.Error)
				assert.Equal(t, "database is locked", resp.Detail)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := tc.mockRepoSetup()
			h := newTestCatalog(repo)

			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			rec := httptest.NewRecorder()
			h.HandleListProducts(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
			if tc.checkRepoCalls != nil {
				tc.checkRepoCalls(t, repo)
			}
		})
	}
}

func TestHandleGetProduct(t *testing.T) {
	repo := &MockProductRepo{SourceProducts: []store.Product{
		newTestProduct(7, "10K Potentiometer Linear", "Rotary potentiometer", "potentiometer", 35),
	}}

	testCases := []struct {
		name               string
		id                 string
		err                error
		expectedStatusCode int
	}{
		{"found", "7", nil, http.StatusOK},
		{"unknown id is a client error", "9999", nil, http.StatusNotFound},
		{"non-numeric id", "abc", nil, http.StatusBadRequest},
		{"zero id", "0", nil, http.StatusBadRequest},
		{"database failure", "7", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo.Err = tc.err
			h := newTestCatalog(repo)

			// The mux fills in PathValue; set it directly for a bare handler call.
			req := httptest.NewRequest(http.MethodGet, "/api/products/"+tc.id, nil)
			req.SetPathValue("id", tc.id)
			rec := httptest.NewRecorder()
			h.HandleGetProduct(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
		})
	}

	t.Run("detail includes vendor email", func(t *testing.T) {
		repo.Err = nil
		h := newTestCatalog(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/products/7", nil)
		req.SetPathValue("id", "7")
		rec := httptest.NewRecorder()
		h.HandleGetProduct(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp ProductResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.True(t, resp.Success)
		assert.Equal(t, uint(7), resp.Product.ID)
		assert.Equal(t, 35.0, resp.Product.Price)
		assert.Equal(t, "info@techshopbd.com", resp.Product.Vendor.Email)
		assert.Equal(t, uint(7), repo.lastCalledID)
	})

	t.Run("not found body", func(t *testing.T) {
		repo.Err = nil
		h := newTestCatalog(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/products/42", nil)
		req.SetPathValue("id", "42")
		rec := httptest.NewRecorder()
		h.HandleGetProduct(rec, req)

		resp := decodeError(t, rec)
		assert.False(t, resp.Success)
		assert.Equal(t, "Product not found", resp.Detail)
	})
}

func TestHandleListCategories(t *testing.T) {
	repo := &MockProductRepo{Categories: []string{"LED", "", "relay", "LED", "shunt"}}
	h := newTestCatalog(repo)

	rec := httptest.NewRecorder()
	h.HandleListCategories(rec, httptest.NewRequest(http.MethodGet, "/api/categories", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp CategoriesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"LED", "relay", "shunt"}, resp.Categories)

	repo = &MockProductRepo{}
	rec = httptest.NewRecorder()
	newTestCatalog(repo).HandleListCategories(rec, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	assert.Contains(t, rec.Body.String(), `"categories":[]`)

	repo = &MockProductRepo{Err: errors.New("boom")}
	rec = httptest.NewRecorder()
	newTestCatalog(repo).HandleListCategories(rec, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
