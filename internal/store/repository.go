package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrProductNotFound is returned when a product is not found.
var ErrProductNotFound = errors.New("product not found")

type ProductFilters struct {
	Category string
	Search   string
	Limit    int
}

type ProductsRepository struct {
	db *gorm.DB
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{db: db}
}

// ListProducts returns products joined with their vendor, ordered by id.
// Category is an exact match; Search is a case-insensitive substring match
// on name or description.
func (r *ProductsRepository) ListProducts(ctx context.Context, filters ProductFilters) ([]Product, error) {
	query := r.db.WithContext(ctx).
		Model(&Product{}).
		InnerJoins("Vendor")

	if filters.Category != "" {
		query = query.Where("products.category = ?", filters.Category)
	}
	if filters.Search != "" {
		// Fold the term in SQL as well: sqlite's LOWER only maps ASCII, so a
		// term lowered in Go would miss text like "10KΩ".
		pattern := "%" + escapeLike(filters.Search) + "%"
		query = query.Where(
			`(LOWER(products.name) LIKE LOWER(?) ESCAPE '\' OR LOWER(products.description) LIKE LOWER(?) ESCAPE '\')`,
			pattern, pattern,
		)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}

	var products []Product
	if err := query.Order("products.id").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductsRepository) GetByID(ctx context.Context, id uint) (*Product, error) {
	var product Product
	err := r.db.WithContext(ctx).
		Joins("Vendor").
		Where("products.id = ?", id).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err // Other DB error
	}
	return &product, nil
}

// ListCategories returns the distinct non-empty categories, sorted.
func (r *ProductsRepository) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&Product{}).
		Distinct("category").
		Where("category IS NOT NULL AND category <> ''").
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
