package store

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	//go:embed seeddata/vendors.csv
	defaultVendorsCSV []byte
	//go:embed seeddata/products.csv
	defaultProductsCSV []byte
)

type vendorRow struct {
	Name     string  `csv:"name"`
	Email    string  `csv:"email"`
	Location string  `csv:"location"`
	Rating   float64 `csv:"rating"`
}

type productRow struct {
	Name         string `csv:"name"`
	Description  string `csv:"description"`
	Category     string `csv:"category"`
	Price        string `csv:"price"`
	Stock        int    `csv:"stock"`
	Manufacturer string `csv:"manufacturer"`
	ImageURL     string `csv:"image_url"`
	VendorEmail  string `csv:"vendor_email"`
}

type SeedResult struct {
	Vendors  int
	Products int
	Skipped  bool
}

// SeedDefaults loads the bundled sample vendors and products.
func SeedDefaults(ctx context.Context, db *gorm.DB) (SeedResult, error) {
	return Seed(ctx, db, defaultVendorsCSV, defaultProductsCSV)
}

// Seed inserts vendors and then products from CSV. Products reference their
// vendor by email. Nothing is written when any vendor already exists.
func Seed(ctx context.Context, db *gorm.DB, vendorsCSV, productsCSV []byte) (SeedResult, error) {
	var vendorRows []*vendorRow
	if err := gocsv.UnmarshalBytes(vendorsCSV, &vendorRows); err != nil {
		return SeedResult{}, fmt.Errorf("failed to parse vendors CSV: %w", err)
	}
	var productRows []*productRow
	if err := gocsv.UnmarshalBytes(productsCSV, &productRows); err != nil {
		return SeedResult{}, fmt.Errorf("failed to parse products CSV: %w", err)
	}

	var result SeedResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&Vendor{}).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			result.Skipped = true
			return nil
		}

		vendors := make([]Vendor, 0, len(vendorRows))
		for _, row := range vendorRows {
			if err := validateVendor(row); err != nil {
				return err
			}
			vendors = append(vendors, Vendor{
				Name:     row.Name,
				Email:    strings.ToLower(row.Email),
				Location: row.Location,
				Rating:   row.Rating,
			})
		}
		if len(vendors) > 0 {
			if err := tx.Create(&vendors).Error; err != nil {
				return fmt.Errorf("insert vendors: %w", err)
			}
		}

		byEmail := make(map[string]uint, len(vendors))
		for _, v := range vendors {
			byEmail[v.Email] = v.ID
		}

		products := make([]Product, 0, len(productRows))
		for i, row := range productRows {
			p, err := toProduct(row, byEmail)
			if err != nil {
				return fmt.Errorf("product row %d: %w", i+1, err)
			}
			products = append(products, p)
		}
		if len(products) > 0 {
			if err := tx.Omit("Vendor").Create(&products).Error; err != nil {
				return fmt.Errorf("insert products: %w", err)
			}
		}

		result.Vendors = len(vendors)
		result.Products = len(products)
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}
	return result, nil
}

func validateVendor(row *vendorRow) error {
	if row.Name == "" {
		return fmt.Errorf("vendor name is required")
	}
	if row.Email == "" {
		return fmt.Errorf("vendor %s: email is required", row.Name)
	}
	if row.Rating < 0 || row.Rating > 5 {
		return fmt.Errorf("vendor %s: rating %.1f out of range", row.Name, row.Rating)
	}
	return nil
}

func toProduct(row *productRow, vendors map[string]uint) (Product, error) {
	if row.Name == "" {
		return Product{}, fmt.Errorf("product name is required")
	}
	price, err := decimal.NewFromString(row.Price)
	if err != nil {
		return Product{}, fmt.Errorf("%s: invalid price %q: %w", row.Name, row.Price, err)
	}
	if price.IsNegative() {
		return Product{}, fmt.Errorf("%s: price cannot be negative", row.Name)
	}
	if row.Stock < 0 {
		return Product{}, fmt.Errorf("%s: stock cannot be negative", row.Name)
	}
	vendorID, ok := vendors[strings.ToLower(row.VendorEmail)]
	if !ok {
		return Product{}, fmt.Errorf("%s: unknown vendor %q", row.Name, row.VendorEmail)
	}

	return Product{
		Name:         row.Name,
		Description:  row.Description,
		Category:     row.Category,
		Price:        price,
		Stock:        row.Stock,
		Manufacturer: row.Manufacturer,
		ImageURL:     row.ImageURL,
		VendorID:     vendorID,
	}, nil
}
