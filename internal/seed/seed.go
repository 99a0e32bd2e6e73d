// Package seed fills an empty catalog with the store's starter products.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"scango/internal/apperrors"
	"scango/internal/models"
	"scango/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Item is one catalog entry as written in YAML.
type Item struct {
	Name           string `yaml:"name"`
	Price          string `yaml:"price"`
	ScanCode       string `yaml:"scan_code"`
	AgeRestriction *int   `yaml:"age_restriction"`
	Stock          *int   `yaml:"stock"`
}

// Catalog is the YAML document.
type Catalog struct {
	Products []Item `yaml:"products"`
}

// Parse decodes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return &c, nil
}

// Load reads the catalog at path, or the built-in catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(defaultCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Build converts the entries to catalog products.
func (c *Catalog) Build() ([]models.Product, error) {
	out := make([]models.Product, 0, len(c.Products))
	for _, item := range c.Products {
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			return nil, fmt.Errorf("price of %s: %w", item.Name, err)
		}
		out = append(out, models.Product{
			Name:           item.Name,
			Price:          price,
			ScanCode:       item.ScanCode,
			AgeRestriction: item.AgeRestriction,
			Stock:          item.Stock,
		})
	}
	return out, nil
}

// Apply creates every product whose scan code is not yet in the catalog and
// returns how many were added.
func Apply(ctx context.Context, repo repositories.ProductRepository, c *Catalog, logger *zap.Logger) (int, error) {
	products, err := c.Build()
	if err != nil {
		return 0, err
	}
	added := 0
	for i := range products {
		p := &products[i]
		_, err := repo.GetByScanCode(ctx, p.ScanCode)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return added, err
		}
		if err := repo.Create(ctx, p); err != nil {
			return added, fmt.Errorf("seed %s: %w", p.Name, err)
		}
		logger.Info("seeded product", zap.String("name", p.Name), zap.String("id", p.ID))
		added++
	}
	return added, nil
}
