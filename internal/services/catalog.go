package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"

	"github.com/KmSasikumar/EcommProductRecommender2/pkg/models"
)

// DatabaseQuerier is the subset of pgxpool.Pool the services need; pgxmock
// satisfies it in tests.
type DatabaseQuerier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// CatalogService owns product storage and substring search. Search order is
// canonical (id ascending) so results are stable across calls.
type CatalogService struct {
	db     DatabaseQuerier
	folder cases.Caser
	logger *logrus.Logger
}

func NewCatalogService(db DatabaseQuerier, logger *logrus.Logger) *CatalogService {
	return &CatalogService{
		db:     db,
		folder: cases.Fold(),
		logger: logger,
	}
}

// Find returns products matching the query by case-folded substring over
// name, category, and tags. An empty query returns the full catalog.
func (s *CatalogService) Find(ctx context.Context, query string) ([]models.Product, error) {
	var (
		rows pgx.Rows
		err  error
	)

	if query == "" {
		rows, err = s.db.Query(ctx, `
			SELECT id, name, price, category, image_urls, tags
			FROM products
			ORDER BY id`)
	} else {
		pattern := "%" + s.folder.String(query) + "%"
		rows, err = s.db.Query(ctx, `
			SELECT id, name, price, category, image_urls, tags
			FROM products
			WHERE lower(name) LIKE $1
			   OR lower(category) LIKE $1
			   OR lower(tags::text) LIKE $1
			ORDER BY id`, pattern)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var (
			p             models.Product
			imageURLsJSON []byte
			tagsJSON      []byte
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Category, &imageURLsJSON, &tagsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}

		if len(imageURLsJSON) > 0 {
			if err := json.Unmarshal(imageURLsJSON, &p.ImageURLs); err != nil {
				s.logger.WithError(err).WithField("product_id", p.ID).Warn("Malformed image_urls, using empty list")
				p.ImageURLs = nil
			}
		}
		if len(tagsJSON) > 0 {
			if err := json.Unmarshal(tagsJSON, &p.Tags); err != nil {
				s.logger.WithError(err).WithField("product_id", p.ID).Warn("Malformed tags, using empty list")
				p.Tags = nil
			}
		}

		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}

	return products, nil
}

// Upsert inserts a product or replaces an existing one with the same id.
func (s *CatalogService) Upsert(ctx context.Context, p models.Product) error {
	imageURLsJSON, err := json.Marshal(p.ImageURLs)
	if err != nil {
		return fmt.Errorf("failed to marshal image urls: %w", err)
	}
	tagsJSON, err := json.Marshal(p.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO products (id, name, price, category, image_urls, tags)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			category = EXCLUDED.category,
			image_urls = EXCLUDED.image_urls,
			tags = EXCLUDED.tags`,
		p.ID, p.Name, p.Price, p.Category, imageURLsJSON, tagsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": p.ID,
		"category":   p.Category,
	}).Info("Product stored")

	return nil
}
