package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lumiere-backend/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// ErrNotFound signals that a referenced row does not exist. Services
// translate it into the NOT_FOUND error class.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// ProductFilter narrows the product list. Zero values mean "no filter".
type ProductFilter struct {
	CategorySlug string
	Search       string
	Material     string
	Gemstone     string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
}

const productSelect = `
	SELECT p.*, COALESCE(c.name, '') AS category_name, COALESCE(c.slug, '') AS category_slug
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id`

// productListQuery builds the filtered product listing. categoryID <= 0
// means the category filter is absent (or its slug did not resolve).
// Ordering by id keeps identical filters deterministic.
func productListQuery(f ProductFilter, categoryID int64) (string, []interface{}) {
	query := productSelect + `
	WHERE p.is_active`
	var args []interface{}

	add := func(cond string, val interface{}) {
		args = append(args, val)
		query += fmt.Sprintf(" AND "+cond, len(args))
	}

	if categoryID > 0 {
		add("p.category_id = $%d", categoryID)
	}
	if f.MinPrice != nil {
		add("p.price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("p.price <= $%d", *f.MaxPrice)
	}
	if f.Material != "" {
		add("EXISTS (SELECT 1 FROM unnest(p.materials) m WHERE m ILIKE '%%' || $%d || '%%')", f.Material)
	}
	if f.Gemstone != "" {
		add("EXISTS (SELECT 1 FROM unnest(p.gemstones) g WHERE g ILIKE '%%' || $%d || '%%')", f.Gemstone)
	}
	if f.Search != "" {
		args = append(args, f.Search)
		n := len(args)
		query += fmt.Sprintf(" AND (p.name ILIKE '%%' || $%d || '%%' OR p.description ILIKE '%%' || $%d || '%%')", n, n)
	}

	query += " ORDER BY p.id"
	return query, args
}

// ListProducts retrieves active products matching the filter. An unresolved
// category slug drops the category filter rather than failing.
func (s *Store) ListProducts(ctx context.Context, f ProductFilter) ([]models.ProductWithCategory, error) {
	var categoryID int64
	if f.CategorySlug != "" {
		category, err := s.GetCategoryBySlug(ctx, f.CategorySlug)
		if err != nil {
			return nil, err
		}
		if category != nil {
			categoryID = category.ID
		}
	}

	query, args := productListQuery(f, categoryID)

	products := []models.ProductWithCategory{}
	err := s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// GetFeaturedProducts retrieves up to limit featured active products
func (s *Store) GetFeaturedProducts(ctx context.Context, limit int) ([]models.ProductWithCategory, error) {
	products := []models.ProductWithCategory{}
	err := s.db.SelectContext(ctx, &products,
		productSelect+" WHERE p.is_featured AND p.is_active ORDER BY p.id LIMIT $1", limit)
	return products, err
}

// GetProductByID retrieves a product joined with its category, active or not
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.ProductWithCategory, error) {
	var product models.ProductWithCategory
	err := s.db.GetContext(ctx, &product, productSelect+" WHERE p.id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductsByIDs retrieves multiple products by IDs
func (s *Store) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM products WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var products []models.Product
	err = s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// GetCategories retrieves all categories
func (s *Store) GetCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := s.db.SelectContext(ctx, &categories, "SELECT * FROM categories ORDER BY id")
	return categories, err
}

// GetCategoryBySlug retrieves a category by slug, or nil when the slug does
// not resolve (callers decide whether that is an error).
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := s.db.GetContext(ctx, &category, "SELECT * FROM categories WHERE slug = $1", slug)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}
