package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MohauMushi/FluxStore-App/internal/domain"
	"github.com/MohauMushi/FluxStore-App/internal/repository"
	"github.com/MohauMushi/FluxStore-App/pkg/database"
	apperrors "github.com/MohauMushi/FluxStore-App/pkg/errors"
)

const (
	selectProductSQL = `SELECT document, version FROM products WHERE id = $1`

	listProductsSQL = `SELECT document, version FROM products ORDER BY id`

	listByCategorySQL = `SELECT document, version FROM products WHERE category = $1 ORDER BY id`

	updateProductSQL = `
		UPDATE products
		SET document = $1, category = $2, version = version + 1, updated_at = NOW()
		WHERE id = $3 AND version = $4`

	insertProductSQL = `
		INSERT INTO products (id, category, document, version)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (id) DO NOTHING`

	selectCategoriesSQL = `SELECT document FROM catalog_documents WHERE name = $1`

	upsertCategoriesSQL = `
		INSERT INTO catalog_documents (name, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()`
)

// Store implements repository.CatalogStore with one JSONB document per
// product and a version column for optimistic concurrency.
type Store struct {
	db database.DBTX
}

var _ repository.CatalogStore = (*Store)(nil)

// NewStore creates a PostgreSQL-backed catalog store.
func NewStore(db database.DBTX) *Store {
	return &Store{db: db}
}

// Get retrieves a product by its padded id.
func (s *Store) Get(ctx context.Context, id string) (p *domain.Product, err error) {
	ctx, end := database.TraceQuery(ctx, "GetProduct", selectProductSQL)
	defer func() { end(err) }()

	p, err = scanProduct(s.db.QueryRow(ctx, selectProductSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

// ListByCategory returns the products in category ordered by id.
func (s *Store) ListByCategory(ctx context.Context, category string) (out []*domain.Product, err error) {
	ctx, end := database.TraceQuery(ctx, "ListProductsByCategory", listByCategorySQL)
	defer func() { end(err) }()

	return s.list(ctx, listByCategorySQL, category)
}

// ListAll returns every product ordered by id.
func (s *Store) ListAll(ctx context.Context) (out []*domain.Product, err error) {
	ctx, end := database.TraceQuery(ctx, "ListProducts", listProductsSQL)
	defer func() { end(err) }()

	return s.list(ctx, listProductsSQL)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*domain.Product, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}

// Update runs fn against the current document and writes the result with
// a version check. Zero affected rows means another writer got there first.
func (s *Store) Update(ctx context.Context, id string, fn repository.UpdateFunc) (p *domain.Product, err error) {
	ctx, end := database.TraceQuery(ctx, "UpdateProduct", updateProductSQL)
	defer func() { end(err) }()

	p, err = scanProduct(s.db.QueryRow(ctx, selectProductSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("read product %s: %w", id, err)
	}
	readVersion := p.Version

	if err := fn(p); err != nil {
		return nil, err
	}
	p.ID = id
	p.Recompute()

	doc, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal product %s: %w", id, err)
	}

	ct, err := s.db.Exec(ctx, updateProductSQL, doc, p.Category, id, readVersion)
	if err != nil {
		return nil, fmt.Errorf("update product %s: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return nil, repository.ErrVersionConflict
	}

	p.Version = readVersion + 1
	return p, nil
}

// CreateIfAbsent inserts p at version 1 unless its id already exists.
func (s *Store) CreateIfAbsent(ctx context.Context, p *domain.Product) (created bool, err error) {
	ctx, end := database.TraceQuery(ctx, "CreateProduct", insertProductSQL)
	defer func() { end(err) }()

	c := p.Clone()
	c.Recompute()
	doc, err := json.Marshal(c)
	if err != nil {
		return false, fmt.Errorf("marshal product %s: %w", p.ID, err)
	}

	ct, err := s.db.Exec(ctx, insertProductSQL, c.ID, c.Category, doc)
	if err != nil {
		return false, fmt.Errorf("insert product %s: %w", p.ID, err)
	}
	return ct.RowsAffected() == 1, nil
}

// ListCategories returns the stored category list.
func (s *Store) ListCategories(ctx context.Context) (out []string, err error) {
	ctx, end := database.TraceQuery(ctx, "ListCategories", selectCategoriesSQL)
	defer func() { end(err) }()

	var raw []byte
	err = s.db.QueryRow(ctx, selectCategoriesSQL, repository.CategoriesDocument).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get categories: %w", err)
	}

	var doc domain.CategoryList
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal categories: %w", err)
	}
	if doc.Categories == nil {
		doc.Categories = []string{}
	}
	return doc.Categories, nil
}

// SaveCategories replaces the category list document.
func (s *Store) SaveCategories(ctx context.Context, categories []string) (err error) {
	ctx, end := database.TraceQuery(ctx, "SaveCategories", upsertCategoriesSQL)
	defer func() { end(err) }()

	doc, err := json.Marshal(domain.CategoryList{Categories: categories})
	if err != nil {
		return fmt.Errorf("marshal categories: %w", err)
	}
	if _, err := s.db.Exec(ctx, upsertCategoriesSQL, repository.CategoriesDocument, doc); err != nil {
		return fmt.Errorf("save categories: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		raw     []byte
		version int64
	)
	if err := row.Scan(&raw, &version); err != nil {
		return nil, err
	}

	var p domain.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("unmarshal product document: %w", err)
	}
	p.Version = version
	return &p, nil
}
