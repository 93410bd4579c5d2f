package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MohauMushi/FluxStore-App/internal/domain"
	"github.com/MohauMushi/FluxStore-App/internal/repository"
	"github.com/MohauMushi/FluxStore-App/pkg/database"
	apperrors "github.com/MohauMushi/FluxStore-App/pkg/errors"
)

// Key layout. Index sets use score 0 so members come back in lexical order,
// which is id order for padded ids.
const (
	productKeyPrefix  = "catalog:product:"
	categoryKeyPrefix = "catalog:category:"
	allProductsKey    = "catalog:products"
	categoriesKey     = "catalog:documents:" + repository.CategoriesDocument

	fieldDocument = "document"
	fieldVersion  = "version"
)

func productKey(id string) string        { return productKeyPrefix + id }
func categoryKey(category string) string { return categoryKeyPrefix + category }

// Store implements repository.CatalogStore on Redis hashes. Updates use
// WATCH/MULTI so a concurrent write aborts the transaction.
type Store struct {
	client *goredis.Client
}

var _ repository.CatalogStore = (*Store)(nil)

// NewStore creates a Redis-backed catalog store.
func NewStore(client *goredis.Client) *Store {
	return &Store{client: client}
}

// Get retrieves a product by its padded id.
func (s *Store) Get(ctx context.Context, id string) (p *domain.Product, err error) {
	ctx, end := database.TraceOp(ctx, database.SystemRedis, "GetProduct", "HMGET")
	defer func() { end(err) }()

	return readProduct(ctx, s.client, id)
}

// ListByCategory returns the products in category ordered by id.
func (s *Store) ListByCategory(ctx context.Context, category string) (out []*domain.Product, err error) {
	ctx, end := database.TraceOp(ctx, database.SystemRedis, "ListProductsByCategory", "ZRANGE")
	defer func() { end(err) }()

	return s.listIndex(ctx, categoryKey(category))
}

// ListAll returns every product ordered by id.
func (s *Store) ListAll(ctx context.Context) (out []*domain.Product, err error) {
	ctx, end := database.TraceOp(ctx, database.SystemRedis, "ListProducts", "ZRANGE")
	defer func() { end(err) }()

	return s.listIndex(ctx, allProductsKey)
}

func (s *Store) listIndex(ctx context.Context, index string) ([]*domain.Product, error) {
	ids, err := s.client.ZRange(ctx, index, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read index %s: %w", index, err)
	}

	cmds, err := s.client.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, id := range ids {
			pipe.HMGet(ctx, productKey(id), fieldDocument, fieldVersion)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}

	products := make([]*domain.Product, 0, len(ids))
	for i, cmd := range cmds {
		vals, err := cmd.(*goredis.SliceCmd).Result()
		if err != nil {
			return nil, fmt.Errorf("read product %s: %w", ids[i], err)
		}
		p, err := decodeProduct(vals)
		if errors.Is(err, errMissing) {
			// Index entry without a document; the product was never fully written.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("decode product %s: %w", ids[i], err)
		}
		products = append(products, p)
	}
	return products, nil
}

// Update applies fn inside a WATCH on the product key. A transaction aborted
// by a concurrent write is reported as repository.ErrVersionConflict.
func (s *Store) Update(ctx context.Context, id string, fn repository.UpdateFunc) (p *domain.Product, err error) {
	ctx, end := database.TraceOp(ctx, database.SystemRedis, "UpdateProduct", "WATCH/MULTI")
	defer func() { end(err) }()

	key := productKey(id)
	err = s.client.Watch(ctx, func(tx *goredis.Tx) error {
		current, err := readProduct(ctx, tx, id)
		if err != nil {
			return err
		}
		oldCategory := current.Category
		readVersion := current.Version

		if err := fn(current); err != nil {
			return err
		}
		current.ID = id
		current.Recompute()

		doc, err := json.Marshal(current)
		if err != nil {
			return fmt.Errorf("marshal product %s: %w", id, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.HSet(ctx, key, fieldDocument, doc, fieldVersion, readVersion+1)
			if oldCategory != current.Category {
				pipe.ZRem(ctx, categoryKey(oldCategory), id)
				pipe.ZAdd(ctx, categoryKey(current.Category), goredis.Z{Member: id})
			}
			return nil
		})
		if err != nil {
			return err
		}
		current.Version = readVersion + 1
		p = current
		return nil
	}, key)

	if errors.Is(err, goredis.TxFailedErr) {
		return nil, repository.ErrVersionConflict
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreateIfAbsent writes p and its index entries unless the key exists.
func (s *Store) CreateIfAbsent(ctx context.Context, p *domain.Product) (created bool, err error) {
	ctx, end := database.TraceOp(ctx, database.SystemRedis, "CreateProduct", "WATCH/MULTI")
	defer func() { end(err) }()

	c := p.Clone()
	c.Recompute()
	doc, err := json.Marshal(c)
	if err != nil {
		return false, fmt.Errorf("marshal product %s: %w", p.ID, err)
	}

	key := productKey(c.ID)
	err = s.client.Watch(ctx, func(tx *goredis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.HSet(ctx, key, fieldDocument, doc, fieldVersion, 1)
			pipe.ZAdd(ctx, allProductsKey, goredis.Z{Member: c.ID})
			pipe.ZAdd(ctx, categoryKey(c.Category), goredis.Z{Member: c.ID})
			return nil
		})
		if err == nil {
			created = true
		}
		return err
	}, key)
	if errors.Is(err, goredis.TxFailedErr) {
		// Someone else created it between EXISTS and EXEC.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create product %s: %w", c.ID, err)
	}
	return created, nil
}

// ListCategories returns the stored category list.
func (s *Store) ListCategories(ctx context.Context) (out []string, err error) {
	ctx, end := database.TraceOp(ctx, database.SystemRedis, "ListCategories", "GET")
	defer func() { end(err) }()

	raw, err := s.client.Get(ctx, categoriesKey).Bytes()
	if errors.Is(err, goredis.Nil) {
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
	ctx, end := database.TraceOp(ctx, database.SystemRedis, "SaveCategories", "SET")
	defer func() { end(err) }()

	doc, err := json.Marshal(domain.CategoryList{Categories: categories})
	if err != nil {
		return fmt.Errorf("marshal categories: %w", err)
	}
	if err := s.client.Set(ctx, categoriesKey, doc, 0).Err(); err != nil {
		return fmt.Errorf("save categories: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

var errMissing = errors.New("product document missing")

func readProduct(ctx context.Context, c goredis.Cmdable, id string) (*domain.Product, error) {
	vals, err := c.HMGet(ctx, productKey(id), fieldDocument, fieldVersion).Result()
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	p, err := decodeProduct(vals)
	if errors.Is(err, errMissing) {
		return nil, apperrors.NotFound("product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("decode product %s: %w", id, err)
	}
	return p, nil
}

func decodeProduct(vals []any) (*domain.Product, error) {
	if len(vals) != 2 || vals[0] == nil {
		return nil, errMissing
	}
	doc, _ := vals[0].(string)
	ver, _ := vals[1].(string)

	var p domain.Product
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("unmarshal product document: %w", err)
	}
	version, err := strconv.ParseInt(ver, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse version %q: %w", ver, err)
	}
	p.Version = version
	return &p, nil
}
