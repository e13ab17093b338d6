package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"inventory-api/internal/domain"
)

// ErrStorage wraps every failure reported by the database driver.
var ErrStorage = errors.New("storage failure")

// UpdateOutcome classifies the result of a compare-and-swap update
type UpdateOutcome int

const (
	// UpdateApplied means the row matched the expected version and was overwritten.
	UpdateApplied UpdateOutcome = iota
	// UpdateNotFound means the row no longer exists.
	UpdateNotFound
	// UpdateConflict means the row exists but another writer changed it first.
	UpdateConflict
)

func (o UpdateOutcome) String() string {
	switch o {
	case UpdateApplied:
		return "applied"
	case UpdateNotFound:
		return "not_found"
	case UpdateConflict:
		return "conflict"
	default:
		return fmt.Sprintf("UpdateOutcome(%d)", int(o))
	}
}

// UpdateResult is returned by ProductRepository.Update. Product is only set
// when Outcome is UpdateApplied.
type UpdateResult struct {
	Outcome UpdateOutcome
	Product *domain.Product
}

// ProductRepository defines the interface for product data access.
// Lookups return a nil product (and a nil error) when the row is absent.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) (UpdateResult, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

const productColumns = `id, name, description, price, stock, created_at, updated_at, version`

const (
	// Writes return the stored row so callers see values as the column types
	// keep them, such as prices rounded to two decimal places.
	insertProductQuery = `
		INSERT INTO products (name, description, price, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + productColumns

	// updateProductQuery only touches the row when its version still equals
	// the one the caller read.
	updateProductQuery = `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock = $5,
		    updated_at = $6, version = version + 1
		WHERE id = $1 AND version = $7
		RETURNING ` + productColumns

	deleteProductQuery = `DELETE FROM products WHERE id = $1`
	existsProductQuery = `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// GetAll returns every product, newest first
func (r *productRepository) GetAll(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storageError("failed to list products", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, storageError("failed to scan product", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("error iterating products", err)
	}

	return products, nil
}

// GetByID retrieves a product by ID
func (r *productRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageError("failed to find product by ID", err)
	}

	return product, nil
}

// Create inserts a new product and returns the stored row with its assigned ID
func (r *productRepository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	created, err := scanProduct(r.db.QueryRowContext(
		ctx,
		insertProductQuery,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.CreatedAt,
		product.UpdatedAt,
	))
	if err != nil {
		return nil, storageError("failed to create product", err)
	}

	return created, nil
}

// Update overwrites the stored row if its version still matches product.Version.
// When no row matched, existence is re-checked to tell a deleted row apart
// from a concurrent modification.
func (r *productRepository) Update(ctx context.Context, product *domain.Product) (UpdateResult, error) {
	updated, err := scanProduct(r.db.QueryRowContext(
		ctx,
		updateProductQuery,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.UpdatedAt,
		product.Version,
	))

	switch {
	case err == nil:
		return classifyUpdate(true, false, updated), nil
	case errors.Is(err, sql.ErrNoRows):
	default:
		return UpdateResult{}, storageError("failed to update product", err)
	}

	exists, err := r.Exists(ctx, product.ID)
	if err != nil {
		return UpdateResult{}, err
	}

	return classifyUpdate(false, exists, nil), nil
}

// Delete removes a product and reports whether a row was actually deleted
func (r *productRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, deleteProductQuery, id)
	if err != nil {
		return false, storageError("failed to delete product", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, storageError("failed to get rows affected", err)
	}

	return rowsAffected > 0, nil
}

// Exists reports whether a product with the given ID is currently stored
func (r *productRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, existsProductQuery, id).Scan(&exists); err != nil {
		return false, storageError("failed to check product existence", err)
	}
	return exists, nil
}

// classifyUpdate maps the compare-and-swap result and the follow-up
// existence check to an UpdateResult.
func classifyUpdate(swapped, stillExists bool, product *domain.Product) UpdateResult {
	if swapped {
		return UpdateResult{Outcome: UpdateApplied, Product: product}
	}
	if !stillExists {
		return UpdateResult{Outcome: UpdateNotFound}
	}
	return UpdateResult{Outcome: UpdateConflict}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	var description sql.NullString
	var updatedAt sql.NullTime

	err := row.Scan(
		&product.ID,
		&product.Name,
		&description,
		&product.Price,
		&product.Stock,
		&product.CreatedAt,
		&updatedAt,
		&product.Version,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		product.Description = &description.String
	}
	if updatedAt.Valid {
		t := updatedAt.Time.UTC()
		product.UpdatedAt = &t
	}
	product.CreatedAt = product.CreatedAt.UTC()

	return product, nil
}

func storageError(msg string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, msg, err)
}
