package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inventory-api/internal/domain"
	"inventory-api/internal/dto"
	"inventory-api/internal/repository"
)

// ErrConcurrencyConflict is returned by Update when another writer modified
// the product between the read and the write. The update is not retried.
var ErrConcurrencyConflict = errors.New("product was modified concurrently")

// ProductService defines the interface for product business logic.
// Lookups return a nil product (and a nil error) when the product is absent.
type ProductService interface {
	ListAll(ctx context.Context) ([]dto.Product, error)
	GetByID(ctx context.Context, id int64) (*dto.Product, error)
	Create(ctx context.Context, input dto.Product) (*dto.Product, error)
	Update(ctx context.Context, id int64, input dto.Product) (*dto.Product, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// Option configures a ProductService
type Option func(*productService)

// WithClock overrides the time source used for createdAt and updatedAt
func WithClock(now func() time.Time) Option {
	return func(s *productService) {
		s.now = now
	}
}

type productService struct {
	productRepo repository.ProductRepository
	now         func() time.Time
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository, opts ...Option) ProductService {
	s := &productService{
		productRepo: productRepo,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListAll returns every product in storage order
func (s *productService) ListAll(ctx context.Context) ([]dto.Product, error) {
	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.Product, 0, len(products))
	for _, p := range products {
		out = append(out, toDTO(p))
	}
	return out, nil
}

func (s *productService) GetByID(ctx context.Context, id int64) (*dto.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil || product == nil {
		return nil, err
	}

	out := toDTO(product)
	return &out, nil
}

// Create stores a new product. The input's id and timestamps are ignored.
func (s *productService) Create(ctx context.Context, input dto.Product) (*dto.Product, error) {
	product := &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		CreatedAt:   s.timestamp(),
	}

	created, err := s.productRepo.Create(ctx, product)
	if err != nil {
		return nil, err
	}

	out := toDTO(created)
	return &out, nil
}

// Update overwrites the mutable fields of an existing product. It never
// creates a product that does not exist.
func (s *productService) Update(ctx context.Context, id int64, input dto.Product) (*dto.Product, error) {
	existing, err := s.productRepo.GetByID(ctx, id)
	if err != nil || existing == nil {
		return nil, err
	}

	updatedAt := s.timestamp()
	existing.Name = input.Name
	existing.Description = input.Description
	existing.Price = input.Price
	existing.Stock = input.Stock
	existing.UpdatedAt = &updatedAt

	result, err := s.productRepo.Update(ctx, existing)
	if err != nil {
		return nil, err
	}

	switch result.Outcome {
	case repository.UpdateApplied:
		out := toDTO(result.Product)
		return &out, nil
	case repository.UpdateNotFound:
		return nil, nil
	case repository.UpdateConflict:
		return nil, fmt.Errorf("%w: product %d", ErrConcurrencyConflict, id)
	default:
		return nil, fmt.Errorf("unexpected update outcome %s for product %d", result.Outcome, id)
	}
}

func (s *productService) Delete(ctx context.Context, id int64) (bool, error) {
	return s.productRepo.Delete(ctx, id)
}

// timestamp returns the current instant in UTC at the precision the
// database keeps, so values handed back to callers match later reads.
func (s *productService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func toDTO(p *domain.Product) dto.Product {
	return dto.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
