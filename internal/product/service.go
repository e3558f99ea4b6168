package product

import (
	"context"
	"io"
	"strings"

	"shokolad-be/internal/category"
	"shokolad-be/internal/logger"

	"github.com/google/uuid"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

type Service interface {
	Create(ctx context.Context, params CreateParams) (*Product, error)
	FindAll(ctx context.Context, filter ListFilter) (*Page, error)
	FindByID(ctx context.Context, id string) (*Product, error)
	Update(ctx context.Context, id string, params UpdateParams) (*Product, error)
	Remove(ctx context.Context, id string) error
	ExportToExcel(ctx context.Context, filter ListFilter) (*xlsx.File, error)
	ImportFromExcel(ctx context.Context, r io.ReaderAt, size int64) (*ImportResult, error)
}

type service struct {
	repo       Repository
	categories category.Repository
}

func NewService(repo Repository, categories category.Repository) Service {
	return &service{repo: repo, categories: categories}
}

func (s *service) Create(ctx context.Context, params CreateParams) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
		zap.String("name", params.Name),
	)
	log.Info("Create product started")

	if strings.TrimSpace(params.Name) == "" {
		return nil, ErrEmptyName
	}
	// Zero is a valid price; only negatives are rejected.
	if params.Price < 0 {
		return nil, ErrInvalidPrice
	}
	if err := s.validateCategory(ctx, params.CategoryID); err != nil {
		log.Warn("Create product category validation failed", zap.Error(err))
		return nil, err
	}

	p, err := s.repo.Insert(ctx, params)
	if err != nil {
		log.Error("failed to insert product", zap.Error(err))
		return nil, err
	}

	log.Info("Create product success", zap.String("product_id", p.ID))
	return p, nil
}

func (s *service) FindAll(ctx context.Context, filter ListFilter) (*Page, error) {
	if filter.Page < 1 {
		filter.Page = defaultPage
	}
	if filter.Limit < 1 {
		filter.Limit = defaultLimit
	}
	if filter.Category != nil {
		if _, err := uuid.Parse(*filter.Category); err != nil {
			return nil, category.ErrInvalidCategoryID
		}
	}

	items, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &Page{
		Items:       items,
		TotalCount:  total,
		TotalPages:  totalPages(total, filter.Limit),
		CurrentPage: filter.Page,
	}, nil
}

func totalPages(total int64, limit int) int {
	return int((total + int64(limit) - 1) / int64(limit))
}

func (s *service) FindByID(ctx context.Context, id string) (*Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidProductID
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) Update(ctx context.Context, id string, params UpdateParams) (*Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidProductID
	}
	if params.Name != nil && strings.TrimSpace(*params.Name) == "" {
		return nil, ErrEmptyName
	}
	if params.Price != nil && *params.Price < 0 {
		return nil, ErrInvalidPrice
	}
	if err := s.validateCategory(ctx, params.CategoryID); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, id, params)
}

func (s *service) Remove(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidProductID
	}
	return s.repo.Delete(ctx, id)
}

// validateCategory accepts a nil reference; a non-nil one must parse and
// resolve to an existing category.
func (s *service) validateCategory(ctx context.Context, categoryID *string) error {
	if categoryID == nil {
		return nil
	}
	if _, err := uuid.Parse(*categoryID); err != nil {
		return category.ErrInvalidCategoryID
	}
	_, err := s.categories.FindByID(ctx, *categoryID)
	return err
}
