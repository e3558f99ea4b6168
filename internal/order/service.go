package order

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"shokolad-be/internal/logger"
	"shokolad-be/internal/metrics"
	"shokolad-be/internal/product"

	"github.com/google/uuid"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

type Service interface {
	Create(ctx context.Context, params CreateParams) (*Order, error)
	FindAll(ctx context.Context, filter ListFilter) (*Page, error)
	FindByID(ctx context.Context, id string) (*Order, error)
	Update(ctx context.Context, id string, params UpdateParams) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status Status, comment, updatedBy *string) (*Order, error)
	Remove(ctx context.Context, id string) error
	ExportToExcel(ctx context.Context, filter ListFilter) (*xlsx.File, error)
}

type service struct {
	repo     Repository
	products product.Repository
}

func NewService(repo Repository, products product.Repository) Service {
	return &service{repo: repo, products: products}
}

func (s *service) Create(ctx context.Context, params CreateParams) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
		zap.String("customer_name", params.CustomerName),
	)
	log.Info("Create order started")

	items, total, err := s.priceItems(ctx, params.Items)
	if err != nil {
		log.Warn("Create order validation failed", zap.Error(err))
		return nil, err
	}
	params.Items = items

	o, err := s.repo.Insert(ctx, params, total)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return nil, err
	}

	metrics.OrdersCreatedTotal.Inc()
	log.Info("Create order success",
		zap.String("order_id", o.ID),
		zap.Float64("total", total),
	)
	return o, nil
}

// priceItems validates the item list and computes the order total from the
// product prices in effect right now. Every distinct product id must resolve,
// so a duplicated valid id cannot mask an invalid one.
func (s *service) priceItems(ctx context.Context, items []ItemParams) ([]ItemParams, float64, error) {
	if len(items) == 0 {
		return nil, 0, ErrEmptyItems
	}

	normalized := make([]ItemParams, 0, len(items))
	distinct := map[string]bool{}
	for _, item := range items {
		if _, err := uuid.Parse(item.ProductID); err != nil {
			return nil, 0, product.ErrInvalidProductID
		}
		if item.Quantity == 0 {
			item.Quantity = 1
		}
		if item.Quantity < 0 {
			return nil, 0, ErrInvalidQuantity
		}
		distinct[item.ProductID] = true
		normalized = append(normalized, item)
	}

	ids := make([]string, 0, len(distinct))
	for id := range distinct {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	prices := make(map[string]float64, len(found))
	for _, p := range found {
		prices[p.ID] = p.Price
	}

	missing := []string{}
	for _, id := range ids {
		if _, ok := prices[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownProducts, strings.Join(missing, ", "))
	}

	total := 0.0
	for _, item := range normalized {
		total += float64(item.Quantity) * prices[item.ProductID]
	}

	return normalized, total, nil
}

func (s *service) FindAll(ctx context.Context, filter ListFilter) (*Page, error) {
	if filter.Page < 1 {
		filter.Page = defaultPage
	}
	if filter.Limit < 1 {
		filter.Limit = defaultLimit
	}
	if filter.Status != nil && !ValidStatus(Status(*filter.Status)) {
		return nil, ErrInvalidStatus
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

func (s *service) FindByID(ctx context.Context, id string) (*Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidOrderID
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) Update(ctx context.Context, id string, params UpdateParams) (*Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidOrderID
	}

	var total *float64
	if params.Items != nil {
		items, newTotal, err := s.priceItems(ctx, params.Items)
		if err != nil {
			return nil, err
		}
		params.Items = items
		total = &newTotal
	}

	return s.repo.Update(ctx, id, params, total)
}

func (s *service) UpdateStatus(ctx context.Context, id string, status Status, comment, updatedBy *string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateStatus"),
		zap.String("order_id", id),
		zap.String("status", string(status)),
	)

	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidOrderID
	}
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	o, err := s.repo.UpdateStatus(ctx, id, status, comment, updatedBy)
	if err != nil {
		log.Error("failed to update order status", zap.Error(err))
		return nil, err
	}

	metrics.OrderStatusUpdatesTotal.WithLabelValues(string(status)).Inc()
	log.Info("UpdateStatus success")
	return o, nil
}

func (s *service) Remove(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidOrderID
	}
	return s.repo.Delete(ctx, id)
}

// ExportToExcel writes one row per order matching the filter, with an item
// summary of the form "name x quantity; name x quantity". Pagination does not
// apply to exports.
func (s *service) ExportToExcel(ctx context.Context, filter ListFilter) (*xlsx.File, error) {
	if filter.Status != nil && !ValidStatus(Status(*filter.Status)) {
		return nil, ErrInvalidStatus
	}
	filter.Page = 0
	filter.Limit = 0

	orders, _, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return nil, err
	}

	headerRow := sheet.AddRow()
	for _, h := range []string{"ID", "Date", "Status", "Total", "Customer", "Phone", "User", "Items"} {
		headerRow.AddCell().SetValue(h)
	}

	for _, o := range orders {
		row := sheet.AddRow()
		row.AddCell().SetValue(o.ID)
		row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(string(o.Status))
		row.AddCell().SetValue(o.Total)
		row.AddCell().SetValue(o.CustomerName)
		row.AddCell().SetValue(o.CustomerPhone)

		email := ""
		if o.User != nil {
			email = o.User.Email
		}
		row.AddCell().SetValue(email)

		summary := make([]string, 0, len(o.Items))
		for _, item := range o.Items {
			name := item.ProductID
			if item.Product != nil {
				name = item.Product.Name
			}
			summary = append(summary, fmt.Sprintf("%s x %d", name, item.Quantity))
		}
		row.AddCell().SetValue(strings.Join(summary, "; "))
	}

	return file, nil
}
