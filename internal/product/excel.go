package product

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"shokolad-be/internal/category"
	"shokolad-be/internal/logger"
	"shokolad-be/internal/metrics"

	"github.com/google/uuid"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"
)

// Spreadsheet layout, shared by export and import:
// Name | Price | Category | Active | Description
const (
	colName = iota
	colPrice
	colCategory
	colActive
	colDescription
)

// ExportToExcel writes every product matching the filter; pagination does not
// apply to exports.
func (s *service) ExportToExcel(ctx context.Context, filter ListFilter) (*xlsx.File, error) {
	if filter.Category != nil {
		if _, err := uuid.Parse(*filter.Category); err != nil {
			return nil, category.ErrInvalidCategoryID
		}
	}
	filter.Page = 0
	filter.Limit = 0

	products, _, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return nil, err
	}

	headerRow := sheet.AddRow()
	for _, h := range []string{"Name", "Price", "Category", "Active", "Description", "Created"} {
		headerRow.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Price)

		categoryName := ""
		if p.Category != nil {
			categoryName = p.Category.Name
		}
		row.AddCell().SetValue(categoryName)

		active := "no"
		if p.IsActive {
			active = "yes"
		}
		row.AddCell().SetValue(active)

		description := ""
		if p.Description != nil {
			description = *p.Description
		}
		row.AddCell().SetValue(description)

		row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return file, nil
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "yes", "true", "1":
		return true
	}
	return false
}

// ImportFromExcel creates one product per data row. Rows missing a name or a
// parseable price are counted as skipped; a bad row never aborts the batch.
func (s *service) ImportFromExcel(ctx context.Context, r io.ReaderAt, size int64) (*ImportResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ImportFromExcel"),
	)

	file, err := xlsx.OpenReaderAt(r, size)
	if err != nil {
		return nil, err
	}
	if len(file.Sheets) == 0 {
		return nil, ErrNoWorksheet
	}

	sheet := file.Sheets[0]
	result := &ImportResult{}

	for i := 1; i < sheet.MaxRow; i++ {
		row := sheet.Rows[i]

		get := func(index int) string {
			if index < len(row.Cells) {
				return strings.TrimSpace(row.Cells[index].String())
			}
			return ""
		}

		name := get(colName)
		price, priceErr := strconv.ParseFloat(get(colPrice), 64)
		if name == "" || priceErr != nil {
			result.Skipped++
			continue
		}

		params := CreateParams{Name: name, Price: price}

		if desc := get(colDescription); desc != "" {
			params.Description = &desc
		}

		if flag := get(colActive); flag != "" {
			active := isTruthy(flag)
			params.IsActive = &active
		}

		// Category is matched by name; an unknown name leaves the product
		// uncategorised rather than failing the row.
		if categoryName := get(colCategory); categoryName != "" {
			c, err := s.categories.FindByName(ctx, categoryName)
			if err != nil && !errors.Is(err, category.ErrCategoryNotFound) {
				return nil, err
			}
			if c != nil {
				params.CategoryID = &c.ID
			}
		}

		if _, err := s.repo.Insert(ctx, params); err != nil {
			log.Warn("import row insert failed",
				zap.Int("row", i),
				zap.String("name", name),
				zap.Error(err),
			)
			result.Skipped++
			continue
		}
		result.Created++
	}

	metrics.ProductsImportedTotal.Add(float64(result.Created))
	metrics.ProductsImportSkippedTotal.Add(float64(result.Skipped))

	log.Info("ImportFromExcel finished",
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}
