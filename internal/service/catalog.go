package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shoplite/shoplite/internal/events"
	"github.com/shoplite/shoplite/internal/logging"
	"github.com/shoplite/shoplite/internal/models"
	"github.com/shoplite/shoplite/internal/repo"
	"github.com/shoplite/shoplite/internal/search"
	"github.com/shoplite/shoplite/internal/util"
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Index  *search.Indexer
}

type Page struct {
	Offset int
	Limit  int
}

func (s *CatalogService) List(ctx context.Context, f repo.ProductFilter, page Page) (int64, []models.Product, error) {
	if page.Offset < 0 || page.Limit < 0 {
		return 0, nil, fmt.Errorf("%w: offset and limit must not be negative", ErrValidation)
	}
	if f.MinPrice != nil && *f.MinPrice < 0 {
		return 0, nil, fmt.Errorf("%w: min_price must not be negative", ErrValidation)
	}
	if f.MaxPrice != nil && *f.MaxPrice < 0 {
		return 0, nil, fmt.Errorf("%w: max_price must not be negative", ErrValidation)
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return 0, nil, fmt.Errorf("%w: min_price greater than max_price", ErrValidation)
	}

	limit := util.Clamp(page.Limit, util.DefaultPageSize, util.MaxPageSize)
	return s.Repo.ListProducts(ctx, f, page.Offset, limit)
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Product, error) {
	prod, err := s.Repo.ProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, err
	}
	return prod, nil
}

func (s *CatalogService) Create(ctx context.Context, prod *models.Product) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create")

	if err := validateProduct(prod.Name, prod.Price, prod.Quantity); err != nil {
		return nil, err
	}

	created, err := s.Repo.CreateProduct(ctx, prod)
	if err != nil {
		l.Error("create_product_failed", "error", err)
		return nil, err
	}

	s.publish(ctx, map[string]any{
		"type":       "product_created",
		"product_id": created.ID,
		"name":       created.Name,
	})
	s.mirror(ctx, created)

	l.Info("create_product_success", "product_id", created.ID)
	return created, nil
}

func (s *CatalogService) Patch(ctx context.Context, patch repo.ProductPatch, id uint) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.patch", "product_id", id)

	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	prod, err := s.Repo.PatchProduct(ctx, patch, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		l.Error("patch_product_failed", "error", err)
		return nil, err
	}

	s.publish(ctx, map[string]any{
		"type":       "product_updated",
		"product_id": prod.ID,
		"name":       prod.Name,
	})
	s.mirror(ctx, prod)

	l.Info("patch_product_success")
	return prod, nil
}

func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete", "product_id", id)

	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		l.Error("delete_product_failed", "error", err)
		return err
	}

	s.publish(ctx, map[string]any{
		"type":       "product_deleted",
		"product_id": id,
	})
	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			l.Error("index_delete_failed", "error", err)
		}
	}

	l.Info("delete_product_success")
	return nil
}

func (s *CatalogService) Search(ctx context.Context, q string, limit int) ([]models.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: query must not be empty", ErrValidation)
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", ErrValidation)
	}
	limit = util.Clamp(limit, util.DefaultSearchSize, util.MaxSearchSize)
	return s.Repo.SearchProducts(ctx, q, limit)
}

func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	return s.Repo.Categories(ctx)
}

func validateProduct(name string, price float64, quantity int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	if price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}
	return nil
}

func validatePatch(patch repo.ProductPatch) error {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	if patch.Price != nil && *patch.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if patch.Quantity != nil && *patch.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}
	return nil
}

func (s *CatalogService) publish(ctx context.Context, event map[string]any) {
	if s.Events == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	key := fmt.Sprint(event["product_id"])
	if err := s.Events.Publish(pubCtx, events.TopicProductEvents, key, event); err != nil {
		logging.FromContext(ctx).Error("event_publish_failed", "topic", events.TopicProductEvents, "error", err)
	}
}

func (s *CatalogService) mirror(ctx context.Context, prod *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, prod); err != nil {
		logging.FromContext(ctx).Error("index_mirror_failed", "product_id", strconv.FormatUint(uint64(prod.ID), 10), "error", err)
	}
}
