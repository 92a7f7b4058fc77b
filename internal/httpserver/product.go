package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/shoplite/shoplite/internal/logging"
	"github.com/shoplite/shoplite/internal/models"
	"github.com/shoplite/shoplite/internal/repo"
	"github.com/shoplite/shoplite/internal/service"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func productID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id is not a positive integer")
	}
	return uint(id), nil
}

func intQuery(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s is not an integer", name))
	}
	return v, nil
}

func floatQuery(c echo.Context, name string) (*float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s is not a number", name))
	}
	return &v, nil
}

func mapServiceError(err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, notFoundMsg)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func (h *CatalogHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	filter := repo.ProductFilter{Category: c.QueryParam("category")}

	minPrice, err := floatQuery(c, "min_price")
	if err != nil {
		return err
	}
	maxPrice, err := floatQuery(c, "max_price")
	if err != nil {
		return err
	}
	filter.MinPrice, filter.MaxPrice = minPrice, maxPrice

	offset, err := intQuery(c, "offset")
	if err != nil {
		return err
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		return err
	}

	total, items, err := h.Svc.List(ctx, filter, service.Page{Offset: offset, Limit: limit})
	if err != nil {
		if !errors.Is(err, service.ErrValidation) {
			l.Error("list_products_failed", "error", err)
		}
		return mapServiceError(err, "")
	}

	return c.JSON(http.StatusOK, ProductListResponse{Items: items, Total: total})
}

func (h *CatalogHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := productID(c)
	if err != nil {
		return err
	}

	prod, err := h.Svc.Get(ctx, id)
	if err != nil {
		return mapServiceError(err, "product not found")
	}
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_product_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("create_product_error", "status", 400, "error", err)
		return err
	}

	prod := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Quantity:    req.Quantity,
	}
	created, err := h.Svc.Create(ctx, &prod)
	if err != nil {
		return mapServiceError(err, "")
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *CatalogHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, err := productID(c)
	if err != nil {
		return err
	}

	var req UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_product_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("update_product_error", "status", 400, "error", err)
		return err
	}

	patch := repo.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Quantity:    req.Quantity,
	}
	prod, err := h.Svc.Patch(ctx, patch, id)
	if err != nil {
		return mapServiceError(err, "product not found")
	}
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := productID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(ctx, id); err != nil {
		return mapServiceError(err, "product not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()

	limit, err := intQuery(c, "limit")
	if err != nil {
		return err
	}

	items, err := h.Svc.Search(ctx, c.QueryParam("q"), limit)
	if err != nil {
		return mapServiceError(err, "")
	}
	return c.JSON(http.StatusOK, SearchResponse{Items: items})
}

func (h *CatalogHTTP) Categories(c echo.Context) error {
	ctx := c.Request().Context()

	categories, err := h.Svc.Categories(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("list_categories_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list categories")
	}
	return c.JSON(http.StatusOK, categories)
}
