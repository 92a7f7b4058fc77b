package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shoplite/shoplite/internal/events"
	"github.com/shoplite/shoplite/internal/models"
	"github.com/shoplite/shoplite/internal/repo"
)

func newCatalogService(t *testing.T) (*CatalogService, *fakePublisher) {
	t.Helper()
	pub := &fakePublisher{}
	return &CatalogService{Repo: newTestRepo(t), Events: pub}, pub
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }

func seedProducts(t *testing.T, svc *CatalogService, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		_, err := svc.Create(context.Background(), &models.Product{
			Name:     fmt.Sprintf("product_%02d", i),
			Category: map[bool]string{true: "books", false: "games"}[i%2 == 0],
			Price:    float64(i),
			Quantity: i,
		})
		require.NoError(t, err)
	}
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	svc, pub := newCatalogService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &models.Product{
		Name:        "Gaming Laptop",
		Description: "16GB RAM",
		Category:    "electronics",
		Price:       999.99,
		Quantity:    5,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Gaming Laptop", got.Name)
	require.Equal(t, "16GB RAM", got.Description)
	require.Equal(t, "electronics", got.Category)
	require.Equal(t, 999.99, got.Price)
	require.Equal(t, 5, got.Quantity)

	recorded := pub.recorded()
	require.Len(t, recorded, 1)
	require.Equal(t, events.TopicProductEvents, recorded[0].Topic)
	require.Equal(t, "product_created", recorded[0].Event["type"])
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &models.Product{Name: "  ", Price: 1})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, &models.Product{Name: "ok", Price: -1})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, &models.Product{Name: "ok", Price: 1, Quantity: -1})
	require.ErrorIs(t, err, ErrValidation)
}

func TestGetMissing(t *testing.T) {
	svc, _ := newCatalogService(t)

	_, err := svc.Get(context.Background(), 12345)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListPagination(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()
	seedProducts(t, svc, 15)

	total, first, err := svc.List(ctx, repo.ProductFilter{}, Page{Offset: 0, Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 15, total)
	require.Len(t, first, 10)

	_, second, err := svc.List(ctx, repo.ProductFilter{}, Page{Offset: 10, Limit: 10})
	require.NoError(t, err)
	require.Len(t, second, 5)

	seen := map[uint]bool{}
	var last uint
	for _, p := range append(first, second...) {
		require.False(t, seen[p.ID], "id %d returned twice", p.ID)
		require.Greater(t, p.ID, last, "ids must ascend")
		seen[p.ID] = true
		last = p.ID
	}
}

func TestListDefaultLimit(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()
	seedProducts(t, svc, 15)

	total, items, err := svc.List(ctx, repo.ProductFilter{}, Page{})
	require.NoError(t, err)
	require.EqualValues(t, 15, total)
	require.Len(t, items, 10)
}

func TestListFilters(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()
	seedProducts(t, svc, 10)

	total, items, err := svc.List(ctx, repo.ProductFilter{Category: "books"}, Page{Limit: 100})
	require.NoError(t, err)
	require.EqualValues(t, 5, total)
	for _, p := range items {
		require.Equal(t, "books", p.Category)
	}

	total, items, err = svc.List(ctx, repo.ProductFilter{MinPrice: floatPtr(3), MaxPrice: floatPtr(7)}, Page{Limit: 100})
	require.NoError(t, err)
	require.EqualValues(t, 5, total)
	for _, p := range items {
		require.GreaterOrEqual(t, p.Price, 3.0)
		require.LessOrEqual(t, p.Price, 7.0)
	}
}

func TestListValidation(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	_, _, err := svc.List(ctx, repo.ProductFilter{}, Page{Offset: -1})
	require.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.List(ctx, repo.ProductFilter{}, Page{Limit: -5})
	require.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.List(ctx, repo.ProductFilter{MinPrice: floatPtr(10), MaxPrice: floatPtr(5)}, Page{})
	require.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.List(ctx, repo.ProductFilter{MinPrice: floatPtr(-1)}, Page{})
	require.ErrorIs(t, err, ErrValidation)
}

func TestPatchPartial(t *testing.T) {
	svc, pub := newCatalogService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &models.Product{
		Name:     "Gaming Laptop",
		Category: "electronics",
		Price:    999.99,
		Quantity: 5,
	})
	require.NoError(t, err)

	patched, err := svc.Patch(ctx, repo.ProductPatch{Price: floatPtr(9.99)}, created.ID)
	require.NoError(t, err)
	require.Equal(t, 9.99, patched.Price)
	require.Equal(t, "Gaming Laptop", patched.Name)
	require.Equal(t, "electronics", patched.Category)
	require.Equal(t, 5, patched.Quantity)

	recorded := pub.recorded()
	require.Equal(t, "product_updated", recorded[len(recorded)-1].Event["type"])
}

func TestPatchValidation(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &models.Product{Name: "ok", Price: 1})
	require.NoError(t, err)

	_, err = svc.Patch(ctx, repo.ProductPatch{Name: strPtr(" ")}, created.ID)
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Patch(ctx, repo.ProductPatch{Price: floatPtr(-2)}, created.ID)
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Patch(ctx, repo.ProductPatch{Quantity: intPtr(-1)}, created.ID)
	require.ErrorIs(t, err, ErrValidation)
}

func TestPatchMissing(t *testing.T) {
	svc, _ := newCatalogService(t)

	_, err := svc.Patch(context.Background(), repo.ProductPatch{Price: floatPtr(1)}, 12345)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteThenGet(t *testing.T) {
	svc, pub := newCatalogService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &models.Product{Name: "ok", Price: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, svc.Delete(ctx, created.ID), ErrNotFound)

	recorded := pub.recorded()
	require.Equal(t, "product_deleted", recorded[len(recorded)-1].Event["type"])
}

func TestSearch(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &models.Product{Name: "Gaming Laptop", Price: 1})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &models.Product{Name: "Office Chair", Price: 1})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &models.Product{Name: "LAPTOP sleeve", Price: 1})
	require.NoError(t, err)

	items, err := svc.Search(ctx, "laptop", 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "Gaming Laptop", items[0].Name)
	require.Equal(t, "LAPTOP sleeve", items[1].Name)

	items, err = svc.Search(ctx, "chair", 0)
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = svc.Search(ctx, "   ", 0)
	require.ErrorIs(t, err, ErrValidation)
}

func TestCategories(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	for _, cat := range []string{"books", "games", "books", ""} {
		_, err := svc.Create(ctx, &models.Product{Name: "p", Category: cat, Price: 1})
		require.NoError(t, err)
	}

	categories, err := svc.Categories(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"books", "games"}, categories)
}
