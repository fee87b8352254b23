package service

import (
	"context"
	"errors"
	"testing"
)

func TestCatalogListProductsOnlyActive(t *testing.T) {
	env := newTestEnv(t)
	env.createProduct(t, "peonies", 4200, true)
	env.createProduct(t, "lilies", 2900, true)
	env.createProduct(t, "archived", 1000, false)

	page, err := env.catalog.ListProducts(context.Background(), ProductQuery{})
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	if page.Total != 2 || len(page.Items) != 2 {
		t.Fatalf("active products want 2 got total=%d len=%d", page.Total, len(page.Items))
	}

	page, err = env.catalog.ListProducts(context.Background(), ProductQuery{Page: 2, PageSize: 1})
	if err != nil {
		t.Fatalf("list second page failed: %v", err)
	}
	if page.Total != 2 || len(page.Items) != 1 {
		t.Fatalf("second page want 1 item got total=%d len=%d", page.Total, len(page.Items))
	}
}

func TestCatalogGetProduct(t *testing.T) {
	env := newTestEnv(t)
	active := env.createProduct(t, "roses", 3500, true)
	hidden := env.createProduct(t, "hidden", 100, false)

	got, err := env.catalog.GetProduct(context.Background(), active.ID)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if got.Slug != "roses" || got.Category == nil {
		t.Fatalf("unexpected product: %+v", got)
	}

	if _, err := env.catalog.GetProduct(context.Background(), hidden.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("inactive product want ErrProductNotFound got %v", err)
	}
	if _, err := env.catalog.GetActiveProductForSale(hidden.ID); !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("inactive product want ErrProductNotAvailable got %v", err)
	}
	if _, err := env.catalog.GetActiveProductForSale(9999); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("missing product want ErrProductNotFound got %v", err)
	}
}

func TestCatalogRejectsDuplicateSlug(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "tulips", 2000, true)

	_, err := env.catalog.CreateProduct(context.Background(), CreateProductInput{
		CategoryID: product.CategoryID,
		Slug:       "tulips",
		TitleJSON:  map[string]interface{}{"en-US": "Tulips"},
	})
	if !errors.Is(err, ErrSlugExists) {
		t.Fatalf("duplicate slug want ErrSlugExists got %v", err)
	}

	_, err = env.catalog.CreateProduct(context.Background(), CreateProductInput{CategoryID: 999, Slug: "orphan"})
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("missing category want ErrCategoryNotFound got %v", err)
	}
}
