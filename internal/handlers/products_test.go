package handlers

import (
	"testing"
	"time"
)

func TestBuildProductDefaultsImagesToCover(t *testing.T) {
	req := ProductCreateRequest{
		Name:     "Ceramic Mug",
		Price:    19.99,
		Image:    "/uploads/mug.jpg",
		Category: "mugs",
	}

	product := buildProduct(req, time.Now())
	if len(product.Images) != 1 || product.Images[0] != "/uploads/mug.jpg" {
		t.Fatalf("expected gallery to fall back to cover image, got %v", product.Images)
	}
}

func TestBuildProductKeepsProvidedImages(t *testing.T) {
	req := ProductCreateRequest{
		Name:     "Ceramic Mug",
		Price:    19.99,
		Image:    "/uploads/mug.jpg",
		Images:   []string{"/uploads/mug-front.jpg", "/uploads/mug-back.jpg"},
		Category: "mugs",
	}

	product := buildProduct(req, time.Now())
	if len(product.Images) != 2 {
		t.Fatalf("expected provided gallery untouched, got %v", product.Images)
	}
}

func TestBuildProductTimestamps(t *testing.T) {
	now := time.Now()
	product := buildProduct(ProductCreateRequest{Name: "Mug", Price: 1, Image: "a", Category: "mugs"}, now)

	if !product.CreatedAt.Equal(now) {
		t.Fatalf("expected createdAt %v, got %v", now, product.CreatedAt)
	}
	if product.UpdatedAt.Before(product.CreatedAt) {
		t.Fatalf("updatedAt %v precedes createdAt %v", product.UpdatedAt, product.CreatedAt)
	}
}

func TestBuildProductTrimsAndDefaultsStock(t *testing.T) {
	stock := 7
	req := ProductCreateRequest{
		Name:     "  Ceramic Mug  ",
		Price:    19.99,
		Image:    "/uploads/mug.jpg",
		Category: " mugs ",
		Badge:    " new ",
		Stock:    &stock,
	}

	product := buildProduct(req, time.Now())
	if product.Name != "Ceramic Mug" || product.Category != "mugs" || product.Badge != "new" {
		t.Fatalf("expected trimmed fields, got %q %q %q", product.Name, product.Category, product.Badge)
	}
	if product.Stock != 7 {
		t.Fatalf("expected stock 7, got %d", product.Stock)
	}

	req.Stock = nil
	if got := buildProduct(req, time.Now()).Stock; got != 0 {
		t.Fatalf("expected stock to default to 0, got %d", got)
	}
}
