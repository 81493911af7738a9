package service

import (
	"context"
	"encoding/base64"
	"net/url"
	"strings"

	"techstore-admin/internal/listview"
	"techstore-admin/internal/models"
	"techstore-admin/internal/store"
	"techstore-admin/internal/util"

	"go.uber.org/zap"
)

const (
	DefaultProductImage = "assets/images/default.svg"
	MaxImageBytes       = 2 << 20
)

type ProductService struct {
	*base
}

// ProductInput is the writable part of a product. Category may name the
// category instead of CategoryID. An empty Image keeps the current image on
// update.
type ProductInput struct {
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Stock      int     `json:"stock"`
	CategoryID int64   `json:"categoryId"`
	Category   string  `json:"category,omitempty"`
	Image      string  `json:"image,omitempty"`
	UserID     *int64  `json:"userId,omitempty"`
}

// List returns the products view with category and owner names resolved.
func (s *ProductService) List(ctx context.Context, state listview.State) (listview.View[models.Product], error) {
	ctx, span := util.StartSpan(ctx, "ProductService.List")
	defer span.End()

	return computeView(s.base, models.CollectionProducts, s.resolved(ctx), state, productSchema(s.opts.Locale)), nil
}

func (s *ProductService) resolved(ctx context.Context) []models.Product {
	l := s.loadLookups(ctx)
	products := store.Read[models.Product](ctx, s.store, models.CollectionProducts)
	for i := range products {
		products[i] = l.product(products[i])
	}
	return products
}

func (s *ProductService) Get(ctx context.Context, id int64) (*models.Product, error) {
	products := s.resolved(ctx)
	i := indexOf(products, id, productID)
	if i < 0 {
		return nil, notFound("product", id)
	}
	return &products[i], nil
}

func (s *ProductService) Create(ctx context.Context, actor models.User, in ProductInput) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.Create")
	defer span.End()

	products := store.Read[models.Product](ctx, s.store, models.CollectionProducts)
	product, err := s.build(ctx, "products.create", actor, in, nil)
	if err != nil {
		s.logger.Warn("Product refused", zap.Error(err))
		return nil, err
	}

	product.ID, err = nextID(ctx, s.base, models.CollectionProducts, products, productID)
	if err != nil {
		return nil, err
	}
	products = append(products, product)

	if err := store.Write(ctx, s.store, models.CollectionProducts, products); err != nil {
		return nil, err
	}

	s.logger.Info("Product created", zap.Int64("product_id", product.ID), zap.Int64("category_id", product.CategoryID))
	s.collectionChanged(ctx, models.CollectionProducts, models.ActionCreated, product.ID, &actor)
	return &product, nil
}

func (s *ProductService) Update(ctx context.Context, actor models.User, id int64, in ProductInput) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.Update")
	defer span.End()

	products := store.Read[models.Product](ctx, s.store, models.CollectionProducts)
	i := indexOf(products, id, productID)
	if i < 0 {
		return nil, notFound("product", id)
	}

	product, err := s.build(ctx, "products.update", actor, in, &products[i])
	if err != nil {
		s.logger.Warn("Product update refused", zap.Int64("product_id", id), zap.Error(err))
		return nil, err
	}
	product.ID = id
	products[i] = product

	if err := store.Write(ctx, s.store, models.CollectionProducts, products); err != nil {
		return nil, err
	}

	s.logger.Info("Product updated", zap.Int64("product_id", id))
	s.collectionChanged(ctx, models.CollectionProducts, models.ActionUpdated, id, &actor)
	return &product, nil
}

func (s *ProductService) Delete(ctx context.Context, actor models.User, id int64) error {
	ctx, span := util.StartSpan(ctx, "ProductService.Delete")
	defer span.End()

	products := store.Read[models.Product](ctx, s.store, models.CollectionProducts)
	i := indexOf(products, id, productID)
	if i < 0 {
		return notFound("product", id)
	}
	products = append(products[:i], products[i+1:]...)

	if err := store.Write(ctx, s.store, models.CollectionProducts, products); err != nil {
		return err
	}

	s.logger.Info("Product deleted", zap.Int64("product_id", id))
	s.collectionChanged(ctx, models.CollectionProducts, models.ActionDeleted, id, &actor)
	return nil
}

func (s *ProductService) Export(ctx context.Context, state listview.State) (*Export, error) {
	view, err := s.List(ctx, state)
	if err != nil {
		return nil, err
	}
	return productExport(view.Matched), nil
}

// build validates in and returns the record to store. current is the record
// being updated, nil on create.
func (s *ProductService) build(ctx context.Context, op string, actor models.User, in ProductInput, current *models.Product) (models.Product, error) {
	var p models.Product

	p.Name = strings.TrimSpace(in.Name)
	if p.Name == "" {
		return p, invalid(op, "product name is required")
	}
	if in.Price < 0 {
		return p, invalid(op, "price must not be negative")
	}
	if in.Stock < 0 {
		return p, invalid(op, "stock must not be negative")
	}
	p.Price = in.Price
	p.Stock = in.Stock

	l := s.loadLookups(ctx)

	category, ok := l.categories[in.CategoryID]
	if !ok && in.CategoryID == 0 && in.Category != "" {
		for _, c := range l.categories {
			if strings.EqualFold(c.Name, strings.TrimSpace(in.Category)) {
				category, ok = c, true
				break
			}
		}
	}
	if !ok {
		return p, invalid(op, "unknown category")
	}
	p.CategoryID = category.ID
	p.Category = category.Name

	switch {
	case in.Image != "":
		if err := validateImage(op, in.Image); err != nil {
			return p, err
		}
		p.Image = in.Image
	case current != nil && current.Image != "":
		p.Image = current.Image
	default:
		p.Image = DefaultProductImage
	}

	owner := in.UserID
	if owner == nil && current != nil {
		owner = current.UserID
	}
	if owner == nil {
		owner = int64Ptr(actor.ID)
	}
	u, ok := l.users[*owner]
	if !ok {
		return p, invalid(op, "unknown user %d", *owner)
	}
	p.UserID = int64Ptr(u.ID)
	p.UserName = u.Name

	return p, nil
}

// validateImage accepts a URL or path, or a base64 data URL of an image no
// larger than MaxImageBytes once decoded.
func validateImage(op, image string) error {
	if strings.HasPrefix(image, "data:") {
		meta, payload, found := strings.Cut(image, ",")
		if !found || !strings.HasPrefix(meta, "data:image/") || !strings.HasSuffix(meta, ";base64") {
			return invalid(op, "image must be a base64 encoded image")
		}
		if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes {
			return invalid(op, "image must not exceed 2 MiB")
		}
		return nil
	}

	if strings.ContainsAny(image, " \t\n") {
		return invalid(op, "invalid image URL")
	}
	if _, err := url.Parse(image); err != nil {
		return invalid(op, "invalid image URL")
	}
	return nil
}
