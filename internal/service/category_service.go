package service

import (
	"context"
	"strings"

	"techstore-admin/internal/listview"
	"techstore-admin/internal/models"
	"techstore-admin/internal/store"
	"techstore-admin/internal/util"

	"go.uber.org/zap"
)

// CategoryService owns categories and their derived product counts.
type CategoryService struct {
	*base
}

// List recomputes every product count, persists the categories when a count
// moved and returns the view.
func (s *CategoryService) List(ctx context.Context, state listview.State) (listview.View[models.Category], error) {
	ctx, span := util.StartSpan(ctx, "CategoryService.List")
	defer span.End()

	categories, err := s.refresh(ctx)
	if err != nil {
		return listview.View[models.Category]{}, err
	}
	return computeView(s.base, models.CollectionCategories, categories, state, categorySchema(s.opts.Locale)), nil
}

// RefreshCounts recomputes and persists the product counts.
func (s *CategoryService) RefreshCounts(ctx context.Context) error {
	ctx, span := util.StartSpan(ctx, "CategoryService.RefreshCounts")
	defer span.End()

	_, err := s.refresh(ctx)
	return err
}

func (s *CategoryService) refresh(ctx context.Context) ([]models.Category, error) {
	categories := store.Read[models.Category](ctx, s.store, models.CollectionCategories)
	products := store.Read[models.Product](ctx, s.store, models.CollectionProducts)

	util.CategoryRecountsTotal.Inc()

	changed := false
	for i := range categories {
		n := countProducts(categories[i], products)
		if categories[i].ProductCount != n {
			categories[i].ProductCount = n
			changed = true
		}
	}
	if !changed {
		return categories, nil
	}

	if err := store.Write(ctx, s.store, models.CollectionCategories, categories); err != nil {
		return nil, err
	}
	s.collectionChanged(ctx, models.CollectionCategories, models.ActionRecount, 0, nil)
	return categories, nil
}

// countProducts counts products referencing c. Products not yet linked to an
// id are matched on their stored category name.
func countProducts(c models.Category, products []models.Product) int {
	n := 0
	for _, p := range products {
		if p.CategoryID == c.ID || (p.CategoryID == 0 && p.Category == c.Name) {
			n++
		}
	}
	return n
}

func (s *CategoryService) Get(ctx context.Context, id int64) (*models.Category, error) {
	categories := store.Read[models.Category](ctx, s.store, models.CollectionCategories)
	i := indexOf(categories, id, categoryID)
	if i < 0 {
		return nil, notFound("category", id)
	}
	c := categories[i]
	c.ProductCount = countProducts(c, store.Read[models.Product](ctx, s.store, models.CollectionProducts))
	return &c, nil
}

func (s *CategoryService) Create(ctx context.Context, actor models.User, name string) (*models.Category, error) {
	ctx, span := util.StartSpan(ctx, "CategoryService.Create")
	defer span.End()

	const op = "categories.create"
	categories := store.Read[models.Category](ctx, s.store, models.CollectionCategories)

	name, err := validateCategoryName(op, categories, 0, name)
	if err != nil {
		s.logger.Warn("Category refused", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	id, err := nextID(ctx, s.base, models.CollectionCategories, categories, categoryID)
	if err != nil {
		return nil, err
	}
	category := models.Category{ID: id, Name: name}
	categories = append(categories, category)

	if err := store.Write(ctx, s.store, models.CollectionCategories, categories); err != nil {
		return nil, err
	}

	s.logger.Info("Category created", zap.Int64("category_id", id), zap.String("name", name))
	s.collectionChanged(ctx, models.CollectionCategories, models.ActionCreated, id, &actor)
	return &category, nil
}

// Rename replaces the name of a category. Products reference the category by
// id so they all follow; their stored display names are rewritten after the
// category itself.
func (s *CategoryService) Rename(ctx context.Context, actor models.User, id int64, name string) (*models.Category, error) {
	ctx, span := util.StartSpan(ctx, "CategoryService.Rename")
	defer span.End()

	const op = "categories.rename"
	categories := store.Read[models.Category](ctx, s.store, models.CollectionCategories)
	i := indexOf(categories, id, categoryID)
	if i < 0 {
		return nil, notFound("category", id)
	}

	name, err := validateCategoryName(op, categories, id, name)
	if err != nil {
		s.logger.Warn("Category rename refused", zap.Int64("category_id", id), zap.Error(err))
		return nil, err
	}

	oldName := categories[i].Name
	categories[i].Name = name
	if err := store.Write(ctx, s.store, models.CollectionCategories, categories); err != nil {
		return nil, err
	}

	products := store.Read[models.Product](ctx, s.store, models.CollectionProducts)
	for j := range products {
		if products[j].CategoryID == id || (products[j].CategoryID == 0 && products[j].Category == oldName) {
			products[j].CategoryID = id
			products[j].Category = name
		}
	}
	if err := store.Write(ctx, s.store, models.CollectionProducts, products); err != nil {
		return nil, err
	}

	s.logger.Info("Category renamed",
		zap.Int64("category_id", id),
		zap.String("old_name", oldName),
		zap.String("new_name", name))
	s.collectionChanged(ctx, models.CollectionCategories, models.ActionUpdated, id, &actor)

	event := &models.CategoryRenamedEvent{
		BaseEvent:  newBaseEvent(models.EventTypeCategoryRenamed, s.now()),
		CategoryID: id,
		OldName:    oldName,
		NewName:    name,
	}
	if err := s.events.PublishCategoryRenamed(ctx, event); err != nil {
		s.logger.Error("Failed to publish CategoryRenamed event", zap.Error(err))
	}

	category := categories[i]
	category.ProductCount = countProducts(category, products)
	return &category, nil
}

// Delete removes a category that no product references.
func (s *CategoryService) Delete(ctx context.Context, actor models.User, id int64) error {
	ctx, span := util.StartSpan(ctx, "CategoryService.Delete")
	defer span.End()

	categories := store.Read[models.Category](ctx, s.store, models.CollectionCategories)
	i := indexOf(categories, id, categoryID)
	if i < 0 {
		return notFound("category", id)
	}

	products := store.Read[models.Product](ctx, s.store, models.CollectionProducts)
	if n := countProducts(categories[i], products); n > 0 {
		s.logger.Warn("Category still in use", zap.Int64("category_id", id), zap.Int("products", n))
		return invalid("categories.delete", "category %q still has %d product(s)", categories[i].Name, n)
	}

	categories = append(categories[:i], categories[i+1:]...)
	if err := store.Write(ctx, s.store, models.CollectionCategories, categories); err != nil {
		return err
	}

	s.logger.Info("Category deleted", zap.Int64("category_id", id))
	s.collectionChanged(ctx, models.CollectionCategories, models.ActionDeleted, id, &actor)
	return nil
}

func (s *CategoryService) Export(ctx context.Context, state listview.State) (*Export, error) {
	view, err := s.List(ctx, state)
	if err != nil {
		return nil, err
	}
	return categoryExport(view.Matched), nil
}

func validateCategoryName(op string, categories []models.Category, selfID int64, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return name, invalid(op, "category name is required")
	}
	for _, c := range categories {
		if c.ID != selfID && strings.EqualFold(c.Name, name) {
			return name, invalid(op, "category %q already exists", name)
		}
	}
	return name, nil
}
