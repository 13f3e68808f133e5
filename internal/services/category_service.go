package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cashflow/internal/core"
	"cashflow/internal/storage"
)

// CategoryService manages user categories. Ledgers and budgets refer to
// categories by name, so delete and merge work on names.
type CategoryService struct {
	storage *storage.SQLiteRepository
}

func NewCategoryService(storage *storage.SQLiteRepository) *CategoryService {
	return &CategoryService{storage: storage}
}

// Create stores a category owned by userID. Names are unique among what
// the user can see, global defaults included.
func (s *CategoryService) Create(ctx context.Context, userID string, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)
	c.Type = core.CategoryType(strings.ToLower(strings.TrimSpace(string(c.Type))))
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	if _, err := s.storage.FindCategoryByName(ctx, userID, c.Name); err == nil {
		return core.Category{}, core.Invalidf("category %q already exists", c.Name)
	} else if !errors.Is(err, core.ErrNotFound) {
		return core.Category{}, err
	}

	c.UserID = &userID
	c.IsDefault = false
	created, err := s.storage.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

func (s *CategoryService) List(ctx context.Context, userID string) ([]core.Category, error) {
	return s.storage.ListCategories(ctx, userID)
}

func (s *CategoryService) Get(ctx context.Context, userID, id string) (core.Category, error) {
	return s.storage.GetCategory(ctx, userID, id)
}

func (s *CategoryService) Delete(ctx context.Context, userID, id string) error {
	return s.storage.DeleteCategory(ctx, userID, id)
}

// Merge moves every row referencing source onto target and removes
// source. It returns how many rows were rewritten.
func (s *CategoryService) Merge(ctx context.Context, userID, sourceID, targetID string) (int64, error) {
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return 0, core.Invalidf("target category is required")
	}
	return s.storage.MergeCategory(ctx, userID, sourceID, targetID)
}

// resolveCategory returns the category userID sees under name, in any
// letter case, provided it has type want. Rows store the returned
// category's name so that name joins stay exact.
func resolveCategory(ctx context.Context, st *storage.SQLiteRepository, userID, name string, want core.CategoryType) (core.Category, error) {
	name = strings.TrimSpace(name)
	c, err := st.FindCategoryByName(ctx, userID, name)
	if errors.Is(err, core.ErrNotFound) {
		return core.Category{}, core.Invalidf("category %q does not exist", name)
	}
	if err != nil {
		return core.Category{}, err
	}
	if c.Type != want {
		return core.Category{}, core.Invalidf("category %q is not an %s category", c.Name, want)
	}
	return c, nil
}
