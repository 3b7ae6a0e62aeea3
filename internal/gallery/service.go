package gallery

import (
	"context"
	"fmt"

	"studio/internal/domain"
)

const (
	DefaultPageSize = 24
	MaxPageSize     = 100
)

// Page is one listing page. Total counts database rows before
// de-duplication, so a page can render fewer images than Limit even when
// more pages remain.
type Page struct {
	Images     []domain.Image `json:"images"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

// ListParams are the raw listing inputs.
type ListParams struct {
	Page     int
	Limit    int
	Category string
	Search   string
}

// Service reads gallery pages.
type Service struct {
	Images        domain.ImageRepository
	IsObjectStore func(url string) bool
}

func NewService(images domain.ImageRepository, isObjectStore func(url string) bool) *Service {
	return &Service{Images: images, IsObjectStore: isObjectStore}
}

// List fetches one page and de-duplicates it.
func (s *Service) List(ctx context.Context, p ListParams) (Page, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	q := domain.ImageQuery{
		Categories: CategoryFilter(p.Category),
		Search:     p.Search,
		Limit:      p.Limit,
		Offset:     (p.Page - 1) * p.Limit,
	}

	rows, err := s.Images.List(ctx, q)
	if err != nil {
		return Page{}, fmt.Errorf("gallery list: %w", err)
	}
	total, err := s.Images.Count(ctx, q)
	if err != nil {
		return Page{}, fmt.Errorf("gallery count: %w", err)
	}

	images := Dedupe(rows, s.IsObjectStore)
	for i := range images {
		images[i].Category = DisplayCategory(images[i].Category)
	}
	return Page{
		Images:     images,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: (total + p.Limit - 1) / p.Limit,
	}, nil
}

// Categories returns the merged public category list.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	counts, err := s.Images.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("gallery categories: %w", err)
	}
	return MergeCategories(counts), nil
}
