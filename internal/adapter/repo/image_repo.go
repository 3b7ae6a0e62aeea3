package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/sqlinline"
)

// ImageRepositoryPG implements domain.ImageRepository on PostgreSQL.
type ImageRepositoryPG struct {
	db infra.SQLExecutor
}

// NewImageRepository constructs a new image repository instance.
func NewImageRepository(db infra.SQLExecutor) *ImageRepositoryPG {
	return &ImageRepositoryPG{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanImage(row rowScanner) (domain.Image, error) {
	var img domain.Image
	err := row.Scan(&img.ID, &img.Filename, &img.Alt, &img.Category, &img.URL, &img.Width, &img.Height, &img.Size, &img.CreatedAt)
	return img, err
}

func collectImages(rows pgx.Rows) ([]domain.Image, error) {
	defer rows.Close()
	var items []domain.Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// categoriesArg never returns nil so the array parameter is not NULL.
func categoriesArg(q domain.ImageQuery) []string {
	out := make([]string, 0, len(q.Categories))
	for _, c := range q.Categories {
		out = append(out, strings.ToLower(strings.TrimSpace(c)))
	}
	return out
}

// List returns one page of images, newest first.
func (r *ImageRepositoryPG) List(ctx context.Context, q domain.ImageQuery) ([]domain.Image, error) {
	rows, err := r.db.Query(ctx, sqlinline.QListImages, categoriesArg(q), strings.TrimSpace(q.Search), q.Limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return collectImages(rows)
}

// Count returns the number of rows matching q before de-duplication.
func (r *ImageRepositoryPG) Count(ctx context.Context, q domain.ImageQuery) (int, error) {
	var total int
	if err := r.db.QueryRow(ctx, sqlinline.QCountImages, categoriesArg(q), strings.TrimSpace(q.Search)).Scan(&total); err != nil {
		return 0, fmt.Errorf("count images: %w", err)
	}
	return total, nil
}

// ListAll returns every image, oldest first. Migration jobs iterate this.
func (r *ImageRepositoryPG) ListAll(ctx context.Context) ([]domain.Image, error) {
	rows, err := r.db.Query(ctx, sqlinline.QListAllImages)
	if err != nil {
		return nil, fmt.Errorf("list all images: %w", err)
	}
	return collectImages(rows)
}

func (r *ImageRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Image, error) {
	img, err := scanImage(r.db.QueryRow(ctx, sqlinline.QSelectImageByID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get image: %w", err)
	}
	return &img, nil
}

// FindByFilename matches case-insensitively, newest first.
func (r *ImageRepositoryPG) FindByFilename(ctx context.Context, filename string) ([]domain.Image, error) {
	rows, err := r.db.Query(ctx, sqlinline.QSelectImagesByFilename, filename)
	if err != nil {
		return nil, fmt.Errorf("find image by filename: %w", err)
	}
	return collectImages(rows)
}

// Create inserts img and fills in ID and CreatedAt.
func (r *ImageRepositoryPG) Create(ctx context.Context, img *domain.Image) error {
	row := r.db.QueryRow(ctx, sqlinline.QInsertImage, img.Filename, img.Alt, img.Category, img.URL, img.Width, img.Height, img.Size)
	if err := row.Scan(&img.ID, &img.CreatedAt); err != nil {
		return fmt.Errorf("insert image: %w", err)
	}
	return nil
}

func (r *ImageRepositoryPG) Update(ctx context.Context, id string, patch domain.ImagePatch) (*domain.Image, error) {
	img, err := scanImage(r.db.QueryRow(ctx, sqlinline.QUpdateImage, id, patch.Alt, patch.Category, patch.URL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update image: %w", err)
	}
	return &img, nil
}

func (r *ImageRepositoryPG) UpdateURL(ctx context.Context, id, url string) error {
	tag, err := r.db.Exec(ctx, sqlinline.QUpdateImageURL, id, url)
	if err != nil {
		return fmt.Errorf("update image url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ImageRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, sqlinline.QDeleteImage, id)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Categories returns stored labels with row counts.
func (r *ImageRepositoryPG) Categories(ctx context.Context) ([]domain.CategoryCount, error) {
	rows, err := r.db.Query(ctx, sqlinline.QListImageCategories)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var out []domain.CategoryCount
	for rows.Next() {
		var c domain.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

var _ domain.ImageRepository = (*ImageRepositoryPG)(nil)
