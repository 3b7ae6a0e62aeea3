package domain

import "context"

// ImageRepository defines gallery persistence.
type ImageRepository interface {
	List(ctx context.Context, q ImageQuery) ([]Image, error)
	Count(ctx context.Context, q ImageQuery) (int, error)
	ListAll(ctx context.Context) ([]Image, error)
	GetByID(ctx context.Context, id string) (*Image, error)
	FindByFilename(ctx context.Context, filename string) ([]Image, error)
	Create(ctx context.Context, img *Image) error
	Update(ctx context.Context, id string, patch ImagePatch) (*Image, error)
	UpdateURL(ctx context.Context, id, url string) error
	Delete(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]CategoryCount, error)
}

// DonationRepository handles donation persistence.
type DonationRepository interface {
	List(ctx context.Context, limit, offset int) ([]Donation, error)
	GetByID(ctx context.Context, id string) (*Donation, error)
	Create(ctx context.Context, donation *Donation) error
	Update(ctx context.Context, donation *Donation) error
	Delete(ctx context.Context, id string) error
	Totals(ctx context.Context) (DonationTotals, error)
}
