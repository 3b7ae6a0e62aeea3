package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/sqlinline"
)

// DonationRepositoryPG implements DonationRepository using PostgreSQL.
type DonationRepositoryPG struct {
	db infra.SQLExecutor
}

// NewDonationRepository creates a new donation repo.
func NewDonationRepository(db infra.SQLExecutor) *DonationRepositoryPG {
	return &DonationRepositoryPG{db: db}
}

func scanDonation(row rowScanner) (domain.Donation, error) {
	var d domain.Donation
	err := row.Scan(&d.ID, &d.DonorName, &d.AmountCents, &d.PaymentMethod, &d.Note, &d.TransactionDate,
		&d.CountsTowardTotal, &d.OrderDescription, &d.PhotoshootType, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// List returns donations ordered by transaction date, newest first.
func (r *DonationRepositoryPG) List(ctx context.Context, limit, offset int) ([]domain.Donation, error) {
	rows, err := r.db.Query(ctx, sqlinline.QListDonations, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	defer rows.Close()

	var items []domain.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *DonationRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Donation, error) {
	d, err := scanDonation(r.db.QueryRow(ctx, sqlinline.QSelectDonationByID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get donation: %w", err)
	}
	return &d, nil
}

// Create inserts a new donation record and fills in its generated fields.
func (r *DonationRepositoryPG) Create(ctx context.Context, d *domain.Donation) error {
	row := r.db.QueryRow(ctx, sqlinline.QInsertDonation, d.DonorName, d.AmountCents, d.PaymentMethod, d.Note,
		d.TransactionDate, d.CountsTowardTotal, deref(d.OrderDescription), deref(d.PhotoshootType))
	if err := row.Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return fmt.Errorf("insert donation: %w", err)
	}
	return nil
}

// Update overwrites every editable column of d.
func (r *DonationRepositoryPG) Update(ctx context.Context, d *domain.Donation) error {
	row := r.db.QueryRow(ctx, sqlinline.QUpdateDonation, d.ID, d.DonorName, d.AmountCents, d.PaymentMethod, d.Note,
		d.TransactionDate, d.CountsTowardTotal, deref(d.OrderDescription), deref(d.PhotoshootType))
	if err := row.Scan(&d.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update donation: %w", err)
	}
	return nil
}

func (r *DonationRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, sqlinline.QDeleteDonation, id)
	if err != nil {
		return fmt.Errorf("delete donation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Totals sums donations flagged as counting toward the public total.
func (r *DonationRepositoryPG) Totals(ctx context.Context) (domain.DonationTotals, error) {
	var t domain.DonationTotals
	if err := r.db.QueryRow(ctx, sqlinline.QDonationTotals).Scan(&t.TotalCents, &t.Count); err != nil {
		return t, fmt.Errorf("donation totals: %w", err)
	}
	return t, nil
}

var _ domain.DonationRepository = (*DonationRepositoryPG)(nil)
