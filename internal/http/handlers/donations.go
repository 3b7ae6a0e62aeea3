package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"studio/internal/domain"
	"studio/internal/money"
	"studio/internal/validation"

	"github.com/go-chi/chi/v5"
)

const (
	dateLayout           = "2006-01-02"
	defaultDonationLimit = 100
	maxDonationLimit     = 500
)

type donationRequest struct {
	DonorName         string  `json:"donor_name" validate:"required,max=200"`
	Amount            float64 `json:"amount" validate:"gt=0,lte=10000000"`
	PaymentMethod     string  `json:"payment_method" validate:"required,max=50"`
	Note              string  `json:"note" validate:"max=2000"`
	TransactionDate   string  `json:"transaction_date" validate:"required,datetime=2006-01-02"`
	CountsTowardTotal *bool   `json:"counts_toward_total"`
	OrderDescription  *string `json:"order_description" validate:"omitempty,max=500"`
	PhotoshootType    *string `json:"photoshoot_type" validate:"omitempty,max=100"`
}

type donationDTO struct {
	ID                string    `json:"id"`
	DonorName         string    `json:"donor_name"`
	Amount            float64   `json:"amount"`
	PaymentMethod     string    `json:"payment_method"`
	Note              string    `json:"note"`
	TransactionDate   string    `json:"transaction_date"`
	CountsTowardTotal bool      `json:"counts_toward_total"`
	OrderDescription  *string   `json:"order_description"`
	PhotoshootType    *string   `json:"photoshoot_type"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func toDonationDTO(d domain.Donation) donationDTO {
	return donationDTO{
		ID:                d.ID,
		DonorName:         d.DonorName,
		Amount:            money.FromCents(d.AmountCents),
		PaymentMethod:     d.PaymentMethod,
		Note:              d.Note,
		TransactionDate:   d.TransactionDate.Format(dateLayout),
		CountsTowardTotal: d.CountsTowardTotal,
		OrderDescription:  d.OrderDescription,
		PhotoshootType:    d.PhotoshootType,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

// donation validates req and converts it. Counted defaults to true.
func (a *App) donation(req donationRequest) (*domain.Donation, error) {
	req.DonorName = strings.TrimSpace(req.DonorName)
	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	req.TransactionDate = strings.TrimSpace(req.TransactionDate)
	if err := a.Validator.Struct(req); err != nil {
		return nil, err
	}
	cents, err := money.ToCents(req.Amount)
	if err != nil || cents <= 0 {
		return nil, &validation.Error{Fields: map[string]string{"amount": "must be at least 0.01"}}
	}
	date, _ := time.Parse(dateLayout, req.TransactionDate)
	counted := true
	if req.CountsTowardTotal != nil {
		counted = *req.CountsTowardTotal
	}
	return &domain.Donation{
		DonorName:         req.DonorName,
		AmountCents:       cents,
		PaymentMethod:     req.PaymentMethod,
		Note:              strings.TrimSpace(req.Note),
		TransactionDate:   date,
		CountsTowardTotal: counted,
		OrderDescription:  trimmedOrNil(req.OrderDescription),
		PhotoshootType:    trimmedOrNil(req.PhotoshootType),
	}, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (a *App) DonationsList(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultDonationLimit
	}
	if limit > maxDonationLimit {
		limit = maxDonationLimit
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	rows, err := a.Donations.List(r.Context(), limit, offset)
	if err != nil {
		a.fail(w, r, err, "failed to load donations")
		return
	}
	items := make([]donationDTO, 0, len(rows))
	for _, d := range rows {
		items = append(items, toDonationDTO(d))
	}
	a.json(w, http.StatusOK, map[string]any{"donations": items, "limit": limit, "offset": offset})
}

func (a *App) DonationsCreate(w http.ResponseWriter, r *http.Request) {
	var req donationRequest
	if !a.decode(w, r, &req) {
		return
	}
	d, err := a.donation(req)
	if err != nil {
		a.fail(w, r, err, "invalid donation")
		return
	}
	if err := a.Donations.Create(r.Context(), d); err != nil {
		a.fail(w, r, err, "failed to create donation")
		return
	}
	a.json(w, http.StatusCreated, toDonationDTO(*d))
}

func (a *App) DonationsUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	current, err := a.Donations.GetByID(r.Context(), id)
	if err != nil {
		a.fail(w, r, err, "failed to load donation")
		return
	}
	var req donationRequest
	if !a.decode(w, r, &req) {
		return
	}
	d, err := a.donation(req)
	if err != nil {
		a.fail(w, r, err, "invalid donation")
		return
	}
	d.ID = id
	d.CreatedAt = current.CreatedAt
	if err := a.Donations.Update(r.Context(), d); err != nil {
		a.fail(w, r, err, "failed to update donation")
		return
	}
	a.json(w, http.StatusOK, toDonationDTO(*d))
}

func (a *App) DonationsDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.Donations.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.fail(w, r, err, "failed to delete donation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DonationsTotal is public: only counted rows contribute.
func (a *App) DonationsTotal(w http.ResponseWriter, r *http.Request) {
	totals, err := a.Donations.Totals(r.Context())
	if err != nil {
		a.fail(w, r, err, "failed to load total")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"total": money.FromCents(totals.TotalCents),
		"count": totals.Count,
	})
}
