package domain

import "time"

// Donation is one row in the admin donation ledger. Only rows with
// CountsTowardTotal contribute to the public total.
type Donation struct {
	ID                string
	DonorName         string
	AmountCents       int64
	PaymentMethod     string
	Note              string
	TransactionDate   time.Time
	CountsTowardTotal bool
	OrderDescription  *string
	PhotoshootType    *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// DonationTotals is the public aggregate over counted donations.
type DonationTotals struct {
	TotalCents int64
	Count      int
}
