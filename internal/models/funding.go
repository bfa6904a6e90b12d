package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type FundingStatus string

const (
	FundingRequested FundingStatus = "REQUESTED"
	FundingPending   FundingStatus = "PENDING"
	FundingApproved  FundingStatus = "APPROVED"
	FundingRejected  FundingStatus = "REJECTED"
)

var FundingStatuses = []FundingStatus{FundingRequested, FundingPending, FundingApproved, FundingRejected}

func (s FundingStatus) Valid() bool {
	switch s {
	case FundingRequested, FundingPending, FundingApproved, FundingRejected:
		return true
	}
	return false
}

var (
	ErrFundingTargetMissing   = errors.New("either select an investor or choose all investors")
	ErrFundingTargetAmbiguous = errors.New("cannot select both an investor and all investors")
)

// StatusChange is one append-only audit entry of a funding round.
type StatusChange struct {
	At   time.Time     `json:"at"`
	From FundingStatus `json:"from"`
	To   FundingStatus `json:"to"`
}

func (c StatusChange) String() string {
	return fmt.Sprintf("%s | %s → %s", c.At.UTC().Format(time.RFC3339), c.From, c.To)
}

type FundingRound struct {
	ID           uuid.UUID     `json:"id"`
	StartupID    uuid.UUID     `json:"startup_id"`
	InvestorID   uuid.NullUUID `json:"investor_id"`
	AllInvestors bool          `json:"all_investors"`
	RoundName    string        `json:"round_name"`
	AmountCents  int64         `json:"amount_cents"`
	Status       FundingStatus `json:"status"`
	// Recipients is the investor snapshot taken when the target was set.
	Recipients []uuid.UUID    `json:"recipients"`
	History    []StatusChange `json:"status_history"`
	Version    int            `json:"version"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Validate enforces that a round targets one investor or all of them, never both.
func (f *FundingRound) Validate() error {
	if !f.AllInvestors && !f.InvestorID.Valid {
		return ErrFundingTargetMissing
	}
	if f.AllInvestors && f.InvestorID.Valid {
		return ErrFundingTargetAmbiguous
	}
	return nil
}

func (f *FundingRound) HasRecipient(investorID uuid.UUID) bool {
	for _, id := range f.Recipients {
		if id == investorID {
			return true
		}
	}
	return false
}

// HistoryLog renders the audit trail in the legacy text format, one entry per line.
func (f *FundingRound) HistoryLog() string {
	var out string
	for _, c := range f.History {
		out += c.String() + "\n"
	}
	return out
}

func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

type FundingFilter struct {
	StartupID   uuid.UUID
	RecipientID uuid.UUID
	Status      FundingStatus
}
