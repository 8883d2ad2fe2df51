package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentTransaction is an immutable entry of the investment ledger
type InvestmentTransaction struct {
	ID             string          `json:"id"`
	Amount         decimal.Decimal `json:"amount"`
	Date           time.Time       `json:"date"`
	InvestorWallet string          `json:"investorWallet"`
}

// MilestonePayoutTransaction is an immutable entry of the payout ledger,
// created when a verified milestone releases its tranche to the project wallet
type MilestonePayoutTransaction struct {
	ID            string          `json:"id"`
	MilestoneID   int             `json:"milestoneId"`
	MilestoneName string          `json:"milestoneName"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
}

// SumInvestments returns the total amount of an investment ledger
func SumInvestments(entries []InvestmentTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}

// SumPayouts returns the total amount of a payout ledger
func SumPayouts(entries []MilestonePayoutTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}
