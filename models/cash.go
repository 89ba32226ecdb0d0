package models

import "time"

type CashCategory string

const (
	CashManualIn  CashCategory = "manual_in"
	CashManualOut CashCategory = "manual_out"
)

// CashEntry is a manual ledger line. Fee-derived income (monthlies, walk-ins,
// card fines) is computed from round history and settings, never stored.
type CashEntry struct {
	ID          int          `json:"id"`
	OwnerID     int          `json:"-"`
	Season      string       `json:"season"`
	Date        time.Time    `json:"date"`
	RoundID     *int         `json:"round_id,omitempty"`
	Category    CashCategory `json:"category"`
	Description string       `json:"description"`
	Amount      float64      `json:"amount"`
	CreatedAt   time.Time    `json:"created_at"`
}

// MonthlyFeeFlag marks whether a monthly-plan player paid a given month.
type MonthlyFeeFlag struct {
	Season   string `json:"season"`
	PlayerID int    `json:"player_id"`
	Month    int    `json:"month"` // 1..12
	Paid     bool   `json:"paid"`
}

// MonthSummary aggregates one month of cash flow for a season.
type MonthSummary struct {
	Season        string  `json:"season"`
	Month         int     `json:"month"`
	MonthlyIncome float64 `json:"monthly_income"`
	WalkInIncome  float64 `json:"walkin_income"`
	CardIncome    float64 `json:"card_income"`
	ManualIn      float64 `json:"manual_in"`
	CourtRent     float64 `json:"court_rent"`
	RefereeCost   float64 `json:"referee_cost"`
	ManualOut     float64 `json:"manual_out"`
	TotalIn       float64 `json:"total_in"`
	TotalOut      float64 `json:"total_out"`
	Balance       float64 `json:"balance"`
}
