package leave

import "github.com/shopspring/decimal"

// OverlapDetail describes one already-approved request that collides
// with a proposed range.
type OverlapDetail struct {
	ID        string `json:"id"`
	LeaveType string `json:"leave_type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      int    `json:"days"`
}

// RequestSummary is the outcome of staging a leave application. When
// HasOverlap is set nothing was staged; otherwise a pending record now
// exists even if IsEligible is false (confirmation re-checks).
type RequestSummary struct {
	EmployeeID       string          `json:"employee_id"`
	LeaveType        string          `json:"leave_type"`
	StartDate        string          `json:"start_date"`
	EndDate          string          `json:"end_date"`
	Days             int             `json:"days"`
	CurrentBalance   decimal.Decimal `json:"current_balance"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	IsEligible       bool            `json:"is_eligible"`
	Shortage         decimal.Decimal `json:"shortage"`
	HasOverlap       bool            `json:"has_overlap"`
	Overlaps         []OverlapDetail `json:"overlapping_leaves,omitempty"`
}

type ConfirmationResult struct {
	RequestID        string          `json:"request_id"`
	EmployeeID       string          `json:"employee_id"`
	LeaveType        string          `json:"leave_type"`
	StartDate        string          `json:"start_date"`
	EndDate          string          `json:"end_date"`
	Days             int             `json:"days"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

type CancelledLeave struct {
	ID              string          `json:"id"`
	LeaveType       string          `json:"leave_type"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	Days            int             `json:"days"`
	RestoredBalance decimal.Decimal `json:"restored_balance"`
}

type CancellationResult struct {
	EmployeeID    string           `json:"employee_id"`
	Cancelled     []CancelledLeave `json:"cancelled_leaves"`
	TotalRestored decimal.Decimal  `json:"total_restored"`
}

type BalanceItem struct {
	LeaveType string          `json:"leave_type"`
	Balance   decimal.Decimal `json:"balance"`
}

type HistoryEntry struct {
	ID          string `json:"id"`
	LeaveType   string `json:"leave_type"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Days        int    `json:"days"`
	Status      string `json:"status"`
	RequestedAt string `json:"requested_at"`
}

// Date-eligibility reasons.
const (
	ReasonWeekend   = "weekend"
	ReasonNoBalance = "no_balance"
	ReasonEligible  = "eligible"
)

// DateEligibility answers "can I take leave on <date>" without staging
// anything.
type DateEligibility struct {
	Eligible     bool            `json:"eligible"`
	Reason       string          `json:"reason"`
	Date         string          `json:"date"`
	DayName      string          `json:"day_name"`
	Balance      decimal.Decimal `json:"balance"`
	AfterBalance decimal.Decimal `json:"after_balance"`
	Required     int             `json:"required"`
	DatePhrase   string          `json:"date_phrase"`
}
