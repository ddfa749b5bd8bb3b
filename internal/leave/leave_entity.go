package leave

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusApproved  = "approved"
	StatusCancelled = "cancelled"
)

const (
	TxDebit  = "debit"
	TxCredit = "credit"
)

// Leave types balances are tracked under.
const (
	TypeCasual   = "casual"
	TypeSick     = "sick"
	TypeVacation = "vacation"
	TypeGeneral  = "general"
)

// Employee is owned by the HR system; this service only reads it.
type Employee struct {
	EmployeeID string    `gorm:"type:varchar(20);primaryKey"`
	Name       string    `gorm:"type:varchar(100);not null"`
	Email      string    `gorm:"type:varchar(100)"`
	Department string    `gorm:"type:varchar(50)"`
	JoinDate   time.Time `gorm:"type:date"`
	CreatedAt  time.Time
}

// LeaveBalance is keyed by (employee, leave type) and only ever mutated
// through the service's deduct/restore paths.
type LeaveBalance struct {
	ID         uint            `gorm:"primaryKey"`
	EmployeeID string          `gorm:"type:varchar(20);not null;uniqueIndex:uq_balance_employee_type"`
	LeaveType  string          `gorm:"type:varchar(20);not null;uniqueIndex:uq_balance_employee_type"`
	Balance    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	UpdatedAt  time.Time
}

// LeaveRequest is immutable once approved; the only permitted status
// transition is approved -> cancelled.
type LeaveRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID  string    `gorm:"type:varchar(20);not null;index:idx_requests_employee_dates"`
	LeaveType   string    `gorm:"type:varchar(20);not null"`
	StartDate   time.Time `gorm:"type:date;not null;index:idx_requests_employee_dates"`
	EndDate     time.Time `gorm:"type:date;not null;index:idx_requests_employee_dates"`
	DaysCount   int       `gorm:"type:int;not null;default:1"`
	Reason      string    `gorm:"type:text"`
	Status      string    `gorm:"type:varchar(20);not null;default:'approved';index"`
	RequestedAt time.Time
	ApprovedAt  *time.Time
}

// LeaveTransaction is the append-only audit trail of balance changes.
// Rows are written once and never updated or deleted.
type LeaveTransaction struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID    string          `gorm:"type:varchar(20);not null;index"`
	LeaveType     string          `gorm:"type:varchar(20);not null"`
	Kind          string          `gorm:"type:varchar(20);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Description   string          `gorm:"type:text"`
	CreatedAt     time.Time
}

// PendingLeave is the one staged application an employee may have,
// waiting for a yes/no. It lives in redis under a TTL, not in postgres.
type PendingLeave struct {
	LeaveType string    `json:"leave_type"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	DaysCount int       `json:"days_count"`
	ExpiresAt time.Time `json:"expires_at"`
}
