package leave

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	EmployeeExists(ctx context.Context, employeeID string) (bool, error)
	GetEmployee(ctx context.Context, employeeID string) (*Employee, error)
	GetBalance(ctx context.Context, employeeID, leaveType string) (decimal.Decimal, error)
	GetBalanceForUpdate(ctx context.Context, employeeID, leaveType string) (decimal.Decimal, error)
	SetBalance(ctx context.Context, employeeID, leaveType string, balance decimal.Decimal) error
	ListBalances(ctx context.Context, employeeID string) ([]LeaveBalance, error)
	CreateRequest(ctx context.Context, req *LeaveRequest) error
	FindOverlaps(ctx context.Context, employeeID string, start, end time.Time) ([]LeaveRequest, error)
	FindInRange(ctx context.Context, employeeID string, start, end time.Time) ([]LeaveRequest, error)
	CancelRequest(ctx context.Context, employeeID, requestID string) (*LeaveRequest, error)
	ListRequests(ctx context.Context, employeeID string, limit int) ([]LeaveRequest, error)
	LogTransaction(ctx context.Context, txn *LeaveTransaction) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx returns a copy of the repository bound to an open transaction,
// so a service can group several writes into one unit.
func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Employee{}).
		Where("employee_id = ?", employeeID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) GetEmployee(ctx context.Context, employeeID string) (*Employee, error) {
	var emp Employee
	err := r.db.WithContext(ctx).
		First(&emp, "employee_id = ?", employeeID).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// GetBalance treats a missing row as a zero balance rather than an error;
// employees without an allocation simply have nothing to spend.
func (r *repository) GetBalance(ctx context.Context, employeeID, leaveType string) (decimal.Decimal, error) {
	var bal LeaveBalance
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND leave_type = ?", employeeID, leaveType).
		First(&bal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return bal.Balance, nil
}

// GetBalanceForUpdate reads the balance under SELECT ... FOR UPDATE.
// Call it inside a transaction: the row stays locked until commit, which
// serializes concurrent read-modify-write cycles on the same balance.
func (r *repository) GetBalanceForUpdate(ctx context.Context, employeeID, leaveType string) (decimal.Decimal, error) {
	var bal LeaveBalance
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("employee_id = ? AND leave_type = ?", employeeID, leaveType).
		First(&bal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return bal.Balance, nil
}

func (r *repository) SetBalance(ctx context.Context, employeeID, leaveType string, balance decimal.Decimal) error {
	bal := LeaveBalance{
		EmployeeID: employeeID,
		LeaveType:  leaveType,
		Balance:    balance,
		UpdatedAt:  time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "employee_id"}, {Name: "leave_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"balance", "updated_at"}),
		}).
		Create(&bal).Error
}

func (r *repository) ListBalances(ctx context.Context, employeeID string) ([]LeaveBalance, error) {
	var balances []LeaveBalance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("leave_type ASC").
		Find(&balances).Error
	return balances, err
}

func (r *repository) CreateRequest(ctx context.Context, req *LeaveRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// FindOverlaps returns approved requests whose date span intersects
// [start, end]. Two ranges intersect unless one ends before the other
// begins, hence the negated disjointness predicate.
func (r *repository) FindOverlaps(ctx context.Context, employeeID string, start, end time.Time) ([]LeaveRequest, error) {
	var reqs []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND status = ?", employeeID, StatusApproved).
		Where("NOT (end_date < ? OR start_date > ?)", start, end).
		Find(&reqs).Error
	return reqs, err
}

// FindInRange returns approved requests lying entirely inside [start, end].
func (r *repository) FindInRange(ctx context.Context, employeeID string, start, end time.Time) ([]LeaveRequest, error) {
	var reqs []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND status = ?", employeeID, StatusApproved).
		Where("start_date >= ? AND end_date <= ?", start, end).
		Order("start_date ASC").
		Find(&reqs).Error
	return reqs, err
}

// CancelRequest flips one approved request to cancelled and returns the
// record as it was before the flip. gorm.ErrRecordNotFound means the id
// does not exist or is no longer approved.
func (r *repository) CancelRequest(ctx context.Context, employeeID, requestID string) (*LeaveRequest, error) {
	var req LeaveRequest
	err := r.db.WithContext(ctx).
		Where("id = ? AND employee_id = ? AND status = ?", requestID, employeeID, StatusApproved).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	err = r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("id = ?", req.ID).
		Update("status", StatusCancelled).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) ListRequests(ctx context.Context, employeeID string, limit int) ([]LeaveRequest, error) {
	var reqs []LeaveRequest
	q := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("requested_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&reqs).Error
	return reqs, err
}

func (r *repository) LogTransaction(ctx context.Context, txn *LeaveTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}
