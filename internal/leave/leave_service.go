package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-leavechat/internal/bootstrap"
	"go-leavechat/internal/events"
	leaveerrors "go-leavechat/internal/leave/errors"
	"go-leavechat/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// Rules are the tunable business constraints, loaded from config.
type Rules struct {
	MinBalance         decimal.Decimal
	MaxConsecutiveDays int
	WeekendCounts      bool
}

// ShortageError reports how far a confirmation fell short of the balance.
// It matches ErrInsufficientBalance under errors.Is.
type ShortageError struct {
	Current   decimal.Decimal
	Requested int
	Shortage  decimal.Decimal
}

func (e *ShortageError) Error() string {
	return fmt.Sprintf("insufficient leave balance: have %s, need %d", e.Current, e.Requested)
}

func (e *ShortageError) Unwrap() error {
	return leaveerrors.ErrInsufficientBalance
}

type Service interface {
	ValidateEmployee(ctx context.Context, employeeID string) (*Employee, error)
	CheckEligibility(ctx context.Context, employeeID, leaveType string, days int) (bool, decimal.Decimal, decimal.Decimal, error)
	CreateRequest(ctx context.Context, employeeID, leaveType string, start, end time.Time, days int) (*RequestSummary, error)
	ConfirmRequest(ctx context.Context, employeeID string) (*ConfirmationResult, error)
	CancelPending(ctx context.Context, employeeID string) error
	CancelApproved(ctx context.Context, employeeID string, start, end time.Time) (*CancellationResult, error)
	Balances(ctx context.Context, employeeID string) ([]BalanceItem, error)
	History(ctx context.Context, employeeID string, limit int) ([]HistoryEntry, error)
	CheckEligibilityForDate(ctx context.Context, employeeID, leaveType string, date time.Time, days int) (*DateEligibility, error)
}

type service struct {
	db      *gorm.DB
	repo    Repository
	pending PendingStore
	events  EventPublisher
	audit   bootstrap.AuditLogger
	rules   Rules
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(
	db *gorm.DB,
	repo Repository,
	pending PendingStore,
	publisher EventPublisher,
	audit bootstrap.AuditLogger,
	rules Rules,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithClock(db, repo, pending, publisher, audit, rules, time.Now, logger...)
}

// NewServiceWithClock injects the clock so date-sensitive rules (past-leave
// cancellation, date phrases) are deterministic in tests.
func NewServiceWithClock(
	db *gorm.DB,
	repo Repository,
	pending PendingStore,
	publisher EventPublisher,
	audit bootstrap.AuditLogger,
	rules Rules,
	clock func() time.Time,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	if publisher == nil {
		publisher = noopEventPublisher{}
	}
	if audit == nil {
		audit = bootstrap.NewStdoutAuditLogger()
	}
	return &service{
		db:      db,
		repo:    repo,
		pending: pending,
		events:  publisher,
		audit:   audit,
		rules:   rules,
		logger:  l,
		now:     clock,
	}
}

func (s *service) ValidateEmployee(ctx context.Context, employeeID string) (*Employee, error) {
	exists, err := s.repo.EmployeeExists(ctx, employeeID)
	if err != nil {
		s.logger.Error("validate employee lookup failed",
			zap.String("request_id", contextutil.GetRequestID(ctx)),
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return nil, mapStorageError(err)
	}
	if !exists {
		return nil, leaveerrors.ErrEmployeeNotFound
	}
	emp, err := s.repo.GetEmployee(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrEmployeeNotFound
		}
		return nil, mapStorageError(err)
	}
	return emp, nil
}

// CheckEligibility reports whether deducting days would keep the balance at
// or above the configured floor. Returns eligibility, current and remaining.
func (s *service) CheckEligibility(ctx context.Context, employeeID, leaveType string, days int) (bool, decimal.Decimal, decimal.Decimal, error) {
	current, err := s.repo.GetBalance(ctx, employeeID, leaveType)
	if err != nil {
		return false, decimal.Zero, decimal.Zero, mapStorageError(err)
	}
	remaining := current.Sub(decimal.NewFromInt(int64(days)))
	eligible := remaining.GreaterThanOrEqual(s.rules.MinBalance)
	return eligible, current, remaining, nil
}

// CreateRequest stages a leave application for confirmation. Overlaps with
// approved leave hard-block the request; anything else (including an
// ineligible balance) still stages it, because confirmation re-checks.
// Any previous pending request for the employee is replaced.
func (s *service) CreateRequest(ctx context.Context, employeeID, leaveType string, start, end time.Time, days int) (*RequestSummary, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create leave request",
		zap.String("request_id", rid),
		zap.String("employee_id", employeeID),
		zap.String("leave_type", leaveType),
		zap.String("start", start.Format(dateLayout)),
		zap.String("end", end.Format(dateLayout)),
		zap.Int("days", days),
	)

	if s.rules.MaxConsecutiveDays > 0 {
		span := int(end.Sub(start).Hours()/24) + 1
		if span > s.rules.MaxConsecutiveDays {
			s.logger.Warn("leave span exceeds maximum",
				zap.String("employee_id", employeeID),
				zap.Int("span", span),
				zap.Int("max", s.rules.MaxConsecutiveDays),
			)
			return nil, leaveerrors.ErrSpanTooLong
		}
	}

	overlapping, err := s.repo.FindOverlaps(ctx, employeeID, start, end)
	if err != nil {
		s.logger.Error("overlap check failed", zap.String("request_id", rid), zap.Error(err))
		return nil, mapStorageError(err)
	}
	if len(overlapping) > 0 {
		details := make([]OverlapDetail, 0, len(overlapping))
		for _, l := range overlapping {
			details = append(details, OverlapDetail{
				ID:        l.ID.String(),
				LeaveType: l.LeaveType,
				StartDate: l.StartDate.Format(dateLayout),
				EndDate:   l.EndDate.Format(dateLayout),
				Days:      l.DaysCount,
			})
		}
		return &RequestSummary{
			EmployeeID: employeeID,
			HasOverlap: true,
			Overlaps:   details,
		}, nil
	}

	eligible, current, remaining, err := s.CheckEligibility(ctx, employeeID, leaveType, days)
	if err != nil {
		return nil, err
	}

	if prev, peekErr := s.pending.Get(ctx, employeeID); peekErr == nil && prev != nil {
		s.logger.Debug("replacing staged pending leave",
			zap.String("employee_id", employeeID),
			zap.String("previous_start", prev.StartDate.Format(dateLayout)),
			zap.String("previous_end", prev.EndDate.Format(dateLayout)),
		)
	}

	pending := &PendingLeave{
		LeaveType: leaveType,
		StartDate: start,
		EndDate:   end,
		DaysCount: days,
	}
	if err := s.pending.Set(ctx, employeeID, pending); err != nil {
		s.logger.Error("stage pending leave failed", zap.String("request_id", rid), zap.Error(err))
		return nil, mapStorageError(err)
	}

	shortage := decimal.Zero
	if !eligible {
		shortage = decimal.NewFromInt(int64(days)).Sub(current)
	}
	return &RequestSummary{
		EmployeeID:       employeeID,
		LeaveType:        leaveType,
		StartDate:        start.Format(dateLayout),
		EndDate:          end.Format(dateLayout),
		Days:             days,
		CurrentBalance:   current,
		RemainingBalance: remaining,
		IsEligible:       eligible,
		Shortage:         shortage,
	}, nil
}

// ConfirmRequest applies the staged leave. Take claims the pending
// record atomically, so of two racing confirmations only one proceeds.
// The eligibility re-check then runs inside the same transaction that
// writes, against a FOR UPDATE read of the balance row: a concurrent
// confirm for the same employee blocks on the lock and sees the already
// deducted balance. On a shortage (or a newly approved overlap) the
// claim is not given back; transient storage failures restage it.
func (s *service) ConfirmRequest(ctx context.Context, employeeID string) (*ConfirmationResult, error) {
	rid := contextutil.GetRequestID(ctx)

	pending, err := s.pending.Take(ctx, employeeID)
	if err != nil {
		s.logger.Error("claim pending leave failed", zap.String("request_id", rid), zap.Error(err))
		return nil, mapStorageError(err)
	}
	if pending == nil {
		return nil, leaveerrors.ErrNoPendingConfirmation
	}

	now := s.now()
	req := &LeaveRequest{
		ID:          uuid.New(),
		EmployeeID:  employeeID,
		LeaveType:   pending.LeaveType,
		StartDate:   pending.StartDate,
		EndDate:     pending.EndDate,
		DaysCount:   pending.DaysCount,
		Status:      StatusApproved,
		RequestedAt: now,
		ApprovedAt:  &now,
	}

	var current, remaining decimal.Decimal
	err = s.db.Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		// Approvals may have landed since staging; re-check the span.
		overlapping, txErr := qtx.FindOverlaps(ctx, employeeID, pending.StartDate, pending.EndDate)
		if txErr != nil {
			return txErr
		}
		if len(overlapping) > 0 {
			return leaveerrors.ErrOverlapDetected
		}

		current, txErr = qtx.GetBalanceForUpdate(ctx, employeeID, pending.LeaveType)
		if txErr != nil {
			return txErr
		}
		remaining = current.Sub(decimal.NewFromInt(int64(pending.DaysCount)))
		if !remaining.GreaterThanOrEqual(s.rules.MinBalance) {
			return &ShortageError{
				Current:   current,
				Requested: pending.DaysCount,
				Shortage:  decimal.NewFromInt(int64(pending.DaysCount)).Sub(current),
			}
		}

		if txErr := qtx.CreateRequest(ctx, req); txErr != nil {
			return txErr
		}
		if txErr := qtx.SetBalance(ctx, employeeID, pending.LeaveType, remaining); txErr != nil {
			return txErr
		}
		return qtx.LogTransaction(ctx, &LeaveTransaction{
			ID:            uuid.New(),
			EmployeeID:    employeeID,
			LeaveType:     pending.LeaveType,
			Kind:          TxDebit,
			Amount:        decimal.NewFromInt(int64(pending.DaysCount)),
			BalanceBefore: current,
			BalanceAfter:  remaining,
			Description: fmt.Sprintf("Leave from %s to %s",
				pending.StartDate.Format(dateLayout), pending.EndDate.Format(dateLayout)),
			CreatedAt: now,
		})
	})
	if err != nil {
		var shortage *ShortageError
		if errors.As(err, &shortage) {
			return nil, shortage
		}
		if errors.Is(err, leaveerrors.ErrOverlapDetected) {
			return nil, leaveerrors.ErrOverlapDetected
		}
		// Transient failure: give the claim back so the user can retry.
		if restoreErr := s.pending.Set(ctx, employeeID, pending); restoreErr != nil {
			s.logger.Warn("restage pending after failed confirm", zap.String("request_id", rid), zap.Error(restoreErr))
		}
		s.logger.Error("confirm leave transaction failed", zap.String("request_id", rid), zap.Error(err))
		return nil, mapStorageError(err)
	}

	if err := s.events.PublishLeaveApproved(ctx, events.LeaveApprovedEvent{
		EventType:  "leave.approved",
		RequestID:  req.ID.String(),
		EmployeeID: employeeID,
		LeaveType:  pending.LeaveType,
		StartDate:  pending.StartDate.Format(dateLayout),
		EndDate:    pending.EndDate.Format(dateLayout),
		Days:       pending.DaysCount,
		OccurredAt: now,
	}); err != nil {
		s.logger.Error("publish leave approved failed", zap.String("request_id", rid), zap.Error(err))
	}

	s.audit.Log(ctx, bootstrap.AuditLog{
		Action:  "leave.confirmed",
		Message: "leave request confirmed",
		Meta: map[string]any{
			"request_id":  req.ID.String(),
			"employee_id": employeeID,
			"leave_type":  pending.LeaveType,
			"days":        pending.DaysCount,
		},
	})

	return &ConfirmationResult{
		RequestID:        req.ID.String(),
		EmployeeID:       employeeID,
		LeaveType:        pending.LeaveType,
		StartDate:        pending.StartDate.Format(dateLayout),
		EndDate:          pending.EndDate.Format(dateLayout),
		Days:             pending.DaysCount,
		RemainingBalance: remaining,
	}, nil
}

// CancelPending drops the staged request if there is one. Clearing an
// absent pending is not an error.
func (s *service) CancelPending(ctx context.Context, employeeID string) error {
	if err := s.pending.Clear(ctx, employeeID); err != nil {
		return mapStorageError(err)
	}
	return nil
}

// CancelApproved cancels every approved leave lying fully inside
// [start, end], restoring each one's balance. Records are processed
// independently: one failing does not roll back the others.
func (s *service) CancelApproved(ctx context.Context, employeeID string, start, end time.Time) (*CancellationResult, error) {
	rid := contextutil.GetRequestID(ctx)

	today := s.today()
	if !start.After(today) {
		return nil, leaveerrors.ErrPastLeaveCancellation
	}

	leaves, err := s.repo.FindInRange(ctx, employeeID, start, end)
	if err != nil {
		s.logger.Error("find leaves in range failed", zap.String("request_id", rid), zap.Error(err))
		return nil, mapStorageError(err)
	}
	if len(leaves) == 0 {
		return nil, leaveerrors.ErrNoLeavesFoundInRange
	}

	result := &CancellationResult{
		EmployeeID:    employeeID,
		Cancelled:     []CancelledLeave{},
		TotalRestored: decimal.Zero,
	}

	for _, l := range leaves {
		restored, err := s.cancelOne(ctx, employeeID, l)
		if err != nil {
			s.logger.Error("cancel approved leave failed",
				zap.String("request_id", rid),
				zap.String("leave_id", l.ID.String()),
				zap.Error(err),
			)
			continue
		}
		days := decimal.NewFromInt(int64(l.DaysCount))
		result.Cancelled = append(result.Cancelled, CancelledLeave{
			ID:              l.ID.String(),
			LeaveType:       l.LeaveType,
			StartDate:       l.StartDate.Format(dateLayout),
			EndDate:         l.EndDate.Format(dateLayout),
			Days:            l.DaysCount,
			RestoredBalance: restored,
		})
		result.TotalRestored = result.TotalRestored.Add(days)

		if err := s.events.PublishLeaveCancelled(ctx, events.LeaveCancelledEvent{
			EventType:  "leave.cancelled",
			RequestID:  l.ID.String(),
			EmployeeID: employeeID,
			LeaveType:  l.LeaveType,
			Days:       l.DaysCount,
			OccurredAt: s.now(),
		}); err != nil {
			s.logger.Error("publish leave cancelled failed", zap.String("request_id", rid), zap.Error(err))
		}
	}

	if len(result.Cancelled) > 0 {
		s.audit.Log(ctx, bootstrap.AuditLog{
			Action:  "leave.cancelled",
			Message: "approved leave cancelled",
			Meta: map[string]any{
				"employee_id":    employeeID,
				"cancelled":      len(result.Cancelled),
				"total_restored": result.TotalRestored.String(),
			},
		})
	}
	return result, nil
}

// cancelOne flips a single request and restores its balance in one
// transaction, returning the balance after restoration.
func (s *service) cancelOne(ctx context.Context, employeeID string, l LeaveRequest) (decimal.Decimal, error) {
	var restored decimal.Decimal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)
		if _, err := qtx.CancelRequest(ctx, employeeID, l.ID.String()); err != nil {
			return err
		}
		current, err := qtx.GetBalance(ctx, employeeID, l.LeaveType)
		if err != nil {
			return err
		}
		days := decimal.NewFromInt(int64(l.DaysCount))
		restored = current.Add(days)
		if err := qtx.SetBalance(ctx, employeeID, l.LeaveType, restored); err != nil {
			return err
		}
		return qtx.LogTransaction(ctx, &LeaveTransaction{
			ID:            uuid.New(),
			EmployeeID:    employeeID,
			LeaveType:     l.LeaveType,
			Kind:          TxCredit,
			Amount:        days,
			BalanceBefore: current,
			BalanceAfter:  restored,
			Description: fmt.Sprintf("Cancelled leave from %s to %s",
				l.StartDate.Format(dateLayout), l.EndDate.Format(dateLayout)),
			CreatedAt: s.now(),
		})
	})
	if err != nil {
		return decimal.Zero, mapStorageError(err)
	}
	return restored, nil
}

func (s *service) Balances(ctx context.Context, employeeID string) ([]BalanceItem, error) {
	balances, err := s.repo.ListBalances(ctx, employeeID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	items := make([]BalanceItem, 0, len(balances))
	for _, b := range balances {
		items = append(items, BalanceItem{LeaveType: b.LeaveType, Balance: b.Balance})
	}
	return items, nil
}

func (s *service) History(ctx context.Context, employeeID string, limit int) ([]HistoryEntry, error) {
	requests, err := s.repo.ListRequests(ctx, employeeID, limit)
	if err != nil {
		return nil, mapStorageError(err)
	}
	entries := make([]HistoryEntry, 0, len(requests))
	for _, r := range requests {
		entries = append(entries, HistoryEntry{
			ID:          r.ID.String(),
			LeaveType:   r.LeaveType,
			StartDate:   r.StartDate.Format(dateLayout),
			EndDate:     r.EndDate.Format(dateLayout),
			Days:        r.DaysCount,
			Status:      r.Status,
			RequestedAt: r.RequestedAt.Format("2006-01-02 15:04"),
		})
	}
	return entries, nil
}

// CheckEligibilityForDate answers "can I take leave on <date>" without
// touching any state. Weekends are ineligible unless weekends count, then
// a plain balance-vs-days comparison decides.
func (s *service) CheckEligibilityForDate(ctx context.Context, employeeID, leaveType string, date time.Time, days int) (*DateEligibility, error) {
	current, err := s.repo.GetBalance(ctx, employeeID, leaveType)
	if err != nil {
		return nil, mapStorageError(err)
	}

	out := &DateEligibility{
		Date:       date.Format(dateLayout),
		DayName:    date.Weekday().String(),
		DatePhrase: s.datePhrase(date),
	}

	wd := date.Weekday()
	if (wd == time.Saturday || wd == time.Sunday) && !s.rules.WeekendCounts {
		out.Reason = ReasonWeekend
		return out, nil
	}

	required := decimal.NewFromInt(int64(days))
	if current.LessThan(required) {
		out.Reason = ReasonNoBalance
		out.Balance = current
		out.Required = days
		return out, nil
	}

	out.Eligible = true
	out.Reason = ReasonEligible
	out.Balance = current
	out.AfterBalance = current.Sub(required)
	out.Required = days
	return out, nil
}

func (s *service) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (s *service) datePhrase(date time.Time) string {
	today := s.today()
	target := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, today.Location())
	switch {
	case target.Equal(today):
		return "today"
	case target.Equal(today.AddDate(0, 0, 1)):
		return "tomorrow"
	default:
		return "on " + date.Format("January 02")
	}
}
