package chat_test

import (
	"context"
	"testing"
	"time"

	"go-leavechat/internal/chat"
	"go-leavechat/internal/leave"
	leaveerrors "go-leavechat/internal/leave/errors"
	"go-leavechat/internal/nlp/dateparse"
	"go-leavechat/internal/nlp/entity"
	"go-leavechat/internal/nlp/intent"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService implements leave.Service with overridable function fields.
type fakeService struct {
	validateFn       func(ctx context.Context, employeeID string) (*leave.Employee, error)
	createFn         func(ctx context.Context, employeeID, leaveType string, start, end time.Time, days int) (*leave.RequestSummary, error)
	confirmFn        func(ctx context.Context, employeeID string) (*leave.ConfirmationResult, error)
	cancelPendingFn  func(ctx context.Context, employeeID string) error
	cancelApprovedFn func(ctx context.Context, employeeID string, start, end time.Time) (*leave.CancellationResult, error)
	balancesFn       func(ctx context.Context, employeeID string) ([]leave.BalanceItem, error)
	historyFn        func(ctx context.Context, employeeID string, limit int) ([]leave.HistoryEntry, error)
	eligibilityFn    func(ctx context.Context, employeeID, leaveType string, date time.Time, days int) (*leave.DateEligibility, error)
}

func (f *fakeService) ValidateEmployee(ctx context.Context, employeeID string) (*leave.Employee, error) {
	if f.validateFn != nil {
		return f.validateFn(ctx, employeeID)
	}
	if employeeID == "EMP001" {
		return &leave.Employee{EmployeeID: "EMP001", Name: "Asha"}, nil
	}
	return nil, leaveerrors.ErrEmployeeNotFound
}

func (f *fakeService) CheckEligibility(ctx context.Context, employeeID, leaveType string, days int) (bool, decimal.Decimal, decimal.Decimal, error) {
	return true, decimal.NewFromInt(10), decimal.NewFromInt(10 - int64(days)), nil
}

func (f *fakeService) CreateRequest(ctx context.Context, employeeID, leaveType string, start, end time.Time, days int) (*leave.RequestSummary, error) {
	if f.createFn != nil {
		return f.createFn(ctx, employeeID, leaveType, start, end, days)
	}
	return &leave.RequestSummary{
		EmployeeID:       employeeID,
		LeaveType:        leaveType,
		StartDate:        start.Format("2006-01-02"),
		EndDate:          end.Format("2006-01-02"),
		Days:             days,
		CurrentBalance:   decimal.NewFromInt(10),
		RemainingBalance: decimal.NewFromInt(10 - int64(days)),
		IsEligible:       true,
	}, nil
}

func (f *fakeService) ConfirmRequest(ctx context.Context, employeeID string) (*leave.ConfirmationResult, error) {
	if f.confirmFn != nil {
		return f.confirmFn(ctx, employeeID)
	}
	return nil, leaveerrors.ErrNoPendingConfirmation
}

func (f *fakeService) CancelPending(ctx context.Context, employeeID string) error {
	if f.cancelPendingFn != nil {
		return f.cancelPendingFn(ctx, employeeID)
	}
	return nil
}

func (f *fakeService) CancelApproved(ctx context.Context, employeeID string, start, end time.Time) (*leave.CancellationResult, error) {
	if f.cancelApprovedFn != nil {
		return f.cancelApprovedFn(ctx, employeeID, start, end)
	}
	return nil, leaveerrors.ErrNoLeavesFoundInRange
}

func (f *fakeService) Balances(ctx context.Context, employeeID string) ([]leave.BalanceItem, error) {
	if f.balancesFn != nil {
		return f.balancesFn(ctx, employeeID)
	}
	return nil, nil
}

func (f *fakeService) History(ctx context.Context, employeeID string, limit int) ([]leave.HistoryEntry, error) {
	if f.historyFn != nil {
		return f.historyFn(ctx, employeeID, limit)
	}
	return nil, nil
}

func (f *fakeService) CheckEligibilityForDate(ctx context.Context, employeeID, leaveType string, date time.Time, days int) (*leave.DateEligibility, error) {
	if f.eligibilityFn != nil {
		return f.eligibilityFn(ctx, employeeID, leaveType, date, days)
	}
	return &leave.DateEligibility{Eligible: true, Reason: leave.ReasonEligible, DatePhrase: "tomorrow"}, nil
}

// Tuesday, 2026-01-13.
var chatRefDay = time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC)

func newOrchestrator(t *testing.T, svc leave.Service, threshold float64) *chat.Orchestrator {
	t.Helper()
	parser := dateparse.NewAt(chatRefDay)
	return chat.NewOrchestrator(
		intent.NewClassifier(),
		entity.NewExtractor(parser, false),
		svc,
		threshold,
	)
}

func pin(t *testing.T, o *chat.Orchestrator) {
	t.Helper()
	greeting, err := o.SetEmployee(context.Background(), "EMP001")
	require.NoError(t, err)
	require.Contains(t, greeting, "Asha")
}

func TestOrchestrator_RoutesBalanceQuery(t *testing.T) {
	svc := &fakeService{}
	var asked string
	svc.balancesFn = func(ctx context.Context, employeeID string) ([]leave.BalanceItem, error) {
		asked = employeeID
		return []leave.BalanceItem{{LeaveType: leave.TypeSick, Balance: decimal.NewFromInt(8)}}, nil
	}
	o := newOrchestrator(t, svc, 0.6)
	pin(t, o)

	reply := o.Process(context.Background(), "what's my leave balance?")
	assert.Equal(t, string(intent.CheckBalance), reply.Intent)
	assert.Equal(t, "EMP001", asked)
	assert.Contains(t, reply.Text, "Sick Leave: 8 days")
}

func TestOrchestrator_SessionEmployeeFallback(t *testing.T) {
	svc := &fakeService{}
	var got string
	svc.historyFn = func(ctx context.Context, employeeID string, limit int) ([]leave.HistoryEntry, error) {
		got = employeeID
		return nil, nil
	}
	o := newOrchestrator(t, svc, 0.6)
	pin(t, o)

	// No id in the text: the pinned session employee fills in.
	o.Process(context.Background(), "show my leave history")
	assert.Equal(t, "EMP001", got)

	// An explicit id in the text wins over the session.
	o.Process(context.Background(), "show leave history for EMP124")
	assert.Equal(t, "EMP124", got)
}

func TestOrchestrator_UnknownGetsHelp(t *testing.T) {
	o := newOrchestrator(t, &fakeService{}, 0.6)
	pin(t, o)

	reply := o.Process(context.Background(), "what's the weather like")
	assert.Equal(t, string(intent.Unknown), reply.Intent)
	assert.Contains(t, reply.Text, "I can help you with")
}

func TestOrchestrator_LowConfidenceGetsHelp(t *testing.T) {
	o := newOrchestrator(t, &fakeService{}, 0.9)
	pin(t, o)

	// One matching pattern scores 0.8, below the 0.9 threshold.
	reply := o.Process(context.Background(), "leave history")
	assert.Equal(t, string(intent.Unknown), reply.Intent)
	assert.Contains(t, reply.Text, "I can help you with")
}

func TestOrchestrator_ApplyWithoutDates(t *testing.T) {
	o := newOrchestrator(t, &fakeService{}, 0.6)
	pin(t, o)

	reply := o.Process(context.Background(), "i want to take leave")
	assert.Equal(t, string(intent.ApplyLeave), reply.Intent)
	assert.Contains(t, reply.Text, leaveerrors.ErrDateUnparseable.Message)
}

func TestOrchestrator_ConfirmOverlapDetected(t *testing.T) {
	svc := &fakeService{
		confirmFn: func(ctx context.Context, employeeID string) (*leave.ConfirmationResult, error) {
			return nil, leaveerrors.ErrOverlapDetected
		},
	}
	o := newOrchestrator(t, svc, 0.6)
	pin(t, o)

	reply := o.Process(context.Background(), "yes")
	assert.Equal(t, string(intent.ConfirmLeave), reply.Intent)
	assert.Contains(t, reply.Text, leaveerrors.ErrOverlapDetected.Message)
}

func TestOrchestrator_ApplyStagesRequest(t *testing.T) {
	svc := &fakeService{}
	var gotStart, gotEnd time.Time
	var gotType string
	svc.createFn = func(ctx context.Context, employeeID, leaveType string, start, end time.Time, days int) (*leave.RequestSummary, error) {
		gotType = leaveType
		gotStart, gotEnd = start, end
		return &leave.RequestSummary{
			EmployeeID: employeeID, LeaveType: leaveType,
			StartDate: start.Format("2006-01-02"), EndDate: end.Format("2006-01-02"),
			Days: days, IsEligible: true,
			CurrentBalance: decimal.NewFromInt(10), RemainingBalance: decimal.NewFromInt(9),
		}, nil
	}
	o := newOrchestrator(t, svc, 0.6)
	pin(t, o)

	reply := o.Process(context.Background(), "i need sick leave tomorrow")
	assert.Equal(t, string(intent.ApplyLeave), reply.Intent)
	assert.Equal(t, leave.TypeSick, gotType)
	assert.Equal(t, chatRefDay.AddDate(0, 0, 1), gotStart)
	assert.Equal(t, gotStart, gotEnd)
	assert.Contains(t, reply.Text, "Leave Request Summary")
	assert.Contains(t, reply.Text, "Type 'yes' or 'confirm'")
}

func TestOrchestrator_ConfirmNoPending(t *testing.T) {
	o := newOrchestrator(t, &fakeService{}, 0.6)
	pin(t, o)

	reply := o.Process(context.Background(), "yes")
	assert.Equal(t, string(intent.ConfirmLeave), reply.Intent)
	assert.Contains(t, reply.Text, "no pending leave request")
}

func TestOrchestrator_ConfirmShortage(t *testing.T) {
	svc := &fakeService{}
	svc.confirmFn = func(ctx context.Context, employeeID string) (*leave.ConfirmationResult, error) {
		return nil, &leave.ShortageError{
			Current:   decimal.NewFromInt(1),
			Requested: 3,
			Shortage:  decimal.NewFromInt(2),
		}
	}
	o := newOrchestrator(t, svc, 0.6)
	pin(t, o)

	reply := o.Process(context.Background(), "confirm")
	assert.Contains(t, reply.Text, "Insufficient Leave Balance")
	assert.Contains(t, reply.Text, "short by 2")
}

func TestOrchestrator_CancelPending(t *testing.T) {
	svc := &fakeService{}
	called := false
	svc.cancelPendingFn = func(ctx context.Context, employeeID string) error {
		called = true
		return nil
	}
	o := newOrchestrator(t, svc, 0.6)
	pin(t, o)

	reply := o.Process(context.Background(), "no")
	assert.Equal(t, string(intent.CancelRequest), reply.Intent)
	assert.True(t, called)
	assert.Contains(t, reply.Text, "pending leave request has been cancelled")
}

func TestOrchestrator_CancelApprovedPastLeave(t *testing.T) {
	svc := &fakeService{}
	svc.cancelApprovedFn = func(ctx context.Context, employeeID string, start, end time.Time) (*leave.CancellationResult, error) {
		return nil, leaveerrors.ErrPastLeaveCancellation
	}
	o := newOrchestrator(t, svc, 0.6)
	pin(t, o)

	reply := o.Process(context.Background(), "cancel my leave on 12th Jan")
	assert.Equal(t, string(intent.CancelApprovedLeave), reply.Intent)
	assert.Contains(t, reply.Text, "only cancel future leaves")
}

func TestOrchestrator_EligibilityRouting(t *testing.T) {
	svc := &fakeService{}
	var gotDate time.Time
	svc.eligibilityFn = func(ctx context.Context, employeeID, leaveType string, date time.Time, days int) (*leave.DateEligibility, error) {
		gotDate = date
		return &leave.DateEligibility{
			Eligible:     true,
			Reason:       leave.ReasonEligible,
			Date:         date.Format("2006-01-02"),
			DayName:      date.Weekday().String(),
			DatePhrase:   "tomorrow",
			Balance:      decimal.NewFromInt(5),
			AfterBalance: decimal.NewFromInt(4),
		}, nil
	}
	o := newOrchestrator(t, svc, 0.6)
	pin(t, o)

	reply := o.Process(context.Background(), "can i take leave tomorrow?")
	assert.Equal(t, string(intent.CheckEligibility), reply.Intent)
	assert.Equal(t, chatRefDay.AddDate(0, 0, 1), gotDate)
	assert.Contains(t, reply.Text, "Yes, you can take leave tomorrow")
}

func TestOrchestrator_UnknownEmployee(t *testing.T) {
	o := newOrchestrator(t, &fakeService{}, 0.6)

	// Nobody pinned and no id in the text.
	reply := o.Process(context.Background(), "what's my balance?")
	assert.Contains(t, reply.Text, "❌ Error:")
	assert.Contains(t, reply.Text, "not found")
}

func TestOrchestrator_SetEmployeeRejectsUnknown(t *testing.T) {
	o := newOrchestrator(t, &fakeService{}, 0.6)

	_, err := o.SetEmployee(context.Background(), "EMP999")
	assert.ErrorIs(t, err, leaveerrors.ErrEmployeeNotFound)
}
