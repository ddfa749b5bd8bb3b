package chat

import (
	"context"
	"errors"

	"go-leavechat/internal/leave"
	leaveerrors "go-leavechat/internal/leave/errors"
	"go-leavechat/internal/nlp/entity"
	"go-leavechat/internal/nlp/intent"
	"go-leavechat/internal/shared/apperror"

	"go.uber.org/zap"
)

const historyLimit = 10

// Reply is one assistant turn: the text to show plus the intent that
// produced it.
type Reply struct {
	Text   string `json:"text"`
	Intent string `json:"intent"`
}

// Orchestrator glues the NLP pipeline to the ledger service. One
// orchestrator serves one conversation: the employee pinned by
// SetEmployee fills in when an utterance names nobody.
type Orchestrator struct {
	classifier *intent.Classifier
	extractor  *entity.Extractor
	service    leave.Service
	render     *Renderer
	threshold  float64
	employeeID string
	logger     *zap.Logger
}

func NewOrchestrator(
	classifier *intent.Classifier,
	extractor *entity.Extractor,
	service leave.Service,
	threshold float64,
	logger ...*zap.Logger,
) *Orchestrator {
	l := zap.L().Named("chat.orchestrator")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("chat.orchestrator")
	}
	return &Orchestrator{
		classifier: classifier,
		extractor:  extractor,
		service:    service,
		render:     NewRenderer(),
		threshold:  threshold,
		logger:     l,
	}
}

// SetEmployee validates and pins the session employee, returning a
// greeting for the login flow.
func (o *Orchestrator) SetEmployee(ctx context.Context, employeeID string) (string, error) {
	emp, err := o.service.ValidateEmployee(ctx, employeeID)
	if err != nil {
		return "", err
	}
	o.employeeID = emp.EmployeeID
	return o.render.Greeting(emp), nil
}

// EmployeeID returns the currently pinned session employee, if any.
func (o *Orchestrator) EmployeeID() string {
	return o.employeeID
}

// Process runs one turn: classify, extract, dispatch, render.
func (o *Orchestrator) Process(ctx context.Context, text string) Reply {
	in := o.classifier.Classify(text)
	bundle := o.extractor.Extract(text)

	employeeID := bundle.EmployeeID
	if employeeID == "" {
		employeeID = o.employeeID
	}

	o.logger.Debug("chat turn",
		zap.String("intent", string(in)),
		zap.String("employee_id", employeeID),
		zap.Bool("has_range", bundle.HasRange),
	)

	if in == intent.Unknown {
		return Reply{Text: o.render.Help(), Intent: string(in)}
	}
	if o.classifier.Confidence(text, in) < o.threshold {
		return Reply{Text: o.render.Help(), Intent: string(intent.Unknown)}
	}

	if _, err := o.service.ValidateEmployee(ctx, employeeID); err != nil {
		return o.errorReply(in, err)
	}

	switch in {
	case intent.ApplyLeave:
		return o.handleApply(ctx, employeeID, bundle, in)
	case intent.ConfirmLeave:
		return o.handleConfirm(ctx, employeeID, in)
	case intent.CancelRequest:
		if err := o.service.CancelPending(ctx, employeeID); err != nil {
			return o.errorReply(in, err)
		}
		return Reply{Text: o.render.PendingCancelled(), Intent: string(in)}
	case intent.CancelApprovedLeave:
		return o.handleCancelApproved(ctx, employeeID, bundle, in)
	case intent.CheckEligibility:
		return o.handleEligibility(ctx, employeeID, bundle, in)
	case intent.CheckBalance:
		items, err := o.service.Balances(ctx, employeeID)
		if err != nil {
			return o.errorReply(in, err)
		}
		return Reply{Text: o.render.Balances(items), Intent: string(in)}
	case intent.LeaveHistory:
		entries, err := o.service.History(ctx, employeeID, historyLimit)
		if err != nil {
			return o.errorReply(in, err)
		}
		return Reply{Text: o.render.History(entries), Intent: string(in)}
	default:
		return Reply{Text: o.render.Help(), Intent: string(intent.Unknown)}
	}
}

func (o *Orchestrator) handleApply(ctx context.Context, employeeID string, bundle entity.Bundle, in intent.Intent) Reply {
	if !bundle.HasRange {
		return o.dateErrorReply(in,
			"Examples: 'leave from tomorrow to Friday' or 'leave on 20th Jan'")
	}
	summary, err := o.service.CreateRequest(ctx, employeeID,
		string(bundle.LeaveType), bundle.StartDate, bundle.EndDate, bundle.DaysCount)
	if err != nil {
		return o.errorReply(in, err)
	}
	return Reply{Text: o.render.RequestSummary(summary), Intent: string(in)}
}

func (o *Orchestrator) handleConfirm(ctx context.Context, employeeID string, in intent.Intent) Reply {
	result, err := o.service.ConfirmRequest(ctx, employeeID)
	if err != nil {
		if errors.Is(err, leaveerrors.ErrNoPendingConfirmation) {
			return Reply{Text: o.render.NoPending(), Intent: string(in)}
		}
		var shortage *leave.ShortageError
		if errors.As(err, &shortage) {
			return Reply{Text: o.render.Shortage(shortage), Intent: string(in)}
		}
		return o.errorReply(in, err)
	}
	return Reply{Text: o.render.Confirmed(result), Intent: string(in)}
}

func (o *Orchestrator) handleCancelApproved(ctx context.Context, employeeID string, bundle entity.Bundle, in intent.Intent) Reply {
	if !bundle.HasRange {
		return Reply{
			Text: o.render.ErrorMessage(
				"Please specify which dates to cancel, e.g. 'cancel my leave on 20th Jan'"),
			Intent: string(in),
		}
	}
	result, err := o.service.CancelApproved(ctx, employeeID, bundle.StartDate, bundle.EndDate)
	if err != nil {
		if errors.Is(err, leaveerrors.ErrPastLeaveCancellation) {
			return Reply{Text: o.render.PastLeave(), Intent: string(in)}
		}
		if errors.Is(err, leaveerrors.ErrNoLeavesFoundInRange) {
			return Reply{Text: o.render.NoLeavesToCancel(), Intent: string(in)}
		}
		return o.errorReply(in, err)
	}
	return Reply{Text: o.render.Cancellations(result), Intent: string(in)}
}

func (o *Orchestrator) handleEligibility(ctx context.Context, employeeID string, bundle entity.Bundle, in intent.Intent) Reply {
	if !bundle.HasRange {
		return o.dateErrorReply(in, "Try 'Can I take leave tomorrow?'")
	}
	days := bundle.DaysCount
	if days < 1 {
		days = 1
	}
	out, err := o.service.CheckEligibilityForDate(ctx, employeeID,
		string(bundle.LeaveType), bundle.StartDate, days)
	if err != nil {
		return o.errorReply(in, err)
	}
	return Reply{Text: o.render.Eligibility(out), Intent: string(in)}
}

// dateErrorReply renders the unparseable-date error with an example the
// user can copy.
func (o *Orchestrator) dateErrorReply(in intent.Intent, hint string) Reply {
	return Reply{
		Text:   o.render.ErrorMessage(leaveerrors.ErrDateUnparseable.Message + "\n" + hint),
		Intent: string(in),
	}
}

// errorReply renders any service error via the shared mapping, so driver
// details never reach the user.
func (o *Orchestrator) errorReply(in intent.Intent, err error) Reply {
	httpErr := apperror.ToHTTP(err)
	o.logger.Warn("chat turn failed",
		zap.String("intent", string(in)),
		zap.String("code", httpErr.Code),
		zap.Error(err),
	)
	return Reply{Text: o.render.ErrorMessage(httpErr.Message), Intent: string(in)}
}
