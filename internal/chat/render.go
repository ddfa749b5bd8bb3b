package chat

import (
	"fmt"
	"strings"

	"go-leavechat/internal/leave"

	"github.com/shopspring/decimal"
)

const divider = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// Thresholds for the balance level indicator.
var (
	five = decimal.NewFromInt(5)
	ten  = decimal.NewFromInt(10)
)

// leaveTypeNames maps stored categories to their display names.
var leaveTypeNames = map[string]string{
	leave.TypeCasual:   "Casual Leave",
	leave.TypeSick:     "Sick Leave",
	leave.TypeVacation: "Vacation Leave",
	leave.TypeGeneral:  "General Leave",
}

func displayLeaveType(t string) string {
	if name, ok := leaveTypeNames[t]; ok {
		return name
	}
	return t
}

// Renderer turns service results into the plain-text replies the
// assistant speaks. It holds no state.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) RequestSummary(s *leave.RequestSummary) string {
	if s.HasOverlap {
		return r.overlappingLeaves(s.Overlaps)
	}
	if !s.IsEligible {
		return fmt.Sprintf(
			"❌ Insufficient Leave Balance\n\n"+
				"Available: %s days\n"+
				"Requested: %d days\n"+
				"Shortage: %s days\n\n"+
				"Please adjust your leave dates or choose a different leave type.",
			s.CurrentBalance, s.Days, s.Shortage,
		)
	}
	return fmt.Sprintf(
		"📋 Leave Request Summary:\n%s\n"+
			"Leave Type: %s\n"+
			"Period: %s to %s\n"+
			"Duration: %d day(s)\n\n"+
			"💼 Leave Balance:\n"+
			"Current: %s days\n"+
			"After deduction: %s days\n%s\n\n"+
			"Type 'yes' or 'confirm' to approve this request.",
		divider,
		displayLeaveType(s.LeaveType),
		s.StartDate, s.EndDate,
		s.Days,
		s.CurrentBalance, s.RemainingBalance,
		divider,
	)
}

func (r *Renderer) overlappingLeaves(overlaps []leave.OverlapDetail) string {
	var b strings.Builder
	b.WriteString("⚠️ You already have approved leave(s) for these dates:\n\n")
	for i, o := range overlaps {
		fmt.Fprintf(&b, "%d. %s\n   📅 %s → %s (%d days)\n",
			i+1, displayLeaveType(o.LeaveType), o.StartDate, o.EndDate, o.Days)
	}
	b.WriteString("\nPlease pick different dates, or cancel the existing leave first.")
	return b.String()
}

func (r *Renderer) Confirmed(c *leave.ConfirmationResult) string {
	return fmt.Sprintf(
		"✅ Leave Approved!\n\n"+
			"Your leave from %s to %s has been granted.\n"+
			"Remaining balance: %s days\n\n"+
			"Have a great time off! 🌴",
		c.StartDate, c.EndDate, c.RemainingBalance,
	)
}

func (r *Renderer) Shortage(e *leave.ShortageError) string {
	return fmt.Sprintf(
		"❌ Insufficient Leave Balance\n\n"+
			"You have %s days but need %d days (short by %s).\n\n"+
			"Please create a new leave request with fewer days.",
		e.Current, e.Requested, e.Shortage,
	)
}

func (r *Renderer) NoPending() string {
	return "There is no pending leave request to confirm. Please create a new leave request first."
}

func (r *Renderer) PendingCancelled() string {
	return "Your pending leave request has been cancelled."
}

func (r *Renderer) Balances(items []leave.BalanceItem) string {
	if len(items) == 0 {
		return "💼 Your Leave Balance:\n" + divider + "\nNo leave balance found\n" + divider
	}
	var lines []string
	for _, item := range items {
		indicator := "🔴"
		if item.Balance.GreaterThanOrEqual(ten) {
			indicator = "🟢"
		} else if item.Balance.GreaterThanOrEqual(five) {
			indicator = "🟡"
		}
		lines = append(lines, fmt.Sprintf("%s %s: %s days",
			indicator, displayLeaveType(item.LeaveType), item.Balance))
	}
	return fmt.Sprintf("💼 Your Leave Balance:\n%s\n%s\n%s",
		divider, strings.Join(lines, "\n"), divider)
}

func (r *Renderer) History(entries []leave.HistoryEntry) string {
	if len(entries) == 0 {
		return "📋 No leave history found.\n\nYou haven't taken any leaves yet."
	}
	var b strings.Builder
	b.WriteString("📋 Your Leave History:\n")
	b.WriteString(strings.Repeat("━", 70))
	b.WriteString("\n\n")
	for i, e := range entries {
		statusEmoji := "⏳"
		if e.Status == leave.StatusApproved {
			statusEmoji = "✅"
		}
		fmt.Fprintf(&b, "%d. %s %s\n   📅 %s → %s (%d days)\n   🕐 Requested on %s\n\n",
			i+1, statusEmoji, displayLeaveType(e.LeaveType),
			e.StartDate, e.EndDate, e.Days, e.RequestedAt)
	}
	b.WriteString(strings.Repeat("━", 70))
	return b.String()
}

func (r *Renderer) Cancellations(c *leave.CancellationResult) string {
	var b strings.Builder
	b.WriteString("✅ Leave(s) Cancelled!\n\n")
	for i, l := range c.Cancelled {
		fmt.Fprintf(&b, "%d. %s\n   📅 %s → %s\n   ↩️  Restored: %d days → Balance: %s days\n",
			i+1, displayLeaveType(l.LeaveType), l.StartDate, l.EndDate, l.Days, l.RestoredBalance)
	}
	fmt.Fprintf(&b, "\nTotal days restored: %s", c.TotalRestored)
	return b.String()
}

func (r *Renderer) PastLeave() string {
	return "❌ You can only cancel future leaves. Past or current leaves cannot be cancelled."
}

func (r *Renderer) NoLeavesToCancel() string {
	return "No approved leaves found in that date range."
}

func (r *Renderer) Eligibility(e *leave.DateEligibility) string {
	switch e.Reason {
	case leave.ReasonWeekend:
		return fmt.Sprintf(
			"❌ %s (%s) falls on a weekend.\n\n"+
				"You don't need leave for weekends. Did you mean a weekday?",
			e.Date, e.DayName,
		)
	case leave.ReasonNoBalance:
		return fmt.Sprintf(
			"❌ You cannot take leave on %s (%s).\n\n"+
				"Available balance: %s days\n"+
				"Required: %d days",
			e.Date, e.DayName, e.Balance, e.Required,
		)
	default:
		return fmt.Sprintf(
			"✅ Yes, you can take leave %s (%s, %s).\n\n"+
				"Current balance: %s days\n"+
				"Balance after leave: %s days\n\n"+
				"Would you like to apply?",
			e.DatePhrase, e.DayName, e.Date, e.Balance, e.AfterBalance,
		)
	}
}

func (r *Renderer) Help() string {
	return "I'm not sure I understood that. I can help you with:\n\n" +
		"  • Applying for leave (e.g., 'I need leave from 20th to 25th')\n" +
		"  • Checking eligibility (e.g., 'Can I take leave tomorrow?')\n" +
		"  • Checking balance (e.g., 'What's my balance?')\n" +
		"  • Viewing history (e.g., 'Show my leave history')\n" +
		"  • Cancelling future leaves (e.g., 'Cancel my leave on 20th')\n\n" +
		"What would you like to do?"
}

func (r *Renderer) ErrorMessage(msg string) string {
	return "❌ Error: " + msg
}

func (r *Renderer) Greeting(emp *leave.Employee) string {
	return fmt.Sprintf("Welcome, %s! (ID: %s)", emp.Name, emp.EmployeeID)
}
