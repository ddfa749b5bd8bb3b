package entity

import (
	"regexp"
	"strings"
	"time"

	"go-leavechat/internal/nlp/dateparse"
)

// LeaveType is the category a leave request draws its balance from.
type LeaveType string

const (
	TypeCasual   LeaveType = "casual"
	TypeSick     LeaveType = "sick"
	TypeVacation LeaveType = "vacation"
	TypeGeneral  LeaveType = "general"
)

// Bundle holds everything the extractor could pull out of one utterance.
type Bundle struct {
	EmployeeID string
	LeaveType  LeaveType
	StartDate  time.Time
	EndDate    time.Time
	HasRange   bool
	DaysCount  int
}

// Employee id patterns, tried in order. First hit wins.
var (
	empPrefixRe = regexp.MustCompile(`EMP[-_]?(\d+)`)
	ePrefixRe   = regexp.MustCompile(`\bE[-_]?(\d+)`)
	idPhraseRe  = regexp.MustCompile(`(?:EMPLOYEE|EMP)\s*(?:ID|CODE|NUMBER|NO)[:\s]*([A-Z0-9]+)`)
	bareTokenRe = regexp.MustCompile(`\b([A-Z]{2,4}\d{2,6})\b`)
)

// Keyword table scanned in order; "leave" itself maps to general, so an
// unqualified mention of leave always resolves to the general category.
var leaveTypeKeywords = []struct {
	leaveType LeaveType
	keywords  []string
}{
	{TypeCasual, []string{"casual", "cl"}},
	{TypeSick, []string{"sick", "medical", "sl", "health"}},
	{TypeVacation, []string{"vacation", "holiday", "vl", "annual"}},
	{TypeGeneral, []string{"leave", "general"}},
}

// Extractor pulls the employee id, leave category, and date range out
// of raw text, delegating date work to the parser.
type Extractor struct {
	dates         *dateparse.Parser
	countWeekends bool
}

func NewExtractor(dates *dateparse.Parser, countWeekends bool) *Extractor {
	return &Extractor{dates: dates, countWeekends: countWeekends}
}

func (e *Extractor) Extract(text string) Bundle {
	b := Bundle{
		EmployeeID: e.ExtractEmployeeID(text),
		LeaveType:  e.ExtractLeaveType(text),
	}

	start, end, ok := e.dates.ParseRange(text)
	if ok {
		b.StartDate = start
		b.EndDate = end
		b.HasRange = true
		b.DaysCount = e.dates.BusinessDayCount(start, end, e.countWeekends)
	}
	return b
}

// ExtractEmployeeID recognizes EMP123, E123, "employee id X123" and
// bare letter-digit tokens, normalized where the pattern implies it.
func (e *Extractor) ExtractEmployeeID(text string) string {
	upper := strings.ToUpper(text)

	if m := empPrefixRe.FindStringSubmatch(upper); m != nil {
		return "EMP" + m[1]
	}
	if m := ePrefixRe.FindStringSubmatch(upper); m != nil {
		return "E" + m[1]
	}
	if m := idPhraseRe.FindStringSubmatch(upper); m != nil {
		return m[1]
	}
	if m := bareTokenRe.FindStringSubmatch(upper); m != nil {
		return m[1]
	}
	return ""
}

func (e *Extractor) ExtractLeaveType(text string) LeaveType {
	lower := strings.ToLower(text)
	for _, entry := range leaveTypeKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.leaveType
			}
		}
	}
	return TypeGeneral
}
