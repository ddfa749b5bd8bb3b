package intent

import (
	"regexp"
	"strings"
)

// Intent labels an utterance with exactly one actionable category.
type Intent string

const (
	ApplyLeave          Intent = "apply_leave"
	CheckEligibility    Intent = "check_eligibility"
	ConfirmLeave        Intent = "confirm_leave"
	CancelRequest       Intent = "cancel_request"
	CancelApprovedLeave Intent = "cancel_approved_leave"
	CheckBalance        Intent = "check_balance"
	LeaveHistory        Intent = "leave_history"
	Unknown             Intent = "unknown"
)

type rule struct {
	intent   Intent
	patterns []*regexp.Regexp
}

func compile(exprs ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		res[i] = regexp.MustCompile(e)
	}
	return res
}

// Classifier assigns intents by running an ordered rule ladder with
// first-match-wins semantics. The order matters: cancellation of
// approved leave is checked before anything else because phrases like
// "cancel sick leave" contain apply-leave keywords, and eligibility
// questions ("can I take leave") are checked before the generic
// apply-leave patterns for the same reason.
type Classifier struct {
	ladder   []rule
	byIntent map[Intent][]*regexp.Regexp
}

func NewClassifier() *Classifier {
	ladder := []rule{
		{CancelApprovedLeave, compile(
			`^\s*(cancel|remove|delete|withdraw)\b`,
			`\b(cancel|remove|delete|withdraw)\b.*\bleaves?\b`,
		)},
		{CheckEligibility, compile(
			`\b(can|could|may)\s+i\b`,
			`\bam\s+i\s+(allowed|eligible)`,
			`\bis\s+it\s+(possible|ok|okay)\s+to\b`,
		)},
		{ApplyLeave, compile(
			`\b(need|want|apply|request|take|book)\s+(a\s+)?(leave|time off|vacation)`,
			`\bi\s+(will|would|shall)\s+be\s+(on\s+)?leave`,
			`\b(going|planning)\s+on\s+leave`,
			`\bleave\s+(from|on|for)`,
			`\bwill\s+not\s+be\s+(available|present|coming|in office)`,
			`\boff\s+(on|from|for)`,
			`\bwill\s+be\s+(absent|away|out)`,
			`\b(casual|sick|medical|vacation|annual)\s+leave\b`,
		)},
		{ConfirmLeave, compile(
			`\b(yes|yep|yeah|sure|ok|okay|confirm|approved?|accept|proceed)\b`,
			`\b(go ahead|do it|please proceed)\b`,
		)},
		{CancelRequest, compile(
			`\b(no|nope|nah|reject|deny|decline|nevermind)\b`,
			`\b(don't|do not)\s+(want|need)`,
		)},
		// History before balance: "show my leave history" would
		// otherwise satisfy the broad balance query pattern.
		{LeaveHistory, compile(
			`\b(show|view|check|get|display)\b.*\b(history|past|previous|record)`,
			`\bleave\s+history`,
			`\bpast\s+leaves`,
			`\bmy\s+(leave\s+)?requests`,
		)},
		{CheckBalance, compile(
			`\b(how many|how much|what's|what is|check|show|tell)\b.*\b(leave|balance)`,
			`\bleave\s+(balance|remaining|left|available)`,
			`\bmy\s+balance`,
			`\bremaining\s+(leave|days)`,
		)},
	}

	byIntent := make(map[Intent][]*regexp.Regexp, len(ladder))
	for _, r := range ladder {
		byIntent[r.intent] = r.patterns
	}
	return &Classifier{ladder: ladder, byIntent: byIntent}
}

var (
	confirmTokens = map[string]bool{
		"yes": true, "yep": true, "yeah": true, "ok": true,
		"okay": true, "confirm": true, "sure": true,
	}
	cancelTokens = map[string]bool{
		"no": true, "nope": true, "nah": true,
	}
)

// Classify returns the single intent for text, or Unknown when no rule
// fires anywhere in the ladder.
func (c *Classifier) Classify(text string) Intent {
	lower := strings.ToLower(text)
	trimmed := strings.TrimSpace(lower)

	// The two cancellation-sensitive tiers run before everything else.
	for _, r := range c.ladder[:2] {
		for _, re := range r.patterns {
			if re.MatchString(lower) {
				return r.intent
			}
		}
	}

	// Whole-utterance confirmation or negation tokens.
	if confirmTokens[trimmed] {
		return ConfirmLeave
	}
	if cancelTokens[trimmed] {
		return CancelRequest
	}

	for _, r := range c.ladder[2:] {
		for _, re := range r.patterns {
			if re.MatchString(lower) {
				return r.intent
			}
		}
	}

	return Unknown
}

// Confidence is a coarse multi-signal-agreement score, not a calibrated
// probability: min(0.6 + 0.2*matches, 1.0), or 0 for Unknown.
func (c *Classifier) Confidence(text string, in Intent) float64 {
	if in == Unknown {
		return 0
	}

	lower := strings.ToLower(text)
	matches := 0
	for _, re := range c.byIntent[in] {
		if re.MatchString(lower) {
			matches++
		}
	}
	if matches == 0 {
		return 0
	}
	return min(0.6+0.2*float64(matches), 1.0)
}
