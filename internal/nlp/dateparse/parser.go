package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	ext "github.com/araddon/dateparse"
)

// Parser resolves natural-language date expressions against a fixed
// reference day, so callers (and tests) are not wall-clock-dependent.
type Parser struct {
	today time.Time
}

func New() *Parser {
	return NewAt(time.Now())
}

func NewAt(today time.Time) *Parser {
	y, m, d := today.Date()
	return &Parser{today: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (p *Parser) Today() time.Time {
	return p.today
}

// Weekday names map to Monday=0..Sunday=6. Ordered so the bare-weekday
// scan checks full names before abbreviations.
var weekdayNames = []struct {
	name string
	day  int
}{
	{"monday", 0}, {"mon", 0},
	{"tuesday", 1}, {"tue", 1}, {"tues", 1},
	{"wednesday", 2}, {"wed", 2},
	{"thursday", 3}, {"thu", 3}, {"thur", 3}, {"thurs", 3},
	{"friday", 4}, {"fri", 4},
	{"saturday", 5}, {"sat", 5},
	{"sunday", 6}, {"sun", 6},
}

var weekdayByName = func() map[string]int {
	m := make(map[string]int, len(weekdayNames))
	for _, w := range weekdayNames {
		m[w.name] = w.day
	}
	return m
}()

var monthByName = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var (
	modifierRe = regexp.MustCompile(`(next|this)\s+(\w+)`)
	numericRe  = regexp.MustCompile(`(\d{1,2})[-/](\d{1,2})[-/](\d{2,4})`)
	ordinalRe  = regexp.MustCompile(`(\d{1,2})(st|nd|rd|th)?\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)(?:\s+(\d{4}))?`)
)

// ParseSingle parses one date out of text. The passes run in a fixed
// order: relative tokens, next/this weekday, bare weekday, numeric
// D-M-Y, ordinal day-month, then a generic fuzzy parse.
func (p *Parser) ParseSingle(text string) (time.Time, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	text = strings.TrimRight(text, "?!.,")

	switch text {
	case "today", "now":
		return p.today, true
	case "tomorrow":
		return p.today.AddDate(0, 0, 1), true
	case "yesterday":
		return p.today.AddDate(0, 0, -1), true
	}

	if m := modifierRe.FindStringSubmatch(text); m != nil {
		return p.weekdayWithModifier(m[2], m[1] == "next")
	}

	for _, w := range weekdayNames {
		if strings.Contains(text, w.name) {
			return p.nextWeekday(w.day), true
		}
	}

	if m := numericRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		if d, ok := makeDate(year, month, day); ok {
			return d, true
		}
	}

	if m := ordinalRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month := monthByName[m[3]]
		year := p.today.Year()
		if m[4] != "" {
			year, _ = strconv.Atoi(m[4])
		}
		if d, ok := makeDate(year, int(month), day); ok {
			// No explicit year and already behind us: assume next year.
			if m[4] == "" && d.Before(p.today) {
				d = d.AddDate(1, 0, 0)
			}
			return d, true
		}
	}

	if t, err := ext.ParseAny(text); err == nil {
		y, mo, d := t.Date()
		return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC), true
	}

	return time.Time{}, false
}

func (p *Parser) weekdayWithModifier(name string, next bool) (time.Time, bool) {
	target, ok := weekdayByName[name]
	if !ok {
		return time.Time{}, false
	}

	daysAhead := target - mondayIndexed(p.today)
	if next {
		// "next" always lands in the following week, even when the
		// naive offset is already positive.
		daysAhead += 7
	} else if daysAhead < 0 {
		daysAhead += 7
	}
	return p.today.AddDate(0, 0, daysAhead), true
}

// nextWeekday returns the next occurrence strictly after today.
func (p *Parser) nextWeekday(target int) time.Time {
	daysAhead := target - mondayIndexed(p.today)
	if daysAhead <= 0 {
		daysAhead += 7
	}
	return p.today.AddDate(0, 0, daysAhead)
}

func mondayIndexed(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func makeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (Feb 30 -> Mar 2); reject it.
	if d.Day() != day || d.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return d, true
}

var (
	andRangeRe    = regexp.MustCompile(`(?:on\s+)?(.+?)\s+and\s+(.+?)(?:\s+|$|,|\.|\band\b)`)
	fromToRangeRe = regexp.MustCompile(`(?:from\s+)?(.+?)\s+(?:to|until|till|-)\s+(.+?)(?:\s|$|,|\.)`)
	onRangeRe     = regexp.MustCompile(`on\s+(.+?)(?:\s|$|,|\.)`)
)

// Words that commonly sit next to a date in an utterance and confuse
// the single-date passes ("apply leave on monday and tuesday").
var fillerWords = []string{"leave", "on", "apply", "want", "need", "request"}

func stripFiller(s string) string {
	for _, w := range fillerWords {
		s = strings.ReplaceAll(s, w, "")
	}
	return strings.TrimSpace(s)
}

// ParseRange extracts a start/end date pair from text. Passes, in order:
// "A and B", "from A to B", "on A" as a single day, a sliding-window
// scan over word spans, and finally a lone date treated as a single day.
func (p *Parser) ParseRange(text string) (time.Time, time.Time, bool) {
	text = strings.ToLower(text)

	if m := andRangeRe.FindStringSubmatch(text); m != nil {
		first, okFirst := p.ParseSingle(stripFiller(strings.TrimSpace(m[1])))
		second, okSecond := p.ParseSingle(stripFiller(strings.TrimSpace(m[2])))
		if okFirst && okSecond {
			if first.After(second) {
				first, second = second, first
			}
			return first, second, true
		}
	}

	if m := fromToRangeRe.FindStringSubmatch(text); m != nil {
		start, okStart := p.ParseSingle(m[1])
		end, okEnd := p.ParseSingle(m[2])
		if okStart && okEnd {
			return start, end, true
		}
	}

	if m := onRangeRe.FindStringSubmatch(text); m != nil {
		if !strings.Contains(m[1], " and ") {
			if d, ok := p.ParseSingle(m[1]); ok {
				return d, d, true
			}
		}
	}

	var dates []time.Time
	words := strings.Fields(text)
	for i := 0; i < len(words); i++ {
		for j := i + 1; j <= len(words) && j <= i+5; j++ {
			phrase := strings.Join(words[i:j], " ")
			if strings.Contains(phrase, " and ") {
				continue
			}
			d, ok := p.ParseSingle(phrase)
			if !ok || containsDate(dates, d) {
				continue
			}
			dates = append(dates, d)
			if len(dates) == 2 {
				if dates[0].After(dates[1]) {
					dates[0], dates[1] = dates[1], dates[0]
				}
				return dates[0], dates[1], true
			}
		}
	}

	if len(dates) == 1 {
		return dates[0], dates[0], true
	}

	return time.Time{}, time.Time{}, false
}

func containsDate(dates []time.Time, d time.Time) bool {
	for _, have := range dates {
		if have.Equal(d) {
			return true
		}
	}
	return false
}

// BusinessDayCount counts the days in [start, end] inclusive. When
// weekends do not count, only Monday through Friday are tallied.
func (p *Parser) BusinessDayCount(start, end time.Time, countWeekends bool) int {
	if end.Before(start) {
		return 0
	}
	if countWeekends {
		return int(end.Sub(start).Hours()/24) + 1
	}

	days := 0
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 1) {
		if mondayIndexed(cur) < 5 {
			days++
		}
	}
	return days
}
