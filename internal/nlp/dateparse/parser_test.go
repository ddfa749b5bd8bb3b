package dateparse_test

import (
	"testing"
	"time"

	"go-leavechat/internal/nlp/dateparse"

	"github.com/stretchr/testify/assert"
)

// Tuesday.
var refDay = time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseSingle_RelativeTokens(t *testing.T) {
	p := dateparse.NewAt(refDay)

	cases := []struct {
		in   string
		want time.Time
	}{
		{"today", refDay},
		{"now", refDay},
		{"tomorrow", day(2026, 1, 14)},
		{"yesterday", day(2026, 1, 12)},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := p.ParseSingle(tc.in)
			assert.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseSingle_WeekdayModifiers(t *testing.T) {
	p := dateparse.NewAt(refDay)

	t.Run("next monday skips to the following week", func(t *testing.T) {
		got, ok := p.ParseSingle("next monday")
		assert.True(t, ok)
		assert.Equal(t, day(2026, 1, 19), got)
	})

	t.Run("next friday also lands next week", func(t *testing.T) {
		// Naive offset from Tuesday to Friday is +3; "next" still
		// adds a week on top.
		got, ok := p.ParseSingle("next friday")
		assert.True(t, ok)
		assert.Equal(t, day(2026, 1, 23), got)
	})

	t.Run("this monday rolls forward once monday has passed", func(t *testing.T) {
		got, ok := p.ParseSingle("this monday")
		assert.True(t, ok)
		assert.Equal(t, day(2026, 1, 19), got)
	})

	t.Run("this tuesday resolves to today", func(t *testing.T) {
		got, ok := p.ParseSingle("this tuesday")
		assert.True(t, ok)
		assert.Equal(t, refDay, got)
	})

	t.Run("this friday stays in the current week", func(t *testing.T) {
		got, ok := p.ParseSingle("this friday")
		assert.True(t, ok)
		assert.Equal(t, day(2026, 1, 16), got)
	})

	t.Run("bare weekday is strictly after today", func(t *testing.T) {
		got, ok := p.ParseSingle("tuesday")
		assert.True(t, ok)
		assert.Equal(t, day(2026, 1, 20), got)
	})

	t.Run("modifier with a non-weekday word fails", func(t *testing.T) {
		_, ok := p.ParseSingle("next year")
		assert.False(t, ok)
	})
}

func TestParseSingle_NumericAndOrdinalForms(t *testing.T) {
	p := dateparse.NewAt(refDay)

	t.Run("dash separated", func(t *testing.T) {
		got, ok := p.ParseSingle("20-02-2026")
		assert.True(t, ok)
		assert.Equal(t, day(2026, 2, 20), got)
	})

	t.Run("slash separated with short year", func(t *testing.T) {
		got, ok := p.ParseSingle("5/3/26")
		assert.True(t, ok)
		assert.Equal(t, day(2026, 3, 5), got)
	})

	t.Run("ordinal with year", func(t *testing.T) {
		got, ok := p.ParseSingle("13th jan 2027")
		assert.True(t, ok)
		assert.Equal(t, day(2027, 1, 13), got)
	})

	t.Run("ordinal without year rolls past dates forward", func(t *testing.T) {
		// 5 Jan is behind the reference day, so it means next year.
		got, ok := p.ParseSingle("5th jan")
		assert.True(t, ok)
		assert.Equal(t, day(2027, 1, 5), got)
	})

	t.Run("ordinal without year keeps future dates", func(t *testing.T) {
		got, ok := p.ParseSingle("20 feb")
		assert.True(t, ok)
		assert.Equal(t, day(2026, 2, 20), got)
	})

	t.Run("impossible calendar date fails", func(t *testing.T) {
		_, ok := p.ParseSingle("30-02-2026")
		assert.False(t, ok)
	})

	t.Run("gibberish fails", func(t *testing.T) {
		_, ok := p.ParseSingle("qqqq")
		assert.False(t, ok)
	})
}

func TestParseRange(t *testing.T) {
	p := dateparse.NewAt(refDay)

	t.Run("and pattern returns chronological order", func(t *testing.T) {
		start, end, ok := p.ParseRange("apply leave on friday and wednesday")
		assert.True(t, ok)
		assert.Equal(t, day(2026, 1, 14), start)
		assert.Equal(t, day(2026, 1, 16), end)
	})

	t.Run("from to pattern", func(t *testing.T) {
		start, end, ok := p.ParseRange("from tomorrow to friday")
		assert.True(t, ok)
		assert.Equal(t, day(2026, 1, 14), start)
		assert.Equal(t, day(2026, 1, 16), end)
	})

	t.Run("until separator", func(t *testing.T) {
		start, end, ok := p.ParseRange("from 20-02-2026 until 25-02-2026")
		assert.True(t, ok)
		assert.Equal(t, day(2026, 2, 20), start)
		assert.Equal(t, day(2026, 2, 25), end)
	})

	t.Run("on date is a single day", func(t *testing.T) {
		start, end, ok := p.ParseRange("leave on 20-02-2026")
		assert.True(t, ok)
		assert.Equal(t, day(2026, 2, 20), start)
		assert.Equal(t, start, end)
	})

	t.Run("two dates found by scanning", func(t *testing.T) {
		start, end, ok := p.ParseRange("i need 20-02-2026 plus 18-02-2026 off")
		assert.True(t, ok)
		assert.Equal(t, day(2026, 2, 18), start)
		assert.Equal(t, day(2026, 2, 20), end)
	})

	t.Run("single date anywhere becomes a one-day range", func(t *testing.T) {
		start, end, ok := p.ParseRange("taking 20-02-2026 off")
		assert.True(t, ok)
		assert.Equal(t, day(2026, 2, 20), start)
		assert.Equal(t, start, end)
	})

	t.Run("no dates", func(t *testing.T) {
		_, _, ok := p.ParseRange("what is my balance")
		assert.False(t, ok)
	})
}

func TestBusinessDayCount(t *testing.T) {
	p := dateparse.NewAt(refDay)

	monday := day(2026, 1, 12)
	friday := day(2026, 1, 16)
	sunday := day(2026, 1, 18)

	t.Run("weekday-only week", func(t *testing.T) {
		assert.Equal(t, 5, p.BusinessDayCount(monday, friday, false))
		assert.Equal(t, 5, p.BusinessDayCount(monday, friday, true))
	})

	t.Run("range spanning a weekend differs by mode", func(t *testing.T) {
		assert.Equal(t, 5, p.BusinessDayCount(monday, sunday, false))
		assert.Equal(t, 7, p.BusinessDayCount(monday, sunday, true))
	})

	t.Run("single day", func(t *testing.T) {
		assert.Equal(t, 1, p.BusinessDayCount(monday, monday, false))
	})

	t.Run("weekend only excluded", func(t *testing.T) {
		saturday := day(2026, 1, 17)
		assert.Equal(t, 0, p.BusinessDayCount(saturday, sunday, false))
		assert.Equal(t, 2, p.BusinessDayCount(saturday, sunday, true))
	})

	t.Run("inverted range is empty", func(t *testing.T) {
		assert.Equal(t, 0, p.BusinessDayCount(friday, monday, false))
	})
}
