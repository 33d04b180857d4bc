package promo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promo-bot/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsActive(t *testing.T) {
	p := &models.Promotion{Name: "Sale", StartDate: "2025-06-03", EndDate: "2025-07-31"}

	tests := []struct {
		name  string
		today time.Time
		want  bool
	}{
		{"before start", date(2025, time.June, 2), false},
		{"on start", date(2025, time.June, 3), true},
		{"inside range", date(2025, time.July, 1), true},
		{"on end", date(2025, time.July, 31), true},
		{"after end", date(2025, time.August, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsActive(p, tt.today))
		})
	}
}

func TestIsActiveIgnoresTimeOfDay(t *testing.T) {
	p := &models.Promotion{Name: "Sale", StartDate: "2025-06-03", EndDate: "2025-06-03"}
	lateEvening := time.Date(2025, time.June, 3, 23, 59, 0, 0, time.UTC)
	assert.True(t, IsActive(p, lateEvening))
}

func TestIsActiveMalformedDates(t *testing.T) {
	today := date(2025, time.June, 10)

	assert.False(t, IsActive(&models.Promotion{StartDate: "garbage", EndDate: "2025-07-31"}, today))
	assert.False(t, IsActive(&models.Promotion{StartDate: "2025-06-03", EndDate: "31.07.2025"}, today))
	assert.False(t, IsActive(&models.Promotion{}, today))
}

func TestDaysUntilExpiry(t *testing.T) {
	today := date(2025, time.June, 10)

	tests := []struct {
		end  string
		want int
	}{
		{"2025-06-13", 3},
		{"2025-06-10", 0},
		{"2025-06-09", -1},
		{"2025-07-10", 30},
	}
	for _, tt := range tests {
		got, err := DaysUntilExpiry(&models.Promotion{EndDate: tt.end}, today)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "end date %s", tt.end)
	}

	_, err := DaysUntilExpiry(&models.Promotion{EndDate: "not-a-date"}, today)
	assert.Error(t, err)
}

func TestExpiringInSelectsExactMatchOnly(t *testing.T) {
	today := date(2025, time.June, 10)
	promos := map[string]models.Promotion{
		"1": {Name: "two days", StartDate: "2025-06-01", EndDate: "2025-06-12"},
		"2": {Name: "three days", StartDate: "2025-06-01", EndDate: "2025-06-13"},
		"3": {Name: "four days", StartDate: "2025-06-01", EndDate: "2025-06-14"},
		"4": {Name: "broken", StartDate: "2025-06-01", EndDate: "oops"},
	}

	got := ExpiringIn(promos, today, 3)
	require.Len(t, got, 1)
	assert.Equal(t, "three days", got["2"].Name)
}

func TestExpiredOn(t *testing.T) {
	today := date(2025, time.June, 10)
	promos := map[string]models.Promotion{
		"1": {Name: "ends today", EndDate: "2025-06-10"},
		"2": {Name: "ended yesterday", EndDate: "2025-06-09"},
		"3": {Name: "ends tomorrow", EndDate: "2025-06-11"},
	}

	got := ExpiredOn(promos, today)
	require.Len(t, got, 1)
	assert.Contains(t, got, "1")
}

func TestParseDateRange(t *testing.T) {
	start, end, err := ParseDateRange("03.06.2025 - 31.07.2025")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-03", start.Format(ISODate))
	assert.Equal(t, "2025-07-31", end.Format(ISODate))
}

func TestParseDateRangeDottedDatesAreDayFirst(t *testing.T) {
	// Day > 12 in both halves must parse, and day <= 12 must not flip
	// into a month.
	start, end, err := ParseDateRange("13.06.2025 - 31.12.2025")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-13", start.Format(ISODate))
	assert.Equal(t, "2025-12-31", end.Format(ISODate))

	start, end, err = ParseDateRange("01.02.2025 - 03.04.2025")
	require.NoError(t, err)
	assert.Equal(t, "2025-02-01", start.Format(ISODate))
	assert.Equal(t, "2025-04-03", end.Format(ISODate))
}

func TestParseDateRangeUnpaddedDays(t *testing.T) {
	start, end, err := ParseDateRange("3.6.2025 - 31.7.2025")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-03", start.Format(ISODate))
	assert.Equal(t, "2025-07-31", end.Format(ISODate))
}

func TestParseDateRangeOtherFormats(t *testing.T) {
	start, end, err := ParseDateRange("2025/06/03 - 2025/07/31")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-03", start.Format(ISODate))
	assert.Equal(t, "2025-07-31", end.Format(ISODate))
}

func TestParseDateRangeErrors(t *testing.T) {
	cases := []string{
		"",
		"03.06.2025",
		"03.06.2025 31.07.2025",
		"2025-06-03 - 2025-07-31", // ISO dashes break the single-dash split
		"abc - def",
	}
	for _, input := range cases {
		_, _, err := ParseDateRange(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestActiveForChat(t *testing.T) {
	today := date(2025, time.June, 10)
	promos := map[string]models.Promotion{
		"1": {Name: "Sale", StartDate: "2025-06-10", EndDate: "2025-06-15", Shops: []string{"111"}},
		"2": {Name: "Old", StartDate: "2025-05-01", EndDate: "2025-05-31", Shops: []string{"111"}},
		"3": {Name: "Other shop", StartDate: "2025-06-01", EndDate: "2025-06-30", Shops: []string{"333"}},
	}

	forTarget := ActiveForChat(promos, "111", today)
	require.Len(t, forTarget, 1)
	assert.Equal(t, "Sale", forTarget["1"].Name)

	forOther := ActiveForChat(promos, "222", today)
	assert.Empty(t, forOther)
}
