// Package promo holds the pure promotion logic: activity and expiry
// evaluation, date-range parsing for the creation workflow and the view
// filter. Nothing here touches the transport or the files.
package promo

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"go.uber.org/zap"

	"promo-bot/internal/models"
)

// ISODate is the calendar date layout used in the persisted records.
const ISODate = "2006-01-02"

// IsActive reports whether today falls inside the promotion's date range,
// inclusive on both ends. A malformed date makes the promotion inactive;
// the failure is logged and never surfaced to the caller.
func IsActive(p *models.Promotion, today time.Time) bool {
	start, err := time.Parse(ISODate, p.StartDate)
	if err != nil {
		zap.L().Error("bad promotion start date",
			zap.String("name", p.Name), zap.String("start_date", p.StartDate), zap.Error(err))
		return false
	}
	end, err := time.Parse(ISODate, p.EndDate)
	if err != nil {
		zap.L().Error("bad promotion end date",
			zap.String("name", p.Name), zap.String("end_date", p.EndDate), zap.Error(err))
		return false
	}
	d := truncateToDate(today)
	return !d.Before(start) && !d.After(end)
}

// DaysUntilExpiry returns the number of whole days between today and the
// promotion's end date. Negative for already-expired promotions.
func DaysUntilExpiry(p *models.Promotion, today time.Time) (int, error) {
	end, err := time.Parse(ISODate, p.EndDate)
	if err != nil {
		return 0, fmt.Errorf("bad end date %q: %w", p.EndDate, err)
	}
	return int(end.Sub(truncateToDate(today)).Hours() / 24), nil
}

// ParseDateRange parses creation input of the form "<start> - <end>". Both
// halves are calendar dates, day-first: "03.06.2025" is the 3rd of June.
// Exactly one dash is expected between the halves.
func ParseDateRange(text string) (start, end time.Time, err error) {
	parts := strings.Split(text, "-")
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("expected two dates separated by a dash, got %q", text)
	}
	start, err = parseCalendarDate(parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("unrecognized start date %q: %w", parts[0], err)
	}
	end, err = parseCalendarDate(parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("unrecognized end date %q: %w", parts[1], err)
	}
	return truncateToDate(start), truncateToDate(end), nil
}

// parseCalendarDate accepts the documented dotted day-first form first and
// only then falls back to the flexible parser. dateparse reads dotted dates
// month-first regardless of PreferMonthFirst, which would turn "03.06.2025"
// into March 6 and reject "31.07.2025" outright.
func parseCalendarDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"02.01.2006", "2.1.2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return dateparse.ParseAny(s, dateparse.PreferMonthFirst(false))
}

// ActiveForChat filters a promotion snapshot down to those that are active
// today and target the given chat.
func ActiveForChat(promos map[string]models.Promotion, chatID string, today time.Time) map[string]models.Promotion {
	out := make(map[string]models.Promotion)
	for id, p := range promos {
		if IsActive(&p, today) && p.HasShop(chatID) {
			out[id] = p
		}
	}
	return out
}

// ExpiringIn selects promotions whose end date is exactly days away. The
// equality means the expiring-soon reminder fires once, not every day
// inside the window. Records with malformed dates are skipped and logged.
func ExpiringIn(promos map[string]models.Promotion, today time.Time, days int) map[string]models.Promotion {
	out := make(map[string]models.Promotion)
	for id, p := range promos {
		left, err := DaysUntilExpiry(&p, today)
		if err != nil {
			zap.L().Error("skipping promotion with bad end date",
				zap.String("name", p.Name), zap.Error(err))
			continue
		}
		if left == days {
			out[id] = p
		}
	}
	return out
}

// ExpiredOn selects promotions whose end date is exactly today.
func ExpiredOn(promos map[string]models.Promotion, today time.Time) map[string]models.Promotion {
	return ExpiringIn(promos, today, 0)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
