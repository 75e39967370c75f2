package expenses

import (
	"context"
	"time"
)

// IsMonthlyLimitExceeded reports whether adding delta to the user's total for
// the calendar month containing date would go over the limit. The total is
// read from storage on every call.
func (s *Service) IsMonthlyLimitExceeded(ctx context.Context, delta float64, date time.Time, userID string) (bool, error) {
	from, to := s.monthBounds(date)

	total, err := s.storage.SumAmount(ctx, userID, from, to)
	if err != nil {
		return false, err
	}

	return total+delta > s.limit, nil
}

// monthBounds returns the half-open window [day 1 00:00, next month day 1
// 00:00) of the month containing t, in the service's location. Sub-millisecond
// instants after the last day 23:59:59.999 still fall inside it.
func (s *Service) monthBounds(t time.Time) (time.Time, time.Time) {
	t = t.In(s.loc)
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, s.loc)
	return start, start.AddDate(0, 1, 0)
}
