package todo

import (
	"fmt"
	"strings"
	"time"

	"github.com/tgienger/todo/internal/models"
)

// DateRange is an inclusive window of calendar days, held as UTC midnights so
// comparisons ignore time zones. An empty range has From after To.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether day d falls inside the window
func (r DateRange) Contains(d time.Time) bool {
	d = startOfDay(d)
	return !d.Before(r.From) && !d.After(r.To)
}

// Empty reports whether no day can satisfy the window
func (r DateRange) Empty() bool {
	return r.From.After(r.To)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func addDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func lastOfMonth(t time.Time) time.Time {
	return addDays(firstOfMonth(t).AddDate(0, 1, 0), -1)
}

// quarterEndMonth returns the last month (3, 6, 9 or 12) of t's quarter
func quarterEndMonth(t time.Time) time.Month {
	return time.Month(((int(t.Month())-1)/3 + 1) * 3)
}

func lastOfQuarter(t time.Time) time.Time {
	return lastOfMonth(time.Date(t.Year(), quarterEndMonth(t), 1, 0, 0, 0, 0, time.UTC))
}

func lastOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
}

// Bucket computes the due-date window named by r relative to today. The
// windows stack without overlap: week starts after today, month after the
// week, quarter after the month, year after the quarter.
func Bucket(r models.Range, today time.Time) (DateRange, error) {
	today = startOfDay(today)
	switch r {
	case models.RangeDay, models.RangeToday:
		return DateRange{From: today, To: today}, nil
	case models.RangeTomorrow:
		tomorrow := addDays(today, 1)
		return DateRange{From: tomorrow, To: tomorrow}, nil
	case models.RangeWeek:
		return DateRange{From: addDays(today, 1), To: addDays(today, 7)}, nil
	case models.RangeMonth:
		return DateRange{From: addDays(today, 8), To: lastOfMonth(today)}, nil
	case models.RangeQuarter:
		return DateRange{From: firstOfMonth(today).AddDate(0, 1, 0), To: lastOfQuarter(today)}, nil
	case models.RangeYear:
		afterQuarter := time.Date(today.Year(), quarterEndMonth(today)+1, 1, 0, 0, 0, 0, time.UTC)
		return DateRange{From: afterQuarter, To: lastOfYear(today)}, nil
	}
	return DateRange{}, fmt.Errorf("no date window for range %q: %w", r, models.ErrValidation)
}

// ResolveDue turns a due-date argument into a concrete YYYY-MM-DD value.
// Besides literal dates it accepts the shorthands today, tomorrow, week
// (the coming Sunday), month, quarter and year (the last day of each).
func ResolveDue(input string, now time.Time) (string, error) {
	today := startOfDay(now)
	var d time.Time
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "today":
		d = today
	case "tomorrow":
		d = addDays(today, 1)
	case "week":
		d = addDays(today, (7-int(today.Weekday()))%7)
	case "month":
		d = lastOfMonth(today)
	case "quarter":
		d = lastOfQuarter(today)
	case "year":
		d = lastOfYear(today)
	default:
		parsed, err := models.ParseDate(strings.TrimSpace(input))
		if err != nil {
			return "", fmt.Errorf("due date must be YYYY-MM-DD or one of: today, tomorrow, week, month, quarter, year: %w", models.ErrValidation)
		}
		d = parsed
	}
	return d.Format(models.DateLayout), nil
}

// Overdue reports whether an active task's due date lies before now's day
func Overdue(task models.Task, now time.Time) bool {
	if task.Status != models.StatusActive {
		return false
	}
	due, ok := task.Due()
	return ok && startOfDay(due).Before(startOfDay(now))
}
