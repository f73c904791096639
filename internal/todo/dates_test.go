package todo

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/todo/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveDue(t *testing.T) {
	monday := time.Date(2024, 6, 10, 22, 45, 0, 0, time.Local)
	sunday := time.Date(2024, 6, 16, 8, 0, 0, 0, time.Local)

	tests := []struct {
		input string
		now   time.Time
		want  string
	}{
		{"2024-07-04", monday, "2024-07-04"},
		{" 2024-07-04 ", monday, "2024-07-04"},
		{"today", monday, "2024-06-10"},
		{"Tomorrow", monday, "2024-06-11"},
		{"week", monday, "2024-06-16"},
		{"week", sunday, "2024-06-16"},
		{"month", monday, "2024-06-30"},
		{"quarter", monday, "2024-06-30"},
		{"quarter", time.Date(2024, 11, 2, 12, 0, 0, 0, time.Local), "2024-12-31"},
		{"year", monday, "2024-12-31"},
		{"month", time.Date(2024, 2, 3, 12, 0, 0, 0, time.Local), "2024-02-29"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ResolveDue(tt.input, tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDueRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "someday", "2024-02-30", "06/10/2024"} {
		_, err := ResolveDue(input, time.Now())
		require.Error(t, err, input)
		assert.True(t, errors.Is(err, models.ErrValidation))
		assert.Contains(t, err.Error(), "YYYY-MM-DD")
	}
}

func TestBucket(t *testing.T) {
	june10 := time.Date(2024, 6, 10, 15, 0, 0, 0, time.Local)
	nov15 := time.Date(2024, 11, 15, 9, 0, 0, 0, time.Local)
	feb10 := time.Date(2024, 2, 10, 9, 0, 0, 0, time.Local)

	tests := []struct {
		name  string
		rng   models.Range
		today time.Time
		want  DateRange
		empty bool
	}{
		{"today", models.RangeToday, june10, DateRange{day(2024, 6, 10), day(2024, 6, 10)}, false},
		{"day", models.RangeDay, june10, DateRange{day(2024, 6, 10), day(2024, 6, 10)}, false},
		{"tomorrow", models.RangeTomorrow, june10, DateRange{day(2024, 6, 11), day(2024, 6, 11)}, false},
		{"week", models.RangeWeek, june10, DateRange{day(2024, 6, 11), day(2024, 6, 17)}, false},
		{"month", models.RangeMonth, june10, DateRange{day(2024, 6, 18), day(2024, 6, 30)}, false},
		{"month leap", models.RangeMonth, feb10, DateRange{day(2024, 2, 18), day(2024, 2, 29)}, false},
		{"quarter at quarter end", models.RangeQuarter, june10, DateRange{day(2024, 7, 1), day(2024, 6, 30)}, true},
		{"quarter", models.RangeQuarter, nov15, DateRange{day(2024, 12, 1), day(2024, 12, 31)}, false},
		{"year", models.RangeYear, june10, DateRange{day(2024, 7, 1), day(2024, 12, 31)}, false},
		{"year in last quarter", models.RangeYear, nov15, DateRange{day(2025, 1, 1), day(2024, 12, 31)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Bucket(tt.rng, tt.today)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.empty, got.Empty())
		})
	}

	_, err := Bucket(models.RangeAll, june10)
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestDateRangeContainsIgnoresClock(t *testing.T) {
	r := DateRange{From: day(2024, 6, 11), To: day(2024, 6, 17)}
	assert.True(t, r.Contains(time.Date(2024, 6, 17, 23, 59, 0, 0, time.Local)))
	assert.True(t, r.Contains(time.Date(2024, 6, 11, 0, 0, 0, 0, time.Local)))
	assert.False(t, r.Contains(time.Date(2024, 6, 18, 0, 0, 1, 0, time.Local)))
	assert.False(t, r.Contains(time.Date(2024, 6, 10, 23, 59, 0, 0, time.Local)))
}

func TestOverdue(t *testing.T) {
	now := time.Date(2024, 6, 10, 23, 0, 0, 0, time.Local)
	task := func(due string, status models.Status) models.Task {
		return models.Task{ID: 1, Name: "x", DueDate: &due, Status: status}
	}
	assert.True(t, Overdue(task("2024-06-09", models.StatusActive), now))
	assert.False(t, Overdue(task("2024-06-10", models.StatusActive), now))
	assert.False(t, Overdue(task("2024-06-09", models.StatusCompleted), now))
	assert.False(t, Overdue(models.Task{ID: 2, Name: "y", Status: models.StatusActive}, now))
}
