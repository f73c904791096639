package models

import (
	"fmt"
	"strings"
)

// CreateTask is the input for creating a task
type CreateTask struct {
	Name     string    `json:"name"`
	Desc     *string   `json:"desc,omitempty"`
	Tags     []string  `json:"tags,omitempty"`
	DueDate  *string   `json:"due_date,omitempty"`
	Priority *Priority `json:"priority,omitempty"`
}

// UpdateTask is a sparse update: nil fields are left untouched. A non-nil
// Tags slice replaces the task's tags, even when empty.
type UpdateTask struct {
	ID       int       `json:"id"`
	Name     *string   `json:"name,omitempty"`
	Desc     *string   `json:"desc,omitempty"`
	Tags     []string  `json:"tags,omitempty"`
	DueDate  *string   `json:"due_date,omitempty"`
	Priority *Priority `json:"priority,omitempty"`
	Status   *Status   `json:"status,omitempty"`
}

// ParseTags splits a comma-separated tag list, trimming blanks and dropping
// empty entries. It returns nil when no tag remains.
func ParseTags(s string) []string {
	var tags []string
	for _, part := range strings.Split(s, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Range names a calendar-relative due-date window
type Range string

const (
	RangeAll      Range = "all"
	RangeDay      Range = "day"
	RangeToday    Range = "today"
	RangeTomorrow Range = "tomorrow"
	RangeWeek     Range = "week"
	RangeMonth    Range = "month"
	RangeQuarter  Range = "quarter"
	RangeYear     Range = "year"
)

// Ranges lists the accepted range names
var Ranges = []Range{RangeAll, RangeToday, RangeTomorrow, RangeDay, RangeWeek, RangeMonth, RangeQuarter, RangeYear}

// ParseRange validates a range name. The empty string means no range filter.
func ParseRange(s string) (Range, error) {
	r := Range(strings.ToLower(strings.TrimSpace(s)))
	if r == "" {
		return "", nil
	}
	for _, known := range Ranges {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid range %q: %w", s, ErrValidation)
}

// OrderBy is the primary sort key of a listing
type OrderBy string

const (
	OrderByDueDate   OrderBy = "due-date"
	OrderByPriority  OrderBy = "priority"
	OrderByID        OrderBy = "id"
	OrderByCreatedAt OrderBy = "created-at"
)

// OrderBys lists the accepted sort keys
var OrderBys = []OrderBy{OrderByDueDate, OrderByPriority, OrderByID, OrderByCreatedAt}

// ParseOrderBy validates a sort key. The empty string selects due-date.
func ParseOrderBy(s string) (OrderBy, error) {
	o := OrderBy(strings.ToLower(strings.TrimSpace(s)))
	if o == "" {
		return OrderByDueDate, nil
	}
	for _, known := range OrderBys {
		if o == known {
			return o, nil
		}
	}
	return "", fmt.Errorf("invalid orderby %q: %w", s, ErrValidation)
}

// Order is the sort direction
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// ParseOrder validates a sort direction. The empty string selects asc.
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return OrderAsc, nil
	case OrderAsc, OrderDesc:
		return o, nil
	}
	return "", fmt.Errorf("invalid order %q (want asc or desc): %w", s, ErrValidation)
}

// DefaultLimit caps listings when the caller gives no limit
const DefaultLimit = 10

// ListTasks holds the filters, sort and limit of a listing. A nil Status
// selects active tasks; a nil Limit selects DefaultLimit and 0 means no limit.
type ListTasks struct {
	Keyword  string    `json:"keyword,omitempty"`
	Tags     []string  `json:"tags,omitempty"`
	Priority *Priority `json:"priority,omitempty"`
	Status   *Status   `json:"status,omitempty"`
	Range    Range     `json:"range,omitempty"`
	OrderBy  OrderBy   `json:"orderby,omitempty"`
	Order    Order     `json:"order,omitempty"`
	Limit    *int      `json:"limit,omitempty"`
}
