package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"

	"github.com/tgienger/todo/internal/models"
)

const (
	detailTimeLayout = "2006-01-02 15:04:05"
	tableTimeLayout  = "2006-01-02 15:04"
)

var tableHeaders = []string{"ID", "Name", "Description", "Status", "Priority", "Tags", "Due Date", "Created", "Completed"}

// columnWidths caps each table column; longer cells are cut with an ellipsis
var columnWidths = []int{6, 20, 30, 15, 10, 15, 15, 16, 16}

func formatTimestamp(ts, layout string) string {
	t, err := models.ParseTimestamp(ts)
	if err != nil {
		return ts
	}
	return t.Format(layout)
}

// formatDetails renders one task as "Label: value" lines. Empty optional
// fields are omitted.
func formatDetails(task models.Task) string {
	lines := []string{
		fmt.Sprintf("ID: %d", task.ID),
		fmt.Sprintf("Name: %s", task.Name),
		fmt.Sprintf("Status: %s", task.Status),
	}
	if task.Desc != nil && *task.Desc != "" {
		lines = append(lines, "Description: "+*task.Desc)
	}
	if len(task.Tags) > 0 {
		lines = append(lines, "Tags: "+strings.Join(task.Tags, ", "))
	}
	if task.DueDate != nil && *task.DueDate != "" {
		lines = append(lines, "Due Date: "+*task.DueDate)
	}
	if task.Priority != nil {
		lines = append(lines, "Priority: "+string(*task.Priority))
	}
	if task.CreatedAt != "" {
		lines = append(lines, "Created: "+formatTimestamp(task.CreatedAt, detailTimeLayout))
	}
	if task.CompletedAt != nil && *task.CompletedAt != "" {
		lines = append(lines, "Completed: "+formatTimestamp(*task.CompletedAt, detailTimeLayout))
	}
	return strings.Join(lines, "\n")
}

func tableRow(task models.Task) []string {
	row := []string{
		strconv.Itoa(task.ID),
		task.Name,
		deref(task.Desc),
		string(task.Status),
		"",
		strings.Join(task.Tags, ", "),
		deref(task.DueDate),
		formatTimestamp(task.CreatedAt, tableTimeLayout),
		"",
	}
	if task.Priority != nil {
		row[4] = string(*task.Priority)
	}
	if task.CompletedAt != nil {
		row[8] = formatTimestamp(*task.CompletedAt, tableTimeLayout)
	}
	for i := range row {
		row[i] = ansi.Truncate(strings.ReplaceAll(row[i], "\n", " "), columnWidths[i], "…")
	}
	return row
}

// formatTable renders tasks as a header-ruled table no wider than maxWidth
func formatTable(tasks []models.Task, maxWidth int) string {
	headerStyle := lipgloss.NewStyle().Bold(true).PaddingRight(2)
	cellStyle := lipgloss.NewStyle().PaddingRight(2)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(true).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(tableHeaders...)
	for _, task := range tasks {
		t.Row(tableRow(task)...)
	}

	out := t.String()
	if maxWidth > 0 && lipgloss.Width(out) > maxWidth {
		out = t.Width(maxWidth).String()
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
