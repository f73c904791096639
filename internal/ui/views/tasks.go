package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/todo"
	"github.com/tgienger/todo/internal/ui/keys"
	"github.com/tgienger/todo/internal/ui/styles"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// FocusArea represents which part of the UI has focus
type FocusArea int

const (
	FocusTaskList FocusArea = iota
	FocusSearchInput
)

// edit form fields, in tab order
const (
	fieldName = iota
	fieldDesc
	fieldTags
	fieldDue
	fieldPriority
	fieldSave
	fieldCount
)

// rangeCycle is the order the range key steps through; "" lists undated tasks too
var rangeCycle = []models.Range{
	"",
	models.RangeToday,
	models.RangeTomorrow,
	models.RangeWeek,
	models.RangeMonth,
	models.RangeQuarter,
	models.RangeYear,
	models.RangeAll,
}

// RangeChanged is emitted when the due-range filter changes
type RangeChanged struct {
	Range models.Range
}

// TaskListView lists tasks and hosts the detail, edit and confirm overlays
type TaskListView struct {
	ctx    context.Context
	repo   *todo.Repository
	tasks  []models.Task
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	// UI state
	focus       FocusArea
	cursor      int
	scrollY     int
	searchInput textinput.Model

	// Listing filters
	status  models.Status
	rng     models.Range
	orderBy models.OrderBy
	order   models.Order

	// Task creation/editing
	editing      bool
	editingNew   bool
	editTaskID   int
	editHadTags  bool
	editName     textinput.Model
	editDesc     textarea.Model
	editTags     textinput.Model
	editDue      textinput.Model
	editPriority textinput.Model
	editFocusIdx int
	editErr      string

	// Task view mode (read-only detail view)
	viewingTask bool

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   int
	deleteTargetName string

	// Help popup
	showHelpPopup bool

	// Status line
	message string
	err     error
}

// NewTaskListView creates a new task list view over repo
func NewTaskListView(ctx context.Context, repo *todo.Repository) *TaskListView {
	search := textinput.New()
	search.Placeholder = "Search tasks..."
	search.CharLimit = 100

	editName := textinput.New()
	editName.Placeholder = "Task name"
	editName.CharLimit = 200

	editDesc := textarea.New()
	editDesc.Placeholder = "Description"
	editDesc.CharLimit = 1000
	editDesc.SetWidth(50)
	editDesc.SetHeight(3)
	editDesc.ShowLineNumbers = false

	editTags := textinput.New()
	editTags.Placeholder = "work, home"
	editTags.CharLimit = 200

	editDue := textinput.New()
	editDue.Placeholder = "YYYY-MM-DD, today, week, month..."
	editDue.CharLimit = 10

	editPriority := textinput.New()
	editPriority.Placeholder = "low, medium, high"
	editPriority.CharLimit = 6

	return &TaskListView{
		ctx:          ctx,
		repo:         repo,
		styles:       styles.NewStyles(),
		keys:         keys.DefaultKeyMap(),
		focus:        FocusTaskList,
		searchInput:  search,
		status:       models.StatusActive,
		orderBy:      models.OrderByDueDate,
		order:        models.OrderAsc,
		editName:     editName,
		editDesc:     editDesc,
		editTags:     editTags,
		editDue:      editDue,
		editPriority: editPriority,
	}
}

// SetRange sets the due-range filter without reloading
func (v *TaskListView) SetRange(r models.Range) {
	v.rng = r
}

// Range returns the current due-range filter
func (v *TaskListView) Range() models.Range {
	return v.rng
}

// Init initializes the view
func (v *TaskListView) Init() tea.Cmd {
	return v.loadTasks()
}

type tasksLoadedMsg struct {
	tasks []models.Task
}

type taskChangedMsg struct {
	text string
}

type errMsg struct {
	err error
}

// listQuery snapshots the current filters. The TUI never truncates.
func (v *TaskListView) listQuery() models.ListTasks {
	status := v.status
	unbounded := 0
	return models.ListTasks{
		Keyword: strings.TrimSpace(v.searchInput.Value()),
		Status:  &status,
		Range:   v.rng,
		OrderBy: v.orderBy,
		Order:   v.order,
		Limit:   &unbounded,
	}
}

func (v *TaskListView) loadTasks() tea.Cmd {
	ctx, repo, q := v.ctx, v.repo, v.listQuery()
	return func() tea.Msg {
		tasks, err := repo.List(ctx, q)
		if err != nil {
			return errMsg{err}
		}
		return tasksLoadedMsg{tasks: tasks}
	}
}

// mutate runs fn off the update loop and reports its outcome
func (v *TaskListView) mutate(fn func(ctx context.Context, repo *todo.Repository) (string, error)) tea.Cmd {
	ctx, repo := v.ctx, v.repo
	return func() tea.Msg {
		text, err := fn(ctx, repo)
		if err != nil {
			return errMsg{err}
		}
		return taskChangedMsg{text: text}
	}
}

func (v *TaskListView) selected() (models.Task, bool) {
	if v.cursor < 0 || v.cursor >= len(v.tasks) {
		return models.Task{}, false
	}
	return v.tasks[v.cursor], true
}

// Update handles messages
func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(v.width)
		v.editDesc.SetWidth(clamp(contentWidth-10, 20, 50))
		v.ensureVisible()
		return v, nil

	case tasksLoadedMsg:
		v.tasks = msg.tasks
		if v.cursor >= len(v.tasks) {
			v.cursor = max(0, len(v.tasks)-1)
		}
		if len(v.tasks) == 0 {
			v.viewingTask = false
		}
		v.ensureVisible()
		return v, nil

	case taskChangedMsg:
		v.message = msg.text
		v.err = nil
		v.editing = false
		v.editErr = ""
		return v, v.loadTasks()

	case errMsg:
		if v.editing {
			v.editErr = msg.err.Error()
			return v, nil
		}
		v.err = msg.err
		v.message = ""
		return v, nil

	case tea.KeyMsg:
		// Any key closes the help popup
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.editing {
			return v.updateEditing(msg)
		}

		if v.viewingTask {
			return v.updateViewingTask(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Don't process hotkeys while typing a search
	if v.focus == FocusSearchInput {
		switch {
		case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter):
			v.searchInput.Blur()
			v.focus = FocusTaskList
			return v, v.loadTasks()
		default:
			var cmd tea.Cmd
			v.searchInput, cmd = v.searchInput.Update(msg)
			v.cursor, v.scrollY = 0, 0
			return v, tea.Batch(cmd, v.loadTasks())
		}
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		if v.searchInput.Value() != "" {
			v.searchInput.Reset()
			return v, v.loadTasks()
		}
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.tasks)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if len(v.tasks) > 0 {
			v.viewingTask = true
		}
		return v, nil

	case key.Matches(msg, v.keys.Search):
		v.focus = FocusSearchInput
		v.searchInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Status):
		v.status = next(models.Statuses, v.status)
		v.cursor, v.scrollY = 0, 0
		return v, v.loadTasks()

	case key.Matches(msg, v.keys.Range):
		v.rng = next(rangeCycle, v.rng)
		v.cursor, v.scrollY = 0, 0
		rng := v.rng
		return v, tea.Batch(v.loadTasks(), func() tea.Msg { return RangeChanged{Range: rng} })

	case key.Matches(msg, v.keys.OrderBy):
		v.orderBy = next(models.OrderBys, v.orderBy)
		return v, v.loadTasks()

	case key.Matches(msg, v.keys.Order):
		if v.order == models.OrderAsc {
			v.order = models.OrderDesc
		} else {
			v.order = models.OrderAsc
		}
		return v, v.loadTasks()

	case key.Matches(msg, v.keys.Finish):
		return v, v.finishSelected()

	case key.Matches(msg, v.keys.Archive):
		return v, v.archiveSelected()

	case key.Matches(msg, v.keys.Delete):
		v.startDelete()
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.startNewTask()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Edit):
		if task, ok := v.selected(); ok {
			v.startEditTask(task)
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

// next returns the element after cur in cycle, wrapping around
func next[T comparable](cycle []T, cur T) T {
	for i, c := range cycle {
		if c == cur {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[0]
}

func (v *TaskListView) finishSelected() tea.Cmd {
	task, ok := v.selected()
	if !ok {
		return nil
	}
	return v.mutate(func(ctx context.Context, repo *todo.Repository) (string, error) {
		if _, err := repo.Finish(ctx, task.ID); err != nil {
			return "", err
		}
		return fmt.Sprintf("Task %d marked as completed", task.ID), nil
	})
}

func (v *TaskListView) archiveSelected() tea.Cmd {
	task, ok := v.selected()
	if !ok {
		return nil
	}
	archived := models.StatusArchived
	return v.mutate(func(ctx context.Context, repo *todo.Repository) (string, error) {
		if _, err := repo.Update(ctx, models.UpdateTask{ID: task.ID, Status: &archived}); err != nil {
			return "", err
		}
		return fmt.Sprintf("Task %d archived", task.ID), nil
	})
}

func (v *TaskListView) startDelete() {
	task, ok := v.selected()
	if !ok {
		return
	}
	v.confirmingDelete = true
	v.deleteTargetID = task.ID
	v.deleteTargetName = task.Name
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		v.viewingTask = false
		id := v.deleteTargetID
		return v, v.mutate(func(ctx context.Context, repo *todo.Repository) (string, error) {
			removed, err := repo.Delete(ctx, id)
			if err != nil {
				return "", err
			}
			if !removed {
				return fmt.Sprintf("Task with ID %d not found", id), nil
			}
			return fmt.Sprintf("Task %d deleted successfully", id), nil
		})
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *TaskListView) updateViewingTask(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter):
		v.viewingTask = false
		return v, nil
	case key.Matches(msg, v.keys.Edit):
		if task, ok := v.selected(); ok {
			v.viewingTask = false
			v.startEditTask(task)
			return v, textinput.Blink
		}
		return v, nil
	case key.Matches(msg, v.keys.Finish):
		return v, v.finishSelected()
	case key.Matches(msg, v.keys.Archive):
		return v, v.archiveSelected()
	case key.Matches(msg, v.keys.Delete):
		v.startDelete()
		return v, nil
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	}
	return v, nil
}

func (v *TaskListView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		v.editErr = ""
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.saveTask()

	case key.Matches(msg, v.keys.Tab):
		v.editFocusIdx = (v.editFocusIdx + 1) % fieldCount
		v.updateEditFocus()
		return v, nil

	case msg.String() == "shift+tab":
		v.editFocusIdx = (v.editFocusIdx + fieldCount - 1) % fieldCount
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		switch v.editFocusIdx {
		case fieldSave:
			return v, v.saveTask()
		case fieldDesc:
			// newlines belong to the description
		default:
			v.editFocusIdx++
			v.updateEditFocus()
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.editFocusIdx {
	case fieldName:
		v.editName, cmd = v.editName.Update(msg)
	case fieldDesc:
		v.editDesc, cmd = v.editDesc.Update(msg)
	case fieldTags:
		v.editTags, cmd = v.editTags.Update(msg)
	case fieldDue:
		v.editDue, cmd = v.editDue.Update(msg)
	case fieldPriority:
		v.editPriority, cmd = v.editPriority.Update(msg)
	}
	return v, cmd
}

func (v *TaskListView) ensureVisible() {
	visibleItems := v.visibleItems()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visibleItems {
		v.scrollY = v.cursor - visibleItems + 1
	}
}

// visibleItems is how many two-line task rows fit below the header
func (v *TaskListView) visibleItems() int {
	availableHeight := max(v.height-10, 2)
	return max(availableHeight/2, 1)
}

func (v *TaskListView) startNewTask() {
	v.editing = true
	v.editingNew = true
	v.editTaskID = 0
	v.editHadTags = false
	v.editErr = ""
	v.editFocusIdx = fieldName
	v.editName.Reset()
	v.editDesc.Reset()
	v.editTags.Reset()
	v.editDue.Reset()
	v.editPriority.Reset()
	v.updateEditFocus()
}

func (v *TaskListView) startEditTask(task models.Task) {
	v.editing = true
	v.editingNew = false
	v.editTaskID = task.ID
	v.editHadTags = task.Tags != nil
	v.editErr = ""
	v.editFocusIdx = fieldName
	v.editName.SetValue(task.Name)
	v.editDesc.SetValue(deref(task.Desc))
	v.editTags.SetValue(strings.Join(task.Tags, ", "))
	v.editDue.SetValue(deref(task.DueDate))
	if task.Priority != nil {
		v.editPriority.SetValue(string(*task.Priority))
	} else {
		v.editPriority.Reset()
	}
	v.updateEditFocus()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (v *TaskListView) updateEditFocus() {
	v.editName.Blur()
	v.editDesc.Blur()
	v.editTags.Blur()
	v.editDue.Blur()
	v.editPriority.Blur()

	switch v.editFocusIdx {
	case fieldName:
		v.editName.Focus()
	case fieldDesc:
		v.editDesc.Focus()
	case fieldTags:
		v.editTags.Focus()
	case fieldDue:
		v.editDue.Focus()
	case fieldPriority:
		v.editPriority.Focus()
	}
}

// saveTask turns the form into a create or a sparse update. Blank optional
// fields are left unset.
func (v *TaskListView) saveTask() tea.Cmd {
	name := strings.TrimSpace(v.editName.Value())
	tags := models.ParseTags(v.editTags.Value())

	var desc *string
	if d := strings.TrimSpace(v.editDesc.Value()); d != "" {
		desc = &d
	}

	var due *string
	if d := strings.TrimSpace(v.editDue.Value()); d != "" {
		resolved, err := todo.ResolveDue(d, v.repo.Now())
		if err != nil {
			v.editErr = err.Error()
			return nil
		}
		due = &resolved
	}

	var priority *models.Priority
	if p := strings.TrimSpace(v.editPriority.Value()); p != "" {
		parsed, err := models.ParsePriority(p)
		if err != nil {
			v.editErr = err.Error()
			return nil
		}
		priority = &parsed
	}

	if v.editingNew {
		in := models.CreateTask{Name: name, Desc: desc, Tags: tags, DueDate: due, Priority: priority}
		return v.mutate(func(ctx context.Context, repo *todo.Repository) (string, error) {
			task, err := repo.Create(ctx, in)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Task created successfully with ID: %d", task.ID), nil
		})
	}

	in := models.UpdateTask{ID: v.editTaskID, Name: &name, Desc: desc, DueDate: due, Priority: priority}
	if tags != nil || v.editHadTags {
		in.Tags = tags
		if in.Tags == nil {
			in.Tags = []string{}
		}
	}
	return v.mutate(func(ctx context.Context, repo *todo.Repository) (string, error) {
		task, err := repo.Update(ctx, in)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Task %d updated successfully", task.ID), nil
	})
}

// View renders the view
func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}
	if v.editing {
		return v.renderEditForm()
	}
	if v.viewingTask {
		return v.renderTaskView()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		v.renderHeader(),
		v.renderTaskList(),
		v.renderStatus(),
		v.renderHelp(),
	)
	return styles.CenterView(content, v.width, v.height)
}

func (v *TaskListView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	rng := string(v.rng)
	if rng == "" {
		rng = "any"
	}
	filters := s.TitleMuted.Render(fmt.Sprintf("%s • due %s • by %s %s • %d shown",
		v.status, rng, v.orderBy, v.order, len(v.tasks)))

	searchStyle := s.FilterBar
	if v.focus == FocusSearchInput {
		searchStyle = searchStyle.BorderForeground(styles.Current.BorderFocus)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Padding(1, 2, 0).Render(s.Title.Render("Tasks")+"  "+filters),
		searchStyle.Width(max(contentWidth-2, 20)).Render(v.searchInput.View()),
	)
}

func (v *TaskListView) renderTaskList() string {
	if len(v.tasks) == 0 {
		return v.styles.ListItem.Render(v.styles.TitleMuted.Render("No tasks found"))
	}

	end := min(v.scrollY+v.visibleItems(), len(v.tasks))
	var items []string
	for i := v.scrollY; i < end; i++ {
		items = append(items, v.renderTaskItem(v.tasks[i], i == v.cursor))
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *TaskListView) renderTaskItem(task models.Task, selected bool) string {
	s := v.styles
	width := max(styles.ContentWidth(v.width)-4, 20)

	badge := ""
	if task.Priority != nil {
		badge = styles.Priority(task.Priority).Render(string(*task.Priority)) + " "
	}
	titleLine := fmt.Sprintf("%d. %s%s", task.ID, badge, task.Name)

	var details []string
	if task.DueDate != nil {
		due := "due " + *task.DueDate
		if v.overdue(task) {
			due = s.Overdue.Render(due)
		}
		details = append(details, due)
	}
	if task.Status == models.StatusCompleted && task.CompletedAt != nil {
		details = append(details, s.Done.Render("done "+shortTimestamp(*task.CompletedAt)))
	}
	if len(task.Tags) > 0 {
		var tagStrs []string
		for _, tag := range task.Tags {
			tagStrs = append(tagStrs, s.Tag.Render("#"+tag))
		}
		details = append(details, strings.Join(tagStrs, " "))
	}
	detailLine := strings.Join(details, "  ")
	if detailLine == "" {
		detailLine = s.TitleMuted.Render("no due date")
	}

	itemStyle := s.ListItem
	if selected {
		itemStyle = s.ListSelected
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		itemStyle.Width(width).Render(titleLine),
		itemStyle.Width(width).Render(detailLine),
	)
}

// overdue reports an active task whose due date has passed
func (v *TaskListView) overdue(task models.Task) bool {
	return todo.Overdue(task, v.repo.Now())
}

func (v *TaskListView) renderStatus() string {
	switch {
	case v.err != nil:
		return v.styles.ErrorText.Render("Error: " + v.err.Error())
	case v.message != "":
		return v.styles.StatusBar.Render(v.message)
	}
	return ""
}

func (v *TaskListView) renderHelp() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 60 {
		return s.Help.Render(s.HelpKey.Render("?") + " help")
	}

	return s.Help.Render(
		fmt.Sprintf("%s view • %s new • %s edit • %s finish • %s archive • %s del • %s search • %s status • %s range • %s sort • %s quit",
			s.HelpKey.Render("↵"),
			s.HelpKey.Render("n"),
			s.HelpKey.Render("e"),
			s.HelpKey.Render("x"),
			s.HelpKey.Render("a"),
			s.HelpKey.Render("d"),
			s.HelpKey.Render("/"),
			s.HelpKey.Render("s"),
			s.HelpKey.Render("r"),
			s.HelpKey.Render("o"),
			s.HelpKey.Render("q"),
		),
	)
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	bindings := []key.Binding{
		v.keys.Up, v.keys.Down, v.keys.Enter, v.keys.New, v.keys.Edit,
		v.keys.Finish, v.keys.Archive, v.keys.Delete, v.keys.Search,
		v.keys.Status, v.keys.Range, v.keys.OrderBy, v.keys.Order, v.keys.Quit,
	}
	helpItems := []string{s.Title.Render("Keyboard Shortcuts"), ""}
	for _, b := range bindings {
		h := b.Help()
		helpItems = append(helpItems, s.HelpKey.Width(8).Render(h.Key)+s.HelpDesc.Render(h.Desc))
	}
	helpItems = append(helpItems, "", s.TitleMuted.Render("Press any key to close"))

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Popup.Render(lipgloss.JoinVertical(lipgloss.Left, helpItems...)),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderEditForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	formTitle := "New Task"
	if !v.editingNew {
		formTitle = fmt.Sprintf("Edit Task %d", v.editTaskID)
	}

	fieldStyle := func(idx int) lipgloss.Style {
		if v.editFocusIdx == idx {
			return s.InputFocused
		}
		return s.Input
	}
	btnStyle := s.Button
	if v.editFocusIdx == fieldSave {
		btnStyle = s.ButtonFocused
	}

	rows := []string{
		s.Title.Render(formTitle),
		"",
		"Name:",
		fieldStyle(fieldName).Width(inputWidth).Render(v.editName.View()),
		"Description:",
		fieldStyle(fieldDesc).Render(v.editDesc.View()),
		"Tags (comma separated):",
		fieldStyle(fieldTags).Width(inputWidth).Render(v.editTags.View()),
		"Due:",
		fieldStyle(fieldDue).Width(inputWidth).Render(v.editDue.View()),
		"Priority:",
		fieldStyle(fieldPriority).Width(inputWidth).Render(v.editPriority.View()),
		"",
		btnStyle.Render(" Save "),
	}
	if v.editErr != "" {
		rows = append(rows, "", s.ErrorText.Render(v.editErr))
	}
	rows = append(rows, "", s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"))

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("%d. %s", v.deleteTargetID, v.deleteTargetName)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderTaskView() string {
	task, ok := v.selected()
	if !ok {
		return ""
	}

	s := v.styles
	textWidth := clamp(styles.ContentWidth(v.width)-10, 20, 70)
	labelStyle := s.TitleMuted
	none := s.TitleMuted.Render("None")

	priorityText := none
	if task.Priority != nil {
		priorityText = styles.Priority(task.Priority).Render(string(*task.Priority))
	}
	tagsText := none
	if len(task.Tags) > 0 {
		tagsText = s.Tag.Render(strings.Join(task.Tags, ", "))
	}
	dueText := none
	if task.DueDate != nil {
		dueText = *task.DueDate
		if v.overdue(task) {
			dueText = s.Overdue.Render(dueText + " (overdue)")
		}
	}
	descText := s.TitleMuted.Render("No description")
	if task.Desc != nil && *task.Desc != "" {
		descText = *task.Desc
	}
	completedText := none
	if task.CompletedAt != nil {
		completedText = longTimestamp(*task.CompletedAt)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.MarginBottom(1).Render(fmt.Sprintf("%d. %s", task.ID, task.Name)),
		labelStyle.Render("Status"), string(task.Status), "",
		labelStyle.Render("Priority"), priorityText, "",
		labelStyle.Render("Due Date"), dueText, "",
		labelStyle.Render("Tags"), tagsText, "",
		labelStyle.Render("Description"), lipgloss.NewStyle().Width(textWidth).Render(descText), "",
		labelStyle.Render("Created"), longTimestamp(task.CreatedAt), "",
		labelStyle.Render("Completed"), completedText, "",
		s.Help.Render(fmt.Sprintf("%s edit • %s finish • %s archive • %s delete • %s back",
			s.HelpKey.Render("e"),
			s.HelpKey.Render("x"),
			s.HelpKey.Render("a"),
			s.HelpKey.Render("d"),
			s.HelpKey.Render("esc"),
		)),
	)

	padded := lipgloss.NewStyle().Padding(1, 2).Render(content)
	return styles.CenterView(padded, v.width, v.height)
}

// shortTimestamp trims a stored timestamp to the minute, falling back to the raw value
func shortTimestamp(ts string) string {
	if t, err := models.ParseTimestamp(ts); err == nil {
		return t.Format("2006-01-02 15:04")
	}
	return ts
}

func longTimestamp(ts string) string {
	if t, err := models.ParseTimestamp(ts); err == nil {
		return t.Format("2006-01-02 15:04:05")
	}
	return ts
}
